package mux

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
	"recall-server/pkg/statesink"
)

func Test_postMatch(t *testing.T) {
	a := assert.New(t)
	m, ts := newTestMux(t)

	jokers := true
	var created postMatchResponse
	assertPost(t, ts, "/match", postMatchPayload{
		MatchID:       "m1",
		Players:       []postMatchPlayer{{ID: "p1", DisplayName: "Ann"}, {ID: "p2"}},
		IncludeJokers: &jokers,
	}, &created, 201)

	a.Equal("m1", created.MatchID)
	a.Equal(2, len(created.Tokens))
	if a.NotNil(created.Snapshot) {
		a.Equal(recall.PhaseInitialPeek, created.Snapshot.Phase)
		a.Equal(45, created.Snapshot.DrawPileCount)
		a.Equal("Ann", created.Snapshot.Players[0].DisplayName)
	}

	seat, err := m.signer.Validate(created.Tokens["p2"])
	a.NoError(err)
	a.Equal("m1", seat.MatchID)
	a.Equal("p2", seat.PlayerID)

	var errObj errorResponse
	assertPost(t, ts, "/match", postMatchPayload{MatchID: "m1", Players: []postMatchPlayer{{ID: "p1"}, {ID: "p2"}}}, &errObj, 409)
	a.Equal("match already exists", errObj.Message)

	assertPost(t, ts, "/match", postMatchPayload{MatchID: "bad id!", Players: []postMatchPlayer{{ID: "p1"}, {ID: "p2"}}}, &errObj, 400)
	a.Equal("matchId must be at most 64 letters, digits, - or _", errObj.Message)

	assertPost(t, ts, "/match", postMatchPayload{Players: []postMatchPlayer{{ID: "p1"}}}, &errObj, 400)
	a.Equal("expected 2-8 players, got 1", errObj.Message)

	assertPost(t, ts, "/match", postMatchPayload{Players: []postMatchPlayer{{ID: "p1"}, {}}}, &errObj, 400)
	a.Equal("every player requires an id", errObj.Message)

	assertPost(t, ts, "/match", postMatchPayload{Players: []postMatchPlayer{{ID: "p1"}}, ComputerPlayers: 1, Difficulty: "impossible"}, &errObj, 400)
	a.Equal("unknown difficulty: impossible", errObj.Message)

	assertPost(t, ts, "/match", "{", &errObj, 400)

	// computer players do not get a token
	assertPost(t, ts, "/match", postMatchPayload{Players: []postMatchPlayer{{ID: "p1"}}, ComputerPlayers: 3}, &created, 201)
	a.NotEqual("", created.MatchID)
	a.Equal(1, len(created.Tokens))
	a.Equal(4, len(created.Snapshot.Players))
}

func Test_getMatches(t *testing.T) {
	a := assert.New(t)
	_, ts := newTestMux(t)

	for _, id := range []string{"m1", "m2", "m3"} {
		assertPost(t, ts, "/match", postMatchPayload{MatchID: id, Players: []postMatchPlayer{{ID: "p1"}, {ID: "p2"}}}, nil, 201)
	}

	var snaps []*recall.Snapshot
	assertGet(t, ts, "/match", &snaps, 200)
	a.Equal(3, len(snaps))

	assertGet(t, ts, "/match?start=1&rows=1", &snaps, 200)
	a.Equal(1, len(snaps))

	assertGet(t, ts, "/match?start=10", &snaps, 200)
	a.Equal(0, len(snaps))

	var errObj errorResponse
	assertGet(t, ts, "/match?start=-1", &errObj, 400)
	a.Equal("start cannot be less than zero", errObj.Message)
}

func Test_getMatchID(t *testing.T) {
	a := assert.New(t)
	_, ts := newTestMux(t)

	assertPost(t, ts, "/match", postMatchPayload{MatchID: "m1", Players: []postMatchPlayer{{ID: "p1"}, {ID: "p2"}}}, nil, 201)

	var snap recall.Snapshot
	assertGet(t, ts, "/match/m1", &snap, 200)
	a.Equal("m1", snap.MatchID)
	a.Equal(recall.PhaseInitialPeek, snap.Phase)
	a.Equal("", snap.ViewerID)

	// spectators never see a hand card
	for _, p := range snap.Players {
		for _, c := range p.Hand {
			a.True(c.IsFaceDown())
		}
	}

	var errObj errorResponse
	assertGet(t, ts, "/match/nope", &errObj, 404)

	a.Eventually(func() bool {
		var st statesink.State
		resp := assertGet(t, ts, "/match/m1/state", &st, 200)
		return resp != nil && string(st["phase"]) == `"initial_peek"`
	}, 2*time.Second, 10*time.Millisecond)
}

func Test_matchEvents(t *testing.T) {
	a := assert.New(t)
	_, ts := newTestMux(t)

	var created postMatchResponse
	assertPost(t, ts, "/match", postMatchPayload{MatchID: "m1", Players: []postMatchPlayer{{ID: "p1"}, {ID: "p2"}}}, &created, 201)
	token := created.Tokens["p1"]

	var view recall.Snapshot
	assertGet(t, ts, "/match/m1/view", &view, 200, token)
	a.Equal("p1", view.ViewerID)
	cardID := view.Players[0].Hand[0].ID

	var res playable.Response
	assertPost(t, ts, "/match/m1/event", playable.PayloadIn{
		Action:         "completed_initial_peek",
		AdditionalData: playable.AdditionalData{"cardIds": []string{cardID}},
		Context:        "peek",
	}, &res, 200, token)
	a.Equal("status", res.Key)
	a.Equal("OK", res.Value)
	a.Equal("peek", res.Context)

	var errObj errorResponse
	assertPost(t, ts, "/match/m1/event", playable.PayloadIn{
		Action:         "completed_initial_peek",
		AdditionalData: playable.AdditionalData{"cardIds": []string{cardID}},
	}, &errObj, 400, token)
	a.Equal(recall.ErrInvalidStatus.Error(), errObj.Message)

	assertPost(t, ts, "/match/m1/event", playable.PayloadIn{Action: "shuffle"}, &errObj, 400, token)
	a.Equal("unknown event: shuffle", errObj.Message)

	// matches are created through POST /match only
	assertPost(t, ts, "/match/m1/event", playable.PayloadIn{
		Action:         "start_match",
		AdditionalData: playable.AdditionalData{"matchId": "m2", "computerPlayers": 1},
	}, &errObj, 403, token)
	a.Equal("matches cannot be started from a seat", errObj.Message)
	assertGet(t, ts, "/match/m2", &errObj, 404)

	// a single peeked card becomes the collection card, which is public
	var snap recall.Snapshot
	assertGet(t, ts, "/match/m1", &snap, 200)
	a.Equal(cardID, snap.Players[0].Hand[0].ID)
	a.False(snap.Players[0].Hand[0].IsFaceDown())
	a.NotEqual("", snap.Players[0].CollectionRank)
}
