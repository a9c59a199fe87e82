package recall

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"recall-server/pkg/playable"
)

func parse(t *testing.T, name, playerID, payload string) (Event, error) {
	t.Helper()

	var data playable.AdditionalData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatal(err)
	}

	return ParseEvent(name, playerID, data)
}

func TestParseEvent(t *testing.T) {
	a := assert.New(t)

	ev, err := parse(t, "completed_initial_peek", "p1", `{"cardIds":["a","b"]}`)
	a.NoError(err)
	a.Equal(&CompletedInitialPeekEvent{PlayerID: "p1", CardIDs: []string{"a", "b"}}, ev)

	ev, err = parse(t, "draw_card", "", `{"playerId":"p2","source":"discard"}`)
	a.NoError(err)
	a.Equal(&DrawCardEvent{PlayerID: "p2", Source: SourceDiscard}, ev)

	ev, err = parse(t, "draw_card", "p1", `{}`)
	a.NoError(err)
	a.Equal(&DrawCardEvent{PlayerID: "p1", Source: SourceDeck}, ev)

	ev, err = parse(t, "play_card", "p1", `{"cardId":"c1","playerId":"p9"}`)
	a.NoError(err)
	a.Equal(&PlayCardEvent{PlayerID: "p1", CardID: "c1"}, ev)

	ev, err = parse(t, "same_rank_play", "p1", `{"cardId":"c1"}`)
	a.NoError(err)
	a.Equal(EventSameRankPlay, ev.Kind())
	a.Equal("p1", ev.Player())

	ev, err = parse(t, "jack_swap", "p1", `{"firstCardId":"c1","firstPlayerId":"p1","secondCardId":"c2","secondPlayerId":"p2"}`)
	a.NoError(err)
	a.Equal(&JackSwapEvent{
		PlayerID: "p1",
		First:    CardTarget{PlayerID: "p1", CardID: "c1"},
		Second:   CardTarget{PlayerID: "p2", CardID: "c2"},
	}, ev)

	ev, err = parse(t, "queen_peek", "p1", `{"cardId":"c2","ownerId":"p2"}`)
	a.NoError(err)
	a.Equal(&QueenPeekEvent{PlayerID: "p1", Target: CardTarget{PlayerID: "p2", CardID: "c2"}}, ev)

	for _, name := range []EventKind{EventCollectFromDiscard, EventCallRecall, EventSkipSpecial} {
		ev, err = parse(t, string(name), "p1", `{}`)
		a.NoError(err)
		a.Equal(name, ev.Kind())
	}
}

func TestParseEvent_errors(t *testing.T) {
	a := assert.New(t)

	_, err := parse(t, "play_card", "", `{"cardId":"c1"}`)
	a.Equal(PayloadError{Event: EventPlayCard, Field: "playerId"}, err)

	_, err = parse(t, "play_card", "p1", `{"cardId":""}`)
	a.EqualError(err, "play_card: missing or invalid cardId")

	_, err = parse(t, "draw_card", "p1", `{"source":"hand"}`)
	a.Equal(PayloadError{Event: EventDrawCard, Field: "source"}, err)

	_, err = parse(t, "completed_initial_peek", "p1", `{"cardIds":[1,2]}`)
	a.Equal(PayloadError{Event: EventCompletedInitialPeek, Field: "cardIds"}, err)

	_, err = parse(t, "jack_swap", "p1", `{"firstCardId":"c1","firstPlayerId":"p1","secondCardId":"c2"}`)
	a.Equal(PayloadError{Event: EventJackSwap, Field: "secondPlayerId"}, err)

	_, err = parse(t, "queen_peek", "p1", `{"cardId":"c2"}`)
	a.Equal(PayloadError{Event: EventQueenPeek, Field: "ownerId"}, err)

	_, err = parse(t, "fold", "p1", `{}`)
	a.True(errors.Is(err, ErrUnknownEvent))
	a.EqualError(err, "unknown event: fold")
}

func TestParseEvent_startMatch(t *testing.T) {
	a := assert.New(t)
	includeJokers := true

	ev, err := parse(t, "start_match", "p1", `{"displayName":"Alice","computerPlayers":3,"difficulty":"hard","includeJokers":true}`)
	a.NoError(err)
	a.Equal(&StartMatchEvent{
		PlayerID:        "p1",
		Players:         []PlayerSpec{{ID: "p1", DisplayName: "Alice", IsHuman: true}},
		ComputerPlayers: 3,
		Difficulty:      DifficultyHard,
		IncludeJokers:   &includeJokers,
	}, ev)

	ev, err = parse(t, "start_match", "p1", `{"computerPlayers":1,"includeJokers":false}`)
	a.NoError(err)
	if sm, ok := ev.(*StartMatchEvent); a.True(ok) && a.NotNil(sm.IncludeJokers) {
		a.False(*sm.IncludeJokers)
	}

	// a payload without includeJokers leaves the choice to the server
	ev, err = parse(t, "start_match", "p1", `{"computerPlayers":3,"difficulty":"easy"}`)
	a.NoError(err)
	if sm, ok := ev.(*StartMatchEvent); a.True(ok) {
		a.Nil(sm.IncludeJokers)
	}

	ev, err = parse(t, "start_match", "", `{"matchId":"m1","players":[{"id":"a","isHuman":true},{"id":"b","difficulty":"expert"}]}`)
	a.NoError(err)
	a.Equal(&StartMatchEvent{
		MatchID: "m1",
		Players: []PlayerSpec{
			{ID: "a", IsHuman: true},
			{ID: "b", Difficulty: DifficultyExpert},
		},
	}, ev)

	_, err = parse(t, "start_match", "p1", `{"difficulty":"impossible"}`)
	a.Equal(PayloadError{Event: EventStartMatch, Field: "difficulty"}, err)

	_, err = parse(t, "start_match", "", `{"players":[{"isHuman":true}]}`)
	a.Equal(PayloadError{Event: EventStartMatch, Field: "players.id"}, err)
}

func TestDecision_Event(t *testing.T) {
	a := assert.New(t)

	a.Equal(&DrawCardEvent{PlayerID: "p1", Source: SourceDeck}, Decision{Kind: EventDrawCard, Source: SourceDeck}.Event("p1"))
	a.Equal(&CallRecallEvent{PlayerID: "p1"}, Decision{Kind: EventDrawCard, CallRecall: true}.Event("p1"))
	a.Equal(&SkipSpecialEvent{PlayerID: "p1"}, Decision{Kind: EventJackSwap}.Event("p1"))
	a.Equal(&SkipSpecialEvent{PlayerID: "p1"}, Decision{Kind: EventQueenPeek}.Event("p1"))
	a.Equal(&QueenPeekEvent{PlayerID: "p1", Target: CardTarget{PlayerID: "p2", CardID: "c"}},
		Decision{Kind: EventQueenPeek, Act: true, First: CardTarget{PlayerID: "p2", CardID: "c"}}.Event("p1"))
	a.Nil(Decision{Kind: EventSameRankPlay}.Event("p1"))
	a.Nil(Decision{Kind: EventCollectFromDiscard}.Event("p1"))
	a.Equal(&CollectFromDiscardEvent{PlayerID: "p1"}, Decision{Kind: EventCollectFromDiscard, Act: true}.Event("p1"))
}
