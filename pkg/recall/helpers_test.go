package recall

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"recall-server/internal/rng"
	"recall-server/pkg/deck"
	"recall-server/pkg/playable"
)

type statusChange struct {
	status   PlayerStatus
	playerID string
}

type recorder struct {
	*NopCallback

	statuses []statusChange
	updates  []StateUpdate
	errors   []string
	discards int
	logs     []*playable.LogMessage
}

func (r *recorder) OnPlayerStatusChanged(status PlayerStatus, playerID string, _, _ bool) {
	r.statuses = append(r.statuses, statusChange{status: status, playerID: playerID})
}

func (r *recorder) OnGameStateChanged(update StateUpdate) {
	r.updates = append(r.updates, update)
}

func (r *recorder) OnDiscardPileChanged() {
	r.discards++
}

func (r *recorder) OnActionError(message string, _ map[string]interface{}) {
	r.errors = append(r.errors, message)
}

type testRound struct {
	*Round
	t     *testing.T
	sched *ManualScheduler
	rec   *recorder
}

func testOptions(hands map[int][]string, firstDiscard string) Options {
	opts := DefaultOptions()
	if hands != nil || firstDiscard != "" {
		opts.PredefinedHands = deck.PredefinedHands{
			Enabled:      true,
			Hands:        hands,
			FirstDiscard: firstDiscard,
		}
	}

	return opts
}

func newTestRound(t *testing.T, players []*Player, opts Options, decider Decider) *testRound {
	t.Helper()

	f, err := deck.NewFactory(deck.DefaultConfig())
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	cards, err := f.BuildDeck("m1", true)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	sched := NewManualScheduler()
	rec := &recorder{}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	r, err := NewRound(logger, "m1", players, cards, opts, Dependencies{
		Scheduler: sched,
		Callback:  rec,
		Decider:   decider,
		RNG:       rng.NewSeeded(1),
		Logs: func(msgs []*playable.LogMessage) {
			rec.logs = append(rec.logs, msgs...)
		},
	})
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	rec.NopCallback = &NopCallback{State: r.State()}

	return &testRound{Round: r, t: t, sched: sched, rec: rec}
}

func humans(n int) []*Player {
	ids := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8"}
	players := make([]*Player, n)
	for i := 0; i < n; i++ {
		players[i] = NewPlayer(PlayerSpec{ID: ids[i], IsHuman: true})
	}

	return players
}

// id returns the ID of the card in the format of 5h
func (tr *testRound) id(s string) string {
	tr.t.Helper()

	want := deck.CardFromString(s)
	for _, c := range tr.State().OriginalDeck {
		if c.Rank == want.Rank && c.Suit == want.Suit {
			return c.ID
		}
	}

	tr.t.Fatalf("no card %s", s)
	return ""
}

func (tr *testRound) player(id string) *Player {
	p, ok := tr.State().PlayerByID(id)
	if !ok {
		tr.t.Fatalf("no player %s", id)
	}

	return p
}

// startAndPeek starts the round, peeks at the first two cards of every hand and begins the first turn
func (tr *testRound) startAndPeek() {
	tr.t.Helper()

	a := assert.New(tr.t)
	a.NoError(tr.Start())
	for _, p := range tr.State().Players {
		ids := p.Hand.IDs()
		a.NoError(tr.CompleteInitialPeek(p.ID, ids[:2]))
	}

	tr.sched.Advance(time.Second)
	a.Equal(PhasePlayerTurn, tr.State().Phase)
	tr.checkInvariants()
}

// finishWindows closes the same-rank window and skips any special power
func (tr *testRound) finishWindows() {
	tr.t.Helper()

	for i := 0; i < 10; i++ {
		st := tr.State()
		switch st.Phase {
		case PhaseSameRankWindow:
			tr.sched.Advance(tr.opts.SameRankWindow)
		case PhaseSpecialPlayWindow:
			assert.NoError(tr.t, tr.SkipSpecial(st.ActiveSpecial.PlayerID))
		default:
			return
		}
	}
}

func (tr *testRound) checkInvariants() {
	tr.t.Helper()
	assert.NoError(tr.t, tr.State().CheckInvariants())
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}
