package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"recall-server/internal/rng"
	"recall-server/pkg/ai"
	"recall-server/pkg/recall"
	"recall-server/pkg/statesink"
)

var cbg = context.Background()

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

// slowOptions never fire a timer during a test
func slowOptions() recall.Options {
	return recall.Options{
		InitialPeekTimeout: time.Hour,
		PostPeekDelay:      time.Millisecond,
		TurnTimeLimit:      time.Hour,
		SameRankWindow:     time.Hour,
		SpecialWindow:      time.Hour,
		PeekRevealDelay:    time.Hour,
	}
}

func fastOptions() recall.Options {
	return recall.Options{
		InitialPeekTimeout: 50 * time.Millisecond,
		PostPeekDelay:      time.Millisecond,
		TurnTimeLimit:      50 * time.Millisecond,
		SameRankWindow:     5 * time.Millisecond,
		SpecialWindow:      5 * time.Millisecond,
		PeekRevealDelay:    time.Millisecond,
	}
}

// instantDecider never waits and calls recall as soon as it is allowed to
func instantDecider(t *testing.T) recall.Decider {
	cfg := ai.DefaultConfig()
	for d, tuning := range cfg.Difficulties {
		tuning.ThinkMin = 0
		tuning.ThinkMax = 0
		tuning.RecallThreshold = 100
		cfg.Difficulties[d] = tuning
	}

	e, err := ai.NewEngine(testLogger(), cfg, rng.NewSeeded(3))
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	return e
}

type testRecorder struct {
	mu      sync.Mutex
	results []*recall.Result
}

func (r *testRecorder) RecordMatch(_ context.Context, result *recall.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, result)
	return nil
}

func (r *testRecorder) Results() []*recall.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*recall.Result{}, r.results...)
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	if opts.Round.InitialPeekTimeout == 0 {
		opts.Round = slowOptions()
	}

	if opts.Decider == nil {
		opts.Decider = instantDecider(t)
	}

	if opts.Sink == nil {
		opts.Sink = statesink.NewMemory()
	}

	e, err := NewEngine(testLogger(), opts)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	t.Cleanup(e.Shutdown)
	return e
}

func boolPtr(b bool) *bool {
	return &b
}

func humans(ids ...string) []recall.PlayerSpec {
	specs := make([]recall.PlayerSpec, len(ids))
	for i, id := range ids {
		specs[i] = recall.PlayerSpec{ID: id, DisplayName: "Player " + id, IsHuman: true}
	}

	return specs
}

func handIDs(t *testing.T, m *Match, playerID string) []string {
	view, err := m.View(playerID)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	for _, p := range view.Players {
		if p.ID == playerID {
			ids := make([]string, len(p.Hand))
			for i, c := range p.Hand {
				ids[i] = c.ID
			}

			return ids
		}
	}

	t.Fatalf("no player %s", playerID)
	return nil
}

// waitForEvent returns the first event of the kind received on ch
func waitForEvent(t *testing.T, ch <-chan statesink.Message, kind string) *statesink.Event {
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				t.Fatalf("subscription closed before %s", kind)
			}

			if msg.Kind == statesink.MessageEvent && msg.Event.Kind == kind {
				return msg.Event
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", kind)
			return nil
		}
	}
}
