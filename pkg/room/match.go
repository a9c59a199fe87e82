package room

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
	"recall-server/pkg/statesink"
)

const (
	runLoopBuffer = 256
	outboxBuffer  = 256
	sinkTimeout   = 5 * time.Second
)

// Recorder stores finished matches
type Recorder interface {
	RecordMatch(ctx context.Context, result *recall.Result) error
}

type sinkOp struct {
	name string
	fn   func(ctx context.Context) error
}

// Match runs one round on its own goroutine
// Inbound events and timer callbacks are executed one at a time on the run loop
type Match struct {
	id       string
	engine   *Engine
	logger   logrus.FieldLogger
	round    *recall.Round
	callback *callback
	sink     statesink.Sink
	recorder Recorder

	clients map[*Client]bool
	lock    sync.RWMutex

	snapshot atomic.Pointer[recall.Snapshot]
	result   atomic.Pointer[recall.Result]

	// only touched from the run loop
	logMessages  []*playable.LogMessage
	stateChanged bool

	execInRunLoop chan func()
	outbox        chan sinkOp
	close         chan bool
	done          chan bool
	drained       chan bool
	endShift      sync.Once
}

func newMatch(e *Engine, id string) *Match {
	m := &Match{
		id:            id,
		engine:        e,
		logger:        e.logger.WithField("matchId", id),
		sink:          e.sink,
		recorder:      e.opts.Recorder,
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), runLoopBuffer),
		outbox:        make(chan sinkOp, outboxBuffer),
		close:         make(chan bool),
		done:          make(chan bool),
		drained:       make(chan bool),
	}

	m.callback = &callback{m: m}
	return m
}

// ID returns the match ID
func (m *Match) ID() string {
	return m.id
}

// Snapshot returns the public state as of the last processed event
func (m *Match) Snapshot() *recall.Snapshot {
	return m.snapshot.Load()
}

// Result returns the result once the match has ended
func (m *Match) Result() *recall.Result {
	return m.result.Load()
}

// IsOver returns true once the match has ended
func (m *Match) IsOver() bool {
	return m.result.Load() != nil
}

// StartShift starts the run loop
func (m *Match) StartShift() {
	go m.runLoop()
	go m.drainOutbox()
}

func (m *Match) runLoop() {
	defer close(m.done)

	m.logger.Debug("creating match run loop")
	for {
		select {
		case fn := <-m.execInRunLoop:
			m.exec(fn)
		case <-m.close:
			m.logger.Debug("terminating match run loop")
			return
		}
	}
}

func (m *Match) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("panic", r).Error("recovered panic in match run loop")
		}

		m.flush()
	}()

	fn()
}

// flush sends the game data if anything changed since the last flush
func (m *Match) flush() {
	if m.stateChanged {
		m.stateChanged = false
		m.sendGameData()
	}
}

// post queues fn on the run loop without waiting for it
// It is dropped once the match is closed
func (m *Match) post(fn func()) {
	select {
	case m.execInRunLoop <- fn:
	case <-m.close:
	}
}

// do runs fn on the run loop and waits for its error
func (m *Match) do(fn func() error) error {
	result := make(chan error, 1)
	wrapped := func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				m.logger.WithField("panic", r).Error("recovered panic in match run loop")
				err = fmt.Errorf("%w: %v", ErrPanic, r)
			}

			m.flush()
			result <- err
		}()

		err = fn()
	}

	select {
	case m.execInRunLoop <- wrapped:
	case <-m.close:
		return ErrMatchClosed
	}

	select {
	case err := <-result:
		return err
	case <-m.done:
		select {
		case err := <-result:
			return err
		default:
			return ErrMatchClosed
		}
	}
}

// Handle applies an inbound event on the run loop
func (m *Match) Handle(ev recall.Event) error {
	return m.do(func() error {
		return m.round.Handle(ev)
	})
}

// View returns the state as seen by the player
func (m *Match) View(playerID string) (*recall.Snapshot, error) {
	var view *recall.Snapshot
	err := m.do(func() error {
		if playerID != "" {
			if _, ok := m.round.State().PlayerByID(playerID); !ok {
				return recall.ErrPlayerNotFound
			}
		}

		view = m.round.State().View(playerID)
		return nil
	})

	return view, err
}

// Players returns the seats of the match
func (m *Match) Players() []recall.PlayerSpec {
	snap := m.Snapshot()
	if snap == nil {
		return nil
	}

	specs := make([]recall.PlayerSpec, len(snap.Players))
	for i, p := range snap.Players {
		specs[i] = recall.PlayerSpec{ID: p.ID, DisplayName: p.DisplayName, IsHuman: p.IsHuman, Difficulty: p.Difficulty}
	}

	return specs
}

// actionError reports an event that never reached the round
func (m *Match) actionError(err error, event, playerID string) {
	m.post(func() {
		m.callback.OnActionError(err.Error(), map[string]interface{}{
			"event":    event,
			"playerId": playerID,
		})
	})
}

// EndShift disposes the round and stops the run loop
// Pending sink updates are flushed before EndShift returns
func (m *Match) EndShift() {
	m.endShift.Do(func() {
		_ = m.do(func() error {
			m.round.Dispose()
			return nil
		})

		close(m.close)
		<-m.done

		m.lock.Lock()
		for c := range m.clients {
			c.closeWithReason("match ended")
		}
		m.clients = make(map[*Client]bool)
		m.lock.Unlock()

		close(m.outbox)
		<-m.drained
	})
}

// merge queues a state update for the sink
// Note: this must only be called from within the run loop
func (m *Match) merge(updates map[string]interface{}) {
	m.enqueue(sinkOp{name: "merge", fn: func(ctx context.Context) error {
		return m.sink.Merge(ctx, m.id, updates)
	}})
}

// publish queues an event for the sink
// Note: this must only be called from within the run loop
func (m *Match) publish(ev statesink.Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	m.enqueue(sinkOp{name: "publish", fn: func(ctx context.Context) error {
		return m.sink.Publish(ctx, m.id, ev)
	}})
}

func (m *Match) enqueue(op sinkOp) {
	select {
	case m.outbox <- op:
	default:
		m.logger.WithField("op", op.name).Warn("sink outbox is full, dropping update")
	}
}

func (m *Match) drainOutbox() {
	defer close(m.drained)

	for op := range m.outbox {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		if err := op.fn(ctx); err != nil {
			m.logger.WithError(err).WithField("op", op.name).Error("could not update state sink")
		}
		cancel()
	}
}

// ended is called from the run loop when the round ends
func (m *Match) ended(result *recall.Result) {
	m.result.Store(result)
	m.publish(statesink.Event{
		Kind:    "gameEnded",
		Message: result.Reason,
		Data: map[string]interface{}{
			"winners": result.Winners,
		},
	})

	if m.recorder == nil {
		return
	}

	m.enqueue(sinkOp{name: "record", fn: func(ctx context.Context) error {
		return m.recorder.RecordMatch(ctx, result)
	}})
}
