package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"recall-server/internal/rng"
	"recall-server/internal/util"
	"recall-server/pkg/ai"
	"recall-server/pkg/deck"
	"recall-server/pkg/playable"
	"recall-server/pkg/recall"
	"recall-server/pkg/statesink"
)

// Options configure an Engine
type Options struct {
	// DeckConfigPath is the deck YAML, the default deck is used when empty or invalid
	DeckConfigPath string
	// AIConfigPath is the AI YAML, the default rules are used when empty or invalid
	AIConfigPath string
	Round        recall.Options
	// DefaultDifficulty applies to computer players created without one
	DefaultDifficulty recall.Difficulty
	// IncludeJokers applies to matches that do not say
	IncludeJokers bool

	// Sink receives every match's state, defaults to an in-memory sink
	Sink     statesink.Sink
	Recorder Recorder
	// Decider overrides the AI engine built from AIConfigPath
	Decider recall.Decider
	// NewRNG returns the generator of a new match, defaults to a time seeded generator
	NewRNG func() rng.Generator
}

// MatchOptions describe a new match
type MatchOptions struct {
	// MatchID is generated when empty
	MatchID         string
	Players         []recall.PlayerSpec
	ComputerPlayers int
	Difficulty      recall.Difficulty
	// IncludeJokers defaults to Options.IncludeJokers when nil
	IncludeJokers *bool
}

// Engine is responsible for dispatching events to matches
type Engine struct {
	logger  logrus.FieldLogger
	opts    Options
	decider recall.Decider
	sink    statesink.Sink

	lock    sync.RWMutex
	matches map[string]*Match
	closed  bool
}

// NewEngine returns a new dispatch object
func NewEngine(logger logrus.FieldLogger, opts Options) (*Engine, error) {
	opts.Round = withDefaults(opts.Round)

	if opts.DefaultDifficulty == "" {
		opts.DefaultDifficulty = recall.DifficultyMedium
	}

	if opts.NewRNG == nil {
		opts.NewRNG = func() rng.Generator {
			return rng.NewSeeded(0)
		}
	}

	decider := opts.Decider
	if decider == nil {
		aiEngine, err := ai.NewEngine(logger, ai.LoadConfigWithFallback(logger, opts.AIConfigPath), opts.NewRNG())
		if err != nil {
			return nil, err
		}

		decider = aiEngine
	}

	sink := opts.Sink
	if sink == nil {
		sink = statesink.NewMemory()
	}

	return &Engine{
		logger:  logger.WithField("component", "engine"),
		opts:    opts,
		decider: decider,
		sink:    sink,
		matches: make(map[string]*Match),
	}, nil
}

// withDefaults fills the unset timings with the default ones
func withDefaults(o recall.Options) recall.Options {
	def := recall.DefaultOptions()
	for _, f := range []struct {
		val *time.Duration
		def time.Duration
	}{
		{&o.InitialPeekTimeout, def.InitialPeekTimeout},
		{&o.PostPeekDelay, def.PostPeekDelay},
		{&o.TurnTimeLimit, def.TurnTimeLimit},
		{&o.SameRankWindow, def.SameRankWindow},
		{&o.SpecialWindow, def.SpecialWindow},
		{&o.PeekRevealDelay, def.PeekRevealDelay},
	} {
		if *f.val <= 0 {
			*f.val = f.def
		}
	}

	return o
}

// Sink returns the state sink matches write to
func (e *Engine) Sink() statesink.Sink {
	return e.sink
}

// CreateMatch deals a new match and starts its run loop
func (e *Engine) CreateMatch(opts MatchOptions) (*Match, error) {
	matchID := opts.MatchID
	if matchID == "" {
		matchID = uuid.New().String()
	}

	if e.isClosed() {
		return nil, ErrEngineClosed
	}

	if _, exists := e.Match(matchID); exists {
		return nil, ErrMatchExists
	}

	m := newMatch(e, matchID)
	if err := e.setupMatch(m, opts); err != nil {
		if m.round != nil {
			m.EndShift()
		}

		return nil, err
	}

	e.lock.Lock()
	_, exists := e.matches[matchID]
	if exists || e.closed {
		e.lock.Unlock()
		m.EndShift()

		if exists {
			return nil, ErrMatchExists
		}

		return nil, ErrEngineClosed
	}

	e.matches[matchID] = m
	e.lock.Unlock()

	m.logger.WithField("players", len(m.Players())).Info("match started")
	return m, nil
}

func (e *Engine) setupMatch(m *Match, opts MatchOptions) error {
	gen := e.opts.NewRNG()
	players, err := e.seats(gen, opts)
	if err != nil {
		return err
	}

	includeJokers := e.opts.IncludeJokers
	if opts.IncludeJokers != nil {
		includeJokers = *opts.IncludeJokers
	}

	build := deck.BuildDeckWithFallback(m.logger, m.id, e.opts.DeckConfigPath, includeJokers)
	roundOpts := e.opts.Round
	if build.Config.PredefinedHands.Enabled {
		roundOpts.PredefinedHands = build.Config.PredefinedHands
	}

	round, err := recall.NewRound(m.logger, m.id, players, build.Cards, roundOpts, recall.Dependencies{
		Scheduler: loopScheduler{m: m},
		Callback:  m.callback,
		Decider:   e.decider,
		RNG:       gen,
		Logs:      m.addLogMessages,
		OnEnd:     m.ended,
	})
	if err != nil {
		var pce recall.PlayerCountError
		if errors.As(err, &pce) {
			return UserError(pce.Error())
		}

		return err
	}

	m.round = round
	m.snapshot.Store(round.State().Snapshot())
	m.StartShift()

	return m.do(round.Start)
}

// seats returns the players of a new match, naming the computer players
func (e *Engine) seats(gen rng.Generator, opts MatchOptions) ([]*recall.Player, error) {
	difficulty := opts.Difficulty
	if difficulty == "" {
		difficulty = e.opts.DefaultDifficulty
	}

	if _, ok := recall.ParseDifficulty(string(difficulty)); !ok {
		return nil, UserError(fmt.Sprintf("unknown difficulty: %s", difficulty))
	}

	if opts.ComputerPlayers < 0 {
		return nil, UserError("computerPlayers cannot be negative")
	}

	players := make([]*recall.Player, 0, len(opts.Players)+opts.ComputerPlayers)
	for _, spec := range opts.Players {
		if !spec.IsHuman && spec.Difficulty == "" {
			spec.Difficulty = difficulty
		}

		players = append(players, recall.NewPlayer(spec))
	}

	for _, name := range util.GetRandomNames(gen, opts.ComputerPlayers) {
		players = append(players, recall.NewPlayer(recall.PlayerSpec{
			ID:          "computer-" + util.ShortID(),
			DisplayName: name,
			Difficulty:  difficulty,
		}))
	}

	return players, nil
}

func (e *Engine) isClosed() bool {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.closed
}

// Match returns the match with the ID
func (e *Engine) Match(matchID string) (*Match, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()

	m, ok := e.matches[matchID]
	return m, ok
}

// CurrentGamesMap returns the public snapshot of every match
func (e *Engine) CurrentGamesMap() map[string]*recall.Snapshot {
	e.lock.RLock()
	defer e.lock.RUnlock()

	games := make(map[string]*recall.Snapshot, len(e.matches))
	for id, m := range e.matches {
		if snap := m.Snapshot(); snap != nil {
			games[id] = snap
		}
	}

	return games
}

// Dispatch routes an event to its match
// A start_match event creates the match instead
// false is returned when the event was rejected
func (e *Engine) Dispatch(matchID string, ev recall.Event) bool {
	return e.safeDispatch(matchID, ev) == nil
}

func (e *Engine) safeDispatch(matchID string, ev recall.Event) (err error) {
	defer e.recoverPanic(matchID, &err)
	return e.dispatch(matchID, ev)
}

// HandleNamedEvent parses the flat payload of the named event and dispatches it
func (e *Engine) HandleNamedEvent(matchID, playerID, name string, data playable.AdditionalData) bool {
	return e.Submit(matchID, playerID, name, data) == nil
}

// Submit is HandleNamedEvent, returning the reason the event was rejected
func (e *Engine) Submit(matchID, playerID, name string, data playable.AdditionalData) (err error) {
	defer e.recoverPanic(matchID, &err)

	ev, err := recall.ParseEvent(name, playerID, data)
	if err != nil {
		if m, ok := e.Match(matchID); ok {
			m.actionError(err, name, playerID)
		}

		return err
	}

	return e.dispatch(matchID, ev)
}

// SubmitFromSeat is Submit for a player bound to a seat of the match
// Seats play the match they sit in, they cannot start one
func (e *Engine) SubmitFromSeat(matchID, playerID, name string, data playable.AdditionalData) error {
	if name == string(recall.EventStartMatch) {
		if m, ok := e.Match(matchID); ok {
			m.actionError(ErrStartFromSeat, name, playerID)
		}

		return ErrStartFromSeat
	}

	return e.Submit(matchID, playerID, name, data)
}

func (e *Engine) dispatch(matchID string, ev recall.Event) error {
	if sm, ok := ev.(*recall.StartMatchEvent); ok {
		if sm.MatchID == "" {
			sm.MatchID = matchID
		}

		_, err := e.CreateMatch(MatchOptions{
			MatchID:         sm.MatchID,
			Players:         sm.Players,
			ComputerPlayers: sm.ComputerPlayers,
			Difficulty:      sm.Difficulty,
			IncludeJokers:   sm.IncludeJokers,
		})

		return err
	}

	m, ok := e.Match(matchID)
	if !ok {
		e.logger.WithFields(logrus.Fields{
			"matchId": matchID,
			"event":   ev.Kind(),
		}).Warn("event for unknown match")
		return ErrMatchNotFound
	}

	return m.Handle(ev)
}

func (e *Engine) recoverPanic(matchID string, err *error) {
	if r := recover(); r != nil {
		e.logger.WithFields(logrus.Fields{
			"matchId": matchID,
			"panic":   r,
		}).Error("recovered panic while handling event")

		*err = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}

// DisposeMatch cancels the match's timers and ends its run loop
func (e *Engine) DisposeMatch(matchID string) bool {
	e.lock.Lock()
	m, ok := e.matches[matchID]
	delete(e.matches, matchID)
	e.lock.Unlock()

	if !ok {
		return false
	}

	m.EndShift()
	m.logger.Info("match disposed")
	return true
}

// DisposeFinished disposes every match that ended before the cutoff
func (e *Engine) DisposeFinished(cutoff time.Time) int {
	ids := make([]string, 0)

	e.lock.RLock()
	for id, m := range e.matches {
		if res := m.Result(); res != nil && res.EndTime.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	e.lock.RUnlock()

	n := 0
	for _, id := range ids {
		if e.DisposeMatch(id) {
			n++
		}
	}

	return n
}

// Shutdown disposes every match
// CreateMatch fails after Shutdown
func (e *Engine) Shutdown() {
	e.lock.Lock()
	e.closed = true
	matches := make([]*Match, 0, len(e.matches))
	for _, m := range e.matches {
		matches = append(matches, m)
	}
	e.matches = make(map[string]*Match)
	e.lock.Unlock()

	var wg sync.WaitGroup
	for _, m := range matches {
		wg.Add(1)
		go func(m *Match) {
			defer wg.Done()
			m.EndShift()
		}(m)
	}

	wg.Wait()
	e.logger.WithField("matches", len(matches)).Info("engine shut down")
}
