package recall

import (
	"time"

	"github.com/sirupsen/logrus"

	"recall-server/internal/rng"
	"recall-server/pkg/deck"
	"recall-server/pkg/playable"
)

// MinPlayers and MaxPlayers bound the seats of a match
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// Options are the timings and deal overrides of a round
type Options struct {
	InitialPeekTimeout time.Duration `yaml:"initialPeekTimeout"`
	PostPeekDelay      time.Duration `yaml:"postPeekDelay"`
	TurnTimeLimit      time.Duration `yaml:"turnTimeLimit"`
	SameRankWindow     time.Duration `yaml:"sameRankWindow"`
	SpecialWindow      time.Duration `yaml:"specialWindow"`
	PeekRevealDelay    time.Duration `yaml:"peekRevealDelay"`

	PredefinedHands deck.PredefinedHands `yaml:"-"`
}

// DefaultOptions returns the standard timings
func DefaultOptions() Options {
	return Options{
		InitialPeekTimeout: 15 * time.Second,
		PostPeekDelay:      time.Second,
		TurnTimeLimit:      30 * time.Second,
		SameRankWindow:     5 * time.Second,
		SpecialWindow:      10 * time.Second,
		PeekRevealDelay:    3 * time.Second,
	}
}

// Dependencies are the collaborators of a round
// Scheduler is required and must run its functions on the goroutine that drives the round
type Dependencies struct {
	Scheduler Scheduler
	Callback  GameStateCallback
	Decider   Decider
	RNG       rng.Generator
	Logs      LogSink
	// OnEnd is called once with the result when the round ends
	OnEnd func(result *Result)
}

// Round is the state machine of a single match
// Round is not safe for concurrent use. Every method, including the functions passed to the
// scheduler, must be called from one goroutine at a time.
type Round struct {
	logger logrus.FieldLogger
	state  *GameState
	opts   Options

	scheduler Scheduler
	callback  GameStateCallback
	decider   Decider
	rng       rng.Generator
	logs      LogSink
	onEnd     func(result *Result)

	timers           map[int]func()
	timerSeq         int
	initialPeekTimer int
	turnTimer        int
	sameRankTimer    int
	specialTimer     int
	initialPeekDone  bool

	result   *Result
	disposed bool
}

// NewRound returns a round in the waiting_for_players phase
func NewRound(logger logrus.FieldLogger, matchID string, players []*Player, cards []*deck.Card, opts Options, deps Dependencies) (*Round, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, PlayerCountError{Min: MinPlayers, Max: MaxPlayers, Got: len(players)}
	}

	seen := make(map[string]bool)
	for _, p := range players {
		if seen[p.ID] {
			return nil, ErrDuplicatePlayer
		}

		seen[p.ID] = true
	}

	if deps.Scheduler == nil {
		return nil, ErrNoScheduler
	}

	if deps.RNG == nil {
		deps.RNG = rng.NewSeeded(0)
	}

	state := NewGameState(matchID, players, cards)
	state.TurnTimeLimit = opts.TurnTimeLimit

	if deps.Callback == nil {
		deps.Callback = &NopCallback{State: state}
	}

	return &Round{
		logger:    logger.WithField("matchId", matchID),
		state:     state,
		opts:      opts,
		scheduler: deps.Scheduler,
		callback:  deps.Callback,
		decider:   deps.Decider,
		rng:       deps.RNG,
		logs:      deps.Logs,
		onEnd:     deps.OnEnd,
		timers:    make(map[int]func()),
	}, nil
}

// State returns the live game state
func (r *Round) State() *GameState {
	return r.state
}

// Result returns the result once the round has ended, nil before
func (r *Round) Result() *Result {
	return r.result
}

// Handle applies an inbound event
// A rejected event leaves the state unchanged and is reported through OnActionError
func (r *Round) Handle(ev Event) error {
	err := r.apply(ev)
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"event":    ev.Kind(),
			"playerId": ev.Player(),
		}).Info("rejected event")

		r.callback.OnActionError(err.Error(), map[string]interface{}{
			"event":    string(ev.Kind()),
			"playerId": ev.Player(),
		})
	}

	return err
}

func (r *Round) apply(ev Event) error {
	if r.state.IsOver() {
		return ErrGameIsOver
	}

	var err error
	switch e := ev.(type) {
	case *StartMatchEvent:
		err = r.Start()
	case *CompletedInitialPeekEvent:
		err = r.CompleteInitialPeek(e.PlayerID, e.CardIDs)
	case *DrawCardEvent:
		err = r.DrawCard(e.PlayerID, e.Source)
	case *PlayCardEvent:
		err = r.PlayCard(e.PlayerID, e.CardID)
	case *SameRankPlayEvent:
		err = r.SameRankPlay(e.PlayerID, e.CardID)
	case *JackSwapEvent:
		err = r.JackSwap(e.PlayerID, e.First, e.Second)
	case *QueenPeekEvent:
		err = r.QueenPeek(e.PlayerID, e.Target)
	case *CollectFromDiscardEvent:
		err = r.CollectFromDiscard(e.PlayerID)
	case *CallRecallEvent:
		err = r.CallRecall(e.PlayerID)
	case *SkipSpecialEvent:
		err = r.SkipSpecial(e.PlayerID)
	default:
		err = ErrUnknownEvent
	}

	if err == nil {
		r.state.LastActivityTime = time.Now()
	}

	return err
}

// Start deals the cards and opens the initial peek
func (r *Round) Start() error {
	st := r.state
	if st.Phase != PhaseWaitingForPlayers {
		return ErrWrongPhase
	}

	st.Phase = PhaseDealingCards
	r.emit(KeyPhase)

	drawPile, first, err := Deal(st.Players, st.OriginalDeck, r.rng, r.opts.PredefinedHands)
	if err != nil {
		st.Phase = PhaseWaitingForPlayers
		r.emit(KeyPhase)
		return err
	}

	st.DrawPile = drawPile
	st.DiscardPile = []*deck.Card{first}
	st.GameStartTime = time.Now()
	st.LastActivityTime = st.GameStartTime
	st.Phase = PhaseInitialPeek

	r.logger.WithFields(logrus.Fields{
		"players":  len(st.Players),
		"drawPile": len(st.DrawPile),
	}).Info("dealt cards")

	r.log("", "Cards dealt, %s is face up", first)

	for _, p := range st.Players {
		r.setStatus(p, StatusInitialPeek, false, true)
	}

	r.initialPeekTimer = r.schedule(r.opts.InitialPeekTimeout, r.initialPeekTimeout)
	r.emit(KeyPhase, KeyDrawPileCount, KeyDiscardPile)
	r.callback.OnDiscardPileChanged()

	for _, p := range st.Players {
		r.promptComputer(p, EventCompletedInitialPeek)
	}

	return nil
}

// CompleteInitialPeek records the one or two cards the player looked at
// The best of them becomes the player's collection card, the other is remembered
func (r *Round) CompleteInitialPeek(playerID string, cardIDs []string) error {
	st := r.state
	if st.Phase != PhaseInitialPeek {
		return ErrWrongPhase
	}

	p, ok := st.PlayerByID(playerID)
	if !ok {
		return ErrPlayerNotFound
	}

	if p.Status != StatusInitialPeek || p.HasCompletedInitialPeek {
		return ErrInvalidStatus
	}

	if len(cardIDs) < 1 || len(cardIDs) > 2 || (len(cardIDs) == 2 && cardIDs[0] == cardIDs[1]) {
		return ErrInitialPeekSelection
	}

	cards := make([]*deck.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		if !p.Hand.HasCard(id) {
			return ErrCardNotInHand
		}

		card := r.callback.GetCardByID(st, id)
		if card == nil {
			return ErrCardNotFound
		}

		cards = append(cards, card)
	}

	collection := chooseCollectionCard(cards)
	for _, c := range cards {
		if collection == nil || c.ID != collection.ID {
			p.Learn(p.ID, c)
		}
	}

	if collection != nil {
		p.setCollection(collection)
	}

	p.HasCompletedInitialPeek = true
	r.setStatus(p, StatusWaiting, false, false)
	r.log(p.ID, "looked at %d cards", len(cards))

	if r.allPeeked() {
		r.finishInitialPeek()
	}

	return nil
}

func (r *Round) allPeeked() bool {
	for _, p := range r.state.Players {
		if !p.HasCompletedInitialPeek {
			return false
		}
	}

	return true
}

// initialPeekTimeout gives every straggler one random collection card
func (r *Round) initialPeekTimeout() {
	if r.initialPeekDone || r.state.Phase != PhaseInitialPeek {
		return
	}

	for _, p := range r.state.Players {
		if p.HasCompletedInitialPeek {
			continue
		}

		candidates := make([]*deck.Card, 0, len(p.Hand))
		for _, c := range p.Hand.Cards() {
			if full := r.state.Index.Resolve(c); full != nil && !full.IsJoker() {
				candidates = append(candidates, full)
			}
		}

		if len(candidates) > 0 {
			p.setCollection(candidates[r.rng.Intn(len(candidates))])
		}

		p.HasCompletedInitialPeek = true
		r.setStatus(p, StatusWaiting, false, false)
		r.log(p.ID, "ran out of time to peek")
	}

	r.finishInitialPeek()
}

func (r *Round) finishInitialPeek() {
	if r.initialPeekDone {
		return
	}

	r.initialPeekDone = true
	r.cancelTimer(&r.initialPeekTimer)
	r.emit(KeyPhase)

	r.schedule(r.opts.PostPeekDelay, func() {
		r.startTurn(0)
	})
}

// SetConnected records a human player's connection state
func (r *Round) SetConnected(playerID string, connected bool) {
	p, ok := r.state.PlayerByID(playerID)
	if !ok || p.Connected == connected {
		return
	}

	p.Connected = connected
	status := p.Status
	if !connected {
		status = StatusDisconnected
	}

	r.callback.OnPlayerStatusChanged(status, p.ID, true, false)
}

// Dispose cancels every pending timer
// Nothing scheduled by the round runs after Dispose
func (r *Round) Dispose() {
	r.disposed = true
	r.cancelAll()
}

// schedule runs fn after d unless the timer is cancelled first
func (r *Round) schedule(d time.Duration, fn func()) int {
	r.timerSeq++
	id := r.timerSeq

	r.timers[id] = r.scheduler.AfterFunc(d, func() {
		if _, ok := r.timers[id]; !ok || r.disposed {
			return
		}

		delete(r.timers, id)
		fn()
	})

	return id
}

func (r *Round) cancelTimer(id *int) {
	if cancel, ok := r.timers[*id]; ok {
		cancel()
		delete(r.timers, *id)
	}

	*id = 0
}

func (r *Round) cancelAll() {
	for id, cancel := range r.timers {
		cancel()
		delete(r.timers, id)
	}

	r.initialPeekTimer = 0
	r.turnTimer = 0
	r.sameRankTimer = 0
	r.specialTimer = 0
}

// promptComputer asks the decider for the computer player's move after its thinking delay
func (r *Round) promptComputer(p *Player, kind EventKind) {
	if p.IsHuman || r.decider == nil {
		return
	}

	playerID := p.ID
	r.schedule(r.decider.ThinkingDelay(p.Difficulty), func() {
		r.runComputer(playerID, kind)
	})
}

func (r *Round) runComputer(playerID string, kind EventKind) {
	p, ok := r.state.PlayerByID(playerID)
	if !ok || r.state.IsOver() {
		return
	}

	log := r.logger.WithFields(logrus.Fields{
		"playerId": playerID,
		"event":    kind,
	})

	d, err := r.decider.Decide(p.Difficulty, r.state, playerID, kind)
	if err != nil {
		log.WithError(err).Warn("computer player could not decide")
		return
	}

	ev := d.Event(playerID)
	if ev == nil {
		return
	}

	if err := r.apply(ev); err != nil {
		log.WithError(err).WithField("reason", d.Reason).Debug("computer action rejected")
	}
}

func (r *Round) setStatus(p *Player, status PlayerStatus, updateMainState, triggerInstructions bool) {
	p.Status = status
	r.callback.OnPlayerStatusChanged(status, p.ID, updateMainState, triggerInstructions && p.IsHuman)
}

func (r *Round) emit(keys ...StateKey) {
	r.callback.OnGameStateChanged(r.update(keys...))
}

func (r *Round) update(keys ...StateKey) StateUpdate {
	st := r.state
	u := make(StateUpdate, len(keys))
	for _, k := range keys {
		switch k {
		case KeyPhase:
			u[k] = st.Phase
		case KeyCurrentPlayer:
			if cp := st.CurrentPlayer(); cp != nil {
				u[k] = cp.ID
			}
		case KeyTurnNumber:
			u[k] = st.TurnNumber
		case KeyDrawPileCount:
			u[k] = len(st.DrawPile)
		case KeyDiscardPile:
			pile := make([]*deck.Card, len(st.DiscardPile))
			for i, c := range st.DiscardPile {
				pile[i] = c.FaceUp()
			}
			u[k] = pile
		case KeyRecallCalledBy:
			u[k] = st.RecallCallerID
		case KeyWinners:
			u[k] = append([]string{}, st.Winners...)
		case KeySameRankRank:
			u[k] = st.SameRankRank.String()
		case KeyActiveSpecial:
			if st.ActiveSpecial != nil {
				as := *st.ActiveSpecial
				u[k] = &as
			} else {
				u[k] = nil
			}
		case KeyGameEnded:
			u[k] = st.IsOver()
		case KeyResult:
			u[k] = r.result
		}
	}

	return u
}

func (r *Round) log(playerID string, format string, a ...interface{}) {
	if r.logs == nil {
		return
	}

	r.logs(playable.SimpleLogMessageSlice(playerID, format, a...))
}
