package ai

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"recall-server/internal/rng"
	"recall-server/pkg/recall"
)

// ErrUnknownDifficulty is returned when neither the difficulty nor the medium fallback is configured
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ErrUnsupportedEvent is returned for event kinds computer players never decide
var ErrUnsupportedEvent = errors.New("no decision for event")

// ErrNothingToPlay is returned when a play is requested without a drawn card
var ErrNothingToPlay = errors.New("nothing to play")

// Engine makes decisions for computer players
// An Engine is safe for concurrent use by many matches
type Engine struct {
	logger  logrus.FieldLogger
	config  Config
	special SpecialPolicy

	mu  sync.Mutex
	gen rng.Generator
}

var _ recall.Decider = (*Engine)(nil)

// NewEngine returns an engine for the configuration
func NewEngine(logger logrus.FieldLogger, cfg Config, gen rng.Generator) (*Engine, error) {
	if cfg.SpecialPolicy == "" {
		cfg.SpecialPolicy = SpecialDecline
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if gen == nil {
		gen = rng.NewSeeded(0)
	}

	return &Engine{
		logger:  logger.WithField("component", "ai"),
		config:  cfg,
		special: NewSpecialPolicy(cfg.SpecialPolicy),
		gen:     gen,
	}, nil
}

// Config returns the engine's configuration
func (e *Engine) Config() Config {
	return e.config
}

// WithSpecialPolicy replaces the special power policy
func (e *Engine) WithSpecialPolicy(p SpecialPolicy) *Engine {
	e.special = p
	return e
}

func (e *Engine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.gen.Intn(n)
}

func (e *Engine) chance(p float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return rng.Chance(e.gen, p)
}

// tuning returns the difficulty's table, falling back to medium
func (e *Engine) tuning(d recall.Difficulty) (Tuning, error) {
	if t, ok := e.config.Difficulties[d]; ok {
		return t, nil
	}

	if t, ok := e.config.Difficulties[recall.DifficultyMedium]; ok {
		e.logger.WithField("difficulty", d).Warn("unknown difficulty, using medium")
		return t, nil
	}

	return Tuning{}, fmt.Errorf("%w: %s", ErrUnknownDifficulty, d)
}

// ThinkingDelay returns a random delay within the difficulty's think range
func (e *Engine) ThinkingDelay(d recall.Difficulty) time.Duration {
	t, err := e.tuning(d)
	if err != nil || t.ThinkMax <= t.ThinkMin {
		return t.ThinkMin
	}

	spread := int(t.ThinkMax - t.ThinkMin)
	return t.ThinkMin + time.Duration(e.intn(spread))
}

// Decide returns the computer player's decision for the event
func (e *Engine) Decide(difficulty recall.Difficulty, state *recall.GameState, playerID string, kind recall.EventKind) (recall.Decision, error) {
	t, err := e.tuning(difficulty)
	if err != nil {
		return recall.Decision{}, err
	}

	p, ok := state.PlayerByID(playerID)
	if !ok {
		return recall.Decision{}, recall.ErrPlayerNotFound
	}

	ctx := NewContext(state, p, t, e.intn)

	var d recall.Decision
	switch kind {
	case recall.EventCompletedInitialPeek:
		d = e.initialPeek(ctx)
	case recall.EventDrawCard:
		d = e.draw(ctx)
	case recall.EventPlayCard:
		d, err = e.play(ctx)
	case recall.EventSameRankPlay:
		d = e.sameRank(ctx)
	case recall.EventJackSwap:
		d = e.special.Swap(ctx)
	case recall.EventQueenPeek:
		d = e.special.Peek(ctx)
	case recall.EventCollectFromDiscard:
		d = e.collect(ctx)
	default:
		return recall.Decision{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, kind)
	}

	if err != nil {
		return recall.Decision{}, err
	}

	e.logger.WithFields(logrus.Fields{
		"matchId":    state.MatchID,
		"playerId":   playerID,
		"difficulty": difficulty,
		"event":      kind,
		"act":        d.Act,
		"reason":     d.Reason,
	}).Debug("decision")

	return d, nil
}

// initialPeek looks at two random hand cards
func (e *Engine) initialPeek(ctx *Context) recall.Decision {
	ids := ctx.Player.Hand.IDs()
	for i := len(ids) - 1; i > 0; i-- {
		j := ctx.intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}

	if len(ids) > 2 {
		ids = ids[:2]
	}

	return recall.Decision{Kind: recall.EventCompletedInitialPeek, Act: true, CardIDs: ids, Reason: "random"}
}

func (e *Engine) draw(ctx *Context) recall.Decision {
	st := ctx.State
	if st.RecallCallerID == "" && ctx.Tuning.RecallThreshold > 0 && st.TurnNumber > len(st.Players) {
		if score, complete := ctx.KnownScore(); complete && score <= ctx.Tuning.RecallThreshold {
			return recall.Decision{Kind: recall.EventDrawCard, CallRecall: true, Reason: fmt.Sprintf("known score %d", score)}
		}
	}

	if top := st.TopDiscard(); top != nil && e.chance(ctx.Tuning.DrawFromDiscard) {
		return recall.Decision{Kind: recall.EventDrawCard, Source: recall.SourceDiscard, Reason: "discard"}
	}

	return recall.Decision{Kind: recall.EventDrawCard, Source: recall.SourceDeck, Reason: "deck"}
}

func (e *Engine) play(ctx *Context) (recall.Decision, error) {
	if ctx.Player.DrawnCard == nil {
		return recall.Decision{}, ErrNothingToPlay
	}

	ctx.optimal = e.chance(ctx.Tuning.PlayOptimally)

	m, ok := ctx.Evaluate(e.config.Rules[recall.EventPlayCard])
	if !ok {
		m = ctx.builtinPlay()
	}

	if m.Card == nil {
		return recall.Decision{}, ErrNothingToPlay
	}

	return recall.Decision{Kind: recall.EventPlayCard, Act: true, CardID: m.Card.ID, Reason: m.Rule}, nil
}

func (e *Engine) sameRank(ctx *Context) recall.Decision {
	pass := recall.Decision{Kind: recall.EventSameRankPlay, Reason: "pass"}
	if ctx.State.Phase != recall.PhaseSameRankWindow || !e.chance(ctx.Tuning.AttemptSameRank) {
		return pass
	}

	ctx.mistake = e.chance(ctx.Tuning.WrongSameRank)

	m, ok := ctx.Evaluate(e.config.Rules[recall.EventSameRankPlay])
	if !ok {
		m, ok = ctx.builtinSameRank()
	}

	if !ok {
		return pass
	}

	return recall.Decision{Kind: recall.EventSameRankPlay, Act: true, CardID: m.Card.ID, Reason: m.Rule}
}

func (e *Engine) collect(ctx *Context) recall.Decision {
	top := ctx.State.TopDiscard()
	p := ctx.Player
	if top == nil || !p.HasCollection() || top.IsJoker() || top.Rank != p.CollectionRank {
		return recall.Decision{Kind: recall.EventCollectFromDiscard, Reason: "no match"}
	}

	return recall.Decision{Kind: recall.EventCollectFromDiscard, Act: true, Reason: "matches collection rank"}
}
