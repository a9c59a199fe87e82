package ai

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"recall-server/internal/rng"
	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

type fixture struct {
	t     *testing.T
	state *recall.GameState
	ai    *recall.Player
	human *recall.Player
}

// newFixture returns a state where the computer player holds 5h (unknown), 1s (collection),
// 13c and 11c (known) and has drawn 9d
func newFixture(t *testing.T) *fixture {
	f, err := deck.NewFactory(deck.DefaultConfig())
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	cards, err := f.BuildDeck("m1", false)
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	ai := recall.NewPlayer(recall.PlayerSpec{ID: "ai", Difficulty: recall.DifficultyEasy})
	human := recall.NewPlayer(recall.PlayerSpec{ID: "h", IsHuman: true})
	state := recall.NewGameState("m1", []*recall.Player{ai, human}, cards)
	fx := &fixture{t: t, state: state, ai: ai, human: human}

	ai.Hand = deck.Hand{fx.card("5h").FaceDown(), fx.card("1s").FaceDown(), fx.card("13c").FaceDown(), fx.card("11c").FaceDown()}
	ai.CollectionRank = deck.Ace
	ai.CollectionRankCards = []*deck.Card{fx.card("1s")}
	ai.Learn("ai", fx.card("13c"))
	ai.Learn("ai", fx.card("11c"))
	ai.DrawnCard = fx.card("9d")

	human.Hand = deck.Hand{fx.card("2h").FaceDown(), fx.card("3h").FaceDown(), fx.card("4h").FaceDown(), fx.card("6h").FaceDown()}
	human.CollectionRank = deck.Rank(2)
	human.CollectionRankCards = []*deck.Card{fx.card("2h")}

	state.Phase = recall.PhasePlayerTurn
	state.TurnNumber = 1
	state.DiscardPile = []*deck.Card{fx.card("7c")}

	return fx
}

// card returns the full card in the format of 5h
func (fx *fixture) card(s string) *deck.Card {
	want := deck.CardFromString(s)
	for _, c := range fx.state.OriginalDeck {
		if c.Rank == want.Rank && c.Suit == want.Suit {
			return c.FaceUp()
		}
	}

	fx.t.Fatalf("no card %s", s)
	return nil
}

func (fx *fixture) context(optimal, mistake bool) *Context {
	gen := rng.NewSeeded(7)
	ctx := NewContext(fx.state, fx.ai, DefaultConfig().Difficulties[recall.DifficultyEasy], gen.Intn)
	ctx.optimal = optimal
	ctx.mistake = mistake
	return ctx
}

// fixedConfig returns the default config with every tier tuned to the given probabilities and no think delay
func fixedConfig(t Tuning) Config {
	cfg := DefaultConfig()
	for _, d := range recall.Difficulties {
		cfg.Difficulties[d] = t
	}

	return cfg
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	e, err := NewEngine(testLogger(), cfg, rng.NewSeeded(3))
	if !assert.NoError(t, err) {
		t.FailNow()
	}

	return e
}
