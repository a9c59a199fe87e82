package deck

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Factory builds decks from a configuration
type Factory struct {
	config Config
}

// NewFactory returns a factory for the configuration
func NewFactory(config Config) (*Factory, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Factory{config: config}, nil
}

// Config returns the configuration the factory builds from
func (f *Factory) Config() Config {
	return f.config
}

// CardID returns a new card ID scoped to the match
func CardID(matchID string) string {
	return fmt.Sprintf("%s-%s", matchID, uuid.New().String())
}

// BuildDeck returns the ordered, unshuffled cards for a match
// Jokers are only added when includeJokers is true and the configuration has jokers
func (f *Factory) BuildDeck(matchID string, includeJokers bool) ([]*Card, error) {
	if matchID == "" {
		return nil, fmt.Errorf("match ID is required")
	}

	cfg := f.config
	if cfg.TestingMode.Enabled {
		cards := make([]*Card, 0)
		for _, tc := range cfg.TestingMode.Cards {
			if tc.Rank == Joker && !includeJokers {
				continue
			}

			for i := 0; i < tc.Count; i++ {
				cards = append(cards, newCard(CardID(matchID), tc.Rank, tc.Suit, cfg.Points, cfg.SpecialPowers))
			}
		}

		return cards, nil
	}

	cards := make([]*Card, 0, len(cfg.Suits)*len(cfg.Ranks)+cfg.Jokers)
	for _, suit := range cfg.Suits {
		for _, rank := range cfg.Ranks {
			cards = append(cards, newCard(CardID(matchID), rank, suit, cfg.Points, cfg.SpecialPowers))
		}
	}

	if includeJokers {
		for i := 0; i < cfg.Jokers; i++ {
			cards = append(cards, newCard(CardID(matchID), Joker, JokerSuit, cfg.Points, cfg.SpecialPowers))
		}
	}

	return cards, nil
}

// MinimalDeck is the last resort deck, built without any configuration
func MinimalDeck(matchID string, includeJokers bool) []*Card {
	cards := make([]*Card, 0, 54)
	for _, suit := range []Suit{Hearts, Diamonds, Clubs, Spades} {
		for rank := Ace; rank <= King; rank++ {
			points := int(rank)
			if rank > 10 {
				points = 10
			}

			power := PowerNone
			switch rank {
			case Jack:
				power = PowerSwapCards
			case Queen:
				power = PowerPeekAtCard
			}

			cards = append(cards, &Card{
				ID:           CardID(matchID),
				Rank:         rank,
				Suit:         suit,
				Points:       points,
				SpecialPower: power,
			})
		}
	}

	if includeJokers {
		for i := 0; i < 2; i++ {
			cards = append(cards, &Card{
				ID:           CardID(matchID),
				Rank:         Joker,
				Suit:         JokerSuit,
				SpecialPower: PowerNone,
			})
		}
	}

	return cards
}

// Build is the result of BuildDeckWithFallback
type Build struct {
	Cards  []*Card
	Config Config
	// Source is which strategy produced the cards: "config", "default" or "minimal"
	Source string
}

// BuildDeckWithFallback builds a deck from the config file at path
// If that fails it falls back to the default in-memory configuration and then to MinimalDeck
// so that match creation never fails because of configuration
func BuildDeckWithFallback(logger logrus.FieldLogger, matchID, path string, includeJokers bool) Build {
	log := logger.WithField("matchId", matchID)

	if path != "" {
		cards, cfg, err := buildFromFile(matchID, path, includeJokers)
		if err == nil {
			return Build{Cards: cards, Config: cfg, Source: "config"}
		}

		log.WithError(err).WithField("path", path).Warn("could not build deck from config, using default deck config")
	}

	cfg := DefaultConfig()
	f, err := NewFactory(cfg)
	if err == nil {
		var cards []*Card
		if cards, err = f.BuildDeck(matchID, includeJokers); err == nil {
			return Build{Cards: cards, Config: cfg, Source: "default"}
		}
	}

	log.WithError(err).Error("could not build default deck, using minimal deck")
	return Build{
		Cards:  MinimalDeck(matchID, includeJokers),
		Config: cfg,
		Source: "minimal",
	}
}

func buildFromFile(matchID, path string, includeJokers bool) ([]*Card, Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, Config{}, err
	}

	f, err := NewFactory(cfg)
	if err != nil {
		return nil, Config{}, err
	}

	cards, err := f.BuildDeck(matchID, includeJokers)
	if err != nil {
		return nil, Config{}, err
	}

	return cards, cfg, nil
}
