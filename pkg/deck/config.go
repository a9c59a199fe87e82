package deck

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultPoints is the standard point table
var DefaultPoints = map[Rank]int{
	Joker: 0,
	Ace:   1,
	2:     2,
	3:     3,
	4:     4,
	5:     5,
	6:     6,
	7:     7,
	8:     8,
	9:     9,
	10:    10,
	Jack:  10,
	Queen: 10,
	King:  10,
}

// DefaultSpecialPowers is the standard special power table
var DefaultSpecialPowers = map[Rank]SpecialPower{
	Jack:  PowerSwapCards,
	Queen: PowerPeekAtCard,
}

// Config declares the composition of a deck
type Config struct {
	Suits           []Suit                `yaml:"suits"`
	Ranks           []Rank                `yaml:"ranks"`
	Points          map[Rank]int          `yaml:"points"`
	SpecialPowers   map[Rank]SpecialPower `yaml:"specialPowers"`
	Jokers          int                   `yaml:"jokers"`
	TestingMode     TestingMode           `yaml:"testingMode"`
	PredefinedHands PredefinedHands       `yaml:"predefinedHands"`
}

// TestingMode replaces the suit/rank enumeration with an explicit composition
type TestingMode struct {
	Enabled bool          `yaml:"enabled"`
	Cards   []TestingCard `yaml:"cards"`
}

// TestingCard is count copies of a rank and suit
type TestingCard struct {
	Rank  Rank `yaml:"rank"`
	Suit  Suit `yaml:"suit"`
	Count int  `yaml:"count"`
}

// PredefinedHands overrides the random deal
// Hands are keyed by seat index, each card in the CardFromString format (i.e., 11c)
type PredefinedHands struct {
	Enabled      bool             `yaml:"enabled"`
	Hands        map[int][]string `yaml:"hands"`
	FirstDiscard string           `yaml:"firstDiscard"`
}

// DefaultConfig returns the standard 52 card deck plus two jokers
func DefaultConfig() Config {
	points := make(map[Rank]int, len(DefaultPoints))
	for k, v := range DefaultPoints {
		points[k] = v
	}

	powers := make(map[Rank]SpecialPower, len(DefaultSpecialPowers))
	for k, v := range DefaultSpecialPowers {
		powers[k] = v
	}

	return Config{
		Suits:         append([]Suit{}, StandardSuits...),
		Ranks:         append([]Rank{}, StandardRanks...),
		Points:        points,
		SpecialPowers: powers,
		Jokers:        2,
	}
}

// LoadConfig reads and validates a YAML deck configuration
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read deck config: %w", err)
	}

	return ParseConfig(b)
}

// ParseConfig parses and validates a YAML deck configuration
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse deck config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate ensures every rank that can be built has a point value
func (c Config) Validate() error {
	if c.TestingMode.Enabled {
		if len(c.TestingMode.Cards) == 0 {
			return errors.New("testing mode requires at least one card")
		}

		for _, tc := range c.TestingMode.Cards {
			if _, ok := c.Points[tc.Rank]; !ok {
				return fmt.Errorf("no point value for rank %s", tc.Rank)
			}

			if tc.Count <= 0 {
				return fmt.Errorf("count for %s of %s must be > 0", tc.Rank, tc.Suit)
			}

			if _, err := ParseSuit(string(tc.Suit)); err != nil {
				return err
			}
		}

		return nil
	}

	if len(c.Suits) == 0 {
		return errors.New("deck config requires at least one suit")
	}

	if len(c.Ranks) == 0 {
		return errors.New("deck config requires at least one rank")
	}

	for _, s := range c.Suits {
		if _, err := ParseSuit(string(s)); err != nil {
			return err
		}

		if s == JokerSuit {
			return errors.New("jokers are configured with the jokers count")
		}
	}

	for _, r := range c.Ranks {
		if r == Joker {
			return errors.New("jokers are configured with the jokers count")
		}

		if _, ok := c.Points[r]; !ok {
			return fmt.Errorf("no point value for rank %s", r)
		}
	}

	if c.Jokers < 0 {
		return errors.New("jokers cannot be negative")
	}

	if c.Jokers > 0 {
		if _, ok := c.Points[Joker]; !ok {
			return fmt.Errorf("no point value for rank %s", Joker)
		}
	}

	if c.PredefinedHands.Enabled {
		for seat, hand := range c.PredefinedHands.Hands {
			for _, s := range hand {
				if !cardRx.MatchString(s) {
					return fmt.Errorf("seat %d: could not parse card: %s", seat, s)
				}
			}
		}

		if fd := c.PredefinedHands.FirstDiscard; fd != "" && !cardRx.MatchString(fd) {
			return fmt.Errorf("could not parse first discard: %s", fd)
		}
	}

	return nil
}
