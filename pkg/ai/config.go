package ai

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"recall-server/pkg/deck"
	"recall-server/pkg/recall"
)

// Tuning is the probability table of a difficulty tier
type Tuning struct {
	DrawFromDiscard float64 `yaml:"drawFromDiscard" json:"drawFromDiscard"`
	AttemptSameRank float64 `yaml:"attemptSameRank" json:"attemptSameRank"`
	WrongSameRank   float64 `yaml:"wrongSameRank" json:"wrongSameRank"`
	PlayOptimally   float64 `yaml:"playOptimally" json:"playOptimally"`
	// RecallThreshold is the highest known hand total the player calls recall with, 0 never calls
	RecallThreshold int           `yaml:"recallThreshold" json:"recallThreshold"`
	ThinkMin        time.Duration `yaml:"thinkMin" json:"thinkMin"`
	ThinkMax        time.Duration `yaml:"thinkMax" json:"thinkMax"`
}

// Filter decides whether a rule applies
type Filter struct {
	RequireOptimal bool `yaml:"requireOptimal,omitempty" json:"requireOptimal,omitempty"`
	RequireMistake bool `yaml:"requireMistake,omitempty" json:"requireMistake,omitempty"`
	// NonEmpty names a candidate set that must have at least one card
	NonEmpty string `yaml:"nonEmpty,omitempty" json:"nonEmpty,omitempty"`
}

// Selection picks a card from a candidate set
type Selection struct {
	From         string      `yaml:"from" json:"from"`
	Policy       string      `yaml:"policy" json:"policy"`
	ExcludeRanks []deck.Rank `yaml:"excludeRanks,omitempty" json:"excludeRanks,omitempty"`
}

// Rule is a named filter and selection
type Rule struct {
	Name      string    `yaml:"name" json:"name"`
	Filter    Filter    `yaml:"filter" json:"filter"`
	Selection Selection `yaml:"selection" json:"selection"`
}

// Candidate sets
const (
	SetAvailable  = "available"
	SetPlayable   = "playable"
	SetKnown      = "known"
	SetUnknown    = "unknown"
	SetMatching   = "matching"
	SetMismatched = "mismatched"
)

// Selection policies
const (
	PolicyRandom        = "random"
	PolicyHighestPoints = "highest_points"
	PolicyLowestPoints  = "lowest_points"
)

// Special policies
const (
	SpecialDecline = "decline"
	SpecialPeekOwn = "peek_own"
)

// Config is the AI configuration
type Config struct {
	Difficulties  map[recall.Difficulty]Tuning `yaml:"difficulties" json:"difficulties"`
	Rules         map[recall.EventKind][]Rule  `yaml:"rules" json:"rules"`
	SpecialPolicy string                       `yaml:"specialPolicy" json:"specialPolicy"`
}

// DefaultConfig returns the built-in difficulty table and rules
func DefaultConfig() Config {
	return Config{
		Difficulties: map[recall.Difficulty]Tuning{
			recall.DifficultyEasy: {
				DrawFromDiscard: 0.2,
				AttemptSameRank: 0.3,
				WrongSameRank:   0.3,
				PlayOptimally:   0.5,
				ThinkMin:        time.Second,
				ThinkMax:        2500 * time.Millisecond,
			},
			recall.DifficultyMedium: {
				DrawFromDiscard: 0.35,
				AttemptSameRank: 0.5,
				WrongSameRank:   0.15,
				PlayOptimally:   0.7,
				RecallThreshold: 4,
				ThinkMin:        800 * time.Millisecond,
				ThinkMax:        2 * time.Second,
			},
			recall.DifficultyHard: {
				DrawFromDiscard: 0.5,
				AttemptSameRank: 0.7,
				WrongSameRank:   0.05,
				PlayOptimally:   0.85,
				RecallThreshold: 6,
				ThinkMin:        500 * time.Millisecond,
				ThinkMax:        1500 * time.Millisecond,
			},
			recall.DifficultyExpert: {
				DrawFromDiscard: 0.6,
				AttemptSameRank: 0.9,
				WrongSameRank:   0.01,
				PlayOptimally:   0.95,
				RecallThreshold: 8,
				ThinkMin:        300 * time.Millisecond,
				ThinkMax:        time.Second,
			},
		},
		Rules: map[recall.EventKind][]Rule{
			recall.EventPlayCard: {
				{
					Name:      "discard_unknown_card",
					Filter:    Filter{RequireOptimal: true, NonEmpty: SetUnknown},
					Selection: Selection{From: SetUnknown, Policy: PolicyRandom},
				},
				{
					Name:      "dump_highest_known",
					Filter:    Filter{RequireOptimal: true, NonEmpty: SetKnown},
					Selection: Selection{From: SetKnown, Policy: PolicyHighestPoints, ExcludeRanks: []deck.Rank{deck.Jack}},
				},
				{
					Name:      "random_legal_card",
					Selection: Selection{From: SetPlayable, Policy: PolicyRandom},
				},
			},
			recall.EventSameRankPlay: {
				{
					Name:      "wrong_card",
					Filter:    Filter{RequireMistake: true, NonEmpty: SetMismatched},
					Selection: Selection{From: SetMismatched, Policy: PolicyRandom},
				},
				{
					Name:      "matching_card",
					Filter:    Filter{NonEmpty: SetMatching},
					Selection: Selection{From: SetMatching, Policy: PolicyHighestPoints},
				},
			},
		},
		SpecialPolicy: SpecialDecline,
	}
}

// LoadConfig reads and validates a YAML AI configuration
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read ai config: %w", err)
	}

	return ParseConfig(b)
}

// ParseConfig parses and validates a YAML AI configuration
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse ai config: %w", err)
	}

	if cfg.SpecialPolicy == "" {
		cfg.SpecialPolicy = SpecialDecline
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigWithFallback loads the configuration at path, or returns DefaultConfig
func LoadConfigWithFallback(logger logrus.FieldLogger, path string) Config {
	if path == "" {
		return DefaultConfig()
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		logger.WithError(err).WithField("path", path).Warn("could not load ai config, using defaults")
		return DefaultConfig()
	}

	return cfg
}

var validSets = map[string]bool{
	SetAvailable:  true,
	SetPlayable:   true,
	SetKnown:      true,
	SetUnknown:    true,
	SetMatching:   true,
	SetMismatched: true,
}

// Validate checks the probabilities and rules
// Rules may only rank or exclude cards whose identity the player knows
func (c Config) Validate() error {
	if len(c.Difficulties) == 0 {
		return fmt.Errorf("ai config requires at least one difficulty")
	}

	for d, t := range c.Difficulties {
		for name, p := range map[string]float64{
			"drawFromDiscard": t.DrawFromDiscard,
			"attemptSameRank": t.AttemptSameRank,
			"wrongSameRank":   t.WrongSameRank,
			"playOptimally":   t.PlayOptimally,
		} {
			if p < 0 || p > 1 {
				return fmt.Errorf("%s: %s must be between 0 and 1", d, name)
			}
		}

		if t.ThinkMin < 0 || t.ThinkMax < t.ThinkMin {
			return fmt.Errorf("%s: invalid think range %s-%s", d, t.ThinkMin, t.ThinkMax)
		}
	}

	for kind, rules := range c.Rules {
		for _, r := range rules {
			if r.Name == "" {
				return fmt.Errorf("%s: rule without a name", kind)
			}

			if !validSets[r.Selection.From] {
				return fmt.Errorf("%s/%s: unknown set %q", kind, r.Name, r.Selection.From)
			}

			if r.Filter.NonEmpty != "" && !validSets[r.Filter.NonEmpty] {
				return fmt.Errorf("%s/%s: unknown set %q", kind, r.Name, r.Filter.NonEmpty)
			}

			switch r.Selection.Policy {
			case PolicyRandom:
			case PolicyHighestPoints, PolicyLowestPoints:
				if hidesIdentity(r.Selection.From) {
					return fmt.Errorf("%s/%s: %s cannot be ranked by points", kind, r.Name, r.Selection.From)
				}
			default:
				return fmt.Errorf("%s/%s: unknown policy %q", kind, r.Name, r.Selection.Policy)
			}

			if len(r.Selection.ExcludeRanks) > 0 && hidesIdentity(r.Selection.From) {
				return fmt.Errorf("%s/%s: %s cannot exclude ranks", kind, r.Name, r.Selection.From)
			}
		}
	}

	switch c.SpecialPolicy {
	case SpecialDecline, SpecialPeekOwn:
	default:
		return fmt.Errorf("unknown special policy %q", c.SpecialPolicy)
	}

	return nil
}

// hidesIdentity returns true for candidate sets that may hold cards the player has not seen
func hidesIdentity(set string) bool {
	return set == SetUnknown || set == SetAvailable || set == SetPlayable || set == SetMismatched
}
