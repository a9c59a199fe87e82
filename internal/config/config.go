package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"recall-server/internal/util"
	"recall-server/pkg/recall"
)

const defaultConfigFile = "config.yaml"

// Config provides configuration for the Recall server
type Config struct {
	loaded bool

	Addr string `yaml:"addr" envconfig:"addr"`
	Log  struct {
		Level             string `yaml:"level" envconfig:"level"`
		Format            string `yaml:"format" envconfig:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`

	DeckConfigPath    string            `yaml:"deckConfigPath" envconfig:"deck_config_path"`
	AIConfigPath      string            `yaml:"aiConfigPath" envconfig:"ai_config_path"`
	DefaultDifficulty recall.Difficulty `yaml:"defaultDifficulty" envconfig:"default_difficulty"`
	IncludeJokers     bool              `yaml:"includeJokers" envconfig:"include_jokers"`
	Timings           Timings           `yaml:"timings"`

	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Redis          struct {
		Addr     string `yaml:"addr" envconfig:"addr"`
		Password string `yaml:"password" envconfig:"password"`
	} `yaml:"redis"`
	NATS struct {
		URL string `yaml:"url" envconfig:"url"`
	} `yaml:"nats"`
	JWT struct {
		Secret string        `yaml:"secret" envconfig:"secret"`
		TTL    time.Duration `yaml:"ttl" envconfig:"ttl"`
	} `yaml:"jwt"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
}

// Timings are the round timers
type Timings struct {
	InitialPeekTimeout time.Duration `yaml:"initialPeekTimeout" envconfig:"initial_peek_timeout"`
	PostPeekDelay      time.Duration `yaml:"postPeekDelay" envconfig:"post_peek_delay"`
	TurnTimeLimit      time.Duration `yaml:"turnTimeLimit" envconfig:"turn_time_limit"`
	SameRankWindow     time.Duration `yaml:"sameRankWindow" envconfig:"same_rank_window"`
	SpecialWindow      time.Duration `yaml:"specialWindow" envconfig:"special_window"`
	PeekRevealDelay    time.Duration `yaml:"peekRevealDelay" envconfig:"peek_reveal_delay"`
}

// RoundOptions returns the round options for the timings
func (t Timings) RoundOptions() recall.Options {
	return recall.Options{
		InitialPeekTimeout: t.InitialPeekTimeout,
		PostPeekDelay:      t.PostPeekDelay,
		TurnTimeLimit:      t.TurnTimeLimit,
		SameRankWindow:     t.SameRankWindow,
		SpecialWindow:      t.SpecialWindow,
		PeekRevealDelay:    t.PeekRevealDelay,
	}
}

var (
	config Config
	mu     sync.Mutex
)

// DefaultConfig returns the configuration used when nothing is configured
func DefaultConfig() Config {
	opts := recall.DefaultOptions()

	var cfg Config
	cfg.Addr = ":5000"
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.DefaultDifficulty = recall.DifficultyMedium
	cfg.IncludeJokers = true
	cfg.Timings = Timings{
		InitialPeekTimeout: opts.InitialPeekTimeout,
		PostPeekDelay:      opts.PostPeekDelay,
		TurnTimeLimit:      opts.TurnTimeLimit,
		SameRankWindow:     opts.SameRankWindow,
		SpecialWindow:      opts.SpecialWindow,
		PeekRevealDelay:    opts.PeekRevealDelay,
	}
	cfg.MigrationsPath = "./sql"
	cfg.JWT.TTL = 24 * time.Hour
	cfg.CORS.AllowedOrigins = []string{"*"}

	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	mu.Lock()
	loaded := config.loaded
	mu.Unlock()

	if !loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	return config
}

// Load will load the configuration
// The file named by RECALL_CONFIG_FILE is read over the defaults, then environment variables
// prefixed with RECALL_ are applied. A missing config.yaml is not an error.
func Load() error {
	cfg, err := load(util.Getenv("RECALL_CONFIG_FILE", defaultConfigFile))
	if err != nil {
		return err
	}

	mu.Lock()
	config = cfg
	mu.Unlock()

	return nil
}

func load(configFile string) (Config, error) {
	cfg := DefaultConfig()

	file, err := os.Open(configFile)
	switch {
	case err == nil:
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist) && configFile == defaultConfigFile:
	default:
		return Config{}, err
	}

	if err := envconfig.Process("recall", &cfg); err != nil {
		return Config{}, err
	}

	if _, ok := recall.ParseDifficulty(string(cfg.DefaultDifficulty)); !ok {
		return Config{}, fmt.Errorf("unknown default difficulty: %s", cfg.DefaultDifficulty)
	}

	cfg.loaded = true
	return cfg, nil
}
