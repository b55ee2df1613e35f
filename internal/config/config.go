// Package config reads the runtime settings from CHESSDRILL_* environment
// variables. Command-line flags override what is loaded here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/abhisek/chessdrill/internal/spacedrep"
	"github.com/abhisek/chessdrill/internal/store"
	"github.com/abhisek/chessdrill/internal/trainer"
)

// Config holds the runtime settings.
type Config struct {
	DB       string `env:"CHESSDRILL_DB"`
	Course   string `env:"CHESSDRILL_COURSE"`
	Mode     string `env:"CHESSDRILL_MODE"`
	LogFile  string `env:"CHESSDRILL_LOG_FILE"`
	LogLevel string `env:"CHESSDRILL_LOG_LEVEL" envDefault:"info"`

	OpponentDelay   time.Duration `env:"CHESSDRILL_OPPONENT_DELAY" envDefault:"300ms"`
	LoadDelay       time.Duration `env:"CHESSDRILL_LOAD_DELAY" envDefault:"100ms"`
	CompletionPause time.Duration `env:"CHESSDRILL_COMPLETION_PAUSE" envDefault:"1500ms"`
	RelearnDelay    time.Duration `env:"CHESSDRILL_RELEARN_DELAY" envDefault:"10m"`
	MaxHintMoves    int           `env:"CHESSDRILL_MAX_HINT_MOVES" envDefault:"3"`
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MaxHintMoves < 1 {
		return Config{}, fmt.Errorf("CHESSDRILL_MAX_HINT_MOVES must be at least 1, got %d", cfg.MaxHintMoves)
	}
	for name, d := range map[string]time.Duration{
		"CHESSDRILL_OPPONENT_DELAY":   cfg.OpponentDelay,
		"CHESSDRILL_LOAD_DELAY":       cfg.LoadDelay,
		"CHESSDRILL_COMPLETION_PAUSE": cfg.CompletionPause,
		"CHESSDRILL_RELEARN_DELAY":    cfg.RelearnDelay,
	} {
		if d < 0 {
			return Config{}, fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return cfg, nil
}

// DBPath returns the configured database path or the default XDG location.
func (c Config) DBPath() (string, error) {
	if c.DB != "" {
		return c.DB, store.EnsureDir(c.DB)
	}
	return store.DefaultDBPath()
}

// Trainer returns the session pacing settings.
func (c Config) Trainer() trainer.Config {
	return trainer.Config{
		OpponentDelay:   c.OpponentDelay,
		LoadDelay:       c.LoadDelay,
		CompletionPause: c.CompletionPause,
		MaxHintMoves:    c.MaxHintMoves,
	}
}

// Scheduler returns the review scheduler options.
func (c Config) Scheduler() spacedrep.Options {
	return spacedrep.Options{RelearnDelay: c.RelearnDelay}
}
