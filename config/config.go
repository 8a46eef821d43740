// Package config loads runtime configuration from the environment.
//
// A .env file in the working directory is loaded first if present (the
// deployed tool has always been configured that way), then the environment
// is parsed. P1_LIST_PATH keeps its historical name.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/warp/waitlist-engine/roster"
	"github.com/warp/waitlist-engine/vatsim"
)

type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `env:"P1_LIST_PATH, default=waitlist.db"`

	// RosterPath is the roster snapshot CSV.
	RosterPath string `env:"ROSTER_PATH, default=Data/update.csv"`

	// APIBaseURL is the external hours source.
	APIBaseURL string `env:"API_BASE_URL, default=https://api.vatsim.net"`

	// HoursStrategy selects the fetch variant: windowed or snapshot.
	HoursStrategy string `env:"HOURS_STRATEGY, default=windowed"`

	// PaceInterval is the minimum spacing between external requests.
	// 7s keeps the client under the documented 10 req/min quota.
	PaceInterval time.Duration `env:"PACE_INTERVAL, default=7s"`

	// Port is the HTTP report surface port (serve command only).
	Port int `env:"PORT, default=8080"`
}

// Load reads .env (if present) and the environment.
func Load(ctx context.Context) (*Config, error) {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if !roster.Strategy(cfg.HoursStrategy).Valid() {
		return nil, fmt.Errorf("HOURS_STRATEGY must be %q or %q, got %q",
			roster.StrategyWindowed, roster.StrategySnapshot, cfg.HoursStrategy)
	}
	if cfg.PaceInterval <= 0 {
		cfg.PaceInterval = vatsim.DefaultPaceInterval
	}
	return &cfg, nil
}

// Strategy returns the validated hours strategy.
func (c *Config) Strategy() roster.Strategy {
	return roster.Strategy(c.HoursStrategy)
}
