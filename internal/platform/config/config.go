// Package config loads process-level configuration from the environment.
//
// Per-call parameters (animal list, date range, verbose and save flags)
// are deliberately not configuration: they are passed as function
// arguments to the summary API. Only connection and cache-location
// concerns live here.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"local"`
	LabDSN    string `env:"LAB_DSN,required"`
	CachePath string `env:"CACHE_PATH" envDefault:"./daily_summary.db"`
	Verbose   bool   `env:"VERBOSE" envDefault:"false"`

	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"4"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
