package adminapi

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-driven configuration surface, so deployments of
// the dashboard can tune the client without code changes.
type Config struct {
	BaseURL      string        `env:"ADMIN_API_BASE_URL"`
	Timeout      time.Duration `env:"ADMIN_API_TIMEOUT" envDefault:"30s"`
	CacheEnabled bool          `env:"ADMIN_API_CACHE_ENABLED" envDefault:"true"`
	CacheTTL     time.Duration `env:"ADMIN_API_CACHE_TTL" envDefault:"5m"`
	MaxRetries   int           `env:"ADMIN_API_MAX_RETRIES" envDefault:"3"`
	InitialDelay time.Duration `env:"ADMIN_API_RETRY_INITIAL_DELAY" envDefault:"1s"`
	MaxDelay     time.Duration `env:"ADMIN_API_RETRY_MAX_DELAY" envDefault:"10s"`
	Debug        bool          `env:"ADMIN_API_DEBUG" envDefault:"false"`
}

// ConfigFromEnv reads configuration from environment variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("adminapi: parse config: %w", err)
	}
	return cfg, nil
}

// Options converts the config into construction options for New.
func (cfg Config) Options() []Option {
	opts := []Option{
		WithTimeout(cfg.Timeout),
		WithCacheConfig(CacheConfig{Enabled: cfg.CacheEnabled, TTL: cfg.CacheTTL}),
		WithRetryConfig(RetryConfig{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.InitialDelay,
			MaxDelay:     cfg.MaxDelay,
		}),
	}
	if cfg.Debug {
		opts = append(opts, WithDebug())
	}
	return opts
}
