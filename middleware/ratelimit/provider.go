package ratelimit

import (
	"github.com/triologic/medrec/config"
	"go.uber.org/fx"
)

func ProvideRateLimitStore(cfg *config.Config) Store {
	return NewMemoryStore()
}

func ProvideMiddlewareConfig(cfg *config.Config, store Store) *Config {
	return &Config{
		Store:  store,
		Rate:   cfg.RateLimit.Rate,
		Period: cfg.RateLimit.Period,
	}
}

var Module = fx.Options(
	fx.Provide(ProvideRateLimitStore),
	fx.Provide(ProvideMiddlewareConfig),
)
