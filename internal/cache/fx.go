package cache

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewStore picks the backend named by the engine config. The backend is
// fixed at startup; later config reloads only change the TTL.
func NewStore[V any](lc fx.Lifecycle, cfg config.Config, engine *config.EngineConfigHolder, log *zap.Logger, prefix string) (Store[V], error) {
	log = log.Named("cache")
	backend := engine.Get().ReportCache.Backend

	switch backend {
	case config.CacheBackendNone:
		log.Info("report cache disabled")
		return NoopStore[V]{}, nil
	case config.CacheBackendMemory, "":
		log.Info("report cache in memory")
		return NewMemoryStore[V](), nil
	case config.CacheBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("report cache redis addr is required")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := client.Ping(ctx).Err(); err != nil {
					log.Warn("report cache redis unreachable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
				}
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		log.Info("report cache in redis", zap.String("addr", cfg.RedisAddr))
		return NewRedisStore[V](client, prefix), nil
	default:
		return nil, fmt.Errorf("unsupported report cache backend %q", backend)
	}
}
