package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/loan-match/backend/internal/config"
	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/observability"
	"github.com/zhouzirui/loan-match/backend/internal/repository/cache"
)

// Build assembles the configured catalog: memory or SQL, optionally behind a
// Redis (or, when Redis is not configured but a SQL backend is, in-memory) cache.
// The returned closer releases every opened resource.
func Build(ctx context.Context, cfg config.CatalogConfig, redisCfg config.RedisConfig, logger zerolog.Logger) (product.Store, func() error, error) {
	logger = observability.Component(logger, "catalog")

	if cfg.Driver == config.DriverMemory {
		logger.Info().Msg("using in-memory seed catalog")
		return product.NewMemoryStore(product.Seed()), func() error { return nil }, nil
	}

	sqlStore, err := Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := sqlStore.Migrate(ctx); err != nil {
		_ = sqlStore.Close()
		return nil, nil, err
	}

	seeded := 0
	if cfg.Seed {
		if seeded, err = sqlStore.SeedIfEmpty(ctx, product.Seed()); err != nil {
			_ = sqlStore.Close()
			return nil, nil, err
		}
	}
	logger.Info().Str("driver", cfg.Driver).Int("seeded", seeded).Msg("sql catalog ready")

	var client cache.Client
	if redisCfg.Enabled() {
		client, err = cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
			Prefix:   redisCfg.Prefix,
		})
		if err != nil {
			_ = sqlStore.Close()
			return nil, nil, fmt.Errorf("connect catalog cache: %w", err)
		}
		logger.Info().Str("addr", redisCfg.Addr).Msg("redis catalog cache enabled")
	} else {
		client = cache.NewMemoryClient(cfg.CacheTTL)
	}

	cached := NewCachedStore(sqlStore, client, cfg.CacheTTL, logger)
	if seeded > 0 {
		if err := cached.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("invalidate catalog cache after seeding")
		}
	}

	closer := func() error {
		return errors.Join(client.Close(), sqlStore.Close())
	}
	return cached, closer, nil
}
