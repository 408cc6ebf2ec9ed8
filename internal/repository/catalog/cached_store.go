package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/zhouzirui/loan-match/backend/internal/model/product"
	"github.com/zhouzirui/loan-match/backend/internal/observability"
	"github.com/zhouzirui/loan-match/backend/internal/repository/cache"
)

const listKey = "products:all"

func productKey(id string) string {
	return cache.Key("product", id)
}

// CachedStore is a read-through cache in front of another product.Store.
// Misses and cache failures fall through to the wrapped store; not-found lookups are never cached.
type CachedStore struct {
	next   product.Store
	cache  cache.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedStore decorates next with client.
func NewCachedStore(next product.Store, client cache.Client, ttl time.Duration, logger zerolog.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		cache:  client,
		ttl:    ttl,
		logger: observability.Component(logger, "catalog_cache"),
	}
}

func (s *CachedStore) List(ctx context.Context) ([]product.Product, error) {
	var items []product.Product
	if s.load(ctx, listKey, &items) {
		return items, nil
	}

	items, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, listKey, items)
	return items, nil
}

func (s *CachedStore) FindByID(ctx context.Context, id string) (product.Product, error) {
	key := productKey(id)

	var item product.Product
	if s.load(ctx, key, &item) {
		return item, nil
	}

	item, err := s.next.FindByID(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	s.store(ctx, key, item)
	return item, nil
}

// Invalidate drops the cached list and the given product entries.
func (s *CachedStore) Invalidate(ctx context.Context, ids ...string) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listKey)
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

func (s *CachedStore) load(ctx context.Context, key string, dst any) bool {
	raw, err := s.cache.Get(ctx, key)
	switch {
	case errors.Is(err, cache.ErrCacheMiss):
		observability.CatalogCache.WithLabelValues("miss").Inc()
		return false
	case err != nil:
		observability.CatalogCache.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, using store")
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		observability.CatalogCache.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return false
	}
	observability.CatalogCache.WithLabelValues("hit").Inc()
	return true
}

func (s *CachedStore) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("encode cache entry")
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
