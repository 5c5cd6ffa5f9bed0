package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Payphone-Digital/storefront/internal/constants"
	"github.com/Payphone-Digital/storefront/pkg/logger"
	"go.uber.org/zap"
)

// Cache is the JSON cache behind catalog reads. pkg/redis.Client and
// pkg/cache.Cache satisfy it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) (int, error)
	PoolStats() map[string]any
}

// Catalog cache scopes accepted by InvalidateCatalog
const (
	CacheScopeAll        = ""
	CacheScopeProducts   = "products"
	CacheScopeProduct    = "product"
	CacheScopeCategories = "categories"
)

type CacheService struct {
	cache Cache
}

// NewCacheService creates a new cache service. A nil cache disables caching.
func NewCacheService(cache Cache) *CacheService {
	return &CacheService{cache: cache}
}

// Enabled reports whether a cache backend is configured.
func (s *CacheService) Enabled() bool {
	return s != nil && s.cache != nil
}

// cachedLoad returns the value stored under key, or calls load and stores its
// result for ttl. Cache failures are logged and never fail the read.
func cachedLoad[T any](ctx context.Context, s *CacheService, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if !s.Enabled() {
		return load(ctx)
	}

	var cached T
	hit, err := s.cache.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.WarnWithContext(ctx, "Cache read failed, loading from upstream").
			String("cache_key", key).
			Err(err).
			Log()
	}
	if hit && err == nil {
		return cached, nil
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if err := s.cache.SetJSON(ctx, key, value, ttl); err != nil {
		logger.WarnWithContext(ctx, "Failed to store cache entry").
			String("cache_key", key).
			Err(err).
			Log()
	}
	return value, nil
}

// InvalidateCatalog removes cached catalog reads for one scope, or all of
// them for CacheScopeAll.
func (s *CacheService) InvalidateCatalog(ctx context.Context, scope string) (int, error) {
	if !s.Enabled() {
		return 0, nil
	}

	var pattern string
	switch scope {
	case CacheScopeAll:
		pattern = constants.CacheKeyPrefix + "*"
	case CacheScopeProducts:
		pattern = constants.CacheKeyProducts + "*"
	case CacheScopeProduct:
		pattern = constants.CacheKeyProduct + "*"
	case CacheScopeCategories:
		pattern = constants.CacheKeyCategories
	default:
		return 0, fmt.Errorf("unknown cache scope %q", scope)
	}

	deleted, err := s.cache.DeleteByPattern(ctx, pattern)
	if err != nil {
		return 0, err
	}

	logger.GetLogger().Info("Catalog cache invalidated",
		zap.String("scope", scope),
		zap.Int("deleted", deleted),
	)
	return deleted, nil
}

// Stats returns connection pool statistics of the cache backend.
func (s *CacheService) Stats() map[string]any {
	if !s.Enabled() {
		return map[string]any{"enabled": false}
	}

	stats := s.cache.PoolStats()
	stats["enabled"] = true
	return stats
}
