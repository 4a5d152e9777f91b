package cache

import (
	"context"
	"time"

	"doclib/internal/monitoring"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Loader is a read-through helper. Concurrent misses on one key share a
// single call to the load func.
type Loader struct {
	cache   Cache
	group   singleflight.Group
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewLoader creates a read-through loader over c
func NewLoader(c Cache, metrics *monitoring.Metrics, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{cache: c, metrics: metrics, logger: logger}
}

// Invalidate removes keys matching pattern. Errors are logged, not returned.
func (l *Loader) Invalidate(ctx context.Context, pattern string) {
	if err := l.cache.DeletePattern(ctx, pattern); err != nil {
		l.logger.Warn("Cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// Forget removes exact keys. Errors are logged, not returned.
func (l *Loader) Forget(ctx context.Context, keys ...string) {
	if err := l.cache.Delete(ctx, keys...); err != nil {
		l.logger.Warn("Cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Load returns the cached value for key or calls fn and caches its result.
// Cache failures degrade to calling fn directly.
func Load[T any](ctx context.Context, l *Loader, area, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := l.cache.Get(ctx, key, &cached)
	if err != nil {
		l.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	l.metrics.RecordCacheLookup(area, hit)
	if hit {
		return cached, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		result, err := fn(ctx)
		if err != nil {
			return result, err
		}
		if err := l.cache.Set(context.WithoutCancel(ctx), key, result, ttl); err != nil {
			l.logger.Warn("Failed to cache result", zap.String("key", key), zap.Error(err))
		}
		return result, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
