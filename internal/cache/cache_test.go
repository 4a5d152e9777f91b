package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"doclib/internal/config"
	"doclib/internal/monitoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMemoryCache(t *testing.T, maxKeys int) Cache {
	t.Helper()
	c := NewMemoryCache(&config.CacheConfig{MaxKeys: maxKeys, TTL: time.Minute, CleanupInterval: time.Hour}, zap.NewNop())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type cachedDoc struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips typed values", func(t *testing.T) {
		c := newTestMemoryCache(t, 10)
		require.NoError(t, c.Set(ctx, "doc:1", cachedDoc{ID: 1, Title: "Go", Tags: []string{"a"}}, 0))

		var got cachedDoc
		hit, err := c.Get(ctx, "doc:1", &got)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, cachedDoc{ID: 1, Title: "Go", Tags: []string{"a"}}, got)
	})

	t.Run("miss and expiry", func(t *testing.T) {
		c := newTestMemoryCache(t, 10)
		var got cachedDoc
		hit, err := c.Get(ctx, "absent", &got)
		require.NoError(t, err)
		assert.False(t, hit)

		require.NoError(t, c.Set(ctx, "short", 1, time.Millisecond))
		time.Sleep(5 * time.Millisecond)
		var n int
		hit, err = c.Get(ctx, "short", &n)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("delete pattern", func(t *testing.T) {
		c := newTestMemoryCache(t, 10)
		require.NoError(t, c.Set(ctx, "documents:list:a", 1, 0))
		require.NoError(t, c.Set(ctx, "documents:list:b", 2, 0))
		require.NoError(t, c.Set(ctx, "categories:slug:go", 3, 0))

		require.NoError(t, c.DeletePattern(ctx, "documents:list:*"))

		var n int
		hit, _ := c.Get(ctx, "documents:list:a", &n)
		assert.False(t, hit)
		hit, _ = c.Get(ctx, "categories:slug:go", &n)
		assert.True(t, hit)
		assert.Equal(t, 3, n)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		c := newTestMemoryCache(t, 2)
		require.NoError(t, c.Set(ctx, "a", 1, 0))
		time.Sleep(time.Millisecond)
		require.NoError(t, c.Set(ctx, "b", 2, 0))
		time.Sleep(time.Millisecond)
		var n int
		_, _ = c.Get(ctx, "a", &n)
		require.NoError(t, c.Set(ctx, "c", 3, 0))

		hit, _ := c.Get(ctx, "b", &n)
		assert.False(t, hit)
		hit, _ = c.Get(ctx, "a", &n)
		assert.True(t, hit)
	})
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		str, pattern string
		want         bool
	}{
		{"documents:list:1", "documents:list:*", true},
		{"documents:item:1", "documents:list:*", false},
		{"x:suffix", "*suffix", true},
		{"exact", "exact", true},
		{"anything", "*", true},
	}
	for _, tt := range tests {
		t.Run(tt.str+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, matchPattern(tt.str, tt.pattern))
		})
	}
}

func TestLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("concurrent misses share one load", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		metrics := monitoring.NewMetrics("test", reg)
		l := NewLoader(newTestMemoryCache(t, 10), metrics, zap.NewNop())

		var calls int32
		release := make(chan struct{})
		load := func(context.Context) (int64, error) {
			atomic.AddInt32(&calls, 1)
			<-release
			return 42, nil
		}

		var wg sync.WaitGroup
		results := make([]int64, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				v, err := Load(ctx, l, "category", "categories:slug:go", time.Minute, load)
				assert.NoError(t, err)
				results[i] = v
			}(i)
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		for _, v := range results {
			assert.EqualValues(t, 42, v)
		}

		v, err := Load(ctx, l, "category", "categories:slug:go", time.Minute, load)
		require.NoError(t, err)
		assert.EqualValues(t, 42, v)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("category", "hit")))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		l := NewLoader(newTestMemoryCache(t, 10), nil, zap.NewNop())
		boom := errors.New("boom")

		_, err := Load(ctx, l, "x", "k", time.Minute, func(context.Context) (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)

		v, err := Load(ctx, l, "x", "k", time.Minute, func(context.Context) (string, error) { return "ok", nil })
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("serializes holders of one key", func(t *testing.T) {
		locker := NewMemoryLocker()
		var inside, maxInside int32
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "rating:1", time.Second)
				require.NoError(t, err)
				defer unlock()

				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, maxInside)
	})

	t.Run("respects context while waiting", func(t *testing.T) {
		locker := NewMemoryLocker()
		unlock, err := locker.Lock(ctx, "k", time.Second)
		require.NoError(t, err)
		defer unlock()

		waitCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "k", time.Second)
		assert.ErrorIs(t, err, ErrLockNotAcquired)
	})

	t.Run("unlock is idempotent and frees the key", func(t *testing.T) {
		locker := NewMemoryLocker().(*memoryLocker)
		unlock, err := locker.Lock(ctx, "k", time.Second)
		require.NoError(t, err)
		unlock()
		unlock()
		assert.Empty(t, locker.locks)
	})
}
