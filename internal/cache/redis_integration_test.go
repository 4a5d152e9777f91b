//go:build integration

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"doclib/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s/0", endpoint)
}

func TestRedisCacheAndLock(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	c, err := NewCache(&config.CacheConfig{Provider: "redis", RedisURL: url, TTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	t.Run("typed get and pattern delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "documents:list:1", cachedDoc{ID: 7, Title: "t"}, 0))

		var got cachedDoc
		hit, err := c.Get(ctx, "documents:list:1", &got)
		require.NoError(t, err)
		assert.True(t, hit)
		assert.EqualValues(t, 7, got.ID)

		require.NoError(t, c.DeletePattern(ctx, "documents:list:*"))
		hit, err = c.Get(ctx, "documents:list:1", &got)
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("lock excludes a second holder until released", func(t *testing.T) {
		locker := NewLocker(c, zap.NewNop())
		unlock, err := locker.Lock(ctx, "rating:9", time.Second)
		require.NoError(t, err)

		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "rating:9", time.Second)
		assert.Error(t, err)

		unlock()
		unlock2, err := locker.Lock(ctx, "rating:9", time.Second)
		require.NoError(t, err)
		unlock2()
	})
}
