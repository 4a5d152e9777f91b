package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doclib/internal/config"
	"doclib/internal/monitoring"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// InitDB connects with exponential backoff and, when enabled, applies
// migrations.
func InitDB(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	var manager *Manager
	connect := func() error {
		m, err := NewManager(&cfg.Database, logger, metrics)
		if err != nil {
			return err
		}
		manager = m
		return nil
	}

	policy := newRetryPolicy(ctx, cfg.Database.RetryBackoff, cfg.Database.MaxRetryAttempts)
	notify := func(err error, wait time.Duration) {
		logger.Warn("Database not reachable yet, retrying",
			zap.Error(err),
			zap.Duration("retry_in", wait))
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
		migrate := func() error { return manager.Migrate(migrationsPath) }
		policy := newRetryPolicy(ctx, cfg.Database.RetryBackoff, 3)
		if err := backoff.RetryNotify(migrate, policy, notify); err != nil {
			manager.Close()
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	stats := manager.Stats()
	logger.Info("Database ready",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("max_open_connections", stats.MaxOpenConnections),
	)

	return manager, nil
}

func newRetryPolicy(ctx context.Context, initial time.Duration, maxAttempts int) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	if initial > 0 {
		exp.InitialInterval = initial
	}
	exp.MaxInterval = 10 * time.Second
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = exp
	if maxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(maxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

// determineMigrationsPath falls back to well-known locations when the
// configured directory does not exist (binary run from another cwd).
func determineMigrationsPath(configPath string) string {
	candidates := []string{configPath, "migrations", "./migrations", "../migrations", "../../migrations"}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return configPath
}
