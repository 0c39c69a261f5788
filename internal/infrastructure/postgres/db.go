package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens the platform's own Postgres metadata pool, sized for the
// API server's request concurrency.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	return newPoolWithMaxConns(ctx, databaseURL, 25)
}

// NewWorkerPool opens a deliberately small metadata pool for the worker
// process: each worker goroutine holds a singleton connection to the
// *target* system under check for the duration of a job, so the
// worker's own metadata pool only needs to cover job claiming, heartbeats,
// and result writes — never the checked systems themselves.
func NewWorkerPool(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	return newPoolWithMaxConns(ctx, databaseURL, maxConns)
}

func newPoolWithMaxConns(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minInt32(5, maxConns)
	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

func minInt32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
