// Package store provides the shared Postgres connection-pool plumbing used
// independently by the weigh and billing services: pool construction,
// bounded-retry reachability waiting at startup, and idempotent schema
// bootstrap. Grounded on the pgxpool.New + Ping idiom from
// other_examples/.../oilgas-project/backend/test/testutil/database.go and
// the SchemaSQL-constant bootstrap pattern from
// other_examples/.../go_syschecker/internal/database/relational/orm.go.go.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Open constructs a pool against dsn without blocking on reachability; call
// WaitReady afterward before serving traffic.
func Open(dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	return pool, nil
}

// WaitReady pings the pool up to attempts times, sleeping interval between
// tries, and returns the last error if the store never becomes reachable.
func WaitReady(ctx context.Context, pool *pgxpool.Pool, log *logrus.Logger, attempts int, interval time.Duration) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		} else {
			lastErr = err
		}
		log.Warnf("database not reachable yet (attempt %d/%d): %v", i+1, attempts, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, lastErr)
}

// Bootstrap executes schemaSQL, which must consist of idempotent
// CREATE TABLE IF NOT EXISTS / CREATE INDEX IF NOT EXISTS statements.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool, schemaSQL string) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("bootstrap schema: %w", err)
	}
	return nil
}
