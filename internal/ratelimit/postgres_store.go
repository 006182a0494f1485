package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps fixed-window counters in the rate_limits table so the
// limit holds across server instances.
type PostgresStore struct {
	pool rowQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("ratelimit: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithExec(exec rowQuerier) *PostgresStore {
	if exec == nil {
		panic("ratelimit: exec required")
	}
	return &PostgresStore{pool: exec}
}

// Bump runs the whole check-and-increment as one conditional upsert, so
// concurrent requests for the same key cannot both pass a count < limit
// check. No row comes back when the counter is full and unexpired.
func (s *PostgresStore) Bump(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (int, bool, error) {
	query := `
		INSERT INTO rate_limits (id, count, expires_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (id) DO UPDATE SET
			count = CASE WHEN rate_limits.expires_at < $3 THEN 1 ELSE rate_limits.count + 1 END,
			expires_at = CASE WHEN rate_limits.expires_at < $3 THEN $2 ELSE rate_limits.expires_at END
		WHERE rate_limits.expires_at < $3 OR rate_limits.count < $4
		RETURNING count
	`
	var count int
	err := s.pool.QueryRow(ctx, query, key, now.Add(window), now, limit).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return limit, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ratelimit: upsert counter: %w", err)
	}
	return count, true, nil
}

// Sweep deletes counters whose window already expired.
func (s *PostgresStore) Sweep(ctx context.Context, now time.Time) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM rate_limits WHERE expires_at < $1`, now); err != nil {
		return fmt.Errorf("ratelimit: sweep counters: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
