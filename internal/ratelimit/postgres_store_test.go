package ratelimit

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresStoreBumpAdmits(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery("INSERT INTO rate_limits").
		WithArgs("rate:203.0.113.7", now.Add(time.Minute), now, 5).
		WillReturnRows(rows)

	count, allowed, err := store.Bump(context.Background(), "rate:203.0.113.7", now, time.Minute, 5)
	if err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	if !allowed || count != 3 {
		t.Errorf("got count=%d allowed=%v, want count=3 allowed=true", count, allowed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreBumpRejectsWhenNoRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	now := time.Now().UTC()

	// Conditional upsert returns no row when the counter is full.
	mock.ExpectQuery("INSERT INTO rate_limits").
		WithArgs("rate:x", now.Add(time.Minute), now, 5).
		WillReturnRows(pgxmock.NewRows([]string{"count"}))

	_, allowed, err := store.Bump(context.Background(), "rate:x", now, time.Minute, 5)
	if err != nil {
		t.Fatalf("bump failed: %v", err)
	}
	if allowed {
		t.Error("expected rejection when no row is returned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresStoreSweep(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	store := newPostgresStoreWithExec(mock)
	now := time.Now().UTC()

	mock.ExpectExec("DELETE FROM rate_limits").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	if err := store.Sweep(context.Background(), now); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
