package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestLimiter(t *testing.T) (*Limiter, *time.Time) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter := New(NewMemoryStore(), time.Minute, 5, nil).WithClock(func() time.Time { return now })
	return limiter, &now
}

func TestCheckAdmitsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	wantRemaining := []int{4, 3, 2, 1, 0}
	for i, want := range wantRemaining {
		res, err := limiter.Check(ctx, "203.0.113.7")
		if err != nil {
			t.Fatalf("check %d: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
		if res.Remaining != want {
			t.Errorf("request %d: remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}
}

func TestCheckRejectsBeyondLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if res, err := limiter.Check(ctx, "198.51.100.2"); err != nil || !res.Allowed {
			t.Fatalf("warmup request %d: allowed=%v err=%v", i+1, res.Allowed, err)
		}
	}
	for i := 0; i < 3; i++ {
		res, err := limiter.Check(ctx, "198.51.100.2")
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if res.Allowed {
			t.Fatalf("request %d past the limit should be rejected", 6+i)
		}
		if res.Remaining != 0 {
			t.Errorf("rejected request remaining = %d, want 0", res.Remaining)
		}
	}
}

func TestCheckIdentifiersAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := limiter.Check(ctx, "10.0.0.1"); err != nil {
			t.Fatal(err)
		}
	}
	res, err := limiter.Check(ctx, "10.0.0.2")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed {
		t.Error("a different identifier should not share the counter")
	}
}

func TestCheckWindowRollover(t *testing.T) {
	limiter, now := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		limiter.Check(ctx, "192.0.2.9")
	}
	if res, _ := limiter.Check(ctx, "192.0.2.9"); res.Allowed {
		t.Fatal("expected rejection inside the window")
	}

	*now = now.Add(61 * time.Second)

	res, err := limiter.Check(ctx, "192.0.2.9")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Allowed {
		t.Fatal("first request after window expiry should be admitted")
	}
	if res.Remaining != 4 {
		t.Errorf("counter should reset to 1 after rollover, remaining = %d, want 4", res.Remaining)
	}
}

func TestCheckSweepsExpiredCounters(t *testing.T) {
	store := NewMemoryStore()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	limiter := New(store, time.Minute, 5, nil).WithClock(func() time.Time { return now })
	ctx := context.Background()

	limiter.Check(ctx, "stale-1")
	limiter.Check(ctx, "stale-2")
	if store.Len() != 2 {
		t.Fatalf("expected 2 counters, got %d", store.Len())
	}

	now = now.Add(2 * time.Minute)
	limiter.Check(ctx, "fresh")

	if store.Len() != 1 {
		t.Errorf("expired counters should be swept, %d left", store.Len())
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{"no header", "", "unknown"},
		{"single entry", "203.0.113.5", "203.0.113.5"},
		{"multiple entries take first", "203.0.113.5, 70.41.3.18, 150.172.238.178", "203.0.113.5"},
		{"whitespace trimmed", "  203.0.113.5 , 70.41.3.18", "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/leads/contact", nil)
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
