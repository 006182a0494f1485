package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/irpartners/brokerage-api/pkg/logging"
)

var tracer = otel.Tracer("brokerage/ratelimit")

// KeyPrefix namespaces counter rows so the table can be shared with other
// counters later.
const KeyPrefix = "rate:"

const (
	DefaultWindow = time.Minute
	DefaultLimit  = 5
)

// Result reports the outcome of a rate-limit check. Remaining is advisory
// only; Allowed is the contract.
type Result struct {
	Allowed   bool
	Remaining int
}

// Store persists fixed-window counters shared across server instances.
//
// Bump must be atomic: in one operation it creates the counter (count=1) when
// the key is absent or its window expired, increments it when count < limit,
// and leaves it untouched when the limit is reached. It returns the resulting
// count and whether the request was admitted.
type Store interface {
	Bump(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (count int, allowed bool, err error)

	// Sweep deletes counters whose window has already expired. It is
	// best-effort garbage collection, not required for correctness.
	Sweep(ctx context.Context, now time.Time) error
}

// Limiter admits up to limit requests per identifier per fixed window.
type Limiter struct {
	store  Store
	window time.Duration
	limit  int
	logger *logging.Logger
	now    func() time.Time
}

// New creates a limiter over the given store. Non-positive window/limit fall
// back to the defaults.
func New(store Store, window time.Duration, limit int, logger *logging.Logger) *Limiter {
	if store == nil {
		panic("ratelimit: store required")
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Limiter{
		store:  store,
		window: window,
		limit:  limit,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the limiter's clock. Intended for tests.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Limit returns the configured per-window maximum.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check records a request for identifier and reports whether it is admitted.
// Store failures propagate; callers must treat them as a server fault rather
// than admitting the request.
func (l *Limiter) Check(ctx context.Context, identifier string) (Result, error) {
	ctx, span := tracer.Start(ctx, "ratelimit.check")
	defer span.End()
	span.SetAttributes(attribute.String("ratelimit.identifier", identifier))

	now := l.now()

	// Opportunistic cleanup of expired windows. Failures are logged, never
	// surfaced: a stale row only wastes a little space.
	if err := l.store.Sweep(ctx, now); err != nil {
		l.logger.Warn("rate limit sweep failed", "error", err)
	}

	count, allowed, err := l.store.Bump(ctx, KeyPrefix+identifier, now, l.window, l.limit)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: bump %q: %w", identifier, err)
	}
	if !allowed {
		return Result{Allowed: false, Remaining: 0}, nil
	}
	if count == 1 {
		// Fresh window (created or rolled over).
		return Result{Allowed: true, Remaining: l.limit - 1}, nil
	}
	// Post-increment accounting, kept bit-for-bit with the original site:
	// remaining = limit - preCount - 1 = limit - count.
	return Result{Allowed: true, Remaining: l.limit - count}, nil
}

// ClientIP derives the rate-limit identifier for a request: the first entry
// of X-Forwarded-For when present, otherwise "unknown". Advisory only and
// spoofable; this is not a security boundary.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return "unknown"
}
