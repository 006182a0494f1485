package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/irpartners/brokerage-api/internal/observability/metrics"
	"github.com/irpartners/brokerage-api/internal/ratelimit"
	"github.com/irpartners/brokerage-api/pkg/logging"
)

// RateLimit rejects clients that exceed the submission limiter with 429.
// A limiter store failure fails the request with 500 rather than letting
// unmetered traffic through.
func RateLimit(limiter *ratelimit.Limiter, m *metrics.Metrics, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Check(r.Context(), ratelimit.ClientIP(r))
			if err != nil {
				logger.Error("rate limit check failed", "error", err)
				writeJSONError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
				return
			}
			if !result.Allowed {
				m.LeadRejected("rate_limited")
				w.Header().Set("X-RateLimit-Remaining", "0")
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
