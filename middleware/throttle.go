package middleware

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/MrEthical07/kioskAuth/internal/rate"
)

// Throttle describes the throttle operation and its observable behavior.
//
// Throttle may return an error when input validation, dependency calls, or security checks fail.
// Throttle does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			if err := limiter.Check(r.Context(), ClientIP(r)); err != nil {
				if errors.Is(err, rate.ErrRateLimited) {
					http.Error(w, "too many requests", http.StatusTooManyRequests)
					return
				}
				// Fail open when the counter backend is down; throttling
				// is protection, not a dependency.
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP describes the clientip operation and its observable behavior.
//
// ClientIP may return an error when input validation, dependency calls, or security checks fail.
// ClientIP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
