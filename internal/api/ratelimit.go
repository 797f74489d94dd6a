package api

import (
	"time"

	"github.com/mughouse/mughouse-server/internal/ratelimit"
)

// RateLimiter limits request rates keyed by client IP.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a rate limiter allowing ratePerInterval requests
// per interval with the given burst size.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// extractIP picks the client IP from forwarding headers, preferring the
// first hop of X-Forwarded-For.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
