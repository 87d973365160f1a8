package middleware

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"mentora/internal/httputil"
)

// RateLimiter applies a per-user token bucket to the generation endpoints.
// Generation calls are expensive upstream; this keeps one misbehaving client
// from exhausting the provider quota for everyone.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per user.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiterFor(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[userID] = limiter
	}
	return limiter
}

// Middleware rejects requests over the per-user budget with 429. Requests
// without a user id (shouldn't happen behind auth) share one bucket.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := httputil.GetUserID(r)
		if !rl.limiterFor(userID).Allow() {
			httputil.RespondError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
