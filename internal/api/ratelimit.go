package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jasdeace/webapp/internal/auth"
)

// rateLimiter enforces a per-user token bucket on mutating routes. Entries
// idle longer than the cleanup interval are dropped so the map stays bounded.
type rateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stopCh chan struct{}
}

type userLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const limiterCleanupInterval = 5 * time.Minute

func newRateLimiter(limit rate.Limit, burst int) *rateLimiter {
	rl := &rateLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[string]*userLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

func (rl *rateLimiter) stop() {
	close(rl.stopCh)
}

// middleware runs after RequireAuth so the user identity is on the context.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if !rl.limiterFor(identity.UserID.String()).Allow() {
			slog.Warn("rate limit exceeded", "user_id", identity.UserID)
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *rateLimiter) limiterFor(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}

	ul.lastAccess = time.Now()

	return ul.limiter
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterCleanupInterval)

			rl.mu.Lock()
			for id, ul := range rl.limiters {
				if ul.lastAccess.Before(cutoff) {
					delete(rl.limiters, id)
				}
			}
			rl.mu.Unlock()
		}
	}
}
