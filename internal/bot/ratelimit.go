package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userRateLimiter throttles /ask per Discord user id. Interactions are
// cheap; the completion calls behind them are not.
type userRateLimiter struct {
	users map[string]*rate.Limiter
	mu    sync.Mutex
	limit rate.Limit
	burst int
}

func newUserRateLimiter(perMinute, burst int) *userRateLimiter {
	return &userRateLimiter{
		users: make(map[string]*rate.Limiter),
		limit: rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
	}
}

func (l *userRateLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.users[userID] = limiter
	}
	return limiter.Allow()
}
