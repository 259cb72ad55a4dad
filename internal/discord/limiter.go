package discord

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// userLimiter hands out one token bucket per Discord user.
type userLimiter struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	every  rate.Limit
	burst  int
}

// newUserLimiter allows perMinute messages a minute per user, bursting to
// the same number. perMinute <= 0 disables limiting.
func newUserLimiter(perMinute int) *userLimiter {
	l := &userLimiter{limits: make(map[string]*rate.Limiter), every: rate.Inf, burst: 1}
	if perMinute > 0 {
		l.every = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

func (l *userLimiter) get(userID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limits[userID]; ok {
		return lim
	}
	lim := rate.NewLimiter(l.every, l.burst)
	l.limits[userID] = lim
	return lim
}

func (l *userLimiter) Allow(userID string) bool {
	return l.get(userID).Allow()
}
