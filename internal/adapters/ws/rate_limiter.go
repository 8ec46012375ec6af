package ws

import (
	"sync"
	"time"
)

// FrameRateLimiter caps inbound frames per identity over a sliding window,
// so a misbehaving client cannot saturate the dispatcher.
type FrameRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
}

func NewFrameRateLimiter(limit int, interval time.Duration) *FrameRateLimiter {
	return &FrameRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *FrameRateLimiter) Allow(id string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]

	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh

	return true
}

// Forget drops the window for id, freeing its history after disconnect.
func (rl *FrameRateLimiter) Forget(id string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}
