package auth

import (
	"sync"
	"time"
)

const (
	rateWindow     = time.Minute
	idleEvictAfter = 5 * time.Minute
	evictionPeriod = 5 * time.Minute
)

// clientWindow holds the request timestamps for one client inside the
// current sliding window.
type clientWindow struct {
	mu       sync.Mutex
	hits     []time.Time
	lastSeen time.Time
}

// take records a request if the client is under limit and reports whether
// it was admitted. Stale timestamps are pruned in place on every call.
func (w *clientWindow) take(limit int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateWindow)

	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	w.lastSeen = now

	if len(w.hits) >= limit {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

func (w *clientWindow) snapshot() (count int, lastSeen time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.hits), w.lastSeen
}

// RateLimiter admits requests per client within a one-minute sliding
// window. State is in-memory only, so limits reset on restart and are
// per-instance when running more than one replica.
type RateLimiter struct {
	mu      sync.RWMutex
	clients map[string]*clientWindow
}

// NewRateLimiter creates a rate limiter and starts its eviction loop.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{clients: make(map[string]*clientWindow)}
	go rl.evictLoop()
	return rl
}

// Allow reports whether clientID may make another request under
// limitPerMinute, recording the request if admitted.
func (rl *RateLimiter) Allow(clientID string, limitPerMinute int) bool {
	rl.mu.RLock()
	w := rl.clients[clientID]
	rl.mu.RUnlock()

	if w == nil {
		rl.mu.Lock()
		if w = rl.clients[clientID]; w == nil {
			w = &clientWindow{lastSeen: time.Now()}
			rl.clients[clientID] = w
		}
		rl.mu.Unlock()
	}

	return w.take(limitPerMinute)
}

// GetStats returns a snapshot of tracked clients for the admin endpoint.
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	clients := make([]map[string]interface{}, 0, len(rl.clients))
	for id, w := range rl.clients {
		count, lastSeen := w.snapshot()
		clients = append(clients, map[string]interface{}{
			"client_id":     id,
			"request_count": count,
			"last_request":  lastSeen,
		})
	}

	return map[string]interface{}{
		"total_clients": len(rl.clients),
		"clients":       clients,
	}
}

// evictLoop drops clients that have been idle longer than idleEvictAfter
// so the map does not grow without bound.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(evictionPeriod)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-idleEvictAfter)

		rl.mu.Lock()
		for id, w := range rl.clients {
			if _, lastSeen := w.snapshot(); lastSeen.Before(cutoff) {
				delete(rl.clients, id)
			}
		}
		rl.mu.Unlock()
	}
}

var (
	globalRateLimiter *RateLimiter
	rateLimiterOnce   sync.Once
)

// GetGlobalRateLimiter returns the process-wide rate limiter.
func GetGlobalRateLimiter() *RateLimiter {
	rateLimiterOnce.Do(func() {
		globalRateLimiter = NewRateLimiter()
	})
	return globalRateLimiter
}

// CheckRateLimit admits or rejects a request against the global limiter.
func CheckRateLimit(clientID string, limitPerMinute int) bool {
	return GetGlobalRateLimiter().Allow(clientID, limitPerMinute)
}

// GetRateLimitStats reports the global limiter's state.
func GetRateLimitStats() map[string]interface{} {
	return GetGlobalRateLimiter().GetStats()
}
