package services

import (
	"sync"
	"time"
)

// FixedWindow is an in-memory per-key fixed-window rate limiter. It is safe
// for concurrent use. Stale windows are removed by a background goroutine.
type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewFixedWindow creates a limiter allowing up to limit requests per key
// within each window of the given size.
func NewFixedWindow(limit int, size time.Duration) *FixedWindow {
	fw := &FixedWindow{
		windows: make(map[string]*window),
		limit:   limit,
		size:    size,
		now:     time.Now,
	}
	go fw.cleanup()
	return fw
}

// Allow reports whether the key may proceed and counts the request against
// the current window.
func (fw *FixedWindow) Allow(key string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	w, ok := fw.windows[key]
	if !ok || now.Sub(w.start) >= fw.size {
		fw.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= fw.limit {
		return false
	}
	w.count++
	return true
}

// cleanup periodically drops windows that expired more than one window ago.
func (fw *FixedWindow) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		fw.mu.Lock()
		cutoff := fw.now().Add(-2 * fw.size)
		for key, w := range fw.windows {
			if w.start.Before(cutoff) {
				delete(fw.windows, key)
			}
		}
		fw.mu.Unlock()
	}
}
