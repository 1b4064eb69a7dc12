// Package flood debounces repeated triggers with a per-key sliding window.
package flood

import (
	"sync"
	"time"
)

const (
	// cleanupInterval is how often we clean up expired entries
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long before we remove idle key entries
	idleTimeout = 10 * time.Minute
)

// Floodgate allows at most limit events per key within a sliding window.
type Floodgate struct {
	limit   int
	window  time.Duration
	entries map[string]*keyEntry
	now     func() time.Time
	mutex   sync.RWMutex

	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// keyEntry tracks event timestamps for one key
type keyEntry struct {
	timestamps []time.Time // Sliding window of accepted events
	lastSeen   time.Time   // When this key was last seen (for cleanup)
}

// Option customizes a Floodgate.
type Option func(*Floodgate)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(fg *Floodgate) {
		fg.now = now
	}
}

// New creates a Floodgate accepting limit events per key within window.
// A limit below 1 is treated as 1.
func New(limit int, window time.Duration, opts ...Option) *Floodgate {
	if limit < 1 {
		limit = 1
	}
	fg := &Floodgate{
		limit:       limit,
		window:      window,
		entries:     make(map[string]*keyEntry),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(fg)
	}

	go fg.cleanup()

	return fg
}

// Stop stops the background cleanup goroutine
func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() {
		close(fg.stopCleanup)
	})
}

// Allow reports whether an event for key is accepted. Rejected events do not
// extend the window.
func (fg *Floodgate) Allow(key string) bool {
	if fg.window <= 0 {
		return true
	}

	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[key]
	if !exists {
		entry = &keyEntry{
			timestamps: make([]time.Time, 0, fg.limit+1),
		}
		fg.entries[key] = entry
	}

	entry.lastSeen = now

	// Remove timestamps outside the window
	windowStart := now.Add(-fg.window)
	validTimestamps := entry.timestamps[:0] // Reuse slice capacity
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			validTimestamps = append(validTimestamps, ts)
		}
	}
	entry.timestamps = validTimestamps

	if len(entry.timestamps) >= fg.limit {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// cleanup removes idle key entries to prevent memory leaks
func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup()
		case <-fg.stopCleanup:
			return
		}
	}
}

// performCleanup removes entries that have been idle for too long
func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for key, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.RLock()
	defer fg.mutex.RUnlock()

	return Stats{
		ActiveKeys:   len(fg.entries),
		Limit:        fg.limit,
		WindowMillis: fg.window.Milliseconds(),
	}
}

// Stats contains floodgate statistics
type Stats struct {
	ActiveKeys   int   `json:"active_keys"`
	Limit        int   `json:"limit"`
	WindowMillis int64 `json:"window_millis"`
}
