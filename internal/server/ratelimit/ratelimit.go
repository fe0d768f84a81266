// Package ratelimit throttles issue submissions per client with a fixed
// window counter, kept in Redis when one is configured and in memory
// otherwise.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter reports whether one more request under key fits in the window.
// A non-positive limit means unlimited.
type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

type windowRecord struct {
	start time.Time
	count int
}

// FixedWindow is an in-process fixed window limiter.
type FixedWindow struct {
	mu      sync.Mutex
	records map[string]windowRecord
	nowFn   func() time.Time
}

func NewFixedWindow() *FixedWindow {
	return &FixedWindow{records: make(map[string]windowRecord), nowFn: time.Now}
}

func (l *FixedWindow) Allow(key string, limit int, window time.Duration) bool {
	if limit <= 0 {
		return true
	}

	now := l.nowFn()

	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[key]
	if !ok || now.Sub(rec.start) >= window {
		l.records[key] = windowRecord{start: now, count: 1}
		l.evict(now, window)
		return true
	}

	if rec.count >= limit {
		return false
	}
	rec.count++
	l.records[key] = rec
	return true
}

func (l *FixedWindow) evict(now time.Time, window time.Duration) {
	for key, rec := range l.records {
		if now.Sub(rec.start) >= 2*window {
			delete(l.records, key)
		}
	}
}
