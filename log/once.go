package log

import (
	"context"
	"log/slog"
	"sync"
)

// Once reports data irregularities a single time per key. Repeated warnings
// with the same key are counted but not emitted. The zero value is ready to
// use.
type Once struct {
	mu   sync.Mutex
	seen map[string]int
}

// First marks key as seen and reports whether this was its first occurrence.
func (o *Once) First(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.seen == nil {
		o.seen = make(map[string]int)
	}

	o.seen[key]++

	return o.seen[key] == 1
}

// Warn logs msg with l at [LevelWarn] unless key was already reported.
func (o *Once) Warn(
	ctx context.Context,
	l Logger,
	key, msg string,
	attrs ...slog.Attr,
) bool {
	if !o.First(key) {
		return false
	}

	l.emit(ctx, LevelWarn, msg, attrs)

	return true
}

// Keys returns the number of distinct keys reported.
func (o *Once) Keys() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.seen)
}

// Count returns how many times key was reported, including suppressed
// repeats.
func (o *Once) Count(key string) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.seen[key]
}
