// Package ratelimit implements strict sliding-window admission control for
// outbound provider calls. Unlike a token bucket there is no carry-over
// credit: at most limit calls are admitted in any trailing window,
// independent of wall-clock minute boundaries.
package ratelimit

import (
	"sync"
	"time"
)

// DefaultWindow is the trailing interval rate limits are enforced over.
const DefaultWindow = 60 * time.Second

// Governor tracks recent attempt timestamps per provider. Each provider's
// window is independently locked; admission for one provider never blocks
// another.
type Governor struct {
	span time.Duration

	mu      sync.RWMutex
	windows map[string]*window
}

type window struct {
	mu    sync.Mutex
	times []time.Time
}

// NewGovernor creates a governor enforcing limits over the given span.
func NewGovernor(span time.Duration) *Governor {
	if span <= 0 {
		span = DefaultWindow
	}
	return &Governor{
		span:    span,
		windows: make(map[string]*window),
	}
}

// TryAdmit prunes timestamps older than the trailing window and, if fewer
// than limit remain, records now and admits the call. A denied call records
// nothing.
func (g *Governor) TryAdmit(providerID string, limit int, now time.Time) bool {
	w := g.window(providerID)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-g.span))

	if len(w.times) >= limit {
		return false
	}

	w.times = append(w.times, now)
	return true
}

// InWindow returns the number of attempts currently inside the trailing
// window for a provider.
func (g *Governor) InWindow(providerID string, now time.Time) int {
	w := g.window(providerID)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(now.Add(-g.span))
	return len(w.times)
}

func (g *Governor) window(providerID string) *window {
	g.mu.RLock()
	w, ok := g.windows[providerID]
	g.mu.RUnlock()
	if ok {
		return w
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if w, ok = g.windows[providerID]; ok {
		return w
	}
	w = &window{}
	g.windows[providerID] = w
	return w
}

// prune drops timestamps at or before cutoff. Timestamps are appended in
// non-decreasing order, so the first retained index is a boundary.
func (w *window) prune(cutoff time.Time) {
	i := 0
	for i < len(w.times) && !w.times[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.times = append(w.times[:0], w.times[i:]...)
	}
}
