package monitor

import (
	"sync"

	"github.com/banshee-data/bodyslice/internal/body/l3measure"
)

// History keeps the most recent measurement sets for HTTP readers.
//
// The estimation loop pushes a copy after every updated pass; handlers read
// concurrently. All methods are safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	sets    []l3measure.Set
	next    int
	full    bool
	stats   l3measure.Stats
	subject uint64
}

// NewHistory returns a History holding up to capacity sets.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{sets: make([]l3measure.Set, capacity)}
}

// Push appends a copy of set, evicting the oldest when full.
func (h *History) Push(set *l3measure.Set) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets[h.next] = *set
	h.next++
	if h.next == len(h.sets) {
		h.next = 0
		h.full = true
	}
}

// SetStats records the estimator's tick counters and subject.
func (h *History) SetStats(subject uint64, stats l3measure.Stats) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subject = subject
	h.stats = stats
}

// Stats returns the last recorded counters and subject.
func (h *History) Stats() (uint64, l3measure.Stats) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.subject, h.stats
}

// Len returns the number of stored sets.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.sets)
	}
	return h.next
}

// Latest returns the most recent set.
func (h *History) Latest() (l3measure.Set, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full && h.next == 0 {
		return l3measure.Set{}, false
	}
	i := h.next - 1
	if i < 0 {
		i = len(h.sets) - 1
	}
	return h.sets[i], true
}

// Sets returns the stored sets, oldest first.
func (h *History) Sets() []l3measure.Set {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		return append([]l3measure.Set(nil), h.sets[:h.next]...)
	}
	out := make([]l3measure.Set, 0, len(h.sets))
	out = append(out, h.sets[h.next:]...)
	return append(out, h.sets[:h.next]...)
}
