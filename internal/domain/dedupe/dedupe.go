// Package dedupe remembers which match IDs have already been announced, so a
// match is reported as new at most once.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Tracker records seen match IDs.
type Tracker interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id int64) bool

	// Unrecord forgets id so it is announced again the next time it shows up.
	Unrecord(ctx context.Context, id int64)

	// Seen reports whether id is recorded, without recording it.
	Seen(ctx context.Context, id int64) bool

	Size() int64
}

// inMemoryTracker keeps IDs in a map plus a ring of insertion order.
// Bounded mode (maxSize > 0) evicts the oldest ID when full.
// Unbounded mode (maxSize <= 0) only uses the map.
type inMemoryTracker struct {
	mu      sync.Mutex
	seen    map[int64]struct{}
	ring    []int64 // insertion order, oldest at head
	head    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryTracker creates a tracker with the given options.
func NewInMemoryTracker(opts ...Option) Tracker {
	t := &inMemoryTracker{maxSize: 10_000}
	for _, opt := range opts {
		opt(t)
	}
	t.seen = make(map[int64]struct{})
	if t.maxSize > 0 {
		t.ring = make([]int64, 0, t.maxSize)
	}
	return t
}

func (t *inMemoryTracker) SeenAndRecord(_ context.Context, id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; ok {
		return true
	}

	if t.maxSize > 0 {
		if len(t.seen) >= t.maxSize {
			t.evictOldest()
		}
		t.push(id)
	}
	t.seen[id] = struct{}{}
	t.size.Store(int64(len(t.seen)))
	return false
}

func (t *inMemoryTracker) Unrecord(_ context.Context, id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[id]; !ok {
		return
	}
	delete(t.seen, id)
	if t.maxSize > 0 {
		t.removeFromRing(id)
	}
	t.size.Store(int64(len(t.seen)))
}

func (t *inMemoryTracker) Seen(_ context.Context, id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.seen[id]
	return ok
}

func (t *inMemoryTracker) Size() int64 {
	return t.size.Load()
}

// push appends id to the ring. Must be called with t.mu held.
func (t *inMemoryTracker) push(id int64) {
	if len(t.ring) < t.maxSize {
		t.ring = append(t.ring, id)
		return
	}
	t.ring[t.head] = id
	t.head = (t.head + 1) % t.maxSize
}

// evictOldest drops the oldest recorded ID of a full ring. Its slot is
// reused by the following push. Must be called with t.mu held.
func (t *inMemoryTracker) evictOldest() {
	if len(t.ring) < t.maxSize {
		return
	}
	delete(t.seen, t.ring[t.head])
}

// removeFromRing rebuilds the ring without id, oldest first.
func (t *inMemoryTracker) removeFromRing(id int64) {
	ordered := make([]int64, 0, t.maxSize)
	for i := 0; i < len(t.ring); i++ {
		v := t.ring[(t.head+i)%len(t.ring)]
		if v != id {
			ordered = append(ordered, v)
		}
	}
	t.ring, t.head = ordered, 0
}
