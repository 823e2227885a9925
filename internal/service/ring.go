package service

// ring is a bounded append-only log keeping the most recent entries.
type ring[T any] struct {
	cap     int
	entries []T
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{cap: capacity}
}

func (r *ring[T]) add(v T) {
	r.entries = append(r.entries, v)
	if len(r.entries) > r.cap {
		r.entries = r.entries[len(r.entries)-r.cap:]
	}
}

// all returns the retained entries, oldest first. Callers must not mutate.
func (r *ring[T]) all() []T {
	return r.entries
}

func (r *ring[T]) len() int { return len(r.entries) }
