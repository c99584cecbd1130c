package sequence

// Ring keeps the most recent values up to a fixed capacity, overwriting
// the oldest when full. It is not safe for concurrent use.
type Ring[T any] struct {
	buf  []T
	head int // next write position
	size int
}

// NewRing returns a ring holding at most capacity values. A capacity below
// one is raised to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{buf: make([]T, capacity)}
}

func (r *Ring[T]) Push(v T) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Last returns the newest value.
func (r *Ring[T]) Last() (T, bool) {
	if r.size == 0 {
		var zero T
		return zero, false
	}
	return r.buf[(r.head-1+len(r.buf))%len(r.buf)], true
}

// Items returns the held values oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, 0, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := range r.size {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

func (r *Ring[T]) Len() int { return r.size }

func (r *Ring[T]) Cap() int { return len(r.buf) }

// Reset drops every value.
func (r *Ring[T]) Reset() {
	clear(r.buf)
	r.head, r.size = 0, 0
}
