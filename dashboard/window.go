package dashboard

import "sort"

// DefaultWindowSize is the number of points kept per series and on the time axis.
const DefaultWindowSize = 20

// Window is a bounded FIFO. Pushing onto a full window evicts the oldest entry.
// Not safe for concurrent use; the owning Session serializes access.
type Window[T any] struct {
	entries  []T
	capacity int
}

// NewWindow creates a window holding at most capacity entries.
func NewWindow[T any](capacity int) *Window[T] {
	if capacity <= 0 {
		capacity = DefaultWindowSize
	}
	return &Window[T]{
		entries:  make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push appends v, evicting the oldest entry when the window is full.
func (w *Window[T]) Push(v T) {
	if len(w.entries) < w.capacity {
		w.entries = append(w.entries, v)
		return
	}
	copy(w.entries, w.entries[1:])
	w.entries[len(w.entries)-1] = v
}

// Values returns a copy of the entries, oldest first.
func (w *Window[T]) Values() []T {
	out := make([]T, len(w.entries))
	copy(out, w.entries)
	return out
}

func (w *Window[T]) Len() int { return len(w.entries) }

func (w *Window[T]) Cap() int { return w.capacity }

// SeriesBuffer keeps one Window of samples per series key.
// Series are created on first push and never removed.
type SeriesBuffer struct {
	capacity int
	series   map[int]*Window[float64]
}

func NewSeriesBuffer(capacity int) *SeriesBuffer {
	return &SeriesBuffer{
		capacity: capacity,
		series:   make(map[int]*Window[float64]),
	}
}

// Push appends value to the series for key.
func (b *SeriesBuffer) Push(key int, value float64) {
	w, ok := b.series[key]
	if !ok {
		w = NewWindow[float64](b.capacity)
		b.series[key] = w
	}
	w.Push(value)
}

// Values returns the samples for key, oldest first. Unknown keys yield an empty slice.
func (b *SeriesBuffer) Values(key int) []float64 {
	w, ok := b.series[key]
	if !ok {
		return []float64{}
	}
	return w.Values()
}

// Keys returns every key ever pushed, ascending.
func (b *SeriesBuffer) Keys() []int {
	keys := make([]int, 0, len(b.series))
	for k := range b.series {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
