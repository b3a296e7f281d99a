// Package worklist provides the queue disciplines used by the fixpoint
// computations: a FIFO queue with membership tracking and a priority queue
// for order-driven solvers.
package worklist

// Worklist is a FIFO queue that never holds the same element twice.
// Re-adding an element that is already queued is a no-op; re-adding one that
// has been popped enqueues it again.
type Worklist[T comparable] struct {
	list   []T
	queued map[T]bool
}

// Empty creates an empty worklist.
func Empty[T comparable]() Worklist[T] {
	return Worklist[T]{queued: make(map[T]bool)}
}

// Add enqueues the given element, unless it is already queued.
func (w *Worklist[T]) Add(el T) {
	if w.queued[el] {
		return
	}
	w.queued[el] = true
	w.list = append(w.list, el)
}

// GetNext pops the oldest element. Returns the zero value on an empty list.
func (w *Worklist[T]) GetNext() (ret T) {
	if len(w.list) == 0 {
		return
	}
	next := w.list[0]
	w.list = w.list[1:]
	delete(w.queued, next)
	return next
}

// IsEmpty checks whether the worklist is exhausted.
func (w *Worklist[T]) IsEmpty() bool {
	return len(w.list) == 0
}

// Process pops elements until the worklist is empty. The iteration function
// receives the next element and a function with which to add more elements.
func (w *Worklist[T]) Process(do func(next T, add func(el T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), w.Add)
	}
}

// Start runs worklist execution preloaded with the given elements.
func Start[T comparable](start []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range start {
		W.Add(e)
	}

	W.Process(do)
}
