package worklist

import "container/heap"

// lessFunc is a comparison function between two elements of type T.
type lessFunc[T any] func(T, T) bool

// _heap satisfies the heap.Interface. It includes a list of elements,
// and a comparison function.
type _heap[T any] struct {
	list []T
	less lessFunc[T]
}

// Len returns the size of the heap.
func (h _heap[T]) Len() int {
	return len(h.list)
}

// Swap interchanges the values of the elements at the given indices.
func (h _heap[T]) Swap(i, j int) {
	l := h.list
	l[i], l[j] = l[j], l[i]
}

// Push appends a given element to the heap.
func (h *_heap[T]) Push(x any) {
	h.list = append(h.list, x.(T))
}

// Pop retrieves the last element in the heap.
func (h *_heap[T]) Pop() any {
	old := h.list
	n := len(old)
	x := old[n-1]
	h.list = old[0 : n-1]
	return x
}

// Less compares two elements in the heap at the given indices.
func (h _heap[T]) Less(i, j int) bool {
	return h.less(h.list[i], h.list[j])
}

var _ heap.Interface = (*_heap[int])(nil)

// Priority is a worklist that pops elements in the order given by a
// comparison function instead of insertion order. Like Worklist, it never
// holds the same element twice.
type Priority[T comparable] struct {
	heap   _heap[T]
	queued map[T]bool
}

// NewPriority creates an empty priority worklist for elements of a given
// type, with the given comparison function.
func NewPriority[T comparable](less lessFunc[T]) *Priority[T] {
	return &Priority[T]{
		heap:   _heap[T]{nil, less},
		queued: make(map[T]bool),
	}
}

// IsEmpty checks whether the priority worklist is exhausted.
func (p *Priority[T]) IsEmpty() bool {
	return len(p.heap.list) == 0
}

// GetNext pops the least element.
func (p *Priority[T]) GetNext() T {
	el := heap.Pop(&p.heap).(T)
	delete(p.queued, el)
	return el
}

// Add inserts the given element, if not already present.
func (p *Priority[T]) Add(x T) {
	if p.queued[x] {
		return
	}

	p.queued[x] = true
	heap.Push(&p.heap, x)
}
