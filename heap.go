// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

// HeapEntry is a handle to one element of a [Heap]. The heap keeps the
// index up to date under sift operations, so an entry can be removed
// or reprioritized in O(log n) without searching for it.
//
// index is -1 once the entry has left the heap, a dead handle passed
// back to the heap makes it panic.
type HeapEntry[T any] struct {
	Value T
	index int
}

// Removed reports whether the entry is no longer in its heap.
func (e *HeapEntry[T]) Removed() bool {
	return e.index == -1
}

// Heap is a binary min-heap ordered by less, with stable handles to
// its elements. Push returns a [HeapEntry] that stays valid while the
// element is in the heap and tracks its slot across sifts.
//
// Heap is not safe for concurrent use.
type Heap[T any] struct {
	less  func(a, b T) bool
	items []*HeapEntry[T]
}

// NewHeap returns an empty min-heap ordered by less.
func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

// NewHeapFrom heapifies items in linear time and returns the heap
// along with the handle for each item, in input order.
func NewHeapFrom[T any](less func(a, b T) bool, items []T) (*Heap[T], []*HeapEntry[T]) {
	h := &Heap[T]{
		less:  less,
		items: make([]*HeapEntry[T], len(items)),
	}
	entries := make([]*HeapEntry[T], len(items))
	for i, v := range items {
		e := &HeapEntry[T]{Value: v, index: i}
		h.items[i] = e
		entries[i] = e
	}
	for i := len(items)/2 - 1; i >= 0; i-- {
		h.siftDown(i)
	}
	return h, entries
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// IsEmpty reports whether the heap has no elements.
func (h *Heap[T]) IsEmpty() bool {
	return len(h.items) == 0
}

// Push adds val and returns its handle.
func (h *Heap[T]) Push(val T) *HeapEntry[T] {
	e := &HeapEntry[T]{Value: val, index: len(h.items)}
	h.items = append(h.items, e)
	h.siftUp(e.index)
	return e
}

// Peek returns the minimum element without removing it.
func (h *Heap[T]) Peek() (val T, ok bool) {
	if len(h.items) == 0 {
		return val, false
	}
	return h.items[0].Value, true
}

// Pop removes and returns the minimum element.
func (h *Heap[T]) Pop() (val T, ok bool) {
	if len(h.items) == 0 {
		return val, false
	}
	e := h.items[0]
	h.unlink(0)
	e.index = -1
	return e.Value, true
}

// Remove deletes the element behind e, wherever it sits in the heap.
// It panics if e was already removed.
func (h *Heap[T]) Remove(e *HeapEntry[T]) T {
	if e.index == -1 {
		panic("trove: Heap.Remove, entry already removed")
	}
	h.unlink(e.index)
	e.index = -1
	return e.Value
}

// Fix restores the heap order after the priority of e.Value changed in
// place. It panics if e was already removed.
func (h *Heap[T]) Fix(e *HeapEntry[T]) {
	if e.index == -1 {
		panic("trove: Heap.Fix, entry already removed")
	}
	if !h.siftDown(e.index) {
		h.siftUp(e.index)
	}
}

// Clear removes all elements and marks their handles removed.
func (h *Heap[T]) Clear() {
	for _, e := range h.items {
		e.index = -1
	}
	h.items = h.items[:0]
}

// unlink moves the last element into slot i and sifts it into place.
func (h *Heap[T]) unlink(i int) {
	last := len(h.items) - 1
	if i != last {
		h.items[i] = h.items[last]
		h.items[i].index = i
	}
	h.items[last] = nil
	h.items = h.items[:last]
	if i < last {
		if !h.siftDown(i) {
			h.siftUp(i)
		}
	}
}

func (h *Heap[T]) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.items[i].Value, h.items[parent].Value) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

// siftDown reports whether the element at i moved.
func (h *Heap[T]) siftDown(i int) bool {
	start := i
	n := len(h.items)
	for {
		min := i
		if l := 2*i + 1; l < n && h.less(h.items[l].Value, h.items[min].Value) {
			min = l
		}
		if r := 2*i + 2; r < n && h.less(h.items[r].Value, h.items[min].Value) {
			min = r
		}
		if min == i {
			return i != start
		}
		h.swap(i, min)
		i = min
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}
