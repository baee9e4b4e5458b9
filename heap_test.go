// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

// checkHeap verifies the heap order and the handle indexes.
func checkHeap[T any](t *testing.T, h *Heap[T]) {
	t.Helper()
	for i, e := range h.items {
		require.Equal(t, i, e.index, "stale handle index")
		if i > 0 {
			parent := (i - 1) / 2
			require.False(t, h.less(e.Value, h.items[parent].Value), "heap order violated at %d", i)
		}
	}
}

func TestHeapPushPop(t *testing.T) {
	t.Parallel()

	h := NewHeap(intLess)
	require.True(t, h.IsEmpty())

	_, ok := h.Peek()
	require.False(t, ok)
	_, ok = h.Pop()
	require.False(t, ok)

	for _, v := range []int{5, 3, 8, 1, 9, 2} {
		h.Push(v)
		checkHeap(t, h)
	}
	require.Equal(t, 6, h.Len())

	v, ok := h.Peek()
	require.True(t, ok)
	require.Equal(t, 1, v)

	var drained []int
	for {
		v, ok := h.Pop()
		if !ok {
			break
		}
		drained = append(drained, v)
	}
	require.Equal(t, []int{1, 2, 3, 5, 8, 9}, drained)
	require.True(t, h.IsEmpty())
}

func TestHeapHandleRemove(t *testing.T) {
	t.Parallel()

	h := NewHeap(intLess)
	e3 := h.Push(3)
	h.Push(1)
	e7 := h.Push(7)
	h.Push(5)

	require.False(t, e3.Removed())
	got := h.Remove(e3)
	require.Equal(t, 3, got)
	require.True(t, e3.Removed())
	require.Equal(t, 3, h.Len())
	checkHeap(t, h)

	// dead handles panic
	require.Panics(t, func() { h.Remove(e3) })
	require.Panics(t, func() { h.Fix(e3) })

	// popped handles are dead too
	v, ok := h.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 5, mustPeek(t, h))

	h.Remove(e7)
	require.Equal(t, []int{5}, drain(h))
}

func TestHeapFix(t *testing.T) {
	t.Parallel()

	h := NewHeap(intLess)
	entries := make([]*HeapEntry[int], 0, 10)
	for _, v := range []int{10, 20, 30, 40, 50} {
		entries = append(entries, h.Push(v))
	}

	// reprioritize 50 to the top
	entries[4].Value = 1
	h.Fix(entries[4])
	checkHeap(t, h)
	require.Equal(t, 1, mustPeek(t, h))

	// and 10 to the bottom
	entries[0].Value = 99
	h.Fix(entries[0])
	checkHeap(t, h)

	require.Equal(t, []int{1, 20, 30, 40, 99}, drain(h))
}

func TestHeapFrom(t *testing.T) {
	t.Parallel()

	items := []int{9, 4, 7, 1, 8, 2}
	h, entries := NewHeapFrom(intLess, items)
	require.Equal(t, len(items), h.Len())
	checkHeap(t, h)

	// handles are in input order regardless of heapify
	for i, e := range entries {
		require.Equal(t, items[i], e.Value)
	}

	h.Remove(entries[0]) // drop the 9
	checkHeap(t, h)
	require.Equal(t, []int{1, 2, 4, 7, 8}, drain(h))
}

func TestHeapClear(t *testing.T) {
	t.Parallel()

	h := NewHeap(intLess)
	e := h.Push(1)
	h.Push(2)

	h.Clear()
	require.True(t, h.IsEmpty())
	require.True(t, e.Removed())
	require.Panics(t, func() { h.Remove(e) })
}

func TestHeapRandomAgainstSort(t *testing.T) {
	t.Parallel()

	prng := rand.New(rand.NewSource(13))

	h := NewHeap(intLess)
	live := map[*HeapEntry[int]]struct{}{}

	for range 5_000 {
		switch {
		case len(live) == 0 || prng.Intn(3) != 0:
			e := h.Push(prng.Intn(1000))
			live[e] = struct{}{}
		default:
			for e := range live {
				if prng.Intn(2) == 0 {
					h.Remove(e)
				} else {
					e.Value = prng.Intn(1000)
					h.Fix(e)
				}
				delete(live, e)
				break
			}
		}
	}
	checkHeap(t, h)

	want := make([]int, 0, h.Len())
	for _, e := range h.items {
		want = append(want, e.Value)
	}
	sort.Ints(want)
	require.Equal(t, want, drain(h))
}

func mustPeek(t *testing.T, h *Heap[int]) int {
	t.Helper()
	v, ok := h.Peek()
	require.True(t, ok)
	return v
}

func drain(h *Heap[int]) []int {
	out := make([]int, 0, h.Len())
	for {
		v, ok := h.Pop()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}
