// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "iter"

// hamtFrame is one level of the iterator stack, an intermediate node
// plus the index of the next child to visit in its compressed array.
type hamtFrame[K comparable, V any] struct {
	n    *intermediateNode[K, V]
	next int
}

// HamtIterator walks a [HamtMap] over an explicit stack of
// (intermediate, child index) frames plus a cursor into the current
// collision chain.
//
// The iterator is fail-fast: any structural change to the map made
// through another path invalidates it, the next call panics. Removal
// through [HamtIterator.Remove] is the one exempted mutation, it
// re-seeks the whole path by hash code afterwards, since deletion and
// collapse can invalidate child indices already on the stack.
type HamtIterator[K comparable, V any] struct {
	m     *HamtMap[K, V]
	stack []hamtFrame[K, V]

	cur     *hamtEntry[K, V] // next entry within the current chain
	curHash uint32

	lastKey  K
	lastHash uint32
	lastOK   bool

	stamp uint64
}

// Iter returns a fail-fast iterator over all entries.
func (m *HamtMap[K, V]) Iter() *HamtIterator[K, V] {
	it := &HamtIterator[K, V]{m: m, stamp: m.modCount}
	switch t := m.root.(type) {
	case nil:
	case *intermediateNode[K, V]:
		it.stack = append(it.stack, hamtFrame[K, V]{n: t})
	case *innerLeafNode[K, V]:
		it.cur, it.curHash = t.head, t.hash
	case *leafNode[K, V]:
		it.cur, it.curHash = t.head, t.hash
	}
	return it
}

// Next returns the next entry. ok is false when the iteration is done.
// The iteration order is the trie's hash-group order, you must not
// rely on it!
func (it *HamtIterator[K, V]) Next() (key K, val V, ok bool) {
	if it.stamp != it.m.modCount {
		panic("trove: HamtIterator, concurrent modification")
	}

	for {
		if e := it.cur; e != nil {
			it.cur = e.next
			it.lastKey, it.lastHash, it.lastOK = e.key, it.curHash, true
			return e.key, e.val, true
		}

		if len(it.stack) == 0 {
			it.lastOK = false
			return key, val, false
		}

		top := &it.stack[len(it.stack)-1]
		if top.next >= top.n.children.Len() {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		child := top.n.children.Items[top.next]
		top.next++

		switch t := child.(type) {
		case *intermediateNode[K, V]:
			it.stack = append(it.stack, hamtFrame[K, V]{n: t})
		case *innerLeafNode[K, V]:
			it.cur, it.curHash = t.head, t.hash
		case *leafNode[K, V]:
			it.cur, it.curHash = t.head, t.hash
		}
	}
}

// Remove deletes the entry last returned by Next without invalidating
// the iterator.
func (it *HamtIterator[K, V]) Remove() (val V, ok bool) {
	if it.stamp != it.m.modCount {
		panic("trove: HamtIterator, concurrent modification")
	}
	if !it.lastOK {
		panic("trove: HamtIterator.Remove without a preceding Next")
	}

	// entries of the current chain still pending after the removal,
	// chain entries keep their identity across collapses
	savedNext := it.cur

	val, ok = it.m.Remove(it.lastKey)
	it.stamp = it.m.modCount
	it.lastOK = false

	it.reseek(savedNext)
	return val, ok
}

// reseek rebuilds the frame stack by re-descending from the root along
// the removed entry's hash. Physical node identity may not have
// survived a collapse or compaction, only the hash path is stable.
func (it *HamtIterator[K, V]) reseek(savedNext *hamtEntry[K, V]) {
	it.stack = it.stack[:0]
	it.cur = savedNext

	n := it.m.root
	depth := 0
	for {
		switch t := n.(type) {
		case nil:
			return

		case *intermediateNode[K, V]:
			grp := hamtIndex(it.lastHash, depth)
			// rank of grp if present, else the first child above the gap
			next := t.children.Rank0(grp) + 1
			it.stack = append(it.stack, hamtFrame[K, V]{n: t, next: next})

			child, ok := t.children.Get(grp)
			if !ok {
				// the slot collapsed away, resume after the gap
				return
			}
			if inter, isInter := child.(*intermediateNode[K, V]); isInter {
				n = inter
				depth++
				continue
			}
			it.enterLeafAfterRemoval(child, savedNext, depth)
			return

		default:
			// the root collapsed down to a single leaf
			it.enterLeafAfterRemoval(n, savedNext, depth)
			return
		}
	}
}

// enterLeafAfterRemoval positions the chain cursor on the leaf-class
// node found on the removed entry's hash path. If a collapse hoisted a
// sibling leaf into the slot, the divergence group decides whether its
// entries were already visited.
func (it *HamtIterator[K, V]) enterLeafAfterRemoval(n hamtNode[K, V], savedNext *hamtEntry[K, V], depth int) {
	var leaf *leafNode[K, V]
	switch t := n.(type) {
	case *innerLeafNode[K, V]:
		leaf = &t.leafNode
	case *leafNode[K, V]:
		leaf = t
	}

	if leaf.hash == it.lastHash {
		it.cur, it.curHash = savedNext, leaf.hash
		return
	}

	d := depth
	for hamtIndex(leaf.hash, d) == hamtIndex(it.lastHash, d) {
		d++
	}
	if hamtIndex(leaf.hash, d) < hamtIndex(it.lastHash, d) {
		// the sibling came first in hash-group order, already visited
		it.cur = nil
		return
	}
	it.cur, it.curHash = leaf.head, leaf.hash
}

// All may be used in a for/range loop to iterate through all entries.
// The iteration order is the trie's hash-group order, you must not
// rely on it!
//
// Entries must not be inserted or deleted during iteration, otherwise
// the behavior is undefined. However, value updates are permitted.
func (m *HamtMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		allHamtEntries(m.root, yield)
	}
}

// Keys may be used in a for/range loop, see [HamtMap.All].
func (m *HamtMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		allHamtEntries(m.root, func(k K, _ V) bool { return yield(k) })
	}
}

// Values may be used in a for/range loop, see [HamtMap.All].
func (m *HamtMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		allHamtEntries(m.root, func(_ K, v V) bool { return yield(v) })
	}
}

func allHamtEntries[K comparable, V any](n hamtNode[K, V], yield func(K, V) bool) bool {
	switch t := n.(type) {
	case nil:
		return true
	case *intermediateNode[K, V]:
		for _, child := range t.children.Items {
			if !allHamtEntries(child, yield) {
				return false
			}
		}
	case *innerLeafNode[K, V]:
		return yieldChain(&t.leafNode, yield)
	case *leafNode[K, V]:
		return yieldChain(t, yield)
	}
	return true
}

func yieldChain[K comparable, V any](l *leafNode[K, V], yield func(K, V) bool) bool {
	for e := l.head; e != nil; e = e.next {
		if !yield(e.key, e.val) {
			return false
		}
	}
	return true
}
