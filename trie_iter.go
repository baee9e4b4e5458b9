// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "iter"

// trieFrame is one level of the iterator's dedicated node stack,
// a node plus a snapshot of its child components and a cursor.
type trieFrame[K any, C comparable, V any] struct {
	n     *trieNode[K, C, V]
	comps []C
	idx   int
}

// TrieIterator walks a [TrieMap] (or a [PrefixMap]) depth-first in
// pre-order over an explicit stack, so the traversal depth is
// independent of the host call stack.
//
// The iterator is fail-fast: any structural change to the map made
// through another path invalidates it, the next call panics.
// Removal through [TrieIterator.Remove] is the one exempted mutation.
type TrieIterator[K any, C comparable, V any] struct {
	t       *TrieMap[K, C, V]
	stack   []trieFrame[K, C, V]
	pending *trieNode[K, C, V] // start node, its own value not yet visited
	cur     *trieNode[K, C, V] // node whose entry was last returned
	stamp   uint64
}

// Iter returns a fail-fast iterator over all entries.
func (t *TrieMap[K, C, V]) Iter() *TrieIterator[K, C, V] {
	it := &TrieIterator[K, C, V]{t: t, stamp: t.modCount, pending: t.root}
	it.push(t.root)
	return it
}

// Iter returns a fail-fast iterator over the view's entries. A view
// whose prefix holds no entries yields nothing.
func (p *PrefixMap[K, C, V]) Iter() *TrieIterator[K, C, V] {
	it := &TrieIterator[K, C, V]{t: p.parent, stamp: p.parent.modCount}
	if root := p.node(); root != nil {
		it.pending = root
		it.push(root)
	}
	return it
}

func (it *TrieIterator[K, C, V]) push(n *trieNode[K, C, V]) {
	comps := make([]C, 0, len(n.children))
	for c := range n.children {
		comps = append(comps, c)
	}
	it.stack = append(it.stack, trieFrame[K, C, V]{n: n, comps: comps})
}

// Next returns the next entry in pre-order. ok is false when the
// iteration is done.
func (it *TrieIterator[K, C, V]) Next() (key K, val V, ok bool) {
	if it.stamp != it.t.modCount {
		panic("trove: TrieIterator, concurrent modification")
	}

	if n := it.pending; n != nil {
		it.pending = nil
		if n.hasValue {
			it.cur = n
			return n.leafKey, n.value, true
		}
	}

	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]

		if top.idx < len(top.comps) {
			c := top.comps[top.idx]
			top.idx++

			// child may have been pruned by Remove since the snapshot
			child := top.n.child(c)
			if child == nil {
				continue
			}

			it.push(child)
			if child.hasValue {
				it.cur = child
				return child.leafKey, child.value, true
			}
			continue
		}

		it.stack = it.stack[:len(it.stack)-1]
	}

	it.cur = nil
	return key, val, false
}

// Remove deletes the entry last returned by Next without invalidating
// the iterator. Dead ancestors are pruned retroactively, the frames on
// the stack skip pruned children on their own.
func (it *TrieIterator[K, C, V]) Remove() (val V, ok bool) {
	if it.stamp != it.t.modCount {
		panic("trove: TrieIterator, concurrent modification")
	}
	if it.cur == nil {
		panic("trove: TrieIterator.Remove without a preceding Next")
	}

	val, ok = it.cur.clearValue()
	it.cur = nil

	// pruned frames run empty by themselves, just resync the stamp
	it.t.modCount++
	it.stamp = it.t.modCount
	return val, ok
}

// All may be used in a for/range loop to iterate through all entries.
// The iteration order is the trie's pre-order, sibling order is
// undefined and you must not rely on it!
//
// Entries must not be inserted or deleted during iteration, otherwise
// the behavior is undefined. However, value updates are permitted.
func (t *TrieMap[K, C, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		allEntries(t.root, yield)
	}
}

// Keys may be used in a for/range loop, see [TrieMap.All].
func (t *TrieMap[K, C, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		allEntries(t.root, func(k K, _ V) bool { return yield(k) })
	}
}

// Values may be used in a for/range loop, see [TrieMap.All].
func (t *TrieMap[K, C, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		allEntries(t.root, func(_ K, v V) bool { return yield(v) })
	}
}

// All may be used in a for/range loop to iterate through the view's
// entries, see [TrieMap.All].
func (p *PrefixMap[K, C, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if n := p.node(); n != nil {
			allEntries(n, yield)
		}
	}
}

// allEntries walks the subtree under n pre-order over an explicit
// frame stack and calls yield for every entry. Returns false on
// premature end.
func allEntries[K any, C comparable, V any](n *trieNode[K, C, V], yield func(K, V) bool) bool {
	if n.hasValue && !yield(n.leafKey, n.value) {
		return false
	}

	stack := []trieFrame[K, C, V]{newFrame(n)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.idx < len(top.comps) {
			c := top.comps[top.idx]
			top.idx++

			child := top.n.child(c)
			if child == nil {
				continue
			}
			if child.hasValue && !yield(child.leafKey, child.value) {
				return false
			}
			stack = append(stack, newFrame(child))
			continue
		}

		stack = stack[:len(stack)-1]
	}
	return true
}

func newFrame[K any, C comparable, V any](n *trieNode[K, C, V]) trieFrame[K, C, V] {
	comps := make([]C, 0, len(n.children))
	for c := range n.children {
		comps = append(comps, c)
	}
	return trieFrame[K, C, V]{n: n, comps: comps}
}
