// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

// trieNode is one node of the generic composite trie.
//
// A node is identified by a single path component and holds an
// optional value. The presence flag is distinct from the value being
// the zero value. The leaf key is the full original key, kept because
// components do not have to round-trip to a key.
//
// Invariant: count == (1 if hasValue else 0) + sum of children counts,
// maintained incrementally on every insert and remove.
//
// Invariant: a node with no value and no children is pruned
// immediately after removal, except the root.
type trieNode[K any, C comparable, V any] struct {
	comp     C
	parent   *trieNode[K, C, V] // navigation only, nil for the root
	children map[C]*trieNode[K, C, V]
	count    int

	leafKey  K
	value    V
	hasValue bool
}

// child returns the child for component c, or nil.
func (n *trieNode[K, C, V]) child(c C) *trieNode[K, C, V] {
	if n.children == nil {
		return nil
	}
	return n.children[c]
}

// linkChild creates and links a new empty child for component c.
func (n *trieNode[K, C, V]) linkChild(c C) *trieNode[K, C, V] {
	if n.children == nil {
		n.children = make(map[C]*trieNode[K, C, V])
	}
	child := &trieNode[K, C, V]{comp: c, parent: n}
	n.children[c] = child
	return child
}

// isDead reports whether the node carries neither a value nor children.
// Dead non-root nodes must not stay linked.
func (n *trieNode[K, C, V]) isDead() bool {
	return !n.hasValue && len(n.children) == 0
}

// get walks from n following one child per component and returns the
// reached node, or nil on the first missing edge.
func (n *trieNode[K, C, V]) get(comps []C) *trieNode[K, C, V] {
	for _, c := range comps {
		if n = n.child(c); n == nil {
			return nil
		}
	}
	return n
}

// ensurePath is the same walk as get but creates missing nodes lazily.
func (n *trieNode[K, C, V]) ensurePath(comps []C) *trieNode[K, C, V] {
	for _, c := range comps {
		child := n.child(c)
		if child == nil {
			child = n.linkChild(c)
		}
		n = child
	}
	return n
}

// setValue stores leafKey/value at n. If no prior value was present
// the counts of n and every ancestor are incremented.
func (n *trieNode[K, C, V]) setValue(leafKey K, value V) (prev V, existed bool) {
	prev, existed = n.value, n.hasValue

	if !n.hasValue {
		for m := n; m != nil; m = m.parent {
			m.count++
		}
	}

	n.leafKey = leafKey
	n.value = value
	n.hasValue = true
	return prev, existed
}

// clearValue removes the value at n, decrements the counts of n and
// every ancestor and prunes the now dead ancestor chain bottom-up.
// No-op if n holds no value.
func (n *trieNode[K, C, V]) clearValue() (prev V, existed bool) {
	if !n.hasValue {
		return prev, false
	}
	prev = n.value

	var zeroK K
	var zeroV V
	n.leafKey = zeroK
	n.value = zeroV
	n.hasValue = false

	for m := n; m != nil; m = m.parent {
		m.count--
	}

	n.pruneUp()
	return prev, true
}

// pruneUp unlinks n from its parent if n is dead, then walks the
// ancestor chain doing the same. The root is never unlinked.
func (n *trieNode[K, C, V]) pruneUp() {
	for n != nil && n.parent != nil && n.isDead() {
		parent := n.parent
		delete(parent.children, n.comp)
		n.parent = nil
		n = parent
	}
}
