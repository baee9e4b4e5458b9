// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"iter"
	"math/bits"
)

// treeNode is one node of the order-statistics red-black tree backing
// [TreeList].
//
// Invariant: size == 1 + size(left) + size(right), maintained across
// every rotation and structural change.
type treeNode[T any] struct {
	val    T
	left   *treeNode[T]
	right  *treeNode[T]
	parent *treeNode[T]
	size   int
	red    bool
}

func nodeSize[T any](n *treeNode[T]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func isRed[T any](n *treeNode[T]) bool {
	return n != nil && n.red
}

// TreeList is a list backed by a red-black tree augmented with subtree
// sizes, giving O(log n) indexed get, insert and remove instead of the
// O(n) shifting of a slice or the O(n) walking of a linked list.
//
// The tree is ordered by position, not by key: descending for an index
// compares against the left subtree size, never the element values.
//
// TreeList is not safe for concurrent use, iterators are fail-fast.
type TreeList[T any] struct {
	root     *treeNode[T]
	modCount uint64
}

// NewTreeList returns an empty TreeList.
func NewTreeList[T any]() *TreeList[T] {
	return &TreeList[T]{}
}

// NewTreeListFrom builds a perfectly balanced tree from items in
// linear time, avoiding the per-element rotation cost of repeated
// Add calls. Nodes on the deepest level are colored red, all others
// black.
func NewTreeListFrom[T any](items []T) *TreeList[T] {
	t := &TreeList[T]{}
	if len(items) == 0 {
		return t
	}

	// depth of the deepest, incomplete level of the mid-split tree,
	// for a perfect tree this level is empty and all nodes stay black
	redDepth := bits.Len(uint(len(items))+1) - 1

	t.root = buildBalanced(items, 0, redDepth, nil)
	return t
}

func buildBalanced[T any](items []T, depth, redDepth int, parent *treeNode[T]) *treeNode[T] {
	if len(items) == 0 {
		return nil
	}
	mid := len(items) / 2
	n := &treeNode[T]{
		val:    items[mid],
		parent: parent,
		size:   len(items),
		red:    depth == redDepth,
	}
	n.left = buildBalanced(items[:mid], depth+1, redDepth, n)
	n.right = buildBalanced(items[mid+1:], depth+1, redDepth, n)
	return n
}

// Len returns the number of elements.
func (t *TreeList[T]) Len() int {
	return nodeSize(t.root)
}

// IsEmpty reports whether the list has no elements.
func (t *TreeList[T]) IsEmpty() bool {
	return t.root == nil
}

// nodeAt returns the node holding index i, the caller guarantees
// 0 <= i < Len().
func (t *TreeList[T]) nodeAt(i int) *treeNode[T] {
	n := t.root
	for {
		ls := nodeSize(n.left)
		switch {
		case i < ls:
			n = n.left
		case i == ls:
			return n
		default:
			i -= ls + 1
			n = n.right
		}
	}
}

// Get returns the element at index i.
// It panics if i is out of range.
func (t *TreeList[T]) Get(i int) T {
	if i < 0 || i >= t.Len() {
		panic("trove: TreeList.Get, index out of range")
	}
	return t.nodeAt(i).val
}

// Set replaces the element at index i and returns the previous one.
// It panics if i is out of range.
func (t *TreeList[T]) Set(i int, val T) (prev T) {
	if i < 0 || i >= t.Len() {
		panic("trove: TreeList.Set, index out of range")
	}
	n := t.nodeAt(i)
	prev = n.val
	n.val = val
	return prev
}

// Add appends val at the end of the list.
func (t *TreeList[T]) Add(val T) {
	t.Insert(t.Len(), val)
}

// AddAll appends all items at the end of the list.
func (t *TreeList[T]) AddAll(items []T) {
	for _, item := range items {
		t.Add(item)
	}
}

// Insert places val at index i, shifting later elements one position
// to the right. The descent is positional: left when i fits into the
// left subtree, right with the index reduced. Every node on the
// insertion path has its size incremented.
// It panics if i is not in [0..Len()].
func (t *TreeList[T]) Insert(i int, val T) {
	if i < 0 || i > t.Len() {
		panic("trove: TreeList.Insert, index out of range")
	}
	t.modCount++

	if t.root == nil {
		t.root = &treeNode[T]{val: val, size: 1}
		return
	}

	n := t.root
	for {
		n.size++
		ls := nodeSize(n.left)
		if i <= ls {
			if n.left == nil {
				n.left = &treeNode[T]{val: val, size: 1, red: true, parent: n}
				n = n.left
				break
			}
			n = n.left
		} else {
			i -= ls + 1
			if n.right == nil {
				n.right = &treeNode[T]{val: val, size: 1, red: true, parent: n}
				n = n.right
				break
			}
			n = n.right
		}
	}

	t.insertionRebalance(n)
}

// RemoveAt deletes and returns the element at index i.
// It panics if i is out of range.
func (t *TreeList[T]) RemoveAt(i int) T {
	if i < 0 || i >= t.Len() {
		panic("trove: TreeList.RemoveAt, index out of range")
	}
	t.modCount++

	n := t.nodeAt(i)
	val := n.val

	if n.left != nil && n.right != nil {
		// swap with the in-order predecessor, then physically delete
		// the predecessor node, which has at most one child
		pred := n.left
		for pred.right != nil {
			pred = pred.right
		}
		n.val = pred.val
		n = pred
	}

	// n has at most one child
	child := n.left
	if child == nil {
		child = n.right
	}

	// decrement the sizes on the way up before rebalancing
	for a := n.parent; a != nil; a = a.parent {
		a.size--
	}

	parent := n.parent
	t.replaceChild(parent, n, child)

	if !n.red {
		if isRed(child) {
			child.red = false
		} else {
			t.deletionRebalance(child, parent)
		}
	}

	n.parent, n.left, n.right = nil, nil, nil
	return val
}

// Clear removes all elements.
func (t *TreeList[T]) Clear() {
	t.root = nil
	t.modCount++
}

// replaceChild links repl into parent where old used to hang.
func (t *TreeList[T]) replaceChild(parent, old, repl *treeNode[T]) {
	if parent == nil {
		t.root = repl
	} else if parent.left == old {
		parent.left = repl
	} else {
		parent.right = repl
	}
	if repl != nil {
		repl.parent = parent
	}
}

// rotateLeft rotates n down to the left. The subtree sizes of the two
// rotated nodes are recomputed from their post-rotation children, no
// subtree re-scan is needed.
func (t *TreeList[T]) rotateLeft(n *treeNode[T]) {
	r := n.right
	n.right = r.left
	if r.left != nil {
		r.left.parent = n
	}
	t.replaceChild(n.parent, n, r)
	r.left = n
	n.parent = r

	n.size = 1 + nodeSize(n.left) + nodeSize(n.right)
	r.size = 1 + nodeSize(r.left) + nodeSize(r.right)
}

// rotateRight rotates n down to the right, see [TreeList.rotateLeft].
func (t *TreeList[T]) rotateRight(n *treeNode[T]) {
	l := n.left
	n.left = l.right
	if l.right != nil {
		l.right.parent = n
	}
	t.replaceChild(n.parent, n, l)
	l.right = n
	n.parent = l

	n.size = 1 + nodeSize(n.left) + nodeSize(n.right)
	l.size = 1 + nodeSize(l.left) + nodeSize(l.right)
}

// insertionRebalance restores the red-black coloring after n was
// linked in red.
func (t *TreeList[T]) insertionRebalance(n *treeNode[T]) {
	for isRed(n.parent) {
		parent := n.parent
		grand := parent.parent // red parent is never the root

		if parent == grand.left {
			uncle := grand.right
			if isRed(uncle) {
				parent.red = false
				uncle.red = false
				grand.red = true
				n = grand
				continue
			}
			if n == parent.right {
				n = parent
				t.rotateLeft(n)
				parent = n.parent
			}
			parent.red = false
			grand.red = true
			t.rotateRight(grand)
		} else {
			uncle := grand.left
			if isRed(uncle) {
				parent.red = false
				uncle.red = false
				grand.red = true
				n = grand
				continue
			}
			if n == parent.left {
				n = parent
				t.rotateRight(n)
				parent = n.parent
			}
			parent.red = false
			grand.red = true
			t.rotateLeft(grand)
		}
	}
	t.root.red = false
}

// deletionRebalance restores the red-black invariants after a black
// node was unlinked. n is the (possibly nil) child that took its
// place, parent its new parent.
func (t *TreeList[T]) deletionRebalance(n, parent *treeNode[T]) {
	for parent != nil && !isRed(n) {
		if n == parent.left {
			sib := parent.right
			if isRed(sib) {
				sib.red = false
				parent.red = true
				t.rotateLeft(parent)
				sib = parent.right
			}
			if !isRed(sib.left) && !isRed(sib.right) {
				sib.red = true
				n = parent
				parent = n.parent
				continue
			}
			if !isRed(sib.right) {
				sib.left.red = false
				sib.red = true
				t.rotateRight(sib)
				sib = parent.right
			}
			sib.red = parent.red
			parent.red = false
			sib.right.red = false
			t.rotateLeft(parent)
			n = t.root
			break
		}

		sib := parent.left
		if isRed(sib) {
			sib.red = false
			parent.red = true
			t.rotateRight(parent)
			sib = parent.left
		}
		if !isRed(sib.left) && !isRed(sib.right) {
			sib.red = true
			n = parent
			parent = n.parent
			continue
		}
		if !isRed(sib.left) {
			sib.right.red = false
			sib.red = true
			t.rotateLeft(sib)
			sib = parent.left
		}
		sib.red = parent.red
		parent.red = false
		sib.left.red = false
		t.rotateRight(parent)
		n = t.root
		break
	}
	if n != nil {
		n.red = false
	}
}

// All may be used in a for/range loop to iterate through the elements
// with their indexes, in list order.
//
// Elements must not be inserted or deleted during iteration, otherwise
// the behavior is undefined.
func (t *TreeList[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		// in-order walk over an explicit stack
		stack := make([]*treeNode[T], 0, 32)
		n := t.root
		i := 0
		for n != nil || len(stack) > 0 {
			for n != nil {
				stack = append(stack, n)
				n = n.left
			}
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(i, n.val) {
				return
			}
			i++
			n = n.right
		}
	}
}

// Slice returns the elements as a fresh slice, in list order.
func (t *TreeList[T]) Slice() []T {
	s := make([]T, 0, t.Len())
	for _, v := range t.All() {
		s = append(s, v)
	}
	return s
}

// TreeListIterator walks a [TreeList] by index. It is fail-fast: any
// structural change to the list made through another path invalidates
// it, the next call panics. Removal through
// [TreeListIterator.Remove] is the one exempted mutation.
type TreeListIterator[T any] struct {
	t     *TreeList[T]
	idx   int
	ret   bool // an element was returned and not yet removed
	stamp uint64
}

// Iter returns a fail-fast iterator over the elements in list order.
func (t *TreeList[T]) Iter() *TreeListIterator[T] {
	return &TreeListIterator[T]{t: t, stamp: t.modCount}
}

// Next returns the next element. ok is false when the iteration is
// done.
func (it *TreeListIterator[T]) Next() (val T, ok bool) {
	if it.stamp != it.t.modCount {
		panic("trove: TreeListIterator, concurrent modification")
	}
	if it.idx >= it.t.Len() {
		it.ret = false
		return val, false
	}
	val = it.t.Get(it.idx)
	it.idx++
	it.ret = true
	return val, true
}

// Remove deletes the element last returned by Next without
// invalidating the iterator.
func (it *TreeListIterator[T]) Remove() T {
	if it.stamp != it.t.modCount {
		panic("trove: TreeListIterator, concurrent modification")
	}
	if !it.ret {
		panic("trove: TreeListIterator.Remove without a preceding Next")
	}
	it.idx--
	it.ret = false
	val := it.t.RemoveAt(it.idx)
	it.stamp = it.t.modCount
	return val
}
