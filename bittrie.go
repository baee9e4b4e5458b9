// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "iter"

// bitEntry is one key/value pair in a node's collision list. Distinct
// keys may decompose into the same bit sequence, the list is kept
// sorted by the keyer's tie-breaking comparator.
type bitEntry[K any, V any] struct {
	key  K
	val  V
	next *bitEntry[K, V]
}

// bitNode is one node of the path-compressed bitwise trie.
//
// prefix is the compressed label of the incoming edge, the run of bits
// behind the discriminating bit that selected this node in the parent.
// An empty prefix is an immediate branch, a non-empty prefix must
// fully match before descending.
type bitNode[K any, V any] struct {
	prefix BitSeq
	s0, s1 *bitNode[K, V]
	head   *bitEntry[K, V]
}

func (n *bitNode[K, V]) child(bit uint8) *bitNode[K, V] {
	if bit == 0 {
		return n.s0
	}
	return n.s1
}

func (n *bitNode[K, V]) setChild(bit uint8, c *bitNode[K, V]) {
	if bit == 0 {
		n.s0 = c
	} else {
		n.s1 = c
	}
}

func (n *bitNode[K, V]) childCount() int {
	cnt := 0
	if n.s0 != nil {
		cnt++
	}
	if n.s1 != nil {
		cnt++
	}
	return cnt
}

// putEntry inserts or overwrites key in the sorted collision list.
func (n *bitNode[K, V]) putEntry(keyer BitKeyer[K], key K, val V) (prev V, existed bool) {
	pp := &n.head
	for *pp != nil {
		c := keyer.Compare((*pp).key, key)
		if c == 0 {
			prev = (*pp).val
			(*pp).val = val
			return prev, true
		}
		if c > 0 {
			break
		}
		pp = &(*pp).next
	}
	*pp = &bitEntry[K, V]{key: key, val: val, next: *pp}
	return prev, false
}

// getEntry finds key in the sorted collision list.
func (n *bitNode[K, V]) getEntry(keyer BitKeyer[K], key K) (val V, ok bool) {
	for e := n.head; e != nil; e = e.next {
		c := keyer.Compare(e.key, key)
		if c == 0 {
			return e.val, true
		}
		if c > 0 {
			break
		}
	}
	return val, false
}

// removeEntry unlinks key from the sorted collision list.
func (n *bitNode[K, V]) removeEntry(keyer BitKeyer[K], key K) (prev V, existed bool) {
	pp := &n.head
	for *pp != nil {
		c := keyer.Compare((*pp).key, key)
		if c == 0 {
			e := *pp
			prev = e.val
			*pp = e.next
			e.next = nil
			return prev, true
		}
		if c > 0 {
			break
		}
		pp = &(*pp).next
	}
	return prev, false
}

// BitTrie is a PATRICIA-style binary trie over the bit sequences of
// its keys. Chains of single-child nodes are collapsed into compressed
// edge prefixes, splitting an edge on a divergent key creates exactly
// one new branching node and removal consolidates pass-through nodes
// back into maximal compression.
//
// BitTrie additionally supports greedy XOR-metric nearest neighbor
// lookups, see [BitTrie.NearestEntry].
//
// BitTrie is not safe for concurrent use, iterators are fail-fast.
type BitTrie[K any, V any] struct {
	keyer BitKeyer[K]
	root  *bitNode[K, V]

	numEntries int
	modCount   uint64
}

// NewBitTrie returns an empty BitTrie decomposing keys with keyer.
func NewBitTrie[K any, V any](keyer BitKeyer[K]) *BitTrie[K, V] {
	return &BitTrie[K, V]{keyer: keyer}
}

// Len returns the number of entries.
func (t *BitTrie[K, V]) Len() int {
	return t.numEntries
}

// IsEmpty reports whether the trie has no entries.
func (t *BitTrie[K, V]) IsEmpty() bool {
	return t.numEntries == 0
}

// Get returns the value stored for key.
func (t *BitTrie[K, V]) Get(key K) (val V, ok bool) {
	n := t.lookupNode(t.keyer.BitsOf(key))
	if n == nil {
		return val, false
	}
	return n.getEntry(t.keyer, key)
}

// ContainsKey reports whether key has a value.
func (t *BitTrie[K, V]) ContainsKey(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// lookupNode walks the trie along seq and returns the node whose path
// spells exactly seq, or nil.
func (t *BitTrie[K, V]) lookupNode(seq BitSeq) *bitNode[K, V] {
	n := t.root
	if n == nil {
		return nil
	}
	pos := 0
	for {
		if pos == seq.Len() {
			return n
		}
		child := n.child(seq.Bit(pos))
		if child == nil {
			return nil
		}
		run := child.prefix.MatchFrom(seq, pos+1)
		if run != child.prefix.Len() || pos+1+run > seq.Len() {
			return nil
		}
		pos += 1 + run
		n = child
	}
}

// Put stores value under key, returns the previous value if any.
func (t *BitTrie[K, V]) Put(key K, val V) (prev V, existed bool) {
	seq := t.keyer.BitsOf(key)

	if t.root == nil {
		t.root = &bitNode[K, V]{}
	}

	n := t.root
	pos := 0
	for {
		if pos == seq.Len() {
			prev, existed = n.putEntry(t.keyer, key, val)
			if !existed {
				t.numEntries++
				t.modCount++
			}
			return prev, existed
		}

		b := seq.Bit(pos)
		child := n.child(b)
		if child == nil {
			nn := &bitNode[K, V]{prefix: seq.Slice(pos+1, seq.Len())}
			nn.putEntry(t.keyer, key, val)
			n.setChild(b, nn)
			t.numEntries++
			t.modCount++
			return prev, false
		}

		run := child.prefix.MatchFrom(seq, pos+1)
		if run == child.prefix.Len() {
			// full edge match, descend
			pos += 1 + run
			n = child
			continue
		}

		// the new key diverges inside the compressed edge
		rest := pos + 1 + run // first unmatched position in seq

		if rest == seq.Len() {
			// the new suffix is a proper prefix of the edge, insert a
			// value node exactly where the suffix ends
			mid := &bitNode[K, V]{prefix: child.prefix.Slice(0, run)}
			detachBit := child.prefix.Bit(run)
			child.prefix = child.prefix.Slice(run+1, child.prefix.Len())
			mid.setChild(detachBit, child)
			mid.putEntry(t.keyer, key, val)
			n.setChild(b, mid)
		} else {
			// true divergence, exactly one new branching node
			branch := &bitNode[K, V]{prefix: child.prefix.Slice(0, run)}
			oldBit := child.prefix.Bit(run)
			child.prefix = child.prefix.Slice(run+1, child.prefix.Len())
			branch.setChild(oldBit, child)

			nn := &bitNode[K, V]{prefix: seq.Slice(rest+1, seq.Len())}
			nn.putEntry(t.keyer, key, val)
			branch.setChild(seq.Bit(rest), nn)

			n.setChild(b, branch)
		}

		t.numEntries++
		t.modCount++
		return prev, false
	}
}

// Remove deletes the entry for key, returns the removed value if any.
// Pass-through nodes left behind are consolidated bottom-up, the edge
// prefix absorbs the one discriminating bit plus the child's own
// prefix. The descent records the taken edges on an explicit path, so
// the traversal depth is independent of the host call stack.
func (t *BitTrie[K, V]) Remove(key K) (prev V, existed bool) {
	if t.root == nil {
		return prev, false
	}
	seq := t.keyer.BitsOf(key)

	type step struct {
		parent *bitNode[K, V]
		bit    uint8
	}
	path := make([]step, 0, 16)

	n := t.root
	pos := 0
	for pos < seq.Len() {
		b := seq.Bit(pos)
		child := n.child(b)
		if child == nil {
			return prev, false
		}
		run := child.prefix.MatchFrom(seq, pos+1)
		if run != child.prefix.Len() || pos+1+run > seq.Len() {
			return prev, false
		}
		path = append(path, step{n, b})
		pos += 1 + run
		n = child
	}

	prev, existed = n.removeEntry(t.keyer, key)
	if !existed {
		return prev, false
	}

	// consolidate along the path, deepest edge first
	for i := len(path) - 1; i >= 0; i-- {
		parent, b := path[i].parent, path[i].bit
		child := parent.child(b)
		if child.head != nil {
			continue
		}
		switch child.childCount() {
		case 0:
			parent.setChild(b, nil)
		case 1:
			// fold the pass-through node into the edge
			gb := uint8(0)
			grand := child.s0
			if grand == nil {
				gb, grand = 1, child.s1
			}
			grand.prefix = child.prefix.AppendBit(gb).AppendSeq(grand.prefix)
			parent.setChild(b, grand)
		}
	}

	t.numEntries--
	t.modCount++
	if t.root.head == nil && t.root.childCount() == 0 {
		t.root = nil
	}
	return prev, true
}

// NearestKey returns the stored key approximately minimizing the
// bitwise XOR distance to key, see [BitTrie.NearestEntry].
func (t *BitTrie[K, V]) NearestKey(key K) (nearest K, ok bool) {
	nearest, _, ok = t.NearestEntry(key)
	return nearest, ok
}

// NearestEntry returns the stored entry approximately minimizing the
// bitwise XOR distance to key.
//
// The descent is greedy and never backtracks: when the wanted branch
// is absent, whichever sibling branch exists is taken. This is an
// approximation, not a guaranteed global minimum for adversarial key
// sets.
func (t *BitTrie[K, V]) NearestEntry(key K) (nearestKey K, val V, ok bool) {
	if t.root == nil {
		return nearestKey, val, false
	}

	seq := t.keyer.BitsOf(key)
	n := t.root
	pos := 0
	for {
		if n.head != nil && pos >= seq.Len() {
			return n.head.key, n.head.val, true
		}

		want := uint8(0)
		if pos < seq.Len() {
			want = seq.Bit(pos)
		}

		child := n.child(want)
		if child == nil {
			child = n.child(1 - want)
		}
		if child == nil {
			// dead end, settle for the entries here
			if n.head != nil {
				return n.head.key, n.head.val, true
			}
			return nearestKey, val, false
		}

		pos += 1 + child.prefix.Len()
		n = child
	}
}

// All may be used in a for/range loop to iterate through all entries
// in bit order, node entries before the 0-branch before the 1-branch.
//
// Entries must not be inserted or deleted during iteration, otherwise
// the behavior is undefined. However, value updates are permitted.
func (t *BitTrie[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		allBitEntries(t.root, yield)
	}
}

// Keys may be used in a for/range loop, see [BitTrie.All].
func (t *BitTrie[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		allBitEntries(t.root, func(k K, _ V) bool { return yield(k) })
	}
}

// Values may be used in a for/range loop, see [BitTrie.All].
func (t *BitTrie[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		allBitEntries(t.root, func(_ K, v V) bool { return yield(v) })
	}
}

// allBitEntries walks the subtree under root in bit order over an
// explicit node stack and calls yield for every entry. Returns false
// on premature end.
func allBitEntries[K any, V any](root *bitNode[K, V], yield func(K, V) bool) bool {
	if root == nil {
		return true
	}
	stack := []*bitNode[K, V]{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for e := n.head; e != nil; e = e.next {
			if !yield(e.key, e.val) {
				return false
			}
		}

		// push in reverse, s0 explored first
		if n.s1 != nil {
			stack = append(stack, n.s1)
		}
		if n.s0 != nil {
			stack = append(stack, n.s0)
		}
	}
	return true
}

// BitTrieIterator walks a [BitTrie] in bit order over an explicit
// node stack.
//
// The iterator is fail-fast: any structural change to the trie made
// through another path invalidates it, the next call panics. Removal
// through [BitTrieIterator.Remove] is the one exempted mutation.
type BitTrieIterator[K any, V any] struct {
	t     *BitTrie[K, V]
	stack []*bitNode[K, V]
	cur   *bitEntry[K, V]
	stamp uint64

	lastKey K // key last returned by Next, the Remove target
	hasLast bool
}

// Iter returns a fail-fast iterator over all entries in bit order.
func (t *BitTrie[K, V]) Iter() *BitTrieIterator[K, V] {
	it := &BitTrieIterator[K, V]{t: t, stamp: t.modCount}
	if t.root != nil {
		it.stack = append(it.stack, t.root)
	}
	return it
}

// Next returns the next entry. ok is false when the iteration is done.
func (it *BitTrieIterator[K, V]) Next() (key K, val V, ok bool) {
	if it.stamp != it.t.modCount {
		panic("trove: BitTrieIterator, concurrent modification")
	}

	for {
		if e := it.cur; e != nil {
			it.cur = e.next
			it.lastKey, it.hasLast = e.key, true
			return e.key, e.val, true
		}

		if len(it.stack) == 0 {
			it.hasLast = false
			return key, val, false
		}

		n := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		// push in reverse, s0 explored first
		if n.s1 != nil {
			it.stack = append(it.stack, n.s1)
		}
		if n.s0 != nil {
			it.stack = append(it.stack, n.s0)
		}
		it.cur = n.head
	}
}

// Remove deletes the entry last returned by Next without invalidating
// the iterator.
//
// Consolidation after the removal only unlinks nodes the iterator has
// already left behind and mutates edge prefixes, which the traversal
// never re-reads, so the node stack and the chain cursor stay valid,
// just resync the stamp.
func (it *BitTrieIterator[K, V]) Remove() (val V, ok bool) {
	if it.stamp != it.t.modCount {
		panic("trove: BitTrieIterator, concurrent modification")
	}
	if !it.hasLast {
		panic("trove: BitTrieIterator.Remove without a preceding Next")
	}
	it.hasLast = false

	val, ok = it.t.Remove(it.lastKey)
	it.stamp = it.t.modCount
	return val, ok
}
