// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"reflect"

	"github.com/trovekit/trove/internal/sparse"
)

const (
	hamtStride   = 6                                             // bits per trie level
	hamtWidth    = 1 << hamtStride                               // 64, fan-out per level
	hamtHashBits = 32                                            // full hash width
	hamtMaxDepth = (hamtHashBits + hamtStride - 1) / hamtStride  // 6
)

// hamtIndex extracts the 6-bit group of hash consumed at depth.
func hamtIndex(hash uint32, depth int) uint8 {
	return uint8(hash>>(depth*hamtStride)) & (hamtWidth - 1)
}

// hamtEntry is one key/value pair in a collision chain, all entries of
// a chain share the same 32-bit hash.
type hamtEntry[K comparable, V any] struct {
	key  K
	val  V
	next *hamtEntry[K, V]
}

// hamtNode is the node capability shared by the three node kinds.
type hamtNode[K comparable, V any] interface {
	// size returns the number of entries in this subtree.
	size() int
}

// leafNode is a chain of colliding key/value pairs sharing one hash.
// It sits where the remaining hash bits are exhausted.
type leafNode[K comparable, V any] struct {
	hash uint32
	head *hamtEntry[K, V]
	n    int
}

// innerLeafNode is a leaf promoted to stand in for an entire linear
// chain of single-child intermediate nodes. It is expanded into real
// intermediate nodes when a second, divergent hash arrives and
// collapsed back when a removal leaves only one descendant.
type innerLeafNode[K comparable, V any] struct {
	leafNode[K, V]
}

// intermediateNode is a fan-out node, a bitmap of up to 64 present
// children with a popcount compressed children array.
type intermediateNode[K comparable, V any] struct {
	children sparse.Array64[hamtNode[K, V]]
	n        int
}

func (l *leafNode[K, V]) size() int         { return l.n }
func (t *intermediateNode[K, V]) size() int { return t.n }

func (l *leafNode[K, V]) get(key K) (val V, ok bool) {
	for e := l.head; e != nil; e = e.next {
		if e.key == key {
			return e.val, true
		}
	}
	return val, false
}

// put overwrites the value for key or prepends a new entry.
func (l *leafNode[K, V]) put(key K, val V) (prev V, existed bool) {
	for e := l.head; e != nil; e = e.next {
		if e.key == key {
			prev = e.val
			e.val = val
			return prev, true
		}
	}
	l.head = &hamtEntry[K, V]{key: key, val: val, next: l.head}
	l.n++
	return prev, false
}

// remove unlinks the entry for key from the chain.
func (l *leafNode[K, V]) remove(key K) (prev V, existed bool) {
	for pp := &l.head; *pp != nil; pp = &(*pp).next {
		if e := *pp; e.key == key {
			prev = e.val
			*pp = e.next
			e.next = nil
			l.n--
			return prev, true
		}
	}
	return prev, false
}

// newHamtLeaf places a fresh single-entry leaf at depth. Leaves above
// the exhausted depth stand in for their whole branch, see
// [innerLeafNode].
func newHamtLeaf[K comparable, V any](depth int, hash uint32, key K, val V) hamtNode[K, V] {
	leaf := leafNode[K, V]{hash: hash, head: &hamtEntry[K, V]{key: key, val: val}, n: 1}
	if depth >= hamtMaxDepth {
		return &leaf
	}
	return &innerLeafNode[K, V]{leafNode: leaf}
}

// HamtMap is a hash array-mapped trie map, keyed by successive 6-bit
// groups of the full 32-bit hash of the key. The tree depth never
// exceeds 6.
//
// The raw hash is consumed without secondary mixing, the full width is
// spread across the trie levels, pathological clustering from a poor
// hash function is a known, accepted risk.
//
// HamtMap is not safe for concurrent use, iterators are fail-fast.
type HamtMap[K comparable, V any] struct {
	hash func(K) uint32
	root hamtNode[K, V]

	numEntries int
	modCount   uint64
}

// NewHamtMap returns an empty HamtMap hashing keys with hash.
func NewHamtMap[K comparable, V any](hash func(K) uint32) *HamtMap[K, V] {
	return &HamtMap[K, V]{hash: hash}
}

// Len returns the number of entries.
func (m *HamtMap[K, V]) Len() int {
	return m.numEntries
}

// IsEmpty reports whether the map has no entries.
func (m *HamtMap[K, V]) IsEmpty() bool {
	return m.numEntries == 0
}

// Get returns the value stored for key.
func (m *HamtMap[K, V]) Get(key K) (val V, ok bool) {
	hash := m.hash(key)
	n := m.root
	depth := 0
	for n != nil {
		switch t := n.(type) {
		case *intermediateNode[K, V]:
			n, _ = t.children.Get(hamtIndex(hash, depth))
			depth++
		case *innerLeafNode[K, V]:
			if t.hash != hash {
				return val, false
			}
			return t.get(key)
		case *leafNode[K, V]:
			if t.hash != hash {
				return val, false
			}
			return t.get(key)
		}
	}
	return val, false
}

// ContainsKey reports whether key has a value.
func (m *HamtMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// ContainsValue reports whether any entry holds val, compared with
// reflect.DeepEqual. This is a full scan.
func (m *HamtMap[K, V]) ContainsValue(val V) bool {
	found := false
	m.All()(func(_ K, v V) bool {
		if reflect.DeepEqual(v, val) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Put stores value under key, returns the previous value if any.
func (m *HamtMap[K, V]) Put(key K, val V) (prev V, existed bool) {
	hash := m.hash(key)

	if m.root == nil {
		m.root = newHamtLeaf(0, hash, key, val)
		m.numEntries = 1
		m.modCount++
		return prev, false
	}

	// ancestors whose subtree counts grow when a new entry lands
	path := make([]*intermediateNode[K, V], 0, hamtMaxDepth)

	n := m.root
	depth := 0
	for {
		switch t := n.(type) {
		case *intermediateNode[K, V]:
			path = append(path, t)
			idx := hamtIndex(hash, depth)
			child, ok := t.children.Get(idx)
			if !ok {
				t.children.InsertAt(idx, newHamtLeaf(depth+1, hash, key, val))
				m.countNewEntry(path)
				return prev, false
			}
			n = child
			depth++

		case *innerLeafNode[K, V]:
			if t.hash == hash {
				prev, existed = t.put(key, val)
				if !existed {
					m.countNewEntry(path)
				}
				return prev, existed
			}
			// the inner leaf must first be expanded into a real
			// intermediate chain, then the descent retries at the
			// same depth
			exp := expandInnerLeaf(t, depth, hash)
			m.replaceChild(path, hash, depth, exp)
			n = exp

		case *leafNode[K, V]:
			// remaining hash bits are exhausted, hashes are equal here
			prev, existed = t.put(key, val)
			if !existed {
				m.countNewEntry(path)
			}
			return prev, existed
		}
	}
}

// countNewEntry bumps the subtree counts on the descent path and the
// map totals after a new entry landed.
func (m *HamtMap[K, V]) countNewEntry(path []*intermediateNode[K, V]) {
	for _, t := range path {
		t.n++
	}
	m.numEntries++
	m.modCount++
}

// replaceChild swaps the node reached at depth on the hash path with
// repl, in the last intermediate on path or at the root.
func (m *HamtMap[K, V]) replaceChild(path []*intermediateNode[K, V], hash uint32, depth int, repl hamtNode[K, V]) {
	if len(path) == 0 {
		m.root = repl
		return
	}
	path[len(path)-1].children.InsertAt(hamtIndex(hash, depth-1), repl)
}

// expandInnerLeaf walks forward bit-group by bit-group until the leaf
// hash and otherHash diverge, synthesizing the minimal chain of
// intermediate nodes, and relocates the leaf below the divergence
// point. The caller retries its insert against the returned chain.
func expandInnerLeaf[K comparable, V any](t *innerLeafNode[K, V], depth int, otherHash uint32) *intermediateNode[K, V] {
	top := &intermediateNode[K, V]{n: t.n}
	cur := top

	d := depth
	for hamtIndex(t.hash, d) == hamtIndex(otherHash, d) {
		next := &intermediateNode[K, V]{n: t.n}
		cur.children.InsertAt(hamtIndex(t.hash, d), next)
		cur = next
		d++
	}

	var relocated hamtNode[K, V] = t
	if d+1 >= hamtMaxDepth {
		// the remaining bits below the divergence are exhausted,
		// the inner leaf degrades to a plain leaf
		relocated = &t.leafNode
	}
	cur.children.InsertAt(hamtIndex(t.hash, d), relocated)

	return top
}

// Remove deletes the entry for key, returns the removed value if any.
// Emptied leaves are unlinked, the bitmap and children array of the
// parent are compacted and single-descendant intermediates collapse
// back into inner leaves.
func (m *HamtMap[K, V]) Remove(key K) (prev V, existed bool) {
	hash := m.hash(key)
	if m.root == nil {
		return prev, false
	}

	type step struct {
		inter *intermediateNode[K, V]
		idx   uint8
	}
	path := make([]step, 0, hamtMaxDepth)

	var leaf *leafNode[K, V]

	n := m.root
	depth := 0
descend:
	for {
		switch t := n.(type) {
		case *intermediateNode[K, V]:
			idx := hamtIndex(hash, depth)
			child, ok := t.children.Get(idx)
			if !ok {
				return prev, false
			}
			path = append(path, step{t, idx})
			n = child
			depth++

		case *innerLeafNode[K, V]:
			if t.hash != hash {
				return prev, false
			}
			leaf = &t.leafNode
			break descend

		case *leafNode[K, V]:
			if t.hash != hash {
				return prev, false
			}
			leaf = t
			break descend
		}
	}

	prev, existed = leaf.remove(key)
	if !existed {
		return prev, false
	}

	m.numEntries--
	m.modCount++
	for _, s := range path {
		s.inter.n--
	}

	if leaf.n == 0 {
		if len(path) == 0 {
			m.root = nil
			return prev, true
		}
		last := path[len(path)-1]
		last.inter.children.DeleteAt(last.idx)
	}

	// tryCollapse bottom-up: an intermediate with exactly one remaining
	// leaf-class descendant folds back into an inner leaf.
	for i := len(path) - 1; i >= 0; i-- {
		inter := path[i].inter
		if inter.children.Len() != 1 {
			break
		}

		collapsed := asInnerLeaf[K, V](inter.children.Items[0])
		if collapsed == nil {
			// single child is an intermediate, keep the chain
			break
		}

		if i == 0 {
			m.root = collapsed
		} else {
			up := path[i-1]
			up.inter.children.InsertAt(up.idx, collapsed)
		}
	}

	return prev, true
}

// asInnerLeaf rewraps a leaf-class node as an inner leaf, or nil if n
// is not leaf-class. The collision chain keeps its identity.
func asInnerLeaf[K comparable, V any](n hamtNode[K, V]) hamtNode[K, V] {
	switch c := n.(type) {
	case *innerLeafNode[K, V]:
		return c
	case *leafNode[K, V]:
		return &innerLeafNode[K, V]{leafNode: *c}
	}
	return nil
}

// Clear removes all entries.
func (m *HamtMap[K, V]) Clear() {
	m.root = nil
	m.numEntries = 0
	m.modCount++
}

// depth returns the maximum tree depth, 0 for the empty map.
// Used by invariant checks, the depth never exceeds 6.
func (m *HamtMap[K, V]) depth() int {
	var rec func(n hamtNode[K, V]) int
	rec = func(n hamtNode[K, V]) int {
		t, ok := n.(*intermediateNode[K, V])
		if !ok {
			return 0
		}
		deepest := 0
		for _, child := range t.children.Items {
			deepest = max(deepest, rec(child))
		}
		return deepest + 1
	}
	if m.root == nil {
		return 0
	}
	return rec(m.root)
}

// HashString is a 32-bit FNV-1a over the bytes of s.
func HashString(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// HashBytes is a 32-bit FNV-1a over b.
func HashBytes(b []byte) uint32 {
	return HashString(string(b))
}

// HashUint32 is the identity hash, the full key width is consumed
// across the trie levels.
func HashUint32(v uint32) uint32 {
	return v
}

// HashUint64 folds the upper half onto the lower.
func HashUint64(v uint64) uint32 {
	return uint32(v) ^ uint32(v>>32)
}
