// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "reflect"

// Keyer decomposes a key into an ordered, finite sequence of path
// components, the contract consumed by [TrieMap].
type Keyer[K any, C comparable] interface {
	Components(K) []C
}

// ByteComponents decomposes string keys into their bytes.
type ByteComponents struct{}

func (ByteComponents) Components(s string) []byte { return []byte(s) }

// RuneComponents decomposes string keys into their runes.
type RuneComponents struct{}

func (RuneComponents) Components(s string) []rune { return []rune(s) }

// Entry is one key/value pair, the unit of bulk operations.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// TrieMap is a map whose keys are decomposed into path components by a
// [Keyer] and stored in a composite trie, one trie level per component.
//
// Storing the full key at the leaf keeps the map usable with keyers
// whose components do not round-trip to a key.
//
// TrieMap is not safe for concurrent use, iterators are fail-fast.
type TrieMap[K any, C comparable, V any] struct {
	keyer Keyer[K, C]
	root  *trieNode[K, C, V]

	// modCount is the fail-fast stamp, bumped on every structural change.
	modCount uint64

	// gen is bumped on bulk structural changes only, prefix views
	// revalidate their memoized root against it.
	gen uint64
}

// NewTrieMap returns an empty TrieMap using keyer for decomposition.
func NewTrieMap[K any, C comparable, V any](keyer Keyer[K, C]) *TrieMap[K, C, V] {
	return &TrieMap[K, C, V]{
		keyer: keyer,
		root:  &trieNode[K, C, V]{},
	}
}

// Len returns the number of entries.
func (t *TrieMap[K, C, V]) Len() int {
	return t.root.count
}

// IsEmpty reports whether the map has no entries.
func (t *TrieMap[K, C, V]) IsEmpty() bool {
	return t.root.count == 0
}

// Get returns the value stored for key.
func (t *TrieMap[K, C, V]) Get(key K) (val V, ok bool) {
	n := t.root.get(t.keyer.Components(key))
	if n == nil || !n.hasValue {
		return val, false
	}
	return n.value, true
}

// ContainsKey reports whether key has a value.
func (t *TrieMap[K, C, V]) ContainsKey(key K) bool {
	_, ok := t.Get(key)
	return ok
}

// ContainsValue reports whether any entry holds val, compared with
// reflect.DeepEqual. This is a full scan.
func (t *TrieMap[K, C, V]) ContainsValue(val V) bool {
	found := false
	t.All()(func(_ K, v V) bool {
		if reflect.DeepEqual(v, val) {
			found = true
			return false
		}
		return true
	})
	return found
}

// Put stores value under key, returns the previous value if any.
func (t *TrieMap[K, C, V]) Put(key K, value V) (prev V, existed bool) {
	return t.putComps(t.keyer.Components(key), key, value)
}

func (t *TrieMap[K, C, V]) putComps(comps []C, key K, value V) (prev V, existed bool) {
	n := t.root.ensurePath(comps)
	prev, existed = n.setValue(key, value)
	if !existed {
		t.modCount++
	}
	return prev, existed
}

// PutAll stores all entries. This is a plain loop over Put, the
// validate-then-apply semantics of prefix views live in
// [PrefixMap.PutAll].
func (t *TrieMap[K, C, V]) PutAll(entries []Entry[K, V]) {
	for _, e := range entries {
		t.Put(e.Key, e.Value)
	}
}

// Remove deletes the entry for key, returns the removed value if any.
// Dead nodes on the path are pruned immediately.
func (t *TrieMap[K, C, V]) Remove(key K) (prev V, existed bool) {
	n := t.root.get(t.keyer.Components(key))
	if n == nil || !n.hasValue {
		return prev, false
	}
	prev, _ = n.clearValue()
	t.modCount++
	return prev, true
}

// Clear removes all entries.
func (t *TrieMap[K, C, V]) Clear() {
	t.root = &trieNode[K, C, V]{}
	t.modCount++
	t.gen++
}

// PrefixMap returns a live sub-map of all entries whose component
// sequence starts with prefix. Mutations through the view are visible
// in the parent and vice versa.
func (t *TrieMap[K, C, V]) PrefixMap(prefix []C) *PrefixMap[K, C, V] {
	return &PrefixMap[K, C, V]{
		parent: t,
		prefix: append([]C(nil), prefix...),
	}
}

// PrefixMap is a live sub-view of a [TrieMap] rooted at a component
// prefix. The view memoizes the trie node reached by its prefix, the
// parent may prune or recreate that node at any time, so the memo is
// revalidated against the parent's generation counter and recomputed
// when stale or dead.
type PrefixMap[K any, C comparable, V any] struct {
	parent *TrieMap[K, C, V]

	prefix     []C
	cachedRoot *trieNode[K, C, V]
	cachedGen  uint64
}

// node returns the memoized prefix node without creating it,
// revalidated against the parent's generation counter and recomputed
// when stale or dead. It returns nil when nothing under the prefix
// exists, reads must treat that as an empty view so that no dead node
// chain is ever linked into the parent.
func (p *PrefixMap[K, C, V]) node() *trieNode[K, C, V] {
	if p.cachedRoot != nil && p.cachedGen == p.parent.gen && !p.cachedRoot.isDead() {
		return p.cachedRoot
	}
	n := p.parent.root.get(p.prefix)
	if n == nil || n.isDead() {
		return nil
	}
	p.cachedRoot = n
	p.cachedGen = p.parent.gen
	return n
}

// ensureRoot returns the memoized prefix node, creating the path when
// absent. Reserved for mutations, which make the node alive again
// before returning to the caller.
func (p *PrefixMap[K, C, V]) ensureRoot() *trieNode[K, C, V] {
	if p.cachedRoot == nil || p.cachedGen != p.parent.gen || p.cachedRoot.isDead() {
		p.cachedRoot = p.parent.root.ensurePath(p.prefix)
		p.cachedGen = p.parent.gen
	}
	return p.cachedRoot
}

// rel validates that comps starts with the view's prefix and returns
// the remainder. ok is false for keys outside the prefix.
func (p *PrefixMap[K, C, V]) rel(comps []C) (relComps []C, ok bool) {
	if len(comps) < len(p.prefix) {
		return nil, false
	}
	for i, c := range p.prefix {
		if comps[i] != c {
			return nil, false
		}
	}
	return comps[len(p.prefix):], true
}

// Len returns the number of entries under the prefix.
func (p *PrefixMap[K, C, V]) Len() int {
	n := p.node()
	if n == nil {
		return 0
	}
	return n.count
}

// IsEmpty reports whether the view has no entries.
func (p *PrefixMap[K, C, V]) IsEmpty() bool {
	return p.Len() == 0
}

// Get returns the value stored for key, keys outside the view's
// prefix are simply absent.
func (p *PrefixMap[K, C, V]) Get(key K) (val V, ok bool) {
	relComps, ok := p.rel(p.parent.keyer.Components(key))
	if !ok {
		return val, false
	}
	root := p.node()
	if root == nil {
		return val, false
	}
	n := root.get(relComps)
	if n == nil || !n.hasValue {
		return val, false
	}
	return n.value, true
}

// ContainsKey reports whether key has a value in the view.
func (p *PrefixMap[K, C, V]) ContainsKey(key K) bool {
	_, ok := p.Get(key)
	return ok
}

// Put stores value under key through the view. It panics before any
// mutation if key does not share the view's prefix, that is a caller
// error, not a recoverable condition.
func (p *PrefixMap[K, C, V]) Put(key K, value V) (prev V, existed bool) {
	relComps, ok := p.rel(p.parent.keyer.Components(key))
	if !ok {
		panic("trove: PrefixMap.Put, key outside the view's prefix")
	}
	n := p.ensureRoot().ensurePath(relComps)
	prev, existed = n.setValue(key, value)
	if !existed {
		p.parent.modCount++
	}
	return prev, existed
}

// PutAll stores all entries. Every key is validated against the
// view's prefix before any entry is applied, so the batch either
// fully succeeds or panics with the parent unchanged.
func (p *PrefixMap[K, C, V]) PutAll(entries []Entry[K, V]) {
	if len(entries) == 0 {
		return
	}
	rels := make([][]C, len(entries))
	for i, e := range entries {
		relComps, ok := p.rel(p.parent.keyer.Components(e.Key))
		if !ok {
			panic("trove: PrefixMap.PutAll, key outside the view's prefix")
		}
		rels[i] = relComps
	}
	root := p.ensureRoot()
	for i, e := range entries {
		n := root.ensurePath(rels[i])
		if _, existed := n.setValue(e.Key, e.Value); !existed {
			p.parent.modCount++
		}
	}
}

// Remove deletes the entry for key, keys outside the prefix are a
// no-op.
func (p *PrefixMap[K, C, V]) Remove(key K) (prev V, existed bool) {
	relComps, ok := p.rel(p.parent.keyer.Components(key))
	if !ok {
		return prev, false
	}
	root := p.node()
	if root == nil {
		return prev, false
	}
	n := root.get(relComps)
	if n == nil || !n.hasValue {
		return prev, false
	}
	prev, _ = n.clearValue()
	p.parent.modCount++
	return prev, true
}

// Clear removes every entry under the prefix from the parent.
func (p *PrefixMap[K, C, V]) Clear() {
	n := p.node()
	if n == nil {
		return
	}
	removed := n.count

	if removed == 0 && !n.hasValue {
		return
	}

	var zeroK K
	var zeroV V
	n.children = nil
	n.leafKey = zeroK
	n.value = zeroV
	n.hasValue = false
	n.count = 0

	for m := n.parent; m != nil; m = m.parent {
		m.count -= removed
	}
	n.pruneUp()

	p.parent.modCount++
	p.parent.gen++
}
