// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"iter"
	"slices"
	"sort"
)

// SortedMap is a map backed by two parallel slices kept sorted by key.
// Lookups are binary searches, insertion and deletion shift the tail,
// which makes it compact and cache friendly for small to medium maps
// and for read-mostly workloads.
//
// The zero value is not ready for use, see [NewSortedMap].
// SortedMap is not safe for concurrent use.
type SortedMap[K, V any] struct {
	cmp      func(a, b K) int
	keys     []K
	vals     []V
	modCount uint64
}

// NewSortedMap returns an empty SortedMap ordered by cmp. cmp must
// define a total order, returning a negative number, zero, or a
// positive number when a sorts before, equal to, or after b.
func NewSortedMap[K, V any](cmp func(a, b K) int) *SortedMap[K, V] {
	return &SortedMap[K, V]{cmp: cmp}
}

// search returns the slot of key and whether it is present. When
// absent the slot is the insertion point.
func (m *SortedMap[K, V]) search(key K) (int, bool) {
	i := sort.Search(len(m.keys), func(i int) bool {
		return m.cmp(m.keys[i], key) >= 0
	})
	return i, i < len(m.keys) && m.cmp(m.keys[i], key) == 0
}

// Len returns the number of entries.
func (m *SortedMap[K, V]) Len() int {
	return len(m.keys)
}

// IsEmpty reports whether the map has no entries.
func (m *SortedMap[K, V]) IsEmpty() bool {
	return len(m.keys) == 0
}

// Get returns the value stored for key.
func (m *SortedMap[K, V]) Get(key K) (val V, ok bool) {
	i, ok := m.search(key)
	if !ok {
		return val, false
	}
	return m.vals[i], true
}

// ContainsKey reports whether key is present.
func (m *SortedMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.search(key)
	return ok
}

// Put inserts key with val, or replaces the value if key is already
// present. It returns the previous value, if any.
func (m *SortedMap[K, V]) Put(key K, val V) (prev V, existed bool) {
	i, ok := m.search(key)
	if ok {
		prev = m.vals[i]
		m.vals[i] = val
		return prev, true
	}
	m.keys = slices.Insert(m.keys, i, key)
	m.vals = slices.Insert(m.vals, i, val)
	m.modCount++
	return prev, false
}

// Remove deletes key and returns its value, if it was present.
func (m *SortedMap[K, V]) Remove(key K) (val V, existed bool) {
	i, ok := m.search(key)
	if !ok {
		return val, false
	}
	val = m.vals[i]
	m.keys = slices.Delete(m.keys, i, i+1)
	m.vals = slices.Delete(m.vals, i, i+1)
	m.modCount++
	return val, true
}

// Clear removes all entries.
func (m *SortedMap[K, V]) Clear() {
	m.keys = m.keys[:0]
	m.vals = m.vals[:0]
	m.modCount++
}

// At returns the i-th entry in key order.
// It panics if i is out of range.
func (m *SortedMap[K, V]) At(i int) (K, V) {
	if i < 0 || i >= len(m.keys) {
		panic("trove: SortedMap.At, index out of range")
	}
	return m.keys[i], m.vals[i]
}

// Rank returns the number of keys strictly smaller than key.
func (m *SortedMap[K, V]) Rank(key K) int {
	i, _ := m.search(key)
	return i
}

// First returns the smallest key and its value.
func (m *SortedMap[K, V]) First() (key K, val V, ok bool) {
	if len(m.keys) == 0 {
		return key, val, false
	}
	return m.keys[0], m.vals[0], true
}

// Last returns the largest key and its value.
func (m *SortedMap[K, V]) Last() (key K, val V, ok bool) {
	if len(m.keys) == 0 {
		return key, val, false
	}
	i := len(m.keys) - 1
	return m.keys[i], m.vals[i], true
}

// Floor returns the largest entry with a key <= key.
func (m *SortedMap[K, V]) Floor(key K) (k K, val V, ok bool) {
	i, found := m.search(key)
	if found {
		return m.keys[i], m.vals[i], true
	}
	if i == 0 {
		return k, val, false
	}
	return m.keys[i-1], m.vals[i-1], true
}

// Ceiling returns the smallest entry with a key >= key.
func (m *SortedMap[K, V]) Ceiling(key K) (k K, val V, ok bool) {
	i, _ := m.search(key)
	if i == len(m.keys) {
		return k, val, false
	}
	return m.keys[i], m.vals[i], true
}

// Lower returns the largest entry with a key < key.
func (m *SortedMap[K, V]) Lower(key K) (k K, val V, ok bool) {
	i, _ := m.search(key)
	if i == 0 {
		return k, val, false
	}
	return m.keys[i-1], m.vals[i-1], true
}

// Higher returns the smallest entry with a key > key.
func (m *SortedMap[K, V]) Higher(key K) (k K, val V, ok bool) {
	i, found := m.search(key)
	if found {
		i++
	}
	if i >= len(m.keys) {
		return k, val, false
	}
	return m.keys[i], m.vals[i], true
}

// All may be used in a for/range loop to iterate through the entries
// in ascending key order.
//
// Entries must not be inserted or deleted during iteration, otherwise
// the behavior is undefined.
func (m *SortedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				return
			}
		}
	}
}

// Backward may be used in a for/range loop to iterate through the
// entries in descending key order.
func (m *SortedMap[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := len(m.keys) - 1; i >= 0; i-- {
			if !yield(m.keys[i], m.vals[i]) {
				return
			}
		}
	}
}

// Keys may be used in a for/range loop over the keys in ascending
// order.
func (m *SortedMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range m.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Values may be used in a for/range loop over the values in ascending
// key order.
func (m *SortedMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.vals {
			if !yield(v) {
				return
			}
		}
	}
}

// SortedMapIterator walks a [SortedMap] in ascending key order. It is
// fail-fast: any structural change to the map made through another
// path invalidates it, the next call panics. Removal through
// [SortedMapIterator.Remove] is the one exempted mutation.
type SortedMapIterator[K, V any] struct {
	m     *SortedMap[K, V]
	idx   int
	ret   bool
	stamp uint64
}

// Iter returns a fail-fast iterator over the entries in ascending key
// order.
func (m *SortedMap[K, V]) Iter() *SortedMapIterator[K, V] {
	return &SortedMapIterator[K, V]{m: m, stamp: m.modCount}
}

// Next returns the next entry. ok is false when the iteration is done.
func (it *SortedMapIterator[K, V]) Next() (key K, val V, ok bool) {
	if it.stamp != it.m.modCount {
		panic("trove: SortedMapIterator, concurrent modification")
	}
	if it.idx >= len(it.m.keys) {
		it.ret = false
		return key, val, false
	}
	key, val = it.m.keys[it.idx], it.m.vals[it.idx]
	it.idx++
	it.ret = true
	return key, val, true
}

// Remove deletes the entry last returned by Next without invalidating
// the iterator.
func (it *SortedMapIterator[K, V]) Remove() {
	if it.stamp != it.m.modCount {
		panic("trove: SortedMapIterator, concurrent modification")
	}
	if !it.ret {
		panic("trove: SortedMapIterator.Remove without a preceding Next")
	}
	it.idx--
	it.ret = false
	it.m.Remove(it.m.keys[it.idx])
	it.stamp = it.m.modCount
}
