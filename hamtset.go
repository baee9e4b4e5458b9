// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "iter"

// HamtSet is a set of keys backed by a [HamtMap] with empty struct
// values.
//
// HamtSet is not safe for concurrent use.
type HamtSet[K comparable] struct {
	m *HamtMap[K, struct{}]
}

// NewHamtSet returns an empty set hashing its keys with hash.
func NewHamtSet[K comparable](hash func(K) uint32) *HamtSet[K] {
	return &HamtSet[K]{m: NewHamtMap[K, struct{}](hash)}
}

// Len returns the number of keys.
func (s *HamtSet[K]) Len() int {
	return s.m.Len()
}

// IsEmpty reports whether the set has no keys.
func (s *HamtSet[K]) IsEmpty() bool {
	return s.m.IsEmpty()
}

// Contains reports whether key is in the set.
func (s *HamtSet[K]) Contains(key K) bool {
	return s.m.ContainsKey(key)
}

// Add inserts key and reports whether it was not yet present.
func (s *HamtSet[K]) Add(key K) bool {
	_, existed := s.m.Put(key, struct{}{})
	return !existed
}

// Remove deletes key and reports whether it was present.
func (s *HamtSet[K]) Remove(key K) bool {
	_, existed := s.m.Remove(key)
	return existed
}

// Clear removes all keys.
func (s *HamtSet[K]) Clear() {
	s.m.Clear()
}

// All may be used in a for/range loop to iterate through the keys in
// an unspecified but stable order.
//
// Keys must not be inserted or deleted during iteration, otherwise the
// behavior is undefined.
func (s *HamtSet[K]) All() iter.Seq[K] {
	return s.m.Keys()
}
