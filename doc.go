// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

// Package trove provides generic in-memory collections built on tries
// and balanced trees, for workloads where the built-in map and slice
// fall short.
//
// The containers:
//
//   - TrieMap:   prefix tree keyed by decomposable keys, with live
//     PrefixMap sub-map views
//   - HamtMap:   hash array mapped trie, radix 64 with popcount
//     compression, plus the HamtSet wrapper
//   - BitTrie:   path-compressed bitwise trie with xor-nearest lookup
//   - TreeList:  list on an order-statistics red-black tree, O(log n)
//     indexed access, insert and remove
//   - SortedMap: sorted-array map with floor/ceiling navigation
//   - Heap:      binary heap with stable handles for O(log n) removal
//     and reprioritization
//
// All containers expose for/range iterators and explicit fail-fast
// iterators that support removal mid-iteration. HamtMap, TreeList and
// SortedMap serialize to a compact msgpack form and can be persisted
// through the bbolt-backed Store.
//
// None of the containers are safe for concurrent use without external
// locking, except Store.
package trove
