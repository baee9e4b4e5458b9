// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

// Package bitset implements a fixed size bitset, a mapping
// between the integers [0..63] and boolean values.
//
// It is heavily specialized for the radix-64 trie nodes in this
// repository, a single machine word is all we ever need.
package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet64 represents a fixed size bitset from [0..63].
type BitSet64 uint64

func (b BitSet64) String() string {
	return fmt.Sprint(b.All())
}

// MustSet sets the bit, the caller must guarantee bit < 64.
func (b *BitSet64) MustSet(bit uint8) {
	*b |= 1 << (bit & 63)
}

// MustClear clears the bit, the caller must guarantee bit < 64.
func (b *BitSet64) MustClear(bit uint8) {
	*b &^= 1 << (bit & 63)
}

// Test if the bit is set.
func (b BitSet64) Test(bit uint8) bool {
	return b&(1<<(bit&63)) != 0
}

// FirstSet returns the first bit set along with an ok code.
func (b BitSet64) FirstSet() (first uint8, ok bool) {
	if x := bits.TrailingZeros64(uint64(b)); x != 64 {
		return uint8(x), true
	}
	return
}

// NextSet returns the next bit set from the specified start bit,
// including possibly the current bit along with an ok code.
func (b BitSet64) NextSet(bit uint8) (uint8, bool) {
	if bit > 63 {
		return 0, false
	}
	if word := uint64(b) >> (bit & 63); word != 0 {
		return bit + uint8(bits.TrailingZeros64(word)), true
	}
	return 0, false
}

// AsSlice returns all set bits as slice of uint8 without
// heap allocations.
//
// This is faster than All, but also more dangerous,
// it panics if the capacity of buf is < b.Size()
func (b BitSet64) AsSlice(buf []uint8) []uint8 {
	buf = buf[:cap(buf)] // use cap as max len

	size := 0
	for word := uint64(b); word != 0; size++ {
		// panics if capacity of buf is exceeded.
		buf[size] = uint8(bits.TrailingZeros64(word))

		// clear the rightmost set bit
		word &= word - 1
	}

	return buf[:size]
}

// All returns all set bits. This has a simpler API but is slower than AsSlice.
func (b BitSet64) All() []uint8 {
	return b.AsSlice(make([]uint8, 0, 64))
}

// Rank0 returns the set bits up to and including idx, minus 1.
//
// Rank0 maps a bit position to its index in the popcount
// compressed items slice, only meaningful after a successful Test.
func (b BitSet64) Rank0(idx uint8) int {
	mask := ^uint64(0) >> (63 - idx&63)
	return bits.OnesCount64(uint64(b)&mask) - 1
}

// IsEmpty returns true if no bit is set.
func (b BitSet64) IsEmpty() bool {
	return b == 0
}

// Size is the number of set bits (popcount).
func (b BitSet64) Size() int {
	return bits.OnesCount64(uint64(b))
}
