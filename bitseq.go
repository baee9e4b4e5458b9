// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"bytes"
	"cmp"
	"strings"
)

// BitSeq is an immutable, MSB-first sequence of bits backed by a byte
// slice. It is the path-component currency of the bitwise tries: keys
// are decomposed into a BitSeq by a [BitKeyer] and edges carry BitSeq
// prefixes after path compression.
//
// The zero value is the empty sequence, ready for use.
type BitSeq struct {
	data []byte
	n    int
}

// BitSeqFromBytes returns the bit sequence of b, 8 bits per byte,
// most significant bit first.
func BitSeqFromBytes(b []byte) BitSeq {
	return BitSeq{data: bytes.Clone(b), n: 8 * len(b)}
}

// BitSeqFromUint64 returns the width lowest bits of v, most
// significant bit first. It panics if width is not in [0..64].
func BitSeqFromUint64(v uint64, width int) BitSeq {
	if width < 0 || width > 64 {
		panic("trove: BitSeqFromUint64, width out of range")
	}
	s := BitSeq{data: make([]byte, (width+7)/8), n: width}
	for i := range width {
		if v&(1<<(width-1-i)) != 0 {
			s.data[i>>3] |= 1 << (7 - i&7)
		}
	}
	return s
}

// BitSeqFromBits builds a sequence from single bits, every nonzero
// argument counts as a one bit.
func BitSeqFromBits(bits ...uint8) BitSeq {
	s := BitSeq{data: make([]byte, (len(bits)+7)/8), n: len(bits)}
	for i, b := range bits {
		if b != 0 {
			s.data[i>>3] |= 1 << (7 - i&7)
		}
	}
	return s
}

// BitSeqFromString parses a sequence of '0' and '1' runes,
// e.g. "1011". It panics on any other rune.
func BitSeqFromString(str string) BitSeq {
	s := BitSeq{data: make([]byte, (len(str)+7)/8), n: len(str)}
	for i, r := range str {
		switch r {
		case '1':
			s.data[i>>3] |= 1 << (7 - i&7)
		case '0':
		default:
			panic("trove: BitSeqFromString, invalid rune: " + string(r))
		}
	}
	return s
}

// Len returns the number of bits in the sequence.
func (s BitSeq) Len() int {
	return s.n
}

// IsEmpty returns true for the empty sequence.
func (s BitSeq) IsEmpty() bool {
	return s.n == 0
}

// Bit returns the bit at position i as 0 or 1.
// It panics if i is out of range.
func (s BitSeq) Bit(i int) uint8 {
	if i < 0 || i >= s.n {
		panic("trove: BitSeq.Bit, index out of range")
	}
	if s.data[i>>3]&(1<<(7-i&7)) != 0 {
		return 1
	}
	return 0
}

// Slice returns the sub-sequence [lo..hi), the bits are copied,
// the result does not alias s.
func (s BitSeq) Slice(lo, hi int) BitSeq {
	if lo < 0 || hi > s.n || lo > hi {
		panic("trove: BitSeq.Slice, index out of range")
	}
	r := BitSeq{data: make([]byte, (hi-lo+7)/8), n: hi - lo}
	for i := lo; i < hi; i++ {
		if s.data[i>>3]&(1<<(7-i&7)) != 0 {
			r.data[(i-lo)>>3] |= 1 << (7 - (i-lo)&7)
		}
	}
	return r
}

// AppendBit returns a new sequence with bit appended.
func (s BitSeq) AppendBit(bit uint8) BitSeq {
	r := BitSeq{data: make([]byte, (s.n+1+7)/8), n: s.n + 1}
	copy(r.data, s.data)
	if bit != 0 {
		r.data[s.n>>3] |= 1 << (7 - s.n&7)
	}
	return r
}

// AppendSeq returns the concatenation s ++ o.
func (s BitSeq) AppendSeq(o BitSeq) BitSeq {
	r := BitSeq{data: make([]byte, (s.n+o.n+7)/8), n: s.n + o.n}
	copy(r.data, s.data)
	// clear any stale bits behind s.n before or-ing the tail
	if s.n&7 != 0 {
		r.data[s.n>>3] &= ^byte(0) << (8 - s.n&7)
	}
	for i := range o.n {
		if o.data[i>>3]&(1<<(7-i&7)) != 0 {
			r.data[(s.n+i)>>3] |= 1 << (7 - (s.n+i)&7)
		}
	}
	return r
}

// CommonPrefixLen returns the length of the longest common
// prefix of s and o.
func (s BitSeq) CommonPrefixLen(o BitSeq) int {
	n := min(s.n, o.n)
	i := 0
	for ; i < n; i++ {
		if s.Bit(i) != o.Bit(i) {
			break
		}
	}
	return i
}

// MatchFrom returns how many leading bits of s equal the bits of o
// starting at offset off. The run ends at the first mismatch or when
// either sequence is exhausted.
func (s BitSeq) MatchFrom(o BitSeq, off int) int {
	n := min(s.n, o.n-off)
	i := 0
	for ; i < n; i++ {
		if s.Bit(i) != o.Bit(off+i) {
			break
		}
	}
	return i
}

// Equal reports whether s and o contain the same bits.
func (s BitSeq) Equal(o BitSeq) bool {
	if s.n != o.n {
		return false
	}
	return s.CommonPrefixLen(o) == s.n
}

// String renders the sequence as a string of '0' and '1' runes.
func (s BitSeq) String() string {
	var sb strings.Builder
	sb.Grow(s.n)
	for i := range s.n {
		sb.WriteByte('0' + s.Bit(i))
	}
	return sb.String()
}

// BitStream is a cursor over a [BitSeq], consumed MSB-first.
type BitStream struct {
	seq BitSeq
	pos int
}

// NewBitStream returns a stream positioned at the first bit of seq.
func NewBitStream(seq BitSeq) *BitStream {
	return &BitStream{seq: seq}
}

// Next consumes and returns the next bit, ok is false when the
// stream is exhausted.
func (st *BitStream) Next() (bit uint8, ok bool) {
	if st.pos >= st.seq.Len() {
		return 0, false
	}
	bit = st.seq.Bit(st.pos)
	st.pos++
	return bit, true
}

// Peek returns the next bit without consuming it.
func (st *BitStream) Peek() (bit uint8, ok bool) {
	if st.pos >= st.seq.Len() {
		return 0, false
	}
	return st.seq.Bit(st.pos), true
}

// SkipN advances the cursor by n bits, clamped to the end.
func (st *BitStream) SkipN(n int) {
	st.pos = min(st.pos+n, st.seq.Len())
}

// Pos returns the current cursor position.
func (st *BitStream) Pos() int {
	return st.pos
}

// Remaining returns the number of unconsumed bits.
func (st *BitStream) Remaining() int {
	return st.seq.Len() - st.pos
}

// BitKeyer decomposes keys into bit sequences for the bitwise tries.
//
// Two distinct keys may decompose into the same sequence, Compare is
// the injected tie-breaker that keeps such colliding keys in a stable,
// sorted order inside a trie node.
type BitKeyer[K any] interface {
	BitsOf(K) BitSeq
	Compare(a, b K) int
}

// Uint64Keyer decomposes uint64 keys into their fixed 64 bit sequence.
type Uint64Keyer struct{}

func (Uint64Keyer) BitsOf(v uint64) BitSeq { return BitSeqFromUint64(v, 64) }
func (Uint64Keyer) Compare(a, b uint64) int { return cmp.Compare(a, b) }

// Uint32Keyer decomposes uint32 keys into their fixed 32 bit sequence.
type Uint32Keyer struct{}

func (Uint32Keyer) BitsOf(v uint32) BitSeq { return BitSeqFromUint64(uint64(v), 32) }
func (Uint32Keyer) Compare(a, b uint32) int { return cmp.Compare(a, b) }

// StringKeyer decomposes string keys byte by byte, MSB-first.
type StringKeyer struct{}

func (StringKeyer) BitsOf(s string) BitSeq { return BitSeqFromBytes([]byte(s)) }
func (StringKeyer) Compare(a, b string) int { return strings.Compare(a, b) }

// BytesKeyer decomposes []byte keys byte by byte, MSB-first.
type BytesKeyer struct{}

func (BytesKeyer) BitsOf(b []byte) BitSeq { return BitSeqFromBytes(b) }
func (BytesKeyer) Compare(a, b []byte) int { return bytes.Compare(a, b) }
