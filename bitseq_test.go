// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitSeqZeroValue(t *testing.T) {
	t.Parallel()

	var s BitSeq
	require.True(t, s.IsEmpty())
	require.Equal(t, 0, s.Len())
	require.Equal(t, "", s.String())
	require.True(t, s.Equal(BitSeqFromBits()))
}

func TestBitSeqFromUint64(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		v     uint64
		width int
		want  string
	}{
		{v: 0, width: 0, want: ""},
		{v: 1, width: 1, want: "1"},
		{v: 0b1011, width: 4, want: "1011"},
		{v: 0b1011, width: 6, want: "001011"},
		{v: 0xff00, width: 16, want: "1111111100000000"},
	}

	for _, tc := range testCases {
		got := BitSeqFromUint64(tc.v, tc.width)
		require.Equal(t, tc.want, got.String(), "v=%b width=%d", tc.v, tc.width)
		require.Equal(t, tc.width, got.Len())
	}

	require.Panics(t, func() { BitSeqFromUint64(0, 65) })
	require.Panics(t, func() { BitSeqFromUint64(0, -1) })
}

func TestBitSeqFromString(t *testing.T) {
	t.Parallel()

	s := BitSeqFromString("10110")
	require.Equal(t, 5, s.Len())
	require.Equal(t, uint8(1), s.Bit(0))
	require.Equal(t, uint8(0), s.Bit(1))
	require.Equal(t, uint8(0), s.Bit(4))
	require.Equal(t, "10110", s.String())

	require.Panics(t, func() { BitSeqFromString("10x") })
	require.Panics(t, func() { s.Bit(5) })
	require.Panics(t, func() { s.Bit(-1) })
}

func TestBitSeqFromBytes(t *testing.T) {
	t.Parallel()

	s := BitSeqFromBytes([]byte{0xA5}) // 10100101
	require.Equal(t, 8, s.Len())
	require.Equal(t, "10100101", s.String())
}

func TestBitSeqSliceAppend(t *testing.T) {
	t.Parallel()

	s := BitSeqFromString("110100111010")

	require.Equal(t, "0100", s.Slice(2, 6).String())
	require.Equal(t, "", s.Slice(5, 5).String())
	require.Equal(t, s.String(), s.Slice(0, s.Len()).String())
	require.Panics(t, func() { s.Slice(3, 2) })
	require.Panics(t, func() { s.Slice(0, 13) })

	require.Equal(t, "1101001110101", s.AppendBit(1).String())
	require.Equal(t, "1101001110100", s.AppendBit(0).String())

	o := BitSeqFromString("0111")
	require.Equal(t, "1101001110100111", s.AppendSeq(o).String())
	require.Equal(t, "0111", BitSeq{}.AppendSeq(o).String())
}

func TestBitSeqAppendSeqUnaligned(t *testing.T) {
	t.Parallel()

	// lengths around byte boundaries
	prng := rand.New(rand.NewSource(7))
	for range 1_000 {
		a := randomBits(prng, prng.Intn(20))
		b := randomBits(prng, prng.Intn(20))
		require.Equal(t, a+b, BitSeqFromString(a).AppendSeq(BitSeqFromString(b)).String())
	}
}

func TestBitSeqCommonPrefixLen(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		a, b string
		want int
	}{
		{a: "", b: "", want: 0},
		{a: "1", b: "0", want: 0},
		{a: "101", b: "101", want: 3},
		{a: "1010", b: "1011", want: 3},
		{a: "1010", b: "10", want: 2},
	}

	for _, tc := range testCases {
		got := BitSeqFromString(tc.a).CommonPrefixLen(BitSeqFromString(tc.b))
		require.Equal(t, tc.want, got, "a=%q b=%q", tc.a, tc.b)
	}
}

func TestBitSeqMatchFrom(t *testing.T) {
	t.Parallel()

	key := BitSeqFromString("11010011")

	// full run, edge label "100" matches key[3..6)
	require.Equal(t, 3, BitSeqFromString("100").MatchFrom(key, 3))
	// mismatch at the third label bit
	require.Equal(t, 2, BitSeqFromString("101").MatchFrom(key, 3))
	// key exhausted mid-label
	require.Equal(t, 2, BitSeqFromString("110").MatchFrom(key, 6))
}

func TestBitStream(t *testing.T) {
	t.Parallel()

	st := NewBitStream(BitSeqFromString("1011"))

	bit, ok := st.Peek()
	require.True(t, ok)
	require.Equal(t, uint8(1), bit)
	require.Equal(t, 0, st.Pos())

	bit, ok = st.Next()
	require.True(t, ok)
	require.Equal(t, uint8(1), bit)

	st.SkipN(2)
	require.Equal(t, 3, st.Pos())
	require.Equal(t, 1, st.Remaining())

	bit, ok = st.Next()
	require.True(t, ok)
	require.Equal(t, uint8(1), bit)

	_, ok = st.Next()
	require.False(t, ok)

	st.SkipN(100)
	require.Equal(t, 4, st.Pos())
}

func TestKeyers(t *testing.T) {
	t.Parallel()

	require.Equal(t, 64, Uint64Keyer{}.BitsOf(42).Len())
	require.Equal(t, 32, Uint32Keyer{}.BitsOf(42).Len())
	require.Equal(t, "00101010", Uint32Keyer{}.BitsOf(42).Slice(24, 32).String())

	require.Equal(t, 24, StringKeyer{}.BitsOf("abc").Len())
	require.Negative(t, StringKeyer{}.Compare("abc", "abd"))
	require.Positive(t, BytesKeyer{}.Compare([]byte{2}, []byte{1}))
}

func randomBits(prng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('0' + prng.Intn(2))
	}
	return string(b)
}
