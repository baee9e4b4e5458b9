// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"cmp"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHamtMapMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	prng := rand.New(rand.NewSource(8080))
	m := NewHamtMap[string, int](HashString)
	for i := range 500 {
		m.Put(fmt.Sprintf("key-%d", i), prng.Int())
	}

	data, err := m.MarshalBinary()
	require.NoError(t, err)

	got := NewHamtMap[string, int](HashString)
	got.Put("stale", 1) // must be cleared by unmarshal
	require.NoError(t, got.UnmarshalBinary(data))

	require.Equal(t, m.Len(), got.Len())
	require.False(t, got.ContainsKey("stale"))
	for k, v := range m.All() {
		gv, ok := got.Get(k)
		require.True(t, ok, "missing key %s", k)
		require.Equal(t, v, gv)
	}
	require.LessOrEqual(t, got.depth(), hamtMaxDepth)
}

func TestTreeListMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	l := NewTreeListFrom([]string{"a", "b", "c", "d", "e"})

	data, err := l.MarshalBinary()
	require.NoError(t, err)

	got := NewTreeList[string]()
	got.Add("stale")
	require.NoError(t, got.UnmarshalBinary(data))

	require.Equal(t, l.Slice(), got.Slice())
	checkTreeList(t, got)
}

func TestTreeListMarshalEmpty(t *testing.T) {
	t.Parallel()

	l := NewTreeList[int]()
	data, err := l.MarshalBinary()
	require.NoError(t, err)

	got := NewTreeListFrom([]int{1, 2, 3})
	require.NoError(t, got.UnmarshalBinary(data))
	require.True(t, got.IsEmpty())
}

func TestSortedMapMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewSortedMap[int, string](cmp.Compare[int])
	for _, k := range []int{4, 2, 9, 1} {
		m.Put(k, fmt.Sprintf("v%d", k))
	}

	data, err := m.MarshalBinary()
	require.NoError(t, err)

	got := NewSortedMap[int, string](cmp.Compare[int])
	require.NoError(t, got.UnmarshalBinary(data))

	require.Equal(t, m.Len(), got.Len())
	for k, v := range m.All() {
		gv, ok := got.Get(k)
		require.True(t, ok)
		require.Equal(t, v, gv)
	}
}

// A stream written under one comparator must decode into a consistent
// map under another, the entries go back in through the insert path.
func TestSortedMapUnmarshalOtherComparator(t *testing.T) {
	t.Parallel()

	asc := NewSortedMap[int, string](cmp.Compare[int])
	for _, k := range []int{1, 2, 3} {
		asc.Put(k, "")
	}
	data, err := asc.MarshalBinary()
	require.NoError(t, err)

	desc := NewSortedMap[int, string](func(a, b int) int { return cmp.Compare(b, a) })
	require.NoError(t, desc.UnmarshalBinary(data))

	var keys []int
	for k := range desc.Keys() {
		keys = append(keys, k)
	}
	require.Equal(t, []int{3, 2, 1}, keys)
}

func TestUnmarshalGarbage(t *testing.T) {
	t.Parallel()

	garbage := []byte{0xc1, 0xff, 0x00} // 0xc1 is never valid msgpack

	m := NewHamtMap[string, int](HashString)
	require.Error(t, m.UnmarshalBinary(garbage))

	l := NewTreeList[int]()
	require.Error(t, l.UnmarshalBinary(garbage))

	sm := NewSortedMap[int, int](cmp.Compare[int])
	require.Error(t, sm.UnmarshalBinary(garbage))
}
