// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrieMapDump(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	require.Equal(t, "TrieMap: 0 entries\n", m.String())

	m.Put("ab", 1)
	m.Put("ac", 2)

	out := m.String()
	require.Contains(t, out, "TrieMap: 2 entries")
	require.Contains(t, out, "(1)")
	require.Contains(t, out, "(2)")
	// the shared node carries both entries in its subtree count
	require.Contains(t, out, "size:2")
}

func TestBitTrieDump(t *testing.T) {
	t.Parallel()

	tr := NewBitTrie[string, int](bitsKeyer{})
	require.Equal(t, "BitTrie: 0 entries\n", tr.String())

	tr.Put("1010", 1)
	tr.Put("1011", 2)

	out := tr.String()
	require.Contains(t, out, "BitTrie: 2 entries")
	// root line, then the shared edge 1|01 with two leaves below
	require.Contains(t, out, "101")
	require.Contains(t, out, "[1010]")
	require.Contains(t, out, "[1011]")
	// header, root, the shared edge and the two leaves
	require.Equal(t, 5, strings.Count(out, "\n"))
}
