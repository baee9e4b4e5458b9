// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// checkTrieCounts verifies count == own value + sum of children counts
// for every node in the trie.
func checkTrieCounts[K any, C comparable, V any](t *testing.T, n *trieNode[K, C, V]) {
	t.Helper()

	want := 0
	if n.hasValue {
		want = 1
	}
	for _, child := range n.children {
		checkTrieCounts(t, child)
		want += child.count

		// no dead child may stay linked
		require.False(t, child.isDead(), "dead node for comp %v still linked", child.comp)
	}
	require.Equal(t, want, n.count)
}

func TestTrieMapBasics(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	require.True(t, m.IsEmpty())

	_, existed := m.Put("shell", 1)
	require.False(t, existed)
	_, existed = m.Put("she", 2)
	require.False(t, existed)
	_, existed = m.Put("shore", 3)
	require.False(t, existed)

	require.Equal(t, 3, m.Len())
	checkTrieCounts(t, m.root)

	v, ok := m.Get("she")
	require.True(t, ok)
	require.Equal(t, 2, v)

	// interior nodes without a value are not entries
	_, ok = m.Get("sh")
	require.False(t, ok)
	_, ok = m.Get("shel")
	require.False(t, ok)
	require.False(t, m.ContainsKey("s"))

	prev, existed := m.Put("she", 22)
	require.True(t, existed)
	require.Equal(t, 2, prev)
	require.Equal(t, 3, m.Len())

	require.True(t, m.ContainsValue(3))
	require.False(t, m.ContainsValue(99))
}

func TestTrieMapEmptyKey(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})

	// the empty key decomposes into no components, its value lives on
	// the root node
	m.Put("", 7)
	require.Equal(t, 1, m.Len())

	v, ok := m.Get("")
	require.True(t, ok)
	require.Equal(t, 7, v)

	got := map[string]int{}
	for k, v := range m.All() {
		got[k] = v
	}
	require.Equal(t, map[string]int{"": 7}, got)

	_, existed := m.Remove("")
	require.True(t, existed)
	require.True(t, m.IsEmpty())
}

func TestTrieMapRemovePrunes(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("shell", 1)
	m.Put("she", 2)

	_, existed := m.Remove("shell")
	require.True(t, existed)
	require.Equal(t, 1, m.Len())
	checkTrieCounts(t, m.root)

	// the chain behind "she" must be gone
	n := m.root.get([]byte("she"))
	require.NotNil(t, n)
	require.Empty(t, n.children)

	_, existed = m.Remove("shell")
	require.False(t, existed)

	m.Remove("she")
	require.True(t, m.IsEmpty())
	require.Empty(t, m.root.children)
}

func TestTrieMapRandomAgainstGolden(t *testing.T) {
	t.Parallel()

	prng := rand.New(rand.NewSource(1701))
	m := NewTrieMap[string, byte, int](ByteComponents{})
	golden := map[string]int{}

	keys := make([]string, 0, 200)
	for range 200 {
		keys = append(keys, randomBits(prng, prng.Intn(8)))
	}

	for range 5_000 {
		key := keys[prng.Intn(len(keys))]
		if prng.Intn(3) == 0 {
			m.Remove(key)
			delete(golden, key)
		} else {
			val := prng.Int()
			m.Put(key, val)
			golden[key] = val
		}
	}

	require.Equal(t, len(golden), m.Len())
	checkTrieCounts(t, m.root)

	got := map[string]int{}
	for k, v := range m.All() {
		got[k] = v
	}
	require.Equal(t, golden, got)
}

func TestTrieMapRuneComponents(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, rune, string](RuneComponents{})
	m.Put("日本", "japan")
	m.Put("日本語", "japanese")

	// two runes, one trie level each
	require.Equal(t, 2, m.Len())
	n := m.root.get([]rune("日本"))
	require.NotNil(t, n)
	require.True(t, n.hasValue)

	v, ok := m.Get("日本語")
	require.True(t, ok)
	require.Equal(t, "japanese", v)
}

func TestPrefixMapReadWrite(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("car", 1)
	m.Put("cart", 2)
	m.Put("carpet", 3)
	m.Put("dog", 4)

	view := m.PrefixMap([]byte("car"))
	require.Equal(t, 3, view.Len())
	require.True(t, view.ContainsKey("cart"))
	require.False(t, view.ContainsKey("dog"))

	// outside keys are absent, not an error, for reads
	_, ok := view.Get("dog")
	require.False(t, ok)
	_, existed := view.Remove("dog")
	require.False(t, existed)

	// writes through the view are visible in the parent
	view.Put("cargo", 5)
	require.Equal(t, 4, view.Len())
	v, ok := m.Get("cargo")
	require.True(t, ok)
	require.Equal(t, 5, v)

	// writes through the parent are visible in the view
	m.Put("carbon", 6)
	require.Equal(t, 5, view.Len())
	require.True(t, view.ContainsKey("carbon"))

	checkTrieCounts(t, m.root)
}

func TestPrefixMapPutOutsidePanics(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	view := m.PrefixMap([]byte("car"))

	require.Panics(t, func() { view.Put("dog", 1) })
	require.Panics(t, func() { view.Put("ca", 1) }) // shorter than the prefix
}

func TestPrefixMapPutAllAtomic(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("car", 1)
	view := m.PrefixMap([]byte("car"))

	// one bad key, the whole batch must not touch the parent
	require.Panics(t, func() {
		view.PutAll([]Entry[string, int]{
			{Key: "cart", Value: 2},
			{Key: "dog", Value: 3},
			{Key: "cargo", Value: 4},
		})
	})
	require.Equal(t, 1, m.Len())
	require.False(t, m.ContainsKey("cart"))

	view.PutAll([]Entry[string, int]{
		{Key: "cart", Value: 2},
		{Key: "cargo", Value: 4},
	})
	require.Equal(t, 3, m.Len())
	checkTrieCounts(t, m.root)
}

func TestPrefixMapClear(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("car", 1)
	m.Put("cart", 2)
	m.Put("dog", 3)

	view := m.PrefixMap([]byte("car"))
	view.Clear()

	require.Equal(t, 1, m.Len())
	require.False(t, m.ContainsKey("car"))
	require.False(t, m.ContainsKey("cart"))
	require.True(t, m.ContainsKey("dog"))
	checkTrieCounts(t, m.root)

	// clearing an empty view is a no-op
	view.Clear()
	require.Equal(t, 1, m.Len())
}

func TestPrefixMapSurvivesParentClear(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("cart", 1)

	view := m.PrefixMap([]byte("car"))
	require.Equal(t, 1, view.Len())

	// the node memoized by the view dies here
	m.Clear()
	require.Equal(t, 0, view.Len())

	// and the view keeps working against the recreated path
	view.Put("cargo", 2)
	require.Equal(t, 1, view.Len())
	v, ok := m.Get("cargo")
	require.True(t, ok)
	require.Equal(t, 2, v)
	checkTrieCounts(t, m.root)
}

func TestPrefixMapIterAndAll(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("car", 1)
	m.Put("cart", 2)
	m.Put("dog", 3)

	view := m.PrefixMap([]byte("car"))

	var keys []string
	for k := range view.All() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	require.Equal(t, []string{"car", "cart"}, keys)

	it := view.Iter()
	n := 0
	for {
		_, _, ok := it.Next()
		if !ok {
			break
		}
		n++
	}
	require.Equal(t, 2, n)
}

func TestTrieIteratorFailFast(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("a", 1)
	m.Put("b", 2)

	it := m.Iter()
	_, _, ok := it.Next()
	require.True(t, ok)

	m.Put("c", 3)
	require.Panics(t, func() { it.Next() })

	// value update of an existing key is no structural change
	it = m.Iter()
	it.Next()
	m.Put("a", 11)
	require.NotPanics(t, func() { it.Next() })
}

func TestTrieIteratorRemove(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("shell", 1)
	m.Put("she", 2)
	m.Put("shore", 3)

	it := m.Iter()
	removed := 0
	for {
		_, v, ok := it.Next()
		if !ok {
			break
		}
		if v%2 == 1 {
			it.Remove()
			removed++
		}
	}

	require.Equal(t, 2, removed)
	require.Equal(t, 1, m.Len())
	require.True(t, m.ContainsKey("she"))
	checkTrieCounts(t, m.root)

	require.Panics(t, func() { it.Remove() }, "Remove without preceding Next")
}

func TestTrieIteratorRemoveAll(t *testing.T) {
	t.Parallel()

	prng := rand.New(rand.NewSource(99))
	m := NewTrieMap[string, byte, int](ByteComponents{})
	for i := range 100 {
		m.Put(randomBits(prng, 1+prng.Intn(10)), i)
	}

	it := m.Iter()
	for {
		_, _, ok := it.Next()
		if !ok {
			break
		}
		it.Remove()
	}

	require.True(t, m.IsEmpty())
	require.Empty(t, m.root.children)
}

func TestTrieMapKeysValues(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("x", 10)
	m.Put("y", 20)

	var keys []string
	for k := range m.Keys() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	require.Equal(t, []string{"x", "y"}, keys)

	sum := 0
	for v := range m.Values() {
		sum += v
	}
	require.Equal(t, 30, sum)

	// early break must not yield further entries
	n := 0
	for range m.All() {
		n++
		break
	}
	require.Equal(t, 1, n)
}

// Pure reads on a view whose prefix node does not exist must not link
// any node chain into the parent.
func TestPrefixMapReadsLinkNothing(t *testing.T) {
	t.Parallel()

	m := NewTrieMap[string, byte, int](ByteComponents{})
	m.Put("dog", 1)

	p := m.PrefixMap([]byte("car"))
	require.Equal(t, 0, p.Len())
	require.True(t, p.IsEmpty())

	_, ok := p.Get("carpet")
	require.False(t, ok)
	_, existed := p.Remove("carpet")
	require.False(t, existed)
	p.Clear()
	p.PutAll(nil)

	_, _, ok = p.Iter().Next()
	require.False(t, ok)
	for range p.All() {
		t.Fatal("empty view yielded an entry")
	}

	require.Nil(t, m.root.get([]byte("c")))
	require.Equal(t, 1, m.Len())
	checkTrieCounts(t, m.root)

	// a later write through the view creates the path for real
	p.Put("carpet", 2)
	require.Equal(t, 1, p.Len())
	v, ok := m.Get("carpet")
	require.True(t, ok)
	require.Equal(t, 2, v)
	checkTrieCounts(t, m.root)

	// and once the parent removes it again, reads stay clean
	m.Remove("carpet")
	require.Equal(t, 0, p.Len())
	require.Nil(t, m.root.get([]byte("c")))
	checkTrieCounts(t, m.root)
}
