// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"fmt"
	"io"
	"strings"
)

// ##################################################
//  useful during development, debugging and testing
// ##################################################

// Fprint writes a hierarchical representation of the trie to w, one
// line per node, children indented under their parent. Nodes holding a
// value show it after the component path.
func (t *TrieMap[K, C, V]) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "TrieMap: %d entries\n", t.Len()); err != nil {
		return err
	}
	return fprintTrieRec(w, t.root, "")
}

// String implements fmt.Stringer, see [TrieMap.Fprint].
func (t *TrieMap[K, C, V]) String() string {
	w := new(strings.Builder)
	_ = t.Fprint(w)
	return w.String()
}

func fprintTrieRec[K any, C comparable, V any](w io.Writer, n *trieNode[K, C, V], pad string) error {
	comps := sortedChildComps(n)

	for i, c := range comps {
		glyph, space := "├─ ", "│  "
		if i == len(comps)-1 {
			glyph, space = "└─ ", "   "
		}

		child := n.children[c]
		var err error
		if child.hasValue {
			_, err = fmt.Fprintf(w, "%s%v (%v) size:%d\n", pad+glyph, c, child.value, child.count)
		} else {
			_, err = fmt.Fprintf(w, "%s%v size:%d\n", pad+glyph, c, child.count)
		}
		if err != nil {
			return err
		}

		if err = fprintTrieRec(w, child, pad+space); err != nil {
			return err
		}
	}
	return nil
}

// sortedChildComps returns the child components in a stable order for
// printing. Components only need to be comparable, not ordered, so the
// sort goes over their formatted form.
func sortedChildComps[K any, C comparable, V any](n *trieNode[K, C, V]) []C {
	comps := make([]C, 0, len(n.children))
	for c := range n.children {
		comps = append(comps, c)
	}
	for i := 1; i < len(comps); i++ {
		for j := i; j > 0 && fmt.Sprint(comps[j]) < fmt.Sprint(comps[j-1]); j-- {
			comps[j], comps[j-1] = comps[j-1], comps[j]
		}
	}
	return comps
}

// Fprint writes the structure of the trie to w, one line per node with
// its edge label, the keys stored on it and the subtree glyphs.
func (t *BitTrie[K, V]) Fprint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "BitTrie: %d entries\n", t.numEntries); err != nil {
		return err
	}
	if t.root == nil {
		return nil
	}
	if err := fprintBitNode(w, t.root, "·", ""); err != nil {
		return err
	}
	return fprintBitRec(w, t.root, "")
}

// String implements fmt.Stringer, see [BitTrie.Fprint].
func (t *BitTrie[K, V]) String() string {
	w := new(strings.Builder)
	_ = t.Fprint(w)
	return w.String()
}

// fprintBitNode prints one node line: the incoming edge label and the
// keys stored on the node.
func fprintBitNode[K any, V any](w io.Writer, n *bitNode[K, V], label, pad string) error {
	keys := make([]string, 0, 1)
	for e := n.head; e != nil; e = e.next {
		keys = append(keys, fmt.Sprint(e.key))
	}

	var err error
	if len(keys) > 0 {
		_, err = fmt.Fprintf(w, "%s%s [%s]\n", pad, label, strings.Join(keys, " "))
	} else {
		_, err = fmt.Fprintf(w, "%s%s\n", pad, label)
	}
	return err
}

func fprintBitRec[K any, V any](w io.Writer, n *bitNode[K, V], pad string) error {
	kids := make([]*bitNode[K, V], 0, 2)
	bits := make([]byte, 0, 2)
	if n.s0 != nil {
		kids, bits = append(kids, n.s0), append(bits, '0')
	}
	if n.s1 != nil {
		kids, bits = append(kids, n.s1), append(bits, '1')
	}

	for i, kid := range kids {
		glyph, space := "├─ ", "│  "
		if i == len(kids)-1 {
			glyph, space = "└─ ", "   "
		}
		edge := string(bits[i]) + kid.prefix.String()
		if err := fprintBitNode(w, kid, edge, pad+glyph); err != nil {
			return err
		}
		if err := fprintBitRec(w, kid, pad+space); err != nil {
			return err
		}
	}
	return nil
}
