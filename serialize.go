// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// The serialized form of every container is a msgpack stream: the
// entry count first, then the entries. Decoding feeds each entry back
// through the container's normal insert path, so the on-disk layout is
// independent of the in-memory shape and stays stable across internal
// reorganizations.

// MarshalBinary implements [encoding.BinaryMarshaler]. The entries are
// written in iteration order.
func (m *HamtMap[K, V]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.EncodeInt(int64(m.Len())); err != nil {
		return nil, fmt.Errorf("encoding hamt length: %w", err)
	}
	for k, v := range m.All() {
		if err := enc.Encode(k); err != nil {
			return nil, fmt.Errorf("encoding hamt key: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding hamt value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler]. The map is
// cleared first, its hash function is kept.
func (m *HamtMap[K, V]) UnmarshalBinary(data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	n, err := dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("decoding hamt length: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("decoding hamt length: negative count %d", n)
	}

	m.Clear()
	for i := 0; i < n; i++ {
		var k K
		var v V
		if err := dec.Decode(&k); err != nil {
			return fmt.Errorf("decoding hamt key %d: %w", i, err)
		}
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decoding hamt value %d: %w", i, err)
		}
		m.Put(k, v)
	}
	return nil
}

// MarshalBinary implements [encoding.BinaryMarshaler]. The elements
// are written in list order.
func (t *TreeList[T]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.EncodeInt(int64(t.Len())); err != nil {
		return nil, fmt.Errorf("encoding list length: %w", err)
	}
	for _, v := range t.All() {
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding list element: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler]. The list is
// cleared first, the decoded elements are rebuilt into a balanced
// tree.
func (t *TreeList[T]) UnmarshalBinary(data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	n, err := dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("decoding list length: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("decoding list length: negative count %d", n)
	}

	items := make([]T, n)
	for i := 0; i < n; i++ {
		if err := dec.Decode(&items[i]); err != nil {
			return fmt.Errorf("decoding list element %d: %w", i, err)
		}
	}

	rebuilt := NewTreeListFrom(items)
	t.root = rebuilt.root
	t.modCount++
	return nil
}

// MarshalBinary implements [encoding.BinaryMarshaler]. The entries are
// written in ascending key order.
func (m *SortedMap[K, V]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)

	if err := enc.EncodeInt(int64(m.Len())); err != nil {
		return nil, fmt.Errorf("encoding map length: %w", err)
	}
	for k, v := range m.All() {
		if err := enc.Encode(k); err != nil {
			return nil, fmt.Errorf("encoding map key: %w", err)
		}
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding map value: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler]. The map is
// cleared first, its comparator is kept. The entries go back in
// through Put, so a stream that was written under a different
// comparator still decodes into a consistent map.
func (m *SortedMap[K, V]) UnmarshalBinary(data []byte) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))

	n, err := dec.DecodeInt()
	if err != nil {
		return fmt.Errorf("decoding map length: %w", err)
	}
	if n < 0 {
		return fmt.Errorf("decoding map length: negative count %d", n)
	}

	m.Clear()
	for i := 0; i < n; i++ {
		var k K
		var v V
		if err := dec.Decode(&k); err != nil {
			return fmt.Errorf("decoding map key %d: %w", i, err)
		}
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decoding map value %d: %w", i, err)
		}
		m.Put(k, v)
	}
	return nil
}
