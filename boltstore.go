// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import (
	"encoding"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Store persists serialized containers in a bbolt database file, one
// bucket per collection kind, one key per container. Anything that
// implements [encoding.BinaryMarshaler] and [encoding.BinaryUnmarshaler]
// can be stored, which covers [HamtMap], [TreeList] and [SortedMap].
//
// A Store is safe for concurrent use, bbolt serializes the
// transactions.
type Store struct {
	db *bolt.DB
}

// OpenStore opens or creates the database file at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save serializes m and writes it under key into bucket, creating the
// bucket if needed.
func (s *Store) Save(bucket, key string, m encoding.BinaryMarshaler) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", bucket, key, err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("saving %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Load reads the value under key in bucket and unmarshals it into m.
// It returns [ErrBucketNotFound] or [ErrKeyNotFound] when there is
// nothing to load.
func (s *Store) Load(bucket, key string, m encoding.BinaryUnmarshaler) error {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%w: %s/%s", ErrKeyNotFound, bucket, key)
		}
		// v is only valid inside the transaction
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		return err
	}

	if err := m.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("unmarshaling %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Delete removes the value under key in bucket. Deleting a missing key
// is not an error, a missing bucket is.
func (s *Store) Delete(bucket, key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Keys returns the keys present in bucket, in byte order.
func (s *Store) Keys(bucket string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
