// Copyright (c) 2025 The trove authors
// SPDX-License-Identifier: MIT

package trove

import "errors"

var (
	// ErrBucketNotFound is returned by [Store] operations when the
	// named bucket does not exist in the database file.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrKeyNotFound is returned by [Store.Load] when the bucket has
	// no value under the given key.
	ErrKeyNotFound = errors.New("key not found")
)
