// Package kv provides a small key-value store with hierarchical path-based
// keys. Keys are string slices (e.g., ["call", "abc-123"]) encoded with a
// separator byte for storage.
//
// The package includes a BadgerDB-backed implementation for the serving
// process and an in-memory implementation for tests.
package kv

import (
	"context"
	"errors"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Key is a hierarchical path represented as a slice of string segments.
// Segments must not contain the separator character.
type Key []string

// String returns the key as a human-readable string using ':' as separator.
// For display and debug only.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is the interface for a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key Key) error

	// List iterates over all entries whose key starts with the given
	// prefix, in lexicographic order of the encoded key.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

// separator is the byte used to join key segments when encoding to storage.
const separator byte = ':'

// encodeKey converts a Key to its byte representation.
func encodeKey(k Key) []byte {
	n := 0
	for i, seg := range k {
		if i > 0 {
			n++
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = separator
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decodeKey converts a byte representation back to a Key.
func decodeKey(b []byte) Key {
	parts := strings.Split(string(b), string(separator))
	return Key(parts)
}
