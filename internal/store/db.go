// Package store persists orders and their ordinal records.
//
// Records are JSON values in a key-value database behind the DB interface:
// Badger in production, an in-memory map in tests.
package store

import "errors"

// ErrKeyNotFound is returned by DB implementations for missing keys.
var ErrKeyNotFound = errors.New("key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}
