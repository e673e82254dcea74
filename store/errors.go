package store

import "errors"

var (
	// ErrUnknownBucket indicates a bucket name outside Buckets.
	ErrUnknownBucket = errors.New("store: unknown bucket")

	// ErrReadOnly indicates a write inside a View transaction.
	ErrReadOnly = errors.New("store: write in read-only transaction")

	// ErrClosed indicates the database has been closed.
	ErrClosed = errors.New("store: database closed")

	// ErrEmptyKey indicates a zero-length key.
	ErrEmptyKey = errors.New("store: empty key")
)
