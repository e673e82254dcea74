// Package store provides the transactional key-value substrate every ledger
// operation runs on.
//
// An operation executes inside a single Update call. Writes made through the
// Tx become visible together when the function returns nil and are discarded
// when it returns an error, and Update calls never run concurrently.
package store

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
)

// Bucket names a keyspace.
type Bucket string

const (
	Works    Bucket = "works"
	Pools    Bucket = "pools"
	Balances Bucket = "balances"
	Custody  Bucket = "custody"
)

// Buckets lists every keyspace created on open.
var Buckets = []Bucket{Works, Pools, Balances, Custody}

func knownBucket(b Bucket) bool {
	for _, k := range Buckets {
		if k == b {
			return true
		}
	}
	return false
}

// Tx is a view of the store inside one transaction.
type Tx interface {
	// Get returns a copy of the value at key, or nil if absent.
	Get(bucket Bucket, key []byte) ([]byte, error)

	// Put writes value at key.
	Put(bucket Bucket, key, value []byte) error

	// ForEachPrefix calls fn for every key starting with prefix, in key order.
	ForEachPrefix(bucket Bucket, prefix []byte, fn func(key, value []byte) error) error
}

// DB runs transactions.
type DB interface {
	// Update runs fn in a read-write transaction.
	Update(fn func(Tx) error) error

	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error

	// Close releases the database.
	Close() error
}

// ---------------------------------------------------------------------------
// MemDB implements DB in memory.
// ---------------------------------------------------------------------------

// MemDB is an in-memory DB for tests and ephemeral daemons.
type MemDB struct {
	mu      sync.RWMutex
	buckets map[Bucket]map[string][]byte
	closed  bool
}

// Compile-time interface check.
var _ DB = (*MemDB)(nil)

// NewMemDB creates an empty in-memory database.
func NewMemDB() *MemDB {
	m := &MemDB{buckets: make(map[Bucket]map[string][]byte)}
	for _, b := range Buckets {
		m.buckets[b] = make(map[string][]byte)
	}
	return m
}

// Update runs fn with staged writes that are applied only if fn succeeds.
func (m *MemDB) Update(fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	tx := &memTx{db: m, writable: true, staged: make(map[Bucket]map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for b, kv := range tx.staged {
		for k, v := range kv {
			m.buckets[b][k] = v
		}
	}
	return nil
}

// View runs fn against a consistent snapshot.
func (m *MemDB) View(fn func(Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(&memTx{db: m})
}

// Close marks the database closed.
func (m *MemDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memTx struct {
	db       *MemDB
	writable bool
	staged   map[Bucket]map[string][]byte
}

func (tx *memTx) Get(bucket Bucket, key []byte) ([]byte, error) {
	if !knownBucket(bucket) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	if v, ok := tx.staged[bucket][string(key)]; ok {
		return bytes.Clone(v), nil
	}
	if v, ok := tx.db.buckets[bucket][string(key)]; ok {
		return bytes.Clone(v), nil
	}
	return nil, nil
}

func (tx *memTx) Put(bucket Bucket, key, value []byte) error {
	if !tx.writable {
		return ErrReadOnly
	}
	if !knownBucket(bucket) {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	kv, ok := tx.staged[bucket]
	if !ok {
		kv = make(map[string][]byte)
		tx.staged[bucket] = kv
	}
	kv[string(key)] = bytes.Clone(value)
	return nil
}

func (tx *memTx) ForEachPrefix(bucket Bucket, prefix []byte, fn func(key, value []byte) error) error {
	if !knownBucket(bucket) {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, bucket)
	}
	seen := make(map[string]struct{})
	var keys []string
	collect := func(kv map[string][]byte) {
		for k := range kv {
			if _, dup := seen[k]; dup || !bytes.HasPrefix([]byte(k), prefix) {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	collect(tx.staged[bucket])
	collect(tx.db.buckets[bucket])
	sort.Strings(keys)

	for _, k := range keys {
		v, err := tx.Get(bucket, []byte(k))
		if err != nil {
			return err
		}
		if err := fn([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}
