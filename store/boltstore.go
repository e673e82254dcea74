package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// BoltDB implements DB on a bbolt file.
type BoltDB struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ DB = (*BoltDB)(nil)

// OpenBolt opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBolt(dbPath string) (*BoltDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range Buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltDB{db: db}, nil
}

// Path returns the database file path.
func (s *BoltDB) Path() string { return s.db.Path() }

// Update runs fn in a bbolt read-write transaction.
func (s *BoltDB) Update(fn func(Tx) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// View runs fn in a bbolt read-only transaction.
func (s *BoltDB) View(fn func(Tx) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		return fn(boltTx{tx: tx})
	})
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return ErrClosed
	}
	return err
}

// Close closes the underlying database.
func (s *BoltDB) Close() error { return s.db.Close() }

type boltTx struct {
	tx *bbolt.Tx
}

func (t boltTx) bucket(name Bucket) (*bbolt.Bucket, error) {
	b := t.tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBucket, name)
	}
	return b, nil
}

func (t boltTx) Get(name Bucket, key []byte) ([]byte, error) {
	b, err := t.bucket(name)
	if err != nil {
		return nil, err
	}
	// bbolt values are only valid for the life of the transaction.
	return bytes.Clone(b.Get(key)), nil
}

func (t boltTx) Put(name Bucket, key, value []byte) error {
	if !t.tx.Writable() {
		return ErrReadOnly
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	b, err := t.bucket(name)
	if err != nil {
		return err
	}
	if err := b.Put(key, value); err != nil {
		return fmt.Errorf("store: put %s: %w", name, err)
	}
	return nil
}

func (t boltTx) ForEachPrefix(name Bucket, prefix []byte, fn func(key, value []byte) error) error {
	b, err := t.bucket(name)
	if err != nil {
		return err
	}
	c := b.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		if err := fn(bytes.Clone(k), bytes.Clone(v)); err != nil {
			return err
		}
	}
	return nil
}
