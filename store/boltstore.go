package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// BoltStore persists records in a bbolt database. Each Update maps to one
// bbolt read-write transaction, so a failed operation leaves no writes.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Update runs fn in a bbolt read-write transaction.
func (s *BoltStore) Update(fn func(Tx) error) error {
	return s.db.Update(func(btx *bbolt.Tx) error {
		return fn(&recordTx{kv: boltKV{tx: btx}})
	})
}

// View runs fn in a bbolt read-only transaction.
func (s *BoltStore) View(fn func(Tx) error) error {
	return s.db.View(func(btx *bbolt.Tx) error {
		return fn(&recordTx{kv: boltKV{tx: btx}})
	})
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// boltKV adapts a bbolt transaction to kv.
type boltKV struct {
	tx *bbolt.Tx
}

func (b boltKV) get(bucket, key []byte) []byte {
	v := b.tx.Bucket(bucket).Get(key)
	if v == nil {
		return nil
	}
	// bbolt values are only valid for the life of the transaction.
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp
}

func (b boltKV) put(bucket, key, value []byte) error {
	if !b.tx.Writable() {
		return ErrReadOnly
	}
	if err := b.tx.Bucket(bucket).Put(key, value); err != nil {
		return fmt.Errorf("boltstore: put %s: %w", bucket, err)
	}
	return nil
}

func (b boltKV) del(bucket, key []byte) error {
	if !b.tx.Writable() {
		return ErrReadOnly
	}
	if err := b.tx.Bucket(bucket).Delete(key); err != nil {
		return fmt.Errorf("boltstore: delete %s: %w", bucket, err)
	}
	return nil
}

func (b boltKV) forEach(bucket []byte, fn func(k, v []byte) error) error {
	return b.tx.Bucket(bucket).ForEach(fn)
}
