// Package storage wraps a Pebble database shared by the stream log and the
// table store. One process owns the database at a time.
package storage

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

// DB is a thin wrapper around a Pebble instance with copy-on-read gets and
// synced commits.
type DB struct {
	inner *pebble.DB
}

// Open creates or opens the database under dataDir.
func Open(dataDir string) (*DB, error) {
	if dataDir == "" {
		return nil, errors.New("storage: data dir is required")
	}
	inner, err := pebble.Open(dataDir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &DB{inner: inner}, nil
}

func (db *DB) Close() error {
	if db == nil || db.inner == nil {
		return nil
	}
	return db.inner.Close()
}

// Set writes a single key with a synced commit.
func (db *DB) Set(key, value []byte) error {
	return db.inner.Set(key, value, pebble.Sync)
}

// Get copies the value for key. The second return is false when absent.
func (db *DB) Get(key []byte) ([]byte, bool, error) {
	val, closer, err := db.inner.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), true, nil
}

// NewBatch creates a batch for atomic multi-key updates.
func (db *DB) NewBatch() *pebble.Batch {
	return db.inner.NewBatch()
}

// Commit applies a batch with a WAL sync.
func (db *DB) Commit(b *pebble.Batch) error {
	if b == nil {
		return errors.New("storage: nil batch")
	}
	return b.Commit(pebble.Sync)
}

// Scan visits keys in [lower, upper) in order. The callback returns false to
// stop early.
func (db *DB) Scan(lower, upper []byte, fn func(key, value []byte) bool) error {
	iter, err := db.inner.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return err
	}
	defer iter.Close()
	for iter.First(); iter.Valid(); iter.Next() {
		k := append([]byte(nil), iter.Key()...)
		v := append([]byte(nil), iter.Value()...)
		if !fn(k, v) {
			break
		}
	}
	return iter.Error()
}

// Last returns the greatest key in [lower, upper), if any.
func (db *DB) Last(lower, upper []byte) ([]byte, bool, error) {
	iter, err := db.inner.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, false, err
	}
	defer iter.Close()
	if !iter.Last() {
		return nil, false, iter.Error()
	}
	return append([]byte(nil), iter.Key()...), true, nil
}
