package draftstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps drafts in an embedded Badger database, for single-node
// deployments without Redis.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenBadger opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("draftstore: open badger: %w", err)
	}
	return db, nil
}

// NewBadgerStore wraps an open database. The caller owns db and closes it.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	if db == nil {
		panic("draftstore: badger db cannot be nil")
	}
	return &BadgerStore{db: db, ttl: ttl}
}

func (s *BadgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("draftstore: badger get: %w", err)
	}
	return string(value), true, nil
}

func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), []byte(value))
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("draftstore: badger set: %w", err)
	}
	return nil
}

func (s *BadgerStore) Remove(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("draftstore: badger delete: %w", err)
	}
	return nil
}
