package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "setting:"

// BadgerStore keeps values in a badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions(path))
}

// NewMemoryBadgerStore opens a badger store that lives only in memory.
func NewMemoryBadgerStore() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	opts = opts.
		WithLogger(nil).
		WithNumVersionsToKeep(1).
		WithNumGoroutines(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(_ context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + key))
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
		return "", false, fmt.Errorf("getting setting %q: %w", key, err)
	}

	return string(value), true, nil
}

func (s *BadgerStore) Set(_ context.Context, key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+key), []byte(value))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
