package permissions

import (
	"errors"

	badger "github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned by a Store when a key has never been written.
var ErrNotFound = errors.New("permissions: key not found")

// Store persists coarse permission state for the lifetime of the process or
// session. It is injected as a collaborator; nothing in this package reaches
// for ambient global storage.
type Store interface {
	Get(key string) (string, error)
	Put(key, value string) error
}

// BadgerStore is a Store on top of an in-memory badger instance, giving the
// session-storage lifetime the priming flow expects.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens a fresh in-memory store.
func NewBadgerStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		value = string(raw)
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *BadgerStore) Put(key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
