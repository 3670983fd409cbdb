// Package localstore is the durable local tier: an embedded BadgerDB holding
// one JSON value per logical key. It is the fallback store when the remote
// collaborator is unreachable and the only store in local-only deployments.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	*badger.DB
}

// Open opens (creating if needed) a persistent store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store at %s: %w", path, err)
	}
	return &Store{DB: db}, nil
}

// OpenInMemory opens a store that lives only for the process. Used in tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &Store{DB: db}, nil
}

// GetJSON decodes the value at key into v. A missing key returns (false, nil).
// A value that fails to decode is treated the same as a missing key so a
// corrupt record can never take down a read path; it is logged and skipped.
func GetJSON(txn *badger.Txn, key string, v any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	raw, err := item.ValueCopy(nil)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("localstore: discarding malformed value at %s: %v", key, err)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and writes it at key within txn.
func SetJSON(txn *badger.Txn, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), raw); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// ReadJSON is a one-shot GetJSON in its own read transaction.
func (s *Store) ReadJSON(key string, v any) (bool, error) {
	var found bool
	err := s.View(func(txn *badger.Txn) error {
		var err error
		found, err = GetJSON(txn, key, v)
		return err
	})
	return found, err
}

// WriteJSON is a one-shot SetJSON in its own read-write transaction.
func (s *Store) WriteJSON(key string, v any) error {
	return s.Update(func(txn *badger.Txn) error {
		return SetJSON(txn, key, v)
	})
}
