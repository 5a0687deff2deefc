// Package store implements the persistence core on top of BadgerDB.
//
// Badger offers only opaque values, prefix scans, and atomic transactions,
// so every relationship is mirrored by hand: each set-valued field lives in
// a set sub-record, each relationship target carries a reverse index, and
// every mutation issues its full forward+reverse change set inside a single
// transaction. See records.go for the key schema.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/cragbook/cragbook-server/internal/errors"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "failed to open badger db")
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if logger != nil {
		logger.Info("badger database opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	return s.db.Close()
}

// storeErr translates engine-level failures into the domain taxonomy.
// Connection-level errors surface as UNAVAILABLE and are never retried
// here; a reissued partial batch could break the atomicity assumption.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, badger.ErrDBClosed) || errors.Is(err, badger.ErrBlockedWrites) {
		return apperrors.ErrUnavailable.WithCause(err)
	}
	return err
}

// Helper methods for database operations.

// getJSON retrieves a JSON value by key into dest.
// Returns badger.ErrKeyNotFound untranslated; callers map it per entity.
func getJSONTxn(txn *badger.Txn, key string, dest any) error {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setJSONTxn marshals value and writes it at key.
func setJSONTxn(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return txn.Set([]byte(key), data)
}

// existsTxn checks if a key exists.
func existsTxn(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
