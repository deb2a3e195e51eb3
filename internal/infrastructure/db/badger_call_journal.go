package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"

	"github.com/damon-houk/lkr-exchange-tools/internal/domain/entity"
)

const (
	callKeyPrefix = "call:"

	// DefaultRecentLimit applies when Recent is asked for zero or fewer records
	DefaultRecentLimit = 20
	// MaxRecentLimit bounds a single Recent read
	MaxRecentLimit = 500
)

// BadgerCallJournal stores tool call records in BadgerDB, keyed by time
type BadgerCallJournal struct {
	db *badger.DB
}

// OpenBadger opens a database at path, or an in-memory one when inMemory is set
func OpenBadger(path string, inMemory bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// OpenBadgerReadOnly opens an existing on-disk database without taking the writer lock
func OpenBadgerReadOnly(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithReadOnly(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database read-only: %w", err)
	}
	return db, nil
}

// NewBadgerCallJournal creates a new BadgerDB call journal
func NewBadgerCallJournal(db *badger.DB) *BadgerCallJournal {
	return &BadgerCallJournal{db: db}
}

// Record saves a call record, assigning an ID and time when missing
func (j *BadgerCallJournal) Record(ctx context.Context, record *entity.CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.At.IsZero() {
		record.At = time.Now().UTC()
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal call record: %w", err)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(callKey(record), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store call record: %w", err)
	}

	return nil
}

// Recent returns up to limit records, newest first. The limit is clamped
// to MaxRecentLimit.
func (j *BadgerCallJournal) Recent(ctx context.Context, limit int) ([]*entity.CallRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	records := make([]*entity.CallRecord, 0, limit)

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(callKeyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration seeks from just past the prefix range
		for it.Seek([]byte(callKeyPrefix + "\xff")); it.ValidForPrefix(opts.Prefix); it.Next() {
			if len(records) >= limit {
				break
			}
			var rec entity.CallRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read call records: %w", err)
	}

	return records, nil
}

// callKey orders records by time; the ID suffix keeps keys unique
func callKey(record *entity.CallRecord) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", callKeyPrefix, record.At.UnixNano(), record.ID))
}
