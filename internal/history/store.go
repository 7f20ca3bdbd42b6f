package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"forge/internal/config"
)

const (
	bucketHistory = "history"
	bucketMeta    = "meta"
	keyLastOp     = "last_operation"
)

// Store is the BoltDB-backed operation log.
type Store struct {
	db *bbolt.DB
}

// Open opens the history database at the default data path.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return OpenAt(config.HistoryPath())
}

// OpenAt opens or creates a history database at the given path.
func OpenAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketHistory)); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketMeta)); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends an entry to the log.
func (s *Store) Record(entry *Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHistory))
		if bucket == nil {
			return fmt.Errorf("history bucket not found")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		// Timestamp keys keep the log chronologically ordered.
		key := []byte(entry.Timestamp.Format(time.RFC3339Nano))
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		if meta := tx.Bucket([]byte(bucketMeta)); meta != nil {
			_ = meta.Put([]byte(keyLastOp), key) //nolint:errcheck
		}
		return nil
	})
}

// List returns the most recent entries, newest first.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHistory))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && (limit <= 0 || len(entries) < limit); k, v = cursor.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	})

	return entries, err
}

// Get retrieves an entry by ID.
func (s *Store) Get(id string) (*Entry, error) {
	var entry *Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHistory))
		if bucket == nil {
			return fmt.Errorf("history bucket not found")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.ID == id {
				entry = &e
				return nil
			}
		}
		return fmt.Errorf("entry not found: %s", id)
	})

	return entry, err
}

// Last returns the most recent entry, or nil if the log is empty.
func (s *Store) Last() (*Entry, error) {
	var entry *Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHistory))
		if bucket == nil {
			return nil
		}

		k, v := bucket.Cursor().Last()
		if k == nil {
			return nil
		}

		var e Entry
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		entry = &e
		return nil
	})

	return entry, err
}

// LastReversible returns the most recent entry that can be rolled back.
func (s *Store) LastReversible() (*Entry, error) {
	entries, err := s.List(50)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.CanRollback() {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("no reversible operations found")
}

// Count returns the number of entries in the log.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketHistory)); bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})
	return count, err
}

// Clear removes all entries.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketHistory)); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketHistory))
		return err
	})
}

// Prune removes entries older than maxAge.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var deleted int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketHistory))
		if bucket == nil {
			return nil
		}

		var toDelete [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.Timestamp.Before(cutoff) {
				toDelete = append(toDelete, k)
			}
		}

		for _, k := range toDelete {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})

	return deleted, err
}
