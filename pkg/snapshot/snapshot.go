// Package snapshot captures the installed package set across all active
// package managers so a run can be rolled back. Snapshots are
// package-level manifests (names, versions, source manager), not file
// backups.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"forge/internal/config"
	"forge/pkg/manager"
)

const (
	bucketSnapshots = "snapshots"
	bucketMeta      = "snapshot_meta"
	keyLatest       = "latest_id"

	// MaxSnapshots caps the total number of snapshots kept after pruning.
	MaxSnapshots = 50

	// MaxAutoSnapshots caps the non-manual snapshots kept after pruning.
	MaxAutoSnapshots = 20
)

// Trigger records what caused a snapshot to be taken.
type Trigger string

const (
	TriggerManual    Trigger = "manual"
	TriggerInstall   Trigger = "install"
	TriggerUninstall Trigger = "uninstall"
	TriggerUpdate    Trigger = "update"
	TriggerUpgrade   Trigger = "upgrade"
	TriggerScheduled Trigger = "scheduled"
)

// PackageState is one installed package at capture time.
type PackageState struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

// Snapshot is the system package manifest at a point in time.
type Snapshot struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Label     string         `json:"label,omitempty"`
	Trigger   Trigger        `json:"trigger"`
	Packages  []PackageState `json:"packages"`

	// Targets are the packages the triggering operation acted on.
	Targets []string `json:"targets,omitempty"`
}

// New creates an empty snapshot with a timestamp-derived ID. The
// fractional seconds keep two captures in the same second from landing
// on the same store key, while IDs stay timestamp-ordered.
func New(trigger Trigger, label string) *Snapshot {
	return &Snapshot{
		ID:        time.Now().Format("20060102-150405.000000"),
		Timestamp: time.Now(),
		Label:     label,
		Trigger:   trigger,
		Packages:  []PackageState{},
	}
}

// FormatTime returns a human-readable timestamp.
func (s *Snapshot) FormatTime() string {
	return s.Timestamp.Format("2006-01-02 15:04:05")
}

// PackageCount returns the number of packages in the manifest.
func (s *Snapshot) PackageCount() int {
	return len(s.Packages)
}

// HasPackage checks if a package from a given manager is in the manifest.
func (s *Snapshot) HasPackage(name, source string) bool {
	for _, pkg := range s.Packages {
		if pkg.Name == name && pkg.Source == source {
			return true
		}
	}
	return false
}

// BySource groups the manifest by source manager.
func (s *Snapshot) BySource() map[string][]PackageState {
	result := make(map[string][]PackageState)
	for _, pkg := range s.Packages {
		result[pkg.Source] = append(result[pkg.Source], pkg)
	}
	return result
}

// Summary returns a one-line description of the snapshot.
func (s *Snapshot) Summary() string {
	label := s.Label
	if label == "" {
		label = string(s.Trigger)
	}
	return fmt.Sprintf("%s - %s (%d packages)", s.ID, label, len(s.Packages))
}

// Store persists snapshots in a bbolt database.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens the snapshot database at the default data path.
func OpenStore() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return OpenStoreAt(config.SnapshotPath())
}

// OpenStoreAt opens or creates a snapshot database at the given path.
func OpenStoreAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots)); err != nil {
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

// Save writes a snapshot and updates the latest reference.
func (s *Store) Save(snap *Snapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}

		key := []byte(snap.ID)
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save snapshot: %w", err)
		}

		if meta := tx.Bucket([]byte(bucketMeta)); meta != nil {
			_ = meta.Put([]byte(keyLatest), key) //nolint:errcheck
		}
		return nil
	})
}

// Get retrieves a snapshot by ID.
func (s *Store) Get(id string) (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("snapshot not found: %s", id)
		}

		var out Snapshot
		if err := json.Unmarshal(data, &out); err != nil {
			return fmt.Errorf("failed to unmarshal snapshot: %w", err)
		}
		snap = &out
		return nil
	})

	return snap, err
}

// Latest returns the most recent snapshot, or nil if none exist.
func (s *Store) Latest() (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return nil
		}

		// IDs are timestamp-ordered, so the last key is the newest.
		k, v := bucket.Cursor().Last()
		if k == nil {
			return nil
		}

		var out Snapshot
		if err := json.Unmarshal(v, &out); err != nil {
			return err
		}
		snap = &out
		return nil
	})

	return snap, err
}

// List returns snapshots newest first, optionally limited and filtered
// by trigger.
func (s *Store) List(limit int, trigger Trigger) ([]Snapshot, error) {
	var snapshots []Snapshot

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && (limit <= 0 || len(snapshots) < limit); k, v = cursor.Prev() {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			if trigger != "" && snap.Trigger != trigger {
				continue
			}
			snapshots = append(snapshots, snap)
		}
		return nil
	})

	return snapshots, err
}

// Delete removes a snapshot by ID.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return fmt.Errorf("snapshots bucket not found")
		}
		return bucket.Delete([]byte(id))
	})
}

// Count returns the total number of stored snapshots.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketSnapshots)); bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})
	return count, err
}

// Prune deletes old snapshots beyond the retention caps. Manual snapshots
// only count against the overall cap.
func (s *Store) Prune(keepTotal, keepAuto int) (int, error) {
	var deleted int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		if bucket == nil {
			return nil
		}

		var all, auto []Snapshot
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			all = append(all, snap)
			if snap.Trigger != TriggerManual {
				auto = append(auto, snap)
			}
		}

		sort.Slice(all, func(i, j int) bool {
			return all[i].Timestamp.After(all[j].Timestamp)
		})
		sort.Slice(auto, func(i, j int) bool {
			return auto[i].Timestamp.After(auto[j].Timestamp)
		})

		toDelete := make(map[string]bool)
		if len(all) > keepTotal {
			for _, snap := range all[keepTotal:] {
				toDelete[snap.ID] = true
			}
		}
		if len(auto) > keepAuto {
			for _, snap := range auto[keepAuto:] {
				toDelete[snap.ID] = true
			}
		}

		for id := range toDelete {
			if err := bucket.Delete([]byte(id)); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})

	return deleted, err
}

// Capture builds a snapshot from what the available managers report as
// installed. A manager that fails to list is skipped rather than failing
// the whole capture.
func Capture(ctx context.Context, trigger Trigger, label string, managers []manager.Manager) (*Snapshot, error) {
	snap := New(trigger, label)

	for _, mgr := range managers {
		if !mgr.IsAvailable() {
			continue
		}

		packages, err := mgr.ListInstalled(ctx, manager.ListOpts{})
		if err != nil {
			continue
		}

		for _, pkg := range packages {
			snap.Packages = append(snap.Packages, PackageState{
				Name:    pkg.Name,
				Version: pkg.Version,
				Source:  mgr.Name(),
			})
		}
	}

	sort.Slice(snap.Packages, func(i, j int) bool {
		if snap.Packages[i].Source != snap.Packages[j].Source {
			return snap.Packages[i].Source < snap.Packages[j].Source
		}
		return snap.Packages[i].Name < snap.Packages[j].Name
	})

	return snap, nil
}

// CaptureAndSave captures the current state into the given store and
// prunes old snapshots.
func CaptureAndSave(ctx context.Context, store *Store, trigger Trigger, label string, managers []manager.Manager) (*Snapshot, error) {
	snap, err := Capture(ctx, trigger, label, managers)
	if err != nil {
		return nil, err
	}
	if err := store.Save(snap); err != nil {
		return nil, err
	}
	_, _ = store.Prune(MaxSnapshots, MaxAutoSnapshots) //nolint:errcheck
	return snap, nil
}
