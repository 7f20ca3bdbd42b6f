package history

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenAt error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry(OpInstall, "brew", []string{"git", "curl"})

	if entry.Operation != OpInstall {
		t.Errorf("Operation = %v", entry.Operation)
	}
	if !entry.Reversible {
		t.Error("install should be reversible")
	}
	if entry.Success {
		t.Error("new entry should not be marked successful")
	}

	upgrade := NewEntry(OpUpgrade, "brew", nil)
	if upgrade.Reversible {
		t.Error("upgrade should not be reversible")
	}
}

func TestMarkSuccessAndFailed(t *testing.T) {
	entry := NewEntry(OpInstall, "apt", []string{"vim"})

	entry.MarkSuccess(1500 * time.Millisecond)
	if !entry.Success || entry.Duration != "1.5s" {
		t.Errorf("after MarkSuccess: success=%v duration=%q", entry.Success, entry.Duration)
	}

	entry.MarkFailed(errors.New("lock held"))
	if entry.Success || entry.Error != "lock held" {
		t.Errorf("after MarkFailed: success=%v error=%q", entry.Success, entry.Error)
	}
}

func TestCanRollback(t *testing.T) {
	entry := NewEntry(OpInstall, "brew", []string{"git"})
	entry.MarkSuccess(time.Second)

	if entry.CanRollback() {
		t.Error("entry without a snapshot should not be rollbackable")
	}

	entry.SnapshotID = "20260101-120000"
	if !entry.CanRollback() {
		t.Error("successful install with snapshot should be rollbackable")
	}

	entry.MarkFailed(errors.New("boom"))
	if entry.CanRollback() {
		t.Error("failed entry should not be rollbackable")
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)

	for i, pkg := range []string{"git", "curl", "vim"} {
		entry := NewEntry(OpInstall, "brew", []string{pkg})
		entry.Timestamp = time.Date(2026, 1, 1, 10, i, 0, 0, time.UTC)
		if err := store.Record(entry); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Packages[0] != "vim" || entries[2].Packages[0] != "git" {
		t.Errorf("order: %s ... %s", entries[0].Packages[0], entries[2].Packages[0])
	}

	limited, _ := store.List(2)
	if len(limited) != 2 {
		t.Errorf("List(2) = %d entries", len(limited))
	}
}

func TestGetAndLast(t *testing.T) {
	store := openTestStore(t)

	entry := NewEntry(OpUninstall, "apt", []string{"nano"})
	if err := store.Record(entry); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(entry.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Operation != OpUninstall {
		t.Errorf("Operation = %v", got.Operation)
	}

	if _, err := store.Get("bogus"); err == nil {
		t.Error("Get of unknown ID should fail")
	}

	last, err := store.Last()
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || last.ID != entry.ID {
		t.Errorf("Last = %+v", last)
	}
}

func TestLastReversible(t *testing.T) {
	store := openTestStore(t)

	install := NewEntry(OpInstall, "brew", []string{"git"})
	install.Timestamp = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	install.SnapshotID = "20260101-100000"
	install.MarkSuccess(time.Second)
	store.Record(install)

	upgrade := NewEntry(OpUpgrade, "brew", nil)
	upgrade.Timestamp = time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
	upgrade.MarkSuccess(time.Second)
	store.Record(upgrade)

	got, err := store.LastReversible()
	if err != nil {
		t.Fatalf("LastReversible error: %v", err)
	}
	if got.Operation != OpInstall {
		t.Errorf("LastReversible = %v, want the install", got.Operation)
	}
}

func TestLastReversibleEmpty(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.LastReversible(); err == nil {
		t.Error("LastReversible on empty store should fail")
	}
}

func TestClearAndCount(t *testing.T) {
	store := openTestStore(t)
	store.Record(NewEntry(OpInstall, "brew", []string{"git"}))

	count, _ := store.Count()
	if count != 1 {
		t.Errorf("Count = %d, want 1", count)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	count, _ = store.Count()
	if count != 0 {
		t.Errorf("Count after Clear = %d", count)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)

	old := NewEntry(OpInstall, "brew", []string{"git"})
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	store.Record(old)

	recent := NewEntry(OpInstall, "brew", []string{"curl"})
	store.Record(recent)

	deleted, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d, want 1", deleted)
	}

	entries, _ := store.List(0)
	if len(entries) != 1 || entries[0].Packages[0] != "curl" {
		t.Errorf("remaining entries: %+v", entries)
	}
}

func TestSummary(t *testing.T) {
	entry := NewEntry(OpInstall, "brew", []string{"git"})
	entry.MarkSuccess(time.Second)

	s := entry.Summary()
	if !strings.Contains(s, "install") || !strings.Contains(s, "git") || !strings.Contains(s, "success") {
		t.Errorf("Summary = %q", s)
	}
}
