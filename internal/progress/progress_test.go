package progress

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "progress.json")
	return NewTracker(path), path
}

func TestReadMissingFile(t *testing.T) {
	state, err := Read(filepath.Join(t.TempDir(), "progress.json"))
	if err != nil {
		t.Fatalf("Read of missing file should not error: %v", err)
	}
	if state.Status != StatusIdle {
		t.Errorf("Status = %q, want idle", state.Status)
	}
}

func TestInitAndRead(t *testing.T) {
	tracker, path := newTestTracker(t)

	if err := tracker.Init("install", 5); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	state, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if state.Status != StatusRunning {
		t.Errorf("Status = %q, want running", state.Status)
	}
	if state.Mode != "install" {
		t.Errorf("Mode = %q, want install", state.Mode)
	}
	if state.Progress != 0 {
		t.Errorf("Progress = %d, want 0", state.Progress)
	}
	if state.Stats.Total != 5 {
		t.Errorf("Stats.Total = %d, want 5", state.Stats.Total)
	}
	if state.StartedAt == nil {
		t.Error("StartedAt not set")
	}
}

func TestUpdate(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 2)

	if err := tracker.Update(40, "git", "Installing git"); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	state, _ := Read(path)
	if state.Progress != 40 {
		t.Errorf("Progress = %d, want 40", state.Progress)
	}
	if state.CurrentPackage != "git" {
		t.Errorf("CurrentPackage = %q, want git", state.CurrentPackage)
	}
	if len(state.Messages) != 1 || state.Messages[0].Text != "Installing git" {
		t.Errorf("Messages = %+v", state.Messages)
	}
}

func TestUpdateClampsPercent(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 1)

	tracker.Update(150, "git", "")
	state, _ := Read(path)
	if state.Progress != 100 {
		t.Errorf("Progress = %d, want clamped to 100", state.Progress)
	}

	tracker.Update(-5, "git", "")
	state, _ = Read(path)
	if state.Progress != 0 {
		t.Errorf("Progress = %d, want clamped to 0", state.Progress)
	}
}

func TestCompleteForcesPercent(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 2)
	tracker.Update(60, "docker", "")

	if err := tracker.Complete(StatusCompleted, "All done"); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	state, _ := Read(path)
	if state.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", state.Status)
	}
	if state.Progress != 100 {
		t.Errorf("Progress = %d, want 100 after completion", state.Progress)
	}
	if state.EndedAt == nil {
		t.Error("EndedAt not set")
	}
}

func TestFailedKeepsPercent(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 2)
	tracker.Update(60, "docker", "")
	tracker.Complete(StatusFailed, "aborted")

	state, _ := Read(path)
	if state.Status != StatusFailed {
		t.Errorf("Status = %q, want failed", state.Status)
	}
	if state.Progress != 60 {
		t.Errorf("Progress = %d, want 60 preserved on failure", state.Progress)
	}
}

func TestNoReentryAfterTerminal(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 1)
	tracker.Complete(StatusCompleted, "")

	tracker.Update(10, "git", "should be ignored")
	tracker.PackageFailed("git", "late failure")
	tracker.Complete(StatusFailed, "should be ignored")

	state, _ := Read(path)
	if state.Status != StatusCompleted {
		t.Errorf("Status = %q, terminal state must not change", state.Status)
	}
	if state.Progress != 100 {
		t.Errorf("Progress = %d, want 100", state.Progress)
	}
	if len(state.PackagesFailed) != 0 {
		t.Errorf("PackagesFailed = %v, want empty", state.PackagesFailed)
	}
}

func TestInvalidTerminalStatus(t *testing.T) {
	tracker, _ := newTestTracker(t)
	tracker.Init("install", 1)
	if err := tracker.Complete("running", ""); err == nil {
		t.Error("Complete(running) should fail")
	}
}

func TestPackageBookkeeping(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 3)

	tracker.PackageInstalled("git")
	tracker.PackageInstalled("curl")
	tracker.PackageFailed("docker", "network timeout")

	state, _ := Read(path)
	if len(state.PackagesInstalled) != 2 {
		t.Errorf("PackagesInstalled = %v", state.PackagesInstalled)
	}
	if len(state.PackagesFailed) != 1 || state.PackagesFailed[0] != "docker" {
		t.Errorf("PackagesFailed = %v", state.PackagesFailed)
	}
	if state.Stats.Installed != 2 || state.Stats.Failed != 1 {
		t.Errorf("Stats = %+v", state.Stats)
	}

	found := false
	for _, msg := range state.Messages {
		if strings.Contains(msg.Text, "network timeout") {
			found = true
		}
	}
	if !found {
		t.Error("failure reason missing from messages")
	}
}

func TestMessageCap(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 1)

	for i := 0; i < maxMessages+20; i++ {
		tracker.Update(50, "pkg", "message")
	}

	state, _ := Read(path)
	if len(state.Messages) != maxMessages {
		t.Errorf("got %d messages, want capped at %d", len(state.Messages), maxMessages)
	}
}

func TestAtomicReplace(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 1)

	// Each write replaces the whole document; no temp files linger.
	tracker.Update(10, "a", "one")
	tracker.Update(20, "b", "two")

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".progress-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}

	state, err := Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if state.Progress != 20 || state.CurrentPackage != "b" {
		t.Errorf("state = %+v, want last write", state)
	}
}

func TestConcurrentWriters(t *testing.T) {
	tracker, path := newTestTracker(t)
	tracker.Init("install", 10)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			tracker.Update(n*10, "pkg", "update")
		}(i)
	}
	wg.Wait()

	// Whatever interleaving happened, the file must parse cleanly.
	state, err := Read(path)
	if err != nil {
		t.Fatalf("Read after concurrent writes: %v", err)
	}
	if state.Status != StatusRunning {
		t.Errorf("Status = %q, want running", state.Status)
	}
}
