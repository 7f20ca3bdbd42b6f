// Package progress implements the shared progress file that bridges the
// CLI installer and the web dashboard. Writers overwrite a single JSON
// document atomically; readers poll it and never see a torn write.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Run statuses. The lifecycle is idle -> running -> completed | failed,
// with no transitions out of a terminal status.
const (
	StatusIdle      = "idle"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// maxMessages caps the message log kept in the state file.
const maxMessages = 100

// Message is one timestamped progress log line.
type Message struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// Stats summarizes a run.
type Stats struct {
	Installed int    `json:"installed"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
	DiskUsed  string `json:"disk_used,omitempty"`
}

// State is the JSON document shared between producer and dashboard.
type State struct {
	Status            string     `json:"status"`
	Mode              string     `json:"mode"`
	Progress          int        `json:"progress"`
	CurrentPackage    string     `json:"current_package"`
	PackagesInstalled []string   `json:"packages_installed"`
	PackagesFailed    []string   `json:"packages_failed"`
	Messages          []Message  `json:"messages"`
	Stats             Stats      `json:"stats"`
	StartedAt         *time.Time `json:"started_at,omitempty"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
}

// Terminal reports whether the run has finished.
func (s *State) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// Tracker is the producer side of the bridge. All methods are safe for
// concurrent use; the last writer wins.
type Tracker struct {
	path  string
	mu    sync.Mutex
	state State
}

// NewTracker creates a tracker writing to the given path. No file is
// written until Init is called.
func NewTracker(path string) *Tracker {
	return &Tracker{
		path:  path,
		state: State{Status: StatusIdle},
	}
}

// Init marks the run started: status running, zero progress, empty logs.
func (t *Tracker) Init(mode string, total int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now().UTC()
	t.state = State{
		Status:            StatusRunning,
		Mode:              mode,
		Progress:          0,
		PackagesInstalled: []string{},
		PackagesFailed:    []string{},
		Messages:          []Message{},
		Stats:             Stats{Total: total},
		StartedAt:         &now,
	}
	return t.write()
}

// Update overwrites the percent and current package and appends a message.
// It is a no-op once the run is terminal.
func (t *Tracker) Update(percent int, current, message string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return nil
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.state.Progress = percent
	t.state.CurrentPackage = current
	t.appendMessage(message)
	return t.write()
}

// PackageInstalled records a successful package.
func (t *Tracker) PackageInstalled(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return nil
	}
	t.state.PackagesInstalled = append(t.state.PackagesInstalled, name)
	t.state.Stats.Installed++
	t.appendMessage(fmt.Sprintf("Installed %s", name))
	return t.write()
}

// PackageFailed records a failed package.
func (t *Tracker) PackageFailed(name, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return nil
	}
	t.state.PackagesFailed = append(t.state.PackagesFailed, name)
	t.state.Stats.Failed++
	t.appendMessage(fmt.Sprintf("Failed %s: %s", name, reason))
	return t.write()
}

// SetDiskUsed records the disk usage summary for the run.
func (t *Tracker) SetDiskUsed(used string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return nil
	}
	t.state.Stats.DiskUsed = used
	return t.write()
}

// Complete moves the run to a terminal status. Completed runs are forced
// to 100 percent. Calling Complete again is a no-op.
func (t *Tracker) Complete(status, message string) error {
	if status != StatusCompleted && status != StatusFailed {
		return fmt.Errorf("invalid terminal status: %s", status)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Terminal() {
		return nil
	}
	now := time.Now().UTC()
	t.state.Status = status
	t.state.EndedAt = &now
	t.state.CurrentPackage = ""
	if status == StatusCompleted {
		t.state.Progress = 100
	}
	if message != "" {
		t.appendMessage(message)
	}
	return t.write()
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Tracker) appendMessage(text string) {
	if text == "" {
		return
	}
	t.state.Messages = append(t.state.Messages, Message{
		Time: time.Now().UTC(),
		Text: text,
	})
	if len(t.state.Messages) > maxMessages {
		t.state.Messages = t.state.Messages[len(t.state.Messages)-maxMessages:]
	}
}

// write persists the state with a temp file and rename so readers never
// observe a partial document.
func (t *Tracker) write() error {
	data, err := json.MarshalIndent(&t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create progress dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp progress file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close progress file: %w", err)
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}

// Read loads the state from disk. A missing file yields an idle state.
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Status: StatusIdle}, nil
		}
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse progress: %w", err)
	}
	if state.Status == "" {
		state.Status = StatusIdle
	}
	return &state, nil
}
