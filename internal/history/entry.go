// Package history records every operation forge performs in a BoltDB log.
package history

import (
	"fmt"
	"time"
)

// Operation is the kind of run being recorded.
type Operation string

const (
	OpInstall   Operation = "install"
	OpUninstall Operation = "uninstall"
	OpUpdate    Operation = "update"
	OpUpgrade   Operation = "upgrade"
	OpRollback  Operation = "rollback"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Source    string    `json:"source"`
	Packages  []string  `json:"packages"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Duration  string    `json:"duration,omitempty"`

	// SnapshotID links to the snapshot captured before the run, when one
	// was taken. Rollback uses it to find the restore target.
	SnapshotID string `json:"snapshot_id,omitempty"`

	Reversible bool `json:"reversible"`
}

// NewEntry creates an entry for an operation that is about to run.
// Success is recorded once the run finishes.
func NewEntry(op Operation, source string, packages []string) *Entry {
	return &Entry{
		ID:         time.Now().Format("20060102150405.000000"),
		Timestamp:  time.Now(),
		Operation:  op,
		Source:     source,
		Packages:   packages,
		Reversible: op == OpInstall || op == OpUninstall,
	}
}

// MarkSuccess marks the run successful and records its duration.
func (e *Entry) MarkSuccess(elapsed time.Duration) {
	e.Success = true
	e.Duration = elapsed.Round(time.Millisecond).String()
}

// MarkFailed records the failure reason.
func (e *Entry) MarkFailed(err error) {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
}

// CanRollback reports whether this run can be undone via its snapshot.
func (e *Entry) CanRollback() bool {
	return e.Reversible && e.Success && e.SnapshotID != ""
}

// FormatTime returns a human-readable timestamp.
func (e *Entry) FormatTime() string {
	return e.Timestamp.Format("2006-01-02 15:04:05")
}

// Summary returns a one-line description of the entry.
func (e *Entry) Summary() string {
	status := "success"
	if !e.Success {
		status = "failed"
	}
	if len(e.Packages) == 0 {
		return fmt.Sprintf("%s %s (%s)", e.FormatTime(), e.Operation, status)
	}
	return fmt.Sprintf("%s %s %s [%s] (%s)",
		e.FormatTime(), e.Operation, e.Packages[0], e.Source, status)
}
