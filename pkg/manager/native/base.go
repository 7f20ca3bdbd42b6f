// Package native implements the package managers forge drives directly.
package native

import (
	"context"
	"os/exec"

	"forge/internal/executor"
	"forge/pkg/manager"
)

// BaseManager provides common functionality for all package managers.
type BaseManager struct {
	name        string
	displayName string
	binary      string
	managerType manager.ManagerType
	needsSudo   bool
	exec        *executor.Executor
}

// NewBaseManager creates a new BaseManager with the given parameters.
func NewBaseManager(name, displayName, binary string, managerType manager.ManagerType, needsSudo bool) *BaseManager {
	return &BaseManager{
		name:        name,
		displayName: displayName,
		binary:      binary,
		managerType: managerType,
		needsSudo:   needsSudo,
		exec:        executor.New(false, false),
	}
}

// Name returns the short identifier for this manager.
func (b *BaseManager) Name() string {
	return b.name
}

// DisplayName returns the human-readable name.
func (b *BaseManager) DisplayName() string {
	return b.displayName
}

// Type returns the manager type.
func (b *BaseManager) Type() manager.ManagerType {
	return b.managerType
}

// IsAvailable returns true if this package manager is installed.
func (b *BaseManager) IsAvailable() bool {
	_, err := exec.LookPath(b.binary)
	return err == nil
}

// NeedsSudo returns true if this manager requires root privileges.
func (b *BaseManager) NeedsSudo() bool {
	return b.needsSudo
}

// Binary returns the primary binary name for this manager.
func (b *BaseManager) Binary() string {
	return b.binary
}

// Executor returns the executor instance.
func (b *BaseManager) Executor() *executor.Executor {
	return b.exec
}

// SetDryRun enables or disables dry-run mode.
func (b *BaseManager) SetDryRun(dryRun bool) {
	b.exec.SetDryRun(dryRun)
}

// SetVerbose enables or disables verbose mode.
func (b *BaseManager) SetVerbose(verbose bool) {
	b.exec.SetVerbose(verbose)
}

// wrapErr converts a failed command into a manager.CommandError so callers
// can classify the failure from the captured output.
func (b *BaseManager) wrapErr(output string, err error) error {
	if err == nil {
		return nil
	}
	return &manager.CommandError{
		Manager: b.name,
		Output:  output,
		Err:     err,
	}
}

// run executes a command respecting the manager's sudo requirement,
// capturing combined output for failure classification.
func (b *BaseManager) run(ctx context.Context, args ...string) error {
	if b.needsSudo {
		out, err := b.exec.RunSudoCapture(ctx, b.binary, args...)
		return b.wrapErr(out, err)
	}
	out, err := b.exec.RunCapture(ctx, b.binary, args...)
	return b.wrapErr(out, err)
}
