package cli

import (
	"context"
	"fmt"
	"time"

	"forge/internal/history"
	"forge/internal/ui"
	"forge/pkg/snapshot"
)

// capturePreOperationSnapshot captures a snapshot before a package
// operation. Returns the snapshot ID, or "" if snapshotting is disabled
// or fails. Capture failure never blocks the operation itself.
func capturePreOperationSnapshot(ctx context.Context, trigger snapshot.Trigger, targets []string) string {
	if cfg == nil || !cfg.General.Snapshots || cfg.General.DryRun {
		return ""
	}

	managers := registry.Available()
	if len(managers) == 0 {
		return ""
	}

	label := fmt.Sprintf("before %s", trigger)
	switch len(targets) {
	case 0:
	case 1:
		label = fmt.Sprintf("before %s %s", trigger, targets[0])
	default:
		label = fmt.Sprintf("before %s %d packages", trigger, len(targets))
	}

	store, err := snapshot.OpenStore()
	if err != nil {
		if verbose {
			ui.WarningMsg("Failed to open snapshot store: %v", err)
		}
		return ""
	}
	defer store.Close()

	snap, err := snapshot.CaptureAndSave(ctx, store, trigger, label, managers)
	if err != nil {
		if verbose {
			ui.WarningMsg("Failed to capture snapshot: %v", err)
		}
		return ""
	}

	snap.Targets = targets
	if err := store.Save(snap); err == nil && verbose {
		ui.MutedMsg("Captured snapshot %s (%d packages)", snap.ID, snap.PackageCount())
	}

	return snap.ID
}

// rollbackToSnapshot restores the system to a saved snapshot: packages
// installed since are removed, packages missing are reported only.
func rollbackToSnapshot(ctx context.Context, id string) error {
	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	opts := snapshot.RestoreOpts{
		DryRun:      cfg.General.DryRun,
		AutoConfirm: true,
	}

	start := time.Now()
	plan, result, err := snapshot.Restore(ctx, store, id, registry.Available(), opts)
	if err != nil {
		return err
	}
	printRestoreOutcome(plan, result)

	entry := history.NewEntry(history.OpRollback, "snapshot", nil)
	entry.SnapshotID = id
	if result.Ok() {
		entry.MarkSuccess(time.Since(start))
	} else {
		entry.MarkFailed(fmt.Errorf("%d removals failed", len(result.Failures)))
	}
	recordHistory(entry)

	if !result.Ok() {
		return fmt.Errorf("rollback finished with %d failure(s)", len(result.Failures))
	}
	return nil
}

// printRestoreOutcome reports what a restore did (or would do).
func printRestoreOutcome(plan *snapshot.RestorePlan, result *snapshot.RestoreResult) {
	if plan.IsEmpty() {
		ui.InfoMsg("Nothing to do: system already matches snapshot %s", plan.Target.ID)
		return
	}

	if result.Removed > 0 {
		ui.InfoMsg("Removed %d package(s) installed since the snapshot", result.Removed)
	}
	for _, f := range result.Failures {
		ui.ErrorMsg("Failed to remove %s (%s): %v", f.Package, f.Source, f.Err)
	}
	for _, missing := range plan.Missing {
		ui.WarningMsg("Not reinstalled: %s %s (%s) was present in the snapshot", missing.Name, missing.Version, missing.Source)
	}

	if result.Ok() {
		ui.SuccessMsg("Restored snapshot %s", plan.Target.ID)
	} else {
		ui.ErrorMsg("Restore of %s finished with %d failure(s)", plan.Target.ID, len(result.Failures))
	}
}
