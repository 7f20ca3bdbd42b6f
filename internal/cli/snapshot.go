package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"forge/internal/history"
	"forge/internal/ui"
	"forge/pkg/snapshot"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage system state snapshots",
	Long: `Manage snapshots of the installed-package state.

Snapshots record what each package manager reports as installed. They
are captured automatically before install/uninstall/upgrade operations
and can be restored later: packages installed since the snapshot are
removed, packages missing relative to it are reported but not
reinstalled.

Examples:
  forge snapshot list                # List available snapshots
  forge snapshot create -m "fresh"   # Create a manual snapshot
  forge snapshot show <id>           # Show details of a snapshot
  forge snapshot diff <id1> <id2>    # Compare two snapshots
  forge snapshot restore <id>        # Roll back to a snapshot
  forge snapshot prune               # Remove old snapshots`,
}

func init() {
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotCreateCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDiffCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
	snapshotCmd.AddCommand(snapshotPruneCmd)
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available snapshots",
	RunE:  runSnapshotList,
}

var (
	snapshotListLimit   int
	snapshotListTrigger string
)

func init() {
	snapshotListCmd.Flags().IntVarP(&snapshotListLimit, "limit", "l", 20, "maximum number of snapshots to list")
	snapshotListCmd.Flags().StringVarP(&snapshotListTrigger, "trigger", "t", "", "filter by trigger type (manual, install, uninstall, upgrade, scheduled)")
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	snapshots, err := store.List(snapshotListLimit, snapshot.Trigger(snapshotListTrigger))
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		ui.InfoMsg("No snapshots available")
		ui.MutedMsg("Snapshots are created automatically before install/uninstall/upgrade operations.")
		ui.MutedMsg("Create a manual snapshot with: forge snapshot create")
		return nil
	}

	ui.HeaderMsg("Available Snapshots")
	table := ui.NewTable([]string{"ID", "TIME", "TRIGGER", "PACKAGES", "LABEL"})
	for _, snap := range snapshots {
		table.AddRow([]string{
			snap.ID,
			snap.FormatTime(),
			string(snap.Trigger),
			fmt.Sprintf("%d", snap.PackageCount()),
			snap.Label,
		})
	}
	table.Render()
	return nil
}

var snapshotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a manual snapshot",
	RunE:  runSnapshotCreate,
}

var snapshotCreateLabel string

func init() {
	snapshotCreateCmd.Flags().StringVarP(&snapshotCreateLabel, "message", "m", "manual snapshot", "snapshot label")
}

func runSnapshotCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	managers := registry.Available()
	if len(managers) == 0 {
		return ErrNoManager
	}

	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	var snap *snapshot.Snapshot
	err = ui.WithSpinner("Capturing package state", func() error {
		var capErr error
		snap, capErr = snapshot.CaptureAndSave(ctx, store, snapshot.TriggerManual, snapshotCreateLabel, managers)
		return capErr
	})
	if err != nil {
		return err
	}

	ui.SuccessMsg("Created snapshot %s (%s)", snap.ID, snap.Summary())
	return nil
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	snap, err := store.Get(args[0])
	if err != nil {
		return err
	}

	ui.HeaderMsg("Snapshot %s", snap.ID)
	ui.Println("  Time:     %s", snap.FormatTime())
	ui.Println("  Trigger:  %s", snap.Trigger)
	if snap.Label != "" {
		ui.Println("  Label:    %s", snap.Label)
	}
	if len(snap.Targets) > 0 {
		ui.Println("  Targets:  %v", snap.Targets)
	}
	ui.Println("  Packages: %d", snap.PackageCount())

	bySource := snap.BySource()
	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		ui.Println("")
		ui.InfoMsg("%s (%d)", source, len(bySource[source]))
		for _, pkg := range bySource[source] {
			ui.MutedMsg("  %s %s", pkg.Name, pkg.Version)
		}
	}
	return nil
}

var snapshotDiffCmd = &cobra.Command{
	Use:   "diff <from-id> [to-id]",
	Short: "Compare two snapshots",
	Long: `Compare two snapshots and show what was added, removed, upgraded, or
downgraded between them. With one argument, the snapshot is compared
against the current system state.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSnapshotDiff,
}

func runSnapshotDiff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	from, err := store.Get(args[0])
	if err != nil {
		return err
	}

	var to *snapshot.Snapshot
	if len(args) == 2 {
		to, err = store.Get(args[1])
		if err != nil {
			return err
		}
	} else {
		managers := registry.Available()
		if len(managers) == 0 {
			return ErrNoManager
		}
		err = ui.WithSpinner("Capturing current state", func() error {
			var capErr error
			to, capErr = snapshot.Capture(ctx, snapshot.TriggerManual, "current state", managers)
			return capErr
		})
		if err != nil {
			return err
		}
	}

	diff := snapshot.Compare(from, to)
	if diff.IsEmpty() {
		ui.InfoMsg("No differences")
		return nil
	}

	ui.HeaderMsg("Changes from %s to %s", from.ID, to.ID)
	ui.PrintChanges(diff)
	return nil
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore [id]",
	Short: "Roll back to a snapshot",
	Long: `Restore the system to a snapshot. Packages installed since the
snapshot are uninstalled one at a time; a failed removal never stops
the rest. Packages that were present in the snapshot but are missing
now are reported, not reinstalled.

With no ID, pick a snapshot interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSnapshotRestore,
}

var snapshotRestoreSources []string

func init() {
	snapshotRestoreCmd.Flags().StringSliceVar(&snapshotRestoreSources, "only", nil, "limit the restore to specific sources (apt, brew, ...)")
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	var id string
	if len(args) == 1 {
		id = args[0]
	} else {
		snapshots, err := store.List(20, "")
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			ui.InfoMsg("No snapshots available")
			return nil
		}
		snap, err := ui.SelectSnapshot(snapshots, "Restore which snapshot?")
		if err != nil {
			return err
		}
		id = snap.ID
	}

	target, err := store.Get(id)
	if err != nil {
		return err
	}

	opts := snapshot.RestoreOpts{
		DryRun:      cfg.General.DryRun,
		AutoConfirm: true,
		Sources:     snapshotRestoreSources,
	}

	plan, err := snapshot.PlanRestore(ctx, target, registry.Available(), opts)
	if err != nil {
		return err
	}

	ui.InfoMsg("Restore plan for %s: %s", target.ID, plan.Summary())
	if !plan.Diff.IsEmpty() {
		ui.PrintChanges(plan.Diff)
	}
	if plan.IsEmpty() && len(plan.Missing) == 0 {
		return nil
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun && !plan.IsEmpty() {
		confirmed, err := ui.Confirm(fmt.Sprintf("Remove %d package(s)?", plan.RemoveCount()), false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	start := time.Now()
	result := snapshot.Execute(ctx, plan, registry.Available(), opts)
	printRestoreOutcome(plan, result)

	entry := history.NewEntry(history.OpRollback, "snapshot", nil)
	entry.SnapshotID = target.ID
	if result.Ok() {
		entry.MarkSuccess(time.Since(start))
	} else {
		entry.MarkFailed(fmt.Errorf("%d removals failed", len(result.Failures)))
	}
	recordHistory(entry)

	if !result.Ok() {
		return fmt.Errorf("restore finished with %d failure(s)", len(result.Failures))
	}
	return nil
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	if err := store.Delete(args[0]); err != nil {
		return err
	}
	ui.SuccessMsg("Deleted snapshot %s", args[0])
	return nil
}

var snapshotPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old snapshots",
	Long: `Remove old snapshots, keeping the most recent ones. Automatic
snapshots (install, uninstall, upgrade, scheduled) are pruned more
aggressively than manual ones.`,
	RunE: runSnapshotPrune,
}

var (
	snapshotPruneKeep     int
	snapshotPruneKeepAuto int
)

func init() {
	snapshotPruneCmd.Flags().IntVar(&snapshotPruneKeep, "keep", snapshot.MaxSnapshots, "total snapshots to keep")
	snapshotPruneCmd.Flags().IntVar(&snapshotPruneKeepAuto, "keep-auto", snapshot.MaxAutoSnapshots, "automatic snapshots to keep")
}

func runSnapshotPrune(cmd *cobra.Command, args []string) error {
	store, err := snapshot.OpenStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer store.Close()

	removed, err := store.Prune(snapshotPruneKeep, snapshotPruneKeepAuto)
	if err != nil {
		return err
	}

	if removed == 0 {
		ui.InfoMsg("Nothing to prune")
	} else {
		ui.SuccessMsg("Pruned %d snapshot(s)", removed)
	}
	return nil
}
