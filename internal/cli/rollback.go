package cli

import (
	"context"
	"os"
	"os/signal"

	"forge/internal/history"
	"forge/internal/ui"

	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback [snapshot-id]",
	Short: "Undo the last package operation",
	Long: `Roll the system back to the snapshot captured before the most recent
reversible operation. Packages installed since the snapshot are
removed; packages that were uninstalled are reported but not
reinstalled.

Pass a snapshot ID to roll back to a specific snapshot instead
(same as 'forge snapshot restore <id>').`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRollback,
}

func runRollback(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(args) == 1 {
		return rollbackEntry(ctx, args[0])
	}

	store, err := history.Open()
	if err != nil {
		return err
	}

	entry, err := store.LastReversible()
	store.Close()
	if err != nil {
		return err
	}
	if entry == nil {
		ui.InfoMsg("Nothing to roll back")
		ui.MutedMsg("Rollback needs a completed install or uninstall that captured a snapshot.")
		return nil
	}

	ui.InfoMsg("Rolling back: %s", entry.Summary())
	return rollbackEntry(ctx, entry.SnapshotID)
}

func rollbackEntry(ctx context.Context, snapshotID string) error {
	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Restore snapshot "+snapshotID+"?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	return rollbackToSnapshot(ctx, snapshotID)
}
