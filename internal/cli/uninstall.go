package cli

import (
	"context"
	"os"
	"os/signal"
	"time"

	"forge/internal/history"
	"forge/internal/ui"
	"forge/pkg/manager"
	"forge/pkg/snapshot"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:     "uninstall [packages...]",
	Aliases: []string{"remove"},
	Short:   "Remove one or more packages",
	Long: `Remove packages using the detected system package manager or a
specified source. A snapshot is captured first so the removal shows up
in rollback history.

Examples:
  forge uninstall vim
  forge uninstall firefox -s snap
  forge uninstall --purge old-tool   # Remove configuration too`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUninstall,
}

var (
	uninstallSource string
	uninstallPurge  bool
)

func init() {
	uninstallCmd.Flags().StringVarP(&uninstallSource, "source", "s", "", "package source (apt, brew, snap, ...)")
	uninstallCmd.Flags().BoolVar(&uninstallPurge, "purge", false, "remove configuration files too")
}

func runUninstall(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	packages := resolvePackages(args)

	mgr, err := getManager(uninstallSource)
	if err != nil {
		return err
	}

	ui.InfoMsg("Removing %d package(s) using %s", len(packages), mgr.DisplayName())
	for _, pkg := range packages {
		ui.MutedMsg("  - %s", pkg)
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with removal?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	snapID := capturePreOperationSnapshot(ctx, snapshot.TriggerUninstall, packages)

	entry := history.NewEntry(history.OpUninstall, mgr.Name(), packages)
	entry.SnapshotID = snapID

	opts := manager.UninstallOpts{
		AutoConfirm: true,
		DryRun:      cfg.General.DryRun,
		Purge:       uninstallPurge,
	}

	start := time.Now()
	err = mgr.Uninstall(ctx, packages, opts)
	if err != nil {
		entry.MarkFailed(err)
		ui.ErrorMsg("Removal failed: %v", err)
	} else {
		entry.MarkSuccess(time.Since(start))
		ui.SuccessMsg("Removed %v from %s", packages, mgr.DisplayName())
	}

	recordHistory(entry)
	return err
}

// recordHistory writes an entry to the history log, ignoring store errors.
func recordHistory(entry *history.Entry) {
	if cfg.General.DryRun {
		return
	}
	if store, err := history.Open(); err == nil {
		_ = store.Record(entry) //nolint:errcheck
		_ = store.Close()       //nolint:errcheck
	}
}
