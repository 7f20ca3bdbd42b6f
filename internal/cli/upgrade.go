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

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [packages...]",
	Short: "Upgrade installed packages",
	Long: `Upgrade installed packages to their latest versions. With no
arguments, everything the manager knows about is upgraded. A snapshot
is captured first so the upgrade can be rolled back.

Examples:
  forge upgrade              # Upgrade everything
  forge upgrade git neovim   # Upgrade specific packages
  forge upgrade -s brew      # Upgrade Homebrew packages only`,
	RunE: runUpgrade,
}

var upgradeSource string

func init() {
	upgradeCmd.Flags().StringVarP(&upgradeSource, "source", "s", "", "package source (apt, brew, snap, ...)")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	packages := resolvePackages(args)

	mgr, err := getManager(upgradeSource)
	if err != nil {
		return err
	}

	if len(packages) > 0 {
		ui.InfoMsg("Upgrading %d package(s) using %s", len(packages), mgr.DisplayName())
	} else {
		ui.InfoMsg("Upgrading all packages using %s", mgr.DisplayName())
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with upgrade?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	snapID := capturePreOperationSnapshot(ctx, snapshot.TriggerUpgrade, packages)

	entry := history.NewEntry(history.OpUpgrade, mgr.Name(), packages)
	entry.SnapshotID = snapID

	opts := manager.UpgradeOpts{
		AutoConfirm: true,
		DryRun:      cfg.General.DryRun,
		Packages:    packages,
	}

	start := time.Now()
	err = mgr.Upgrade(ctx, opts)
	if err != nil {
		entry.MarkFailed(err)
		ui.ErrorMsg("Upgrade failed: %v", err)
	} else {
		entry.MarkSuccess(time.Since(start))
		ui.SuccessMsg("Upgrade complete")
	}

	recordHistory(entry)
	return err
}
