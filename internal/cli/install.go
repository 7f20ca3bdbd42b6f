package cli

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"forge/internal/history"
	"forge/internal/progress"
	"forge/internal/ui"
	"forge/pkg/installer"
	"forge/pkg/snapshot"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [packages...]",
	Short: "Install applications from the catalog",
	Long: `Install applications listed in the catalog (apps.yaml).

With no arguments, every catalog entry that applies to this platform is
installed. Name specific entries to install a subset, or narrow the run
with --category. A snapshot of the installed-package state is captured
before the run so it can be rolled back.

Failures are classified (network, permission, disk space, ...) and
retried when retrying can help. A failed package never stops the rest
of the run.

Examples:
  forge install                    # Everything for this platform
  forge install git neovim         # Specific catalog entries
  forge install --category dev     # One category
  forge install -n                 # Preview without installing
  forge install -y --no-snapshot   # Unattended, no rollback point`,
	RunE: runInstall,
}

var (
	installCategory   string
	installNoSnapshot bool
)

func init() {
	installCmd.Flags().StringVarP(&installCategory, "category", "c", "", "limit the run to one catalog category")
	installCmd.Flags().BoolVar(&installNoSnapshot, "no-snapshot", false, "skip the pre-run snapshot")
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	opts := installer.Options{
		Packages:    resolvePackages(args),
		Category:    installCategory,
		DryRun:      cfg.General.DryRun,
		AutoConfirm: cfg.General.AutoConfirm,
		Snapshot:    cfg.General.Snapshots && !installNoSnapshot,
	}

	// Show the plan before touching anything.
	records := cat.ForCurrentPlatform(installCategory)
	if len(args) > 0 {
		records = records[:0]
		for _, name := range opts.Packages {
			if rec, ok := cat.Get(name); ok && rec.AppliesTo(runtime.GOOS) {
				records = append(records, rec)
			}
		}
	}
	if len(records) > 0 {
		ui.HeaderMsg("Installation plan")
		ui.PrintCatalog(records)
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with installation?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	driverOpts := []installer.DriverOption{
		installer.WithTracker(progress.NewTracker(progressPath())),
	}

	if opts.Snapshot {
		store, err := snapshot.OpenStore()
		if err != nil {
			ui.WarningMsg("Snapshot store unavailable, continuing without rollback point: %v", err)
			opts.Snapshot = false
		} else {
			defer store.Close()
			driverOpts = append(driverOpts, installer.WithSnapshots(store))
		}
	}

	if histStore, err := history.Open(); err == nil {
		defer histStore.Close()
		driverOpts = append(driverOpts, installer.WithHistory(histStore))
	}

	driver := installer.New(cat, registry, driverOpts...)

	report, err := driver.Run(ctx, opts)
	if report != nil {
		ui.PrintReport(report)
	}
	if err != nil {
		return err
	}

	if !report.Ok() {
		offerRollback(report.SnapshotID)
	}
	return nil
}

// offerRollback asks to restore the pre-run snapshot after a partial
// failure. STDIN may be gone (unattended run), so any prompt error is
// treated as a decline.
func offerRollback(snapshotID string) {
	if snapshotID == "" || cfg.General.AutoConfirm || cfg.General.DryRun {
		return
	}

	confirmed, err := ui.Confirm("Some packages failed. Roll back to the pre-install snapshot?", false)
	if err != nil || !confirmed {
		return
	}

	if err := rollbackToSnapshot(context.Background(), snapshotID); err != nil {
		ui.ErrorMsg("Rollback failed: %v", err)
	}
}
