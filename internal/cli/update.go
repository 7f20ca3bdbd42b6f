package cli

import (
	"context"
	"os"
	"os/signal"

	"forge/internal/ui"

	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh package repository metadata",
	Long: `Refresh the package database for the detected package manager, or for
every available manager with --all. This does not upgrade any packages;
use 'forge upgrade' for that.`,
	RunE: runUpdate,
}

var (
	updateSource string
	updateAll    bool
)

func init() {
	updateCmd.Flags().StringVarP(&updateSource, "source", "s", "", "package source (apt, brew, snap, ...)")
	updateCmd.Flags().BoolVarP(&updateAll, "all", "a", false, "refresh every available manager")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if updateAll {
		var lastErr error
		for _, mgr := range registry.Available() {
			err := ui.WithSpinner("Refreshing "+mgr.DisplayName(), func() error {
				return mgr.Update(ctx)
			})
			if err != nil {
				ui.ErrorMsg("Failed to refresh %s: %v", mgr.DisplayName(), err)
				lastErr = err
				continue
			}
			ui.SuccessMsg("Refreshed %s", mgr.DisplayName())
		}
		return lastErr
	}

	mgr, err := getManager(updateSource)
	if err != nil {
		return err
	}

	err = ui.WithSpinner("Refreshing "+mgr.DisplayName(), func() error {
		return mgr.Update(ctx)
	})
	if err != nil {
		ui.ErrorMsg("Failed to refresh %s: %v", mgr.DisplayName(), err)
		return err
	}

	ui.SuccessMsg("Refreshed %s", mgr.DisplayName())
	return nil
}
