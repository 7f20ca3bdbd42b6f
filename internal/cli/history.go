package cli

import (
	"fmt"
	"strings"
	"time"

	"forge/internal/history"
	"forge/internal/ui"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the operation log",
	Long: `Show past install/uninstall/upgrade/rollback operations, newest
first. Entries that captured a snapshot can be rolled back with
'forge rollback'.`,
	RunE: runHistory,
}

var (
	historyLimit int
	historyClear bool
	historyPrune string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum entries to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the whole operation log")
	historyCmd.Flags().StringVar(&historyPrune, "prune", "", "delete entries older than a duration (e.g. 720h)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	if historyClear {
		if !cfg.General.AutoConfirm {
			confirmed, err := ui.Confirm("Delete the whole operation log?", false)
			if err != nil {
				return err
			}
			if !confirmed {
				return ErrAborted
			}
		}
		if err := store.Clear(); err != nil {
			return err
		}
		ui.SuccessMsg("History cleared")
		return nil
	}

	if historyPrune != "" {
		maxAge, err := time.ParseDuration(historyPrune)
		if err != nil {
			return fmt.Errorf("invalid prune duration %q: %w", historyPrune, err)
		}
		removed, err := store.Prune(maxAge)
		if err != nil {
			return err
		}
		ui.SuccessMsg("Pruned %d history entries", removed)
		return nil
	}

	entries, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		ui.InfoMsg("No operations recorded yet")
		return nil
	}

	ui.HeaderMsg("Operation History")
	table := ui.NewTable([]string{"TIME", "OPERATION", "SOURCE", "PACKAGES", "RESULT"})
	for _, entry := range entries {
		result := ui.Green("ok")
		if !entry.Success {
			result = ui.Red("failed")
		}
		if entry.CanRollback() {
			result += " *"
		}

		packages := strings.Join(entry.Packages, ", ")
		if len(packages) > 40 {
			packages = packages[:37] + "..."
		}

		table.AddRow([]string{
			entry.FormatTime(),
			string(entry.Operation),
			entry.Source,
			packages,
			result,
		})
	}
	table.Render()
	ui.MutedMsg("* has a snapshot and can be rolled back")
	return nil
}
