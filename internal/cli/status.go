package cli

import (
	"strconv"
	"time"

	"forge/internal/progress"
	"forge/internal/tui"
	"forge/internal/ui"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the current or last run",
	Long: `Show the shared progress state: what is installing right now, what
finished, and what failed. Another terminal (or the web dashboard) can
read the same state while an install runs.

Use --watch for a live view that follows the run until it finishes.`,
	RunE: runStatus,
}

var statusWatch bool

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "follow the run live")
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a running install live",
	Long: `Follow the shared progress state in a live terminal view. Equivalent
to 'forge status --watch'. Press q to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchProgress()
	},
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusWatch {
		return watchProgress()
	}

	state, err := progress.Read(progressPath())
	if err != nil {
		return err
	}

	printState(state)
	return nil
}

func watchProgress() error {
	interval := time.Duration(cfg.Dashboard.PollInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return tui.Run(progressPath(), interval)
}

func printState(state *progress.State) {
	switch state.Status {
	case progress.StatusIdle:
		ui.InfoMsg("No run in progress")
		return
	case progress.StatusRunning:
		ui.HeaderMsg("Run in progress (%s)", state.Mode)
		ui.InfoMsg("%d%% - %s", state.Progress, state.CurrentPackage)
	case progress.StatusCompleted:
		ui.HeaderMsg("Last run completed (%s)", state.Mode)
	case progress.StatusFailed:
		ui.HeaderMsg("Last run failed (%s)", state.Mode)
	}

	ui.Println("  Installed: %s", ui.Green(strconv.Itoa(state.Stats.Installed)))
	if state.Stats.Failed > 0 {
		ui.Println("  Failed:    %s", ui.Red(strconv.Itoa(state.Stats.Failed)))
	}
	ui.Println("  Total:     %d", state.Stats.Total)
	if state.Stats.DiskUsed != "" {
		ui.Println("  Disk used: %s", state.Stats.DiskUsed)
	}

	for _, name := range state.PackagesFailed {
		ui.ErrorMsg("  failed: %s", name)
	}

	if n := len(state.Messages); n > 0 {
		last := state.Messages[n-1]
		ui.MutedMsg("Last message: %s (%s)", last.Text, last.Time.Format("15:04:05"))
	}

	if state.StartedAt != nil && state.EndedAt != nil {
		ui.MutedMsg("Duration: %s", state.EndedAt.Sub(*state.StartedAt).Round(time.Second))
	}
}
