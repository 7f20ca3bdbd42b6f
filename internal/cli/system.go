package cli

import (
	"forge/internal/ui"

	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Show detected system information",
	Long: `Show what forge detected about this machine: operating system,
architecture, distribution, and which package managers are available.`,
	RunE: runSystem,
}

func runSystem(cmd *cobra.Command, args []string) error {
	info := registry.SystemInfo()
	if info == nil {
		return ErrNoManager
	}

	var nativeName string
	if native := registry.Native(); native != nil {
		nativeName = native.DisplayName()
	}

	var available []string
	for _, mgr := range registry.Available() {
		available = append(available, mgr.Name())
	}

	ui.PrintSystemInfo(info.PrettyName, info.Arch, info.Distribution, nativeName, available)
	return nil
}
