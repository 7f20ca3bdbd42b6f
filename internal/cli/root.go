// Package cli implements the command-line interface for forge.
package cli

import (
	"forge/internal/config"
	"forge/internal/ui"
	"forge/pkg/catalog"
	"forge/pkg/manager"
	"forge/pkg/manager/native"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	dryRun  bool
	yes     bool
	verbose bool
	noColor bool

	// Global state
	cfg      *config.Config
	registry *manager.Registry
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.3.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "forge",
	Short: "Personal machine setup from a curated application catalog",
	Long: `Forge installs the applications you want on a new machine from a
single catalog file (apps.yaml), using whichever package manager the
system provides. It snapshots the installed-package state before every
run so any batch can be rolled back, and publishes live progress that
both the terminal and the web dashboard can follow.

Supported package managers:
  Linux:    apt, dnf, pacman
  macOS:    brew (formulae and casks)
  Windows:  winget, chocolatey
  Universal: snap

Examples:
  forge install                     # Install the whole catalog for this platform
  forge install git docker          # Install specific catalog entries
  forge install --category dev -n   # Preview the dev category
  forge snapshot list               # List rollback points
  forge serve                       # Start the web dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initializeApp sets up the application state.
func initializeApp() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)

	registry = manager.NewRegistry()
	registerManagers()

	if err := registry.Detect(); err != nil {
		// Non-fatal: explicit sources still work without system detection.
		if verbose {
			ui.WarningMsg("System detection warning: %v", err)
		}
	}

	return nil
}

// registerManagers registers all supported package managers.
func registerManagers() {
	apt := native.NewAptManager()
	apt.SetUseNala(cfg.GetManagerConfig("apt").UseNala)
	registry.Register(apt)

	registry.Register(native.NewDnfManager())
	registry.Register(native.NewPacmanManager())

	// Homebrew (macOS + Linux)
	registry.Register(native.NewBrewManager())

	// Windows managers
	registry.Register(native.NewWingetManager())
	registry.Register(native.NewChocoManager())

	// Universal
	snap := native.NewSnapManager()
	snap.SetAllowClassic(cfg.GetManagerConfig("snap").AllowClassic)
	registry.Register(snap)
}

// loadCatalog loads the application catalog from the configured path.
func loadCatalog() (*catalog.Catalog, error) {
	path := cfg.General.CatalogPath
	if path == "" {
		path = config.CatalogPath()
	}

	cat, err := catalog.Load(path)
	if err != nil {
		return nil, &catalogError{path: path, err: err}
	}
	return cat, nil
}

// progressPath returns the shared progress file location.
func progressPath() string {
	if cfg != nil && cfg.Dashboard.ProgressPath != "" {
		return cfg.Dashboard.ProgressPath
	}
	return config.ProgressPath()
}

// getManager returns the manager for an explicit source, or the
// detected native manager when source is empty.
func getManager(source string) (manager.Manager, error) {
	if source != "" {
		return registry.ForSource(source)
	}

	nativeMgr := registry.Native()
	if nativeMgr == nil {
		return nil, ErrNoManager
	}
	return nativeMgr, nil
}

// resolvePackages resolves aliases in package names.
func resolvePackages(packages []string) []string {
	return cfg.ResolveAliases(packages)
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print forge version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("forge version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
