// Package manager provides the core abstraction over the platform package
// managers forge shells out to.
package manager

// ManagerType represents the category of package manager.
type ManagerType string

const (
	// TypeNative represents system-native package managers (brew, apt, dnf, ...).
	TypeNative ManagerType = "native"
	// TypeUniversal represents cross-distribution package managers (snap).
	TypeUniversal ManagerType = "universal"
)

// Package represents a software package known to a package manager.
type Package struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Source    string `json:"source"`    // Manager name: "brew", "apt", etc.
	Installed bool   `json:"installed"` // Whether the package is currently installed
}

// InstallOpts contains options for package installation.
type InstallOpts struct {
	AutoConfirm bool // Automatically confirm prompts
	DryRun      bool // Show what would happen without executing
	Cask        bool // Install as a Homebrew cask (brew only)
}

// UninstallOpts contains options for package removal.
type UninstallOpts struct {
	AutoConfirm bool // Automatically confirm prompts
	DryRun      bool // Show what would happen without executing
	Purge       bool // Remove configuration files too
	Cask        bool // Uninstall a Homebrew cask (brew only)
}

// UpgradeOpts contains options for package upgrades.
type UpgradeOpts struct {
	AutoConfirm bool     // Automatically confirm prompts
	DryRun      bool     // Show what would happen without executing
	Packages    []string // Specific packages to upgrade (empty = upgrade all)
}

// SearchOpts contains options for package search.
type SearchOpts struct {
	Limit         int  // Maximum number of results
	InstalledOnly bool // Only show installed packages
}

// ListOpts contains options for listing installed packages.
type ListOpts struct {
	Limit   int    // Maximum number of results
	Pattern string // Filter by name substring
}

// CommandError wraps a failed package-manager invocation along with the
// combined output it produced, so callers can classify the failure.
type CommandError struct {
	Manager string // Manager that ran the command
	Output  string // Combined stdout+stderr of the failed command
	Err     error  // Underlying exec error (exit status)
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return e.Manager + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *CommandError) Unwrap() error {
	return e.Err
}
