package manager

import "context"

// Manager defines the interface every supported package manager implements.
// The exit code of the underlying command is the sole success signal.
type Manager interface {
	// Name returns the short identifier for this manager (e.g., "brew", "apt").
	Name() string

	// DisplayName returns a human-readable name (e.g., "APT (Debian/Ubuntu)").
	DisplayName() string

	// Type returns the category of this manager (native, universal).
	Type() ManagerType

	// IsAvailable returns true if this package manager is installed and usable.
	IsAvailable() bool

	// NeedsSudo returns true if this manager requires root privileges for most operations.
	NeedsSudo() bool

	// Install installs one or more packages.
	Install(ctx context.Context, packages []string, opts InstallOpts) error

	// Uninstall removes one or more packages.
	Uninstall(ctx context.Context, packages []string, opts UninstallOpts) error

	// Update refreshes the package database/repository cache.
	Update(ctx context.Context) error

	// Upgrade upgrades installed packages to their latest versions.
	Upgrade(ctx context.Context, opts UpgradeOpts) error

	// Search finds packages matching the query.
	Search(ctx context.Context, query string, opts SearchOpts) ([]Package, error)

	// ListInstalled returns all installed packages.
	ListInstalled(ctx context.Context, opts ListOpts) ([]Package, error)

	// IsInstalled checks if a specific package is installed.
	IsInstalled(ctx context.Context, pkg string) (bool, error)
}
