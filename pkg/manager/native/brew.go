package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// BrewManager implements the Manager interface for Homebrew.
type BrewManager struct {
	*BaseManager
}

// NewBrewManager creates a new Homebrew manager instance.
func NewBrewManager() *BrewManager {
	return &BrewManager{
		BaseManager: NewBaseManager("brew", "Homebrew", "brew", manager.TypeNative, false),
	}
}

// Install installs one or more packages. Casks go through brew install --cask.
func (m *BrewManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"install"}
	if opts.Cask {
		args = append(args, "--cask")
	}
	args = append(args, packages...)
	out, err := m.exec.RunCapture(ctx, m.binary, args...)
	return m.wrapErr(out, err)
}

// Uninstall removes one or more packages.
func (m *BrewManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"uninstall"}
	if opts.Cask {
		args = append(args, "--cask")
	}
	if opts.Purge {
		args = append(args, "--zap")
	}
	args = append(args, packages...)
	out, err := m.exec.RunCapture(ctx, m.binary, args...)
	return m.wrapErr(out, err)
}

// Update refreshes the formula index.
func (m *BrewManager) Update(ctx context.Context) error {
	out, err := m.exec.RunCapture(ctx, m.binary, "update")
	return m.wrapErr(out, err)
}

// Upgrade upgrades the given packages, or all outdated packages if none given.
func (m *BrewManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"upgrade"}
	args = append(args, opts.Packages...)
	out, err := m.exec.RunCapture(ctx, m.binary, args...)
	return m.wrapErr(out, err)
}

// Search queries Homebrew for packages matching the term.
func (m *BrewManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.Output(ctx, m.binary, "search", query)
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "==>") {
			continue
		}
		packages = append(packages, manager.Package{
			Name:   line,
			Source: m.name,
		})
		if opts.Limit > 0 && len(packages) >= opts.Limit {
			break
		}
	}
	return packages, nil
}

// ListInstalled returns all installed formulae and casks with versions.
func (m *BrewManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--versions")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	packages := m.parseVersionList(output)

	// Casks are listed separately and not all brew versions have any.
	caskOut, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--cask", "--versions")
	if err == nil {
		packages = append(packages, m.parseVersionList(caskOut)...)
	}

	if opts.Limit > 0 && len(packages) > opts.Limit {
		packages = packages[:opts.Limit]
	}
	return packages, nil
}

func (m *BrewManager) parseVersionList(output string) []manager.Package {
	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		pkg := manager.Package{
			Name:      fields[0],
			Source:    m.name,
			Installed: true,
		}
		if len(fields) > 1 {
			pkg.Version = fields[1]
		}
		packages = append(packages, pkg)
	}
	return packages
}

// IsInstalled checks whether a formula or cask is installed.
func (m *BrewManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	_, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--versions", name)
	if err == nil {
		return true, nil
	}
	_, caskErr := m.exec.OutputQuiet(ctx, m.binary, "list", "--cask", "--versions", name)
	return caskErr == nil, nil
}
