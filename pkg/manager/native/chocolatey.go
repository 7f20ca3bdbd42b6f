package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// ChocoManager implements the Manager interface for Chocolatey.
type ChocoManager struct {
	*BaseManager
}

// NewChocoManager creates a new Chocolatey manager instance.
func NewChocoManager() *ChocoManager {
	return &ChocoManager{
		BaseManager: NewBaseManager("choco", "Chocolatey", "choco", manager.TypeNative, false),
	}
}

func (m *ChocoManager) yesFlag(autoConfirm bool) []string {
	if autoConfirm {
		return []string{"-y"}
	}
	return nil
}

// Install installs one or more packages.
func (m *ChocoManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"install"}
	args = append(args, packages...)
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	return m.run(ctx, args...)
}

// Uninstall removes one or more packages.
func (m *ChocoManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"uninstall"}
	args = append(args, packages...)
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	if opts.Purge {
		args = append(args, "--remove-dependencies")
	}
	return m.run(ctx, args...)
}

// Update is a no-op for Chocolatey; it queries feeds live.
func (m *ChocoManager) Update(ctx context.Context) error {
	return nil
}

// Upgrade upgrades the given packages, or all packages if none given.
func (m *ChocoManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"upgrade"}
	if len(opts.Packages) > 0 {
		args = append(args, opts.Packages...)
	} else {
		args = append(args, "all")
	}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	return m.run(ctx, args...)
}

// Search queries Chocolatey feeds for packages matching the term.
func (m *ChocoManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "search", query, "--limit-output")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseLimitOutput(output, opts.Limit, false), nil
}

// ListInstalled returns all locally installed Chocolatey packages.
func (m *ChocoManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--limit-output")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseLimitOutput(output, opts.Limit, true), nil
}

// parseLimitOutput parses choco's machine-readable "name|version" lines.
func (m *ChocoManager) parseLimitOutput(output string, limit int, installed bool) []manager.Package {
	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 2)
		pkg := manager.Package{
			Name:      parts[0],
			Source:    m.name,
			Installed: installed,
		}
		if len(parts) > 1 {
			pkg.Version = parts[1]
		}
		packages = append(packages, pkg)
		if limit > 0 && len(packages) >= limit {
			break
		}
	}
	return packages
}

// IsInstalled checks whether a package is installed.
func (m *ChocoManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--exact", name, "--limit-output")
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(output) != "", nil
}
