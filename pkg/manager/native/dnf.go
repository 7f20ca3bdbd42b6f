package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// DnfManager implements the Manager interface for DNF (Fedora/RHEL).
type DnfManager struct {
	*BaseManager
}

// NewDnfManager creates a new DNF manager instance.
func NewDnfManager() *DnfManager {
	return &DnfManager{
		BaseManager: NewBaseManager("dnf", "DNF", "dnf", manager.TypeNative, true),
	}
}

func (m *DnfManager) yesFlag(autoConfirm bool) []string {
	if autoConfirm {
		return []string{"-y"}
	}
	return nil
}

// Install installs one or more packages.
func (m *DnfManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"install"}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Uninstall removes one or more packages.
func (m *DnfManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"remove"}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Update refreshes the repository metadata.
func (m *DnfManager) Update(ctx context.Context) error {
	return m.run(ctx, "check-update", "--refresh")
}

// Upgrade upgrades the given packages, or everything if none given.
func (m *DnfManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"upgrade"}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	args = append(args, opts.Packages...)
	return m.run(ctx, args...)
}

// Search queries DNF for packages matching the term.
func (m *DnfManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "search", query)
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "=") || strings.HasPrefix(line, "Last metadata") {
			continue
		}
		// "name.arch : description"
		parts := strings.SplitN(line, " : ", 2)
		name := strings.TrimSpace(parts[0])
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		packages = append(packages, manager.Package{
			Name:   name,
			Source: m.name,
		})
		if opts.Limit > 0 && len(packages) >= opts.Limit {
			break
		}
	}
	return packages, nil
}

// ListInstalled returns installed packages via rpm.
func (m *DnfManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, "rpm", "-qa", "--qf", "%{NAME}\t%{VERSION}-%{RELEASE}\n")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		packages = append(packages, manager.Package{
			Name:      fields[0],
			Version:   fields[1],
			Source:    m.name,
			Installed: true,
		})
		if opts.Limit > 0 && len(packages) >= opts.Limit {
			break
		}
	}
	return packages, nil
}

// IsInstalled checks whether a package is installed.
func (m *DnfManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	_, err := m.exec.OutputQuiet(ctx, "rpm", "-q", name)
	return err == nil, nil
}
