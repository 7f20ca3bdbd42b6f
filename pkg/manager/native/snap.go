package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// SnapManager implements the Manager interface for snapd.
type SnapManager struct {
	*BaseManager
	allowClassic bool
}

// NewSnapManager creates a new snap manager instance.
func NewSnapManager() *SnapManager {
	return &SnapManager{
		BaseManager: NewBaseManager("snap", "Snap", "snap", manager.TypeUniversal, true),
	}
}

// SetAllowClassic permits installing snaps that require classic confinement.
func (m *SnapManager) SetAllowClassic(allow bool) {
	m.allowClassic = allow
}

// Install installs one or more snaps.
func (m *SnapManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"install"}
	if m.allowClassic {
		args = append(args, "--classic")
	}
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Uninstall removes one or more snaps. Purge skips the removal snapshot.
func (m *SnapManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"remove"}
	if opts.Purge {
		args = append(args, "--purge")
	}
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Update is a no-op for snap; snapd refreshes its catalog automatically.
func (m *SnapManager) Update(ctx context.Context) error {
	return nil
}

// Upgrade refreshes the given snaps, or all snaps if none given.
func (m *SnapManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"refresh"}
	args = append(args, opts.Packages...)
	return m.run(ctx, args...)
}

// Search queries the snap store for packages matching the term.
func (m *SnapManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "find", query)
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseTable(output, opts.Limit, false), nil
}

// ListInstalled returns all installed snaps.
func (m *SnapManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseTable(output, opts.Limit, true), nil
}

// parseTable parses snap's column output, skipping the header row.
func (m *SnapManager) parseTable(output string, limit int, installed bool) []manager.Package {
	var packages []manager.Package
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		packages = append(packages, manager.Package{
			Name:      fields[0],
			Version:   fields[1],
			Source:    m.name,
			Installed: installed,
		})
		if limit > 0 && len(packages) >= limit {
			break
		}
	}
	return packages
}

// IsInstalled checks whether a snap is installed.
func (m *SnapManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	_, err := m.exec.OutputQuiet(ctx, m.binary, "list", name)
	return err == nil, nil
}
