package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// PacmanManager implements the Manager interface for pacman (Arch Linux).
type PacmanManager struct {
	*BaseManager
}

// NewPacmanManager creates a new pacman manager instance.
func NewPacmanManager() *PacmanManager {
	return &PacmanManager{
		BaseManager: NewBaseManager("pacman", "Pacman", "pacman", manager.TypeNative, true),
	}
}

func (m *PacmanManager) confirmFlag(autoConfirm bool) []string {
	if autoConfirm {
		return []string{"--noconfirm"}
	}
	return nil
}

// Install installs one or more packages.
func (m *PacmanManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"-S"}
	args = append(args, m.confirmFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Uninstall removes one or more packages. Purge removes dependencies too.
func (m *PacmanManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	flag := "-R"
	if opts.Purge {
		flag = "-Rns"
	}
	args := []string{flag}
	args = append(args, m.confirmFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	return m.run(ctx, args...)
}

// Update refreshes the package databases.
func (m *PacmanManager) Update(ctx context.Context) error {
	return m.run(ctx, "-Sy")
}

// Upgrade upgrades the given packages, or performs a full system upgrade.
func (m *PacmanManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	var args []string
	if len(opts.Packages) > 0 {
		args = append(args, "-S")
		args = append(args, m.confirmFlag(opts.AutoConfirm)...)
		args = append(args, opts.Packages...)
	} else {
		args = append(args, "-Syu")
		args = append(args, m.confirmFlag(opts.AutoConfirm)...)
	}
	return m.run(ctx, args...)
}

// Search queries the sync databases for packages matching the term.
func (m *PacmanManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "-Ss", query)
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		// Result lines look like "repo/name version"; descriptions are indented.
		if line == "" || strings.HasPrefix(line, " ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := fields[0]
		if idx := strings.Index(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		pkg := manager.Package{
			Name:   name,
			Source: m.name,
		}
		if len(fields) > 1 {
			pkg.Version = fields[1]
		}
		packages = append(packages, pkg)
		if opts.Limit > 0 && len(packages) >= opts.Limit {
			break
		}
	}
	return packages, nil
}

// ListInstalled returns all explicitly and implicitly installed packages.
func (m *PacmanManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "-Q")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
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
func (m *PacmanManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	_, err := m.exec.OutputQuiet(ctx, m.binary, "-Q", name)
	return err == nil, nil
}
