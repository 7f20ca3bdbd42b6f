package native

import (
	"context"
	"strings"

	"forge/pkg/manager"
)

// WingetManager implements the Manager interface for Windows Package Manager.
type WingetManager struct {
	*BaseManager
}

// NewWingetManager creates a new winget manager instance.
func NewWingetManager() *WingetManager {
	return &WingetManager{
		BaseManager: NewBaseManager("winget", "Windows Package Manager", "winget", manager.TypeNative, false),
	}
}

func (m *WingetManager) commonFlags() []string {
	return []string{"--accept-source-agreements", "--disable-interactivity"}
}

// Install installs one or more packages.
func (m *WingetManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	for _, pkg := range packages {
		args := []string{"install", "--exact", "--id", pkg, "--accept-package-agreements"}
		args = append(args, m.commonFlags()...)
		if err := m.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall removes one or more packages.
func (m *WingetManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	for _, pkg := range packages {
		args := []string{"uninstall", "--exact", "--id", pkg}
		args = append(args, m.commonFlags()...)
		if err := m.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Update refreshes winget sources.
func (m *WingetManager) Update(ctx context.Context) error {
	return m.run(ctx, "source", "update")
}

// Upgrade upgrades the given packages, or all upgradable packages if none given.
func (m *WingetManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	if len(opts.Packages) == 0 {
		args := []string{"upgrade", "--all", "--accept-package-agreements"}
		args = append(args, m.commonFlags()...)
		return m.run(ctx, args...)
	}
	for _, pkg := range opts.Packages {
		args := []string{"upgrade", "--exact", "--id", pkg, "--accept-package-agreements"}
		args = append(args, m.commonFlags()...)
		if err := m.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Search queries winget sources for packages matching the term.
func (m *WingetManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "search", query, "--accept-source-agreements")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseTable(output, opts.Limit, false), nil
}

// ListInstalled returns all packages winget knows to be installed.
func (m *WingetManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--accept-source-agreements")
	if err != nil {
		return nil, m.wrapErr(output, err)
	}
	return m.parseTable(output, opts.Limit, true), nil
}

// parseTable parses winget's column output: a header row, a dashed
// separator, then "Name Id Version ..." rows. The Id column is used as the
// package name since winget commands are keyed by id.
func (m *WingetManager) parseTable(output string, limit int, installed bool) []manager.Package {
	var packages []manager.Package
	seenSeparator := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if !seenSeparator {
			if strings.HasPrefix(strings.TrimSpace(line), "---") {
				seenSeparator = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		packages = append(packages, manager.Package{
			Name:      fields[len(fields)-2],
			Version:   fields[len(fields)-1],
			Source:    m.name,
			Installed: installed,
		})
		if limit > 0 && len(packages) >= limit {
			break
		}
	}
	return packages
}

// IsInstalled checks whether a package is installed.
func (m *WingetManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	output, err := m.exec.OutputQuiet(ctx, m.binary, "list", "--exact", "--id", name, "--accept-source-agreements")
	if err != nil {
		return false, nil
	}
	return strings.Contains(output, name), nil
}
