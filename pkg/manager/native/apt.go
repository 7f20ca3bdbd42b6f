package native

import (
	"context"
	"os/exec"
	"strings"

	"forge/pkg/manager"
)

// AptManager implements the Manager interface for APT (Debian/Ubuntu).
// When nala is installed and enabled it is used as a drop-in front end.
type AptManager struct {
	*BaseManager
	useNala bool
}

// NewAptManager creates a new APT manager instance.
func NewAptManager() *AptManager {
	return &AptManager{
		BaseManager: NewBaseManager("apt", "APT", "apt", manager.TypeNative, true),
	}
}

// SetUseNala enables nala as the front end when available.
func (m *AptManager) SetUseNala(use bool) {
	m.useNala = use
}

func (m *AptManager) frontend() string {
	if m.useNala {
		if _, err := exec.LookPath("nala"); err == nil {
			return "nala"
		}
	}
	return m.binary
}

func (m *AptManager) yesFlag(autoConfirm bool) []string {
	if autoConfirm {
		return []string{"-y"}
	}
	return nil
}

// Install installs one or more packages.
func (m *AptManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	args := []string{"install"}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	out, err := m.exec.RunSudoCapture(ctx, m.frontend(), args...)
	return m.wrapErr(out, err)
}

// Uninstall removes one or more packages. Purge also removes config files.
func (m *AptManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	verb := "remove"
	if opts.Purge {
		verb = "purge"
	}
	args := []string{verb}
	args = append(args, m.yesFlag(opts.AutoConfirm)...)
	args = append(args, packages...)
	out, err := m.exec.RunSudoCapture(ctx, m.frontend(), args...)
	return m.wrapErr(out, err)
}

// Update refreshes the package index.
func (m *AptManager) Update(ctx context.Context) error {
	out, err := m.exec.RunSudoCapture(ctx, m.frontend(), "update")
	return m.wrapErr(out, err)
}

// Upgrade upgrades the given packages, or all upgradable packages if none given.
func (m *AptManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error {
	if opts.DryRun {
		m.SetDryRun(true)
		defer m.SetDryRun(false)
	}

	var args []string
	if len(opts.Packages) > 0 {
		args = append(args, "install", "--only-upgrade")
		args = append(args, m.yesFlag(opts.AutoConfirm)...)
		args = append(args, opts.Packages...)
	} else {
		args = append(args, "upgrade")
		args = append(args, m.yesFlag(opts.AutoConfirm)...)
	}
	out, err := m.exec.RunSudoCapture(ctx, m.frontend(), args...)
	return m.wrapErr(out, err)
}

// Search queries the APT cache for packages matching the term.
func (m *AptManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, "apt-cache", "search", query)
	if err != nil {
		return nil, m.wrapErr(output, err)
	}

	var packages []manager.Package
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// "name - description"
		parts := strings.SplitN(line, " - ", 2)
		pkg := manager.Package{
			Name:   strings.TrimSpace(parts[0]),
			Source: m.name,
		}
		packages = append(packages, pkg)
		if opts.Limit > 0 && len(packages) >= opts.Limit {
			break
		}
	}
	return packages, nil
}

// ListInstalled returns installed packages via dpkg-query.
func (m *AptManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	output, err := m.exec.OutputQuiet(ctx, "dpkg-query", "-W", "-f", "${Package}\t${Version}\n")
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
func (m *AptManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	output, err := m.exec.OutputQuiet(ctx, "dpkg-query", "-W", "-f", "${Status}", name)
	if err != nil {
		return false, nil
	}
	return strings.Contains(output, "install ok installed"), nil
}
