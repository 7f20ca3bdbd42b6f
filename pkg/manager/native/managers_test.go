package native

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"forge/pkg/manager"
)

func TestBaseManagerProperties(t *testing.T) {
	base := NewBaseManager("test", "Test Manager", "test-bin", manager.TypeNative, true)

	if base.Name() != "test" {
		t.Errorf("Name() = %q, want %q", base.Name(), "test")
	}
	if base.DisplayName() != "Test Manager" {
		t.Errorf("DisplayName() = %q, want %q", base.DisplayName(), "Test Manager")
	}
	if base.Binary() != "test-bin" {
		t.Errorf("Binary() = %q, want %q", base.Binary(), "test-bin")
	}
	if base.Type() != manager.TypeNative {
		t.Errorf("Type() = %v, want %v", base.Type(), manager.TypeNative)
	}
	if !base.NeedsSudo() {
		t.Error("NeedsSudo() = false, want true")
	}
}

func TestBaseManagerWrapErr(t *testing.T) {
	base := NewBaseManager("apt", "APT", "apt", manager.TypeNative, true)

	if err := base.wrapErr("output", nil); err != nil {
		t.Errorf("wrapErr(nil) = %v, want nil", err)
	}

	err := base.wrapErr("E: Could not get lock", errFake)
	cmdErr, ok := err.(*manager.CommandError)
	if !ok {
		t.Fatalf("wrapErr returned %T, want *manager.CommandError", err)
	}
	if cmdErr.Manager != "apt" {
		t.Errorf("Manager = %q, want %q", cmdErr.Manager, "apt")
	}
	if cmdErr.Output != "E: Could not get lock" {
		t.Errorf("Output = %q", cmdErr.Output)
	}
}

func TestMutatingOpsHonorDryRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the touch command")
	}

	// A manager whose binary is touch: if a mutating call reaches the
	// external command, the package argument appears as a file.
	newTouchManager := func() *BrewManager {
		return &BrewManager{
			BaseManager: NewBaseManager("brew", "Homebrew", "touch", manager.TypeNative, false),
		}
	}

	// Subcommand arguments ("install", "uninstall") are created as files
	// too, so keep the working directory disposable.
	t.Chdir(t.TempDir())
	ctx := context.Background()
	marker := filepath.Join(t.TempDir(), "ran")

	tests := []struct {
		name string
		run  func(m *BrewManager) error
	}{
		{"install", func(m *BrewManager) error {
			return m.Install(ctx, []string{marker}, manager.InstallOpts{DryRun: true})
		}},
		{"uninstall", func(m *BrewManager) error {
			return m.Uninstall(ctx, []string{marker}, manager.UninstallOpts{DryRun: true})
		}},
		{"upgrade", func(m *BrewManager) error {
			return m.Upgrade(ctx, manager.UpgradeOpts{DryRun: true, Packages: []string{marker}})
		}},
	}

	for _, tt := range tests {
		m := newTouchManager()
		if err := tt.run(m); err != nil {
			t.Fatalf("%s with DryRun: %v", tt.name, err)
		}
		if _, err := os.Stat(marker); !os.IsNotExist(err) {
			t.Errorf("%s: dry run executed the external command", tt.name)
		}
		if m.Executor().DryRun() {
			t.Errorf("%s: dry-run mode left enabled after the call", tt.name)
		}
	}

	// Without DryRun the same call must reach the binary.
	m := newTouchManager()
	if err := m.Install(ctx, []string{marker}, manager.InstallOpts{}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("install without dry run never executed the command")
	}
}

type fakeError struct{}

func (fakeError) Error() string { return "exit status 100" }

var errFake = fakeError{}

func TestBrewParseVersionList(t *testing.T) {
	brew := NewBrewManager()
	output := "git 2.43.0\npython@3.12 3.12.1 3.12.2\n\nwget 1.21.4\n"

	packages := brew.parseVersionList(output)
	if len(packages) != 3 {
		t.Fatalf("got %d packages, want 3", len(packages))
	}
	if packages[0].Name != "git" || packages[0].Version != "2.43.0" {
		t.Errorf("first package = %+v", packages[0])
	}
	if packages[1].Name != "python@3.12" || packages[1].Version != "3.12.1" {
		t.Errorf("second package = %+v", packages[1])
	}
	for _, pkg := range packages {
		if !pkg.Installed {
			t.Errorf("package %s not marked installed", pkg.Name)
		}
		if pkg.Source != "brew" {
			t.Errorf("package %s source = %q", pkg.Name, pkg.Source)
		}
	}
}

func TestSnapParseTable(t *testing.T) {
	snap := NewSnapManager()
	output := "Name     Version  Rev  Tracking  Publisher  Notes\n" +
		"core22   20240111 1122 latest    canonical  base\n" +
		"firefox  121.0    3600 latest    mozilla    -\n"

	packages := snap.parseTable(output, 0, true)
	if len(packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(packages))
	}
	if packages[0].Name != "core22" || packages[0].Version != "20240111" {
		t.Errorf("first package = %+v", packages[0])
	}
	if packages[1].Name != "firefox" {
		t.Errorf("second package = %+v", packages[1])
	}

	limited := snap.parseTable(output, 1, true)
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d packages", len(limited))
	}
}

func TestChocoParseLimitOutput(t *testing.T) {
	choco := NewChocoManager()
	output := "git|2.43.0\r\n7zip|23.1.0\r\n\r\n"

	packages := choco.parseLimitOutput(output, 0, true)
	if len(packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(packages))
	}
	if packages[0].Name != "git" || packages[0].Version != "2.43.0" {
		t.Errorf("first package = %+v", packages[0])
	}
	if packages[1].Name != "7zip" || packages[1].Version != "23.1.0" {
		t.Errorf("second package = %+v", packages[1])
	}
}

func TestWingetParseTable(t *testing.T) {
	winget := NewWingetManager()
	output := "Name           Id              Version\n" +
		"-----------------------------------------\n" +
		"Git            Git.Git         2.43.0\n" +
		"Visual Studio  Microsoft.VS    17.8.3\n"

	packages := winget.parseTable(output, 0, false)
	if len(packages) != 2 {
		t.Fatalf("got %d packages, want 2", len(packages))
	}
	if packages[0].Name != "Git.Git" || packages[0].Version != "2.43.0" {
		t.Errorf("first package = %+v", packages[0])
	}
	if packages[1].Name != "Microsoft.VS" || packages[1].Version != "17.8.3" {
		t.Errorf("second package = %+v", packages[1])
	}
}

func TestManagerTypes(t *testing.T) {
	tests := []struct {
		mgr  manager.Manager
		name string
		typ  manager.ManagerType
		sudo bool
	}{
		{NewBrewManager(), "brew", manager.TypeNative, false},
		{NewAptManager(), "apt", manager.TypeNative, true},
		{NewDnfManager(), "dnf", manager.TypeNative, true},
		{NewPacmanManager(), "pacman", manager.TypeNative, true},
		{NewSnapManager(), "snap", manager.TypeUniversal, true},
		{NewWingetManager(), "winget", manager.TypeNative, false},
		{NewChocoManager(), "choco", manager.TypeNative, false},
	}

	for _, tt := range tests {
		if tt.mgr.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", tt.mgr.Name(), tt.name)
		}
		if tt.mgr.Type() != tt.typ {
			t.Errorf("%s: Type() = %v, want %v", tt.name, tt.mgr.Type(), tt.typ)
		}
		if tt.mgr.NeedsSudo() != tt.sudo {
			t.Errorf("%s: NeedsSudo() = %v, want %v", tt.name, tt.mgr.NeedsSudo(), tt.sudo)
		}
	}
}
