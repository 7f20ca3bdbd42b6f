package installer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"forge/internal/history"
	"forge/internal/progress"
	"forge/pkg/catalog"
	"forge/pkg/manager"
	"forge/pkg/snapshot"
)

type fakeManager struct {
	name      string
	installed [][]string
	failWith  map[string]error
	listed    []manager.Package
	caskUsed  bool
}

func (f *fakeManager) Name() string              { return f.name }
func (f *fakeManager) DisplayName() string       { return f.name }
func (f *fakeManager) Type() manager.ManagerType { return manager.TypeNative }
func (f *fakeManager) IsAvailable() bool         { return true }
func (f *fakeManager) NeedsSudo() bool           { return false }

func (f *fakeManager) Install(ctx context.Context, packages []string, opts manager.InstallOpts) error {
	for _, pkg := range packages {
		if err, ok := f.failWith[pkg]; ok {
			return err
		}
	}
	f.caskUsed = opts.Cask
	f.installed = append(f.installed, packages)
	return nil
}

func (f *fakeManager) Uninstall(ctx context.Context, packages []string, opts manager.UninstallOpts) error {
	return nil
}

func (f *fakeManager) Update(ctx context.Context) error                            { return nil }
func (f *fakeManager) Upgrade(ctx context.Context, opts manager.UpgradeOpts) error { return nil }

func (f *fakeManager) Search(ctx context.Context, query string, opts manager.SearchOpts) ([]manager.Package, error) {
	return nil, nil
}

func (f *fakeManager) ListInstalled(ctx context.Context, opts manager.ListOpts) ([]manager.Package, error) {
	return f.listed, nil
}

func (f *fakeManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	return false, nil
}

const driverCatalog = `
apps:
  tools:
    - name: git
      package: git
      install_type: fake
    - name: broken
      package: broken
      install_type: fake
    - name: By Hand
      package: null
      install_type: fake
      notes: grab it from the website
`

func driverFixture(t *testing.T, failWith map[string]error) (*Driver, *fakeManager, string) {
	t.Helper()

	cat, err := catalog.Parse([]byte(driverCatalog))
	if err != nil {
		t.Fatal(err)
	}

	fake := &fakeManager{name: "fake", failWith: failWith}
	reg := manager.NewRegistry()
	reg.Register(fake)

	progressPath := filepath.Join(t.TempDir(), "progress.json")
	driver := New(cat, reg, WithTracker(progress.NewTracker(progressPath)))
	return driver, fake, progressPath
}

func TestRunInstallsCatalogEntries(t *testing.T) {
	driver, fake, progressPath := driverFixture(t, nil)

	report, err := driver.Run(context.Background(), Options{Packages: []string{"git"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !report.Ok() {
		t.Fatalf("report failures: %+v", report.Failed)
	}
	if len(report.Installed) != 1 || report.Installed[0] != "git" {
		t.Errorf("Installed = %v", report.Installed)
	}
	if len(fake.installed) != 1 || fake.installed[0][0] != "git" {
		t.Errorf("manager saw %v", fake.installed)
	}

	state, err := progress.Read(progressPath)
	if err != nil {
		t.Fatal(err)
	}
	if state.Status != progress.StatusCompleted || state.Progress != 100 {
		t.Errorf("progress state = %s/%d", state.Status, state.Progress)
	}
}

func TestRunUnknownPackage(t *testing.T) {
	driver, _, _ := driverFixture(t, nil)
	if _, err := driver.Run(context.Background(), Options{Packages: []string{"nope"}}); err == nil {
		t.Error("unknown package should fail the run before it starts")
	}
}

func TestRunCollectsFailures(t *testing.T) {
	driver, fake, progressPath := driverFixture(t, map[string]error{
		"broken": cmdErr("E: Unable to locate package broken"),
	})

	report, err := driver.Run(context.Background(), Options{Packages: []string{"git", "broken"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.Ok() {
		t.Fatal("expected a failure for broken")
	}
	if len(report.Installed) != 1 {
		t.Errorf("Installed = %v, the healthy package should still install", report.Installed)
	}
	if len(report.Failed) != 1 {
		t.Fatalf("Failed = %+v", report.Failed)
	}
	failure := report.Failed[0]
	if failure.Package != "broken" || failure.Category != CategoryPackageManager {
		t.Errorf("failure = %+v", failure)
	}
	if failure.Hint == "" {
		t.Error("failure should carry a recovery hint")
	}
	if len(fake.installed) != 1 {
		t.Errorf("manager saw %v", fake.installed)
	}

	state, _ := progress.Read(progressPath)
	if state.Status != progress.StatusFailed {
		t.Errorf("progress status = %s, want failed", state.Status)
	}
	if len(state.PackagesFailed) != 1 || state.PackagesFailed[0] != "broken" {
		t.Errorf("PackagesFailed = %v", state.PackagesFailed)
	}
}

func TestRunSkipsManualEntries(t *testing.T) {
	driver, fake, _ := driverFixture(t, nil)

	report, err := driver.Run(context.Background(), Options{Packages: []string{"by-hand"}})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !report.Ok() {
		t.Errorf("manual entries must not count as failures: %+v", report.Failed)
	}
	if len(report.Skipped) != 1 || report.Skipped[0] != "By Hand" {
		t.Errorf("Skipped = %v", report.Skipped)
	}
	if len(fake.installed) != 0 {
		t.Errorf("manual entry must not reach the manager: %v", fake.installed)
	}
}

func TestRunCapturesSnapshot(t *testing.T) {
	cat, _ := catalog.Parse([]byte(driverCatalog))
	fake := &fakeManager{
		name:   "fake",
		listed: []manager.Package{{Name: "existing", Version: "1.0"}},
	}
	reg := manager.NewRegistry()
	reg.Register(fake)

	store, err := snapshot.OpenStoreAt(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	driver := New(cat, reg, WithSnapshots(store))
	report, err := driver.Run(context.Background(), Options{
		Packages: []string{"git"},
		Snapshot: true,
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report.SnapshotID == "" {
		t.Fatal("report should name the pre-run snapshot")
	}

	snap, err := store.Get(report.SnapshotID)
	if err != nil {
		t.Fatalf("snapshot not stored: %v", err)
	}
	if !snap.HasPackage("existing", "fake") {
		t.Errorf("snapshot packages = %+v", snap.Packages)
	}
	if snap.Trigger != snapshot.TriggerInstall {
		t.Errorf("Trigger = %v", snap.Trigger)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cat, _ := catalog.Parse([]byte(driverCatalog))
	reg := manager.NewRegistry()
	reg.Register(&fakeManager{name: "fake"})

	store, err := history.OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	driver := New(cat, reg, WithHistory(store))
	if _, err := driver.Run(context.Background(), Options{Packages: []string{"git"}}); err != nil {
		t.Fatal(err)
	}

	last, err := store.Last()
	if err != nil || last == nil {
		t.Fatalf("history entry missing: %v", err)
	}
	if last.Operation != history.OpInstall || !last.Success {
		t.Errorf("entry = %+v", last)
	}
	if len(last.Packages) != 1 || last.Packages[0] != "git" {
		t.Errorf("Packages = %v", last.Packages)
	}
}

func TestRunDryRunSkipsSideEffects(t *testing.T) {
	cat, _ := catalog.Parse([]byte(driverCatalog))
	reg := manager.NewRegistry()
	reg.Register(&fakeManager{name: "fake"})

	store, err := history.OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	driver := New(cat, reg, WithHistory(store))
	if _, err := driver.Run(context.Background(), Options{Packages: []string{"git"}, DryRun: true}); err != nil {
		t.Fatal(err)
	}

	count, _ := store.Count()
	if count != 0 {
		t.Errorf("dry run recorded %d history entries", count)
	}
}

func TestRunHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook test uses sh")
	}

	marker := filepath.Join(t.TempDir(), "post-ran")
	cat, err := catalog.Parse([]byte(`
apps:
  tools:
    - name: hooked
      package: hooked
      install_type: fake
      post_install: "touch ` + marker + `"
`))
	if err != nil {
		t.Fatal(err)
	}

	reg := manager.NewRegistry()
	reg.Register(&fakeManager{name: "fake"})

	driver := New(cat, reg)
	report, err := driver.Run(context.Background(), Options{Packages: []string{"hooked"}})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Ok() {
		t.Fatalf("failures: %+v", report.Failed)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Error("post-install hook did not run")
	}
}

func TestRunFailingHookCountsAsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook test uses sh")
	}

	cat, _ := catalog.Parse([]byte(`
apps:
  tools:
    - name: hooked
      package: hooked
      install_type: fake
      pre_install: "exit 1"
`))
	reg := manager.NewRegistry()
	fake := &fakeManager{name: "fake"}
	reg.Register(fake)

	driver := New(cat, reg)
	report, err := driver.Run(context.Background(), Options{Packages: []string{"hooked"}})
	if err != nil {
		t.Fatal(err)
	}
	if report.Ok() {
		t.Fatal("failing pre-install hook should fail the package")
	}
	if len(fake.installed) != 0 {
		t.Error("install must not run after a failed pre-install hook")
	}
}
