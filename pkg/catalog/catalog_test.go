package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleCatalog = `
apps:
  development:
    - name: Git
      package: git
      platforms: [macos, linux]
      install_type: native
      notes: Version control
      priority: high
    - name: Docker Desktop
      package: null
      platforms: [macos, windows]
      notes: Download from docker.com
  browsers:
    - name: Firefox
      platforms: [macos, linux, windows]
      install_type: cask
      size: 200MB
`

func load(t *testing.T, yaml string) *Catalog {
	t.Helper()
	cat, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return cat
}

func TestLoadMissingFile(t *testing.T) {
	cat, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error: %v", err)
	}
	if cat.Len() != 0 {
		t.Errorf("missing file should give empty catalog, got %d records", cat.Len())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.yaml")
	if err := os.WriteFile(path, []byte(sampleCatalog), 0o644); err != nil {
		t.Fatal(err)
	}
	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("got %d records, want 3", cat.Len())
	}
}

func TestGet(t *testing.T) {
	cat := load(t, sampleCatalog)

	git, ok := cat.Get("git")
	if !ok {
		t.Fatal("Get(git) not found")
	}
	if git.Package != "git" || git.Category != "development" {
		t.Errorf("git record = %+v", git)
	}
	if git.Priority != "high" {
		t.Errorf("Priority = %q, want high", git.Priority)
	}

	// Lookup is case and space insensitive.
	if _, ok := cat.Get("Docker Desktop"); !ok {
		t.Error("Get(Docker Desktop) not found")
	}
	if _, ok := cat.Get("docker-desktop"); !ok {
		t.Error("Get(docker-desktop) not found")
	}
	if _, ok := cat.Get("emacs"); ok {
		t.Error("Get(emacs) should not be found")
	}
}

func TestDefaults(t *testing.T) {
	cat := load(t, sampleCatalog)

	firefox, ok := cat.Get("firefox")
	if !ok {
		t.Fatal("Get(firefox) not found")
	}
	// No package key: defaults to the slugged name.
	if firefox.Package != "firefox" {
		t.Errorf("Package = %q, want firefox", firefox.Package)
	}
	if firefox.Priority != "medium" {
		t.Errorf("Priority = %q, want medium", firefox.Priority)
	}
	if firefox.Manual() {
		t.Error("firefox should not be manual")
	}
}

func TestManualInstall(t *testing.T) {
	cat := load(t, sampleCatalog)

	docker, ok := cat.Get("docker-desktop")
	if !ok {
		t.Fatal("Get(docker-desktop) not found")
	}
	if !docker.Manual() {
		t.Error("package: null entry should be manual")
	}

	git, _ := cat.Get("git")
	if git.Manual() {
		t.Error("git should not be manual")
	}
}

func TestPlatformFiltering(t *testing.T) {
	cat := load(t, sampleCatalog)

	git, _ := cat.Get("git")
	if !git.AppliesTo("darwin") {
		t.Error("macos alias should match darwin")
	}
	if !git.AppliesTo("linux") {
		t.Error("git should apply to linux")
	}
	if git.AppliesTo("windows") {
		t.Error("git should not apply to windows")
	}

	linuxPkgs := cat.ForPlatform("linux", "")
	if len(linuxPkgs) != 2 {
		t.Errorf("ForPlatform(linux) = %d records, want 2", len(linuxPkgs))
	}
	windowsPkgs := cat.ForPlatform("windows", "")
	if len(windowsPkgs) != 2 {
		t.Errorf("ForPlatform(windows) = %d records, want 2", len(windowsPkgs))
	}
}

func TestEmptyPlatformsMatchesAll(t *testing.T) {
	cat := load(t, `
apps:
  tools:
    - name: curl
`)
	curl, _ := cat.Get("curl")
	for _, goos := range []string{"linux", "darwin", "windows"} {
		if !curl.AppliesTo(goos) {
			t.Errorf("empty platforms should match %s", goos)
		}
	}
}

func TestListAndCategories(t *testing.T) {
	cat := load(t, sampleCatalog)

	all := cat.List("")
	if len(all) != 3 {
		t.Fatalf("List() = %d records, want 3", len(all))
	}
	// Sorted by name.
	if all[0].Name != "Docker Desktop" || all[2].Name != "Git" {
		t.Errorf("List() order: %s, %s, %s", all[0].Name, all[1].Name, all[2].Name)
	}

	dev := cat.List("development")
	if len(dev) != 2 {
		t.Errorf("List(development) = %d records, want 2", len(dev))
	}

	cats := cat.Categories()
	if len(cats) != 2 || cats[0] != "browsers" || cats[1] != "development" {
		t.Errorf("Categories() = %v", cats)
	}
}

func TestSearch(t *testing.T) {
	cat := load(t, sampleCatalog)

	if got := cat.Search("git"); len(got) != 1 {
		t.Errorf("Search(git) = %d results, want 1", len(got))
	}
	// Notes are searched too.
	if got := cat.Search("docker.com"); len(got) != 1 {
		t.Errorf("Search(docker.com) = %d results, want 1", len(got))
	}
	if got := cat.Search("zzz"); len(got) != 0 {
		t.Errorf("Search(zzz) = %d results, want 0", len(got))
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("apps: [not: a: map")); err == nil {
		t.Error("Parse of invalid YAML should fail")
	}
}
