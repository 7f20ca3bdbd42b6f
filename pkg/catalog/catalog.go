// Package catalog loads the declarative application catalog (apps.yaml)
// that drives bulk installs.
package catalog

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PackageRecord describes one installable application from the catalog.
type PackageRecord struct {
	Name        string   `yaml:"name"`
	Package     string   `yaml:"package"`
	Platforms   []string `yaml:"platforms"`
	InstallType string   `yaml:"install_type"`
	PreInstall  string   `yaml:"pre_install"`
	PostInstall string   `yaml:"post_install"`
	Notes       string   `yaml:"notes"`
	Priority    string   `yaml:"priority"`
	Size        string   `yaml:"size"`
	Category    string   `yaml:"-"`

	manual bool
}

// UnmarshalYAML fills defaults and detects explicit "package: null", which
// marks the entry as a manual install rather than defaulting to the name.
func (r *PackageRecord) UnmarshalYAML(node *yaml.Node) error {
	type plain PackageRecord
	var tmp plain
	if err := node.Decode(&tmp); err != nil {
		return err
	}
	*r = PackageRecord(tmp)

	hasPackageKey := false
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "package" {
			hasPackageKey = true
			if node.Content[i+1].Tag == "!!null" {
				r.manual = true
			}
		}
	}
	if !hasPackageKey && r.Package == "" {
		r.Package = Slug(r.Name)
	}
	if r.Priority == "" {
		r.Priority = "medium"
	}
	if r.InstallType == "" {
		r.InstallType = "native"
	}
	return nil
}

// Manual reports whether this entry must be installed by hand
// (declared with "package: null" in the catalog).
func (r *PackageRecord) Manual() bool {
	return r.manual
}

// AppliesTo reports whether the record targets the given platform.
// An empty platform list matches everything.
func (r *PackageRecord) AppliesTo(goos string) bool {
	if len(r.Platforms) == 0 {
		return true
	}
	for _, p := range r.Platforms {
		if normalizePlatform(p) == goos {
			return true
		}
	}
	return false
}

func normalizePlatform(p string) string {
	switch strings.ToLower(p) {
	case "macos", "mac", "osx", "darwin":
		return "darwin"
	case "windows", "win":
		return "windows"
	default:
		return strings.ToLower(p)
	}
}

// Slug converts a display name into the lookup key used by Get.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

type catalogFile struct {
	Apps map[string][]*PackageRecord `yaml:"apps"`
}

// Catalog is an immutable view of a loaded apps.yaml.
type Catalog struct {
	records map[string]*PackageRecord
}

// Load reads and parses a catalog file. A missing file yields an empty
// catalog rather than an error.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Catalog{records: map[string]*PackageRecord{}}, nil
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse parses catalog YAML from memory.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	records := make(map[string]*PackageRecord)
	for category, apps := range file.Apps {
		for _, app := range apps {
			if app == nil || app.Name == "" {
				continue
			}
			app.Category = category
			records[Slug(app.Name)] = app
		}
	}
	return &Catalog{records: records}, nil
}

// Get returns the record for a package name (case and space insensitive).
func (c *Catalog) Get(name string) (*PackageRecord, bool) {
	rec, ok := c.records[Slug(name)]
	return rec, ok
}

// List returns all records, optionally filtered by category, sorted by name.
func (c *Catalog) List(category string) []*PackageRecord {
	var out []*PackageRecord
	for _, rec := range c.records {
		if category != "" && rec.Category != category {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ForPlatform returns records that apply to the given GOOS, optionally
// filtered by category.
func (c *Catalog) ForPlatform(goos, category string) []*PackageRecord {
	var out []*PackageRecord
	for _, rec := range c.List(category) {
		if rec.AppliesTo(goos) {
			out = append(out, rec)
		}
	}
	return out
}

// ForCurrentPlatform returns records that apply to the running system.
func (c *Catalog) ForCurrentPlatform(category string) []*PackageRecord {
	return c.ForPlatform(runtime.GOOS, category)
}

// Search returns records whose name, package or notes contain the query.
func (c *Catalog) Search(query string) []*PackageRecord {
	query = strings.ToLower(query)
	var out []*PackageRecord
	for _, rec := range c.List("") {
		if strings.Contains(strings.ToLower(rec.Name), query) ||
			strings.Contains(strings.ToLower(rec.Package), query) ||
			strings.Contains(strings.ToLower(rec.Notes), query) {
			out = append(out, rec)
		}
	}
	return out
}

// Categories returns the sorted list of categories present in the catalog.
func (c *Catalog) Categories() []string {
	seen := make(map[string]struct{})
	for _, rec := range c.records {
		seen[rec.Category] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}
