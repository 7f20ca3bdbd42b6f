package snapshot

import (
	"fmt"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ChangeType classifies a package change between two snapshots.
type ChangeType string

const (
	ChangeAdded      ChangeType = "added"
	ChangeRemoved    ChangeType = "removed"
	ChangeUpgraded   ChangeType = "upgraded"
	ChangeDowngraded ChangeType = "downgraded"
)

// Change is a single package difference between two snapshots.
type Change struct {
	Type       ChangeType `json:"type"`
	Package    string     `json:"package"`
	Source     string     `json:"source"`
	OldVersion string     `json:"old_version,omitempty"`
	NewVersion string     `json:"new_version,omitempty"`
}

// String returns a human-readable description of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeAdded:
		return fmt.Sprintf("+ %s (%s) [%s]", c.Package, c.NewVersion, c.Source)
	case ChangeRemoved:
		return fmt.Sprintf("- %s (%s) [%s]", c.Package, c.OldVersion, c.Source)
	case ChangeUpgraded:
		return fmt.Sprintf("^ %s: %s -> %s [%s]", c.Package, c.OldVersion, c.NewVersion, c.Source)
	case ChangeDowngraded:
		return fmt.Sprintf("v %s: %s -> %s [%s]", c.Package, c.OldVersion, c.NewVersion, c.Source)
	default:
		return fmt.Sprintf("? %s [%s]", c.Package, c.Source)
	}
}

// Diff is the full set of changes between two snapshots.
type Diff struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Changes []Change `json:"changes"`
}

// IsEmpty reports whether the snapshots are identical.
func (d *Diff) IsEmpty() bool {
	return len(d.Changes) == 0
}

func (d *Diff) byType(t ChangeType) []Change {
	var result []Change
	for _, c := range d.Changes {
		if c.Type == t {
			result = append(result, c)
		}
	}
	return result
}

// Added returns changes for packages present only in the newer snapshot.
func (d *Diff) Added() []Change { return d.byType(ChangeAdded) }

// Removed returns changes for packages present only in the older snapshot.
func (d *Diff) Removed() []Change { return d.byType(ChangeRemoved) }

// Upgraded returns changes where the version moved forward.
func (d *Diff) Upgraded() []Change { return d.byType(ChangeUpgraded) }

// Downgraded returns changes where the version moved backward.
func (d *Diff) Downgraded() []Change { return d.byType(ChangeDowngraded) }

// BySource groups changes by source manager.
func (d *Diff) BySource() map[string][]Change {
	result := make(map[string][]Change)
	for _, c := range d.Changes {
		result[c.Source] = append(result[c.Source], c)
	}
	return result
}

// Summary returns a short textual summary of the diff.
func (d *Diff) Summary() string {
	if d.IsEmpty() {
		return "No changes"
	}

	var parts []string
	if n := len(d.Added()); n > 0 {
		parts = append(parts, fmt.Sprintf("+%d added", n))
	}
	if n := len(d.Removed()); n > 0 {
		parts = append(parts, fmt.Sprintf("-%d removed", n))
	}
	if n := len(d.Upgraded()); n > 0 {
		parts = append(parts, fmt.Sprintf("^%d upgraded", n))
	}
	if n := len(d.Downgraded()); n > 0 {
		parts = append(parts, fmt.Sprintf("v%d downgraded", n))
	}
	return strings.Join(parts, ", ")
}

var changeOrder = map[ChangeType]int{
	ChangeAdded:      1,
	ChangeRemoved:    2,
	ChangeUpgraded:   3,
	ChangeDowngraded: 4,
}

// Compare computes the changes from the older snapshot to the newer one.
func Compare(from, to *Snapshot) *Diff {
	diff := &Diff{
		From:    from.ID,
		To:      to.ID,
		Changes: []Change{},
	}

	fromMap := make(map[string]PackageState)
	toMap := make(map[string]PackageState)
	for _, pkg := range from.Packages {
		fromMap[pkg.Source+"/"+pkg.Name] = pkg
	}
	for _, pkg := range to.Packages {
		toMap[pkg.Source+"/"+pkg.Name] = pkg
	}

	for key, toPkg := range toMap {
		fromPkg, exists := fromMap[key]
		if !exists {
			diff.Changes = append(diff.Changes, Change{
				Type:       ChangeAdded,
				Package:    toPkg.Name,
				Source:     toPkg.Source,
				NewVersion: toPkg.Version,
			})
			continue
		}
		if fromPkg.Version != toPkg.Version {
			changeType := ChangeUpgraded
			if CompareVersions(fromPkg.Version, toPkg.Version) > 0 {
				changeType = ChangeDowngraded
			}
			diff.Changes = append(diff.Changes, Change{
				Type:       changeType,
				Package:    toPkg.Name,
				Source:     toPkg.Source,
				OldVersion: fromPkg.Version,
				NewVersion: toPkg.Version,
			})
		}
	}

	for key, fromPkg := range fromMap {
		if _, exists := toMap[key]; !exists {
			diff.Changes = append(diff.Changes, Change{
				Type:       ChangeRemoved,
				Package:    fromPkg.Name,
				Source:     fromPkg.Source,
				OldVersion: fromPkg.Version,
			})
		}
	}

	sort.Slice(diff.Changes, func(i, j int) bool {
		a, b := diff.Changes[i], diff.Changes[j]
		if a.Type != b.Type {
			return changeOrder[a.Type] < changeOrder[b.Type]
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Package < b.Package
	})

	return diff
}

// CompareVersions orders two version strings. Returns -1 if a < b, 0 if
// equal, 1 if a > b. Versions that do not parse as semantic-ish versions
// fall back to plain string comparison.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}
