package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"forge/pkg/catalog"
	"forge/pkg/installer"
	"forge/pkg/manager"
	"forge/pkg/snapshot"
)

// Table wraps tabwriter for aligned column output.
type Table struct {
	writer  *tabwriter.Writer
	headers []string
}

// NewTable creates a table writing to stdout.
func NewTable(header []string) *Table {
	return NewTableWriter(os.Stdout, header)
}

// NewTableWriter creates a table writing to w.
func NewTableWriter(w io.Writer, header []string) *Table {
	return &Table{
		writer:  tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: header,
	}
}

// AddRow appends a row.
func (t *Table) AddRow(row []string) {
	fmt.Fprintln(t.writer, strings.Join(row, "\t"))
}

// Render flushes the table, prefixed with its header row.
func (t *Table) Render() {
	if len(t.headers) > 0 {
		headerRow := make([]string, len(t.headers))
		for i, h := range t.headers {
			headerRow[i] = Bold(strings.ToUpper(h))
		}
		fmt.Fprintln(t.writer, strings.Join(headerRow, "\t"))
	}
	t.writer.Flush() //nolint:errcheck
}

// PrintPackages prints installed or found packages.
func PrintPackages(packages []manager.Package) {
	if len(packages) == 0 {
		MutedMsg("No packages found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, Bold("SOURCE")+"\t"+Bold("NAME")+"\t"+Bold("VERSION"))

	for _, pkg := range packages {
		name := PackageName.Sprint(pkg.Name)
		if pkg.Installed {
			name += " " + Installed.Sprint("[installed]")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			PackageSource.Sprint("["+pkg.Source+"]"),
			name,
			PackageVersion.Sprint(pkg.Version))
	}
	w.Flush() //nolint:errcheck
}

// PrintCatalog prints catalog entries with a download size total.
func PrintCatalog(records []*catalog.PackageRecord) {
	if len(records) == 0 {
		MutedMsg("Catalog is empty")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, Bold("NAME")+"\t"+Bold("CATEGORY")+"\t"+Bold("TYPE")+"\t"+Bold("PRIORITY")+"\t"+Bold("SIZE"))

	var totalSize uint64
	for _, rec := range records {
		name := PackageName.Sprint(rec.Name)
		if rec.Manual() {
			name += " " + Muted.Sprint("[manual]")
		}
		if rec.Size != "" {
			if bytes, err := humanize.ParseBytes(rec.Size); err == nil {
				totalSize += bytes
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name, rec.Category, rec.InstallType, rec.Priority, rec.Size)
	}
	w.Flush() //nolint:errcheck

	if totalSize > 0 {
		MutedMsg("Estimated total download: %s", humanize.Bytes(totalSize))
	}
}

// PrintSearchResults prints search results grouped by source.
func PrintSearchResults(packages []manager.Package) {
	if len(packages) == 0 {
		MutedMsg("No packages found")
		return
	}

	grouped := make(map[string][]manager.Package)
	for _, pkg := range packages {
		grouped[pkg.Source] = append(grouped[pkg.Source], pkg)
	}

	HeaderMsg("Found %d results across %d sources", len(packages), len(grouped))

	for source, pkgs := range grouped {
		fmt.Printf("\n%s (%d):\n", PackageSource.Sprint("["+source+"]"), len(pkgs))
		for _, pkg := range pkgs {
			line := "  " + PackageName.Sprint(pkg.Name)
			if pkg.Version != "" {
				line += " " + PackageVersion.Sprint(pkg.Version)
			}
			if pkg.Installed {
				line += " " + Installed.Sprint("[installed]")
			}
			fmt.Println(line)
		}
	}
}

// PrintChanges prints a snapshot diff.
func PrintChanges(diff *snapshot.Diff) {
	if diff.IsEmpty() {
		MutedMsg("No changes")
		return
	}

	for _, change := range diff.Changes {
		line := change.String()
		switch change.Type {
		case snapshot.ChangeAdded:
			fmt.Println(Green(line))
		case snapshot.ChangeRemoved:
			fmt.Println(Red(line))
		default:
			fmt.Println(Yellow(line))
		}
	}
	MutedMsg("\n%s", diff.Summary())
}

// PrintReport prints an install run report with failure hints.
func PrintReport(report *installer.Report) {
	if len(report.Installed) > 0 {
		SuccessMsg("Installed %d packages (%s)", len(report.Installed), report.Elapsed.Round(time.Second))
	}
	for _, name := range report.Skipped {
		WarningMsg("Skipped %s (manual install)", name)
	}
	for _, failure := range report.Failed {
		ErrorMsg("%s: %v", failure.Package, failure.Err)
		MutedMsg("  category: %s", failure.Category)
		MutedMsg("  hint: %s", failure.Hint)
	}
}

// PrintSystemInfo prints detected platform details.
func PrintSystemInfo(prettyName, arch, distro, nativeManager string, availableManagers []string) {
	HeaderMsg("System Information")
	printField("Operating System", prettyName)
	printField("Architecture", arch)
	if distro != "" {
		printField("Distribution", distro)
	}
	if nativeManager != "" {
		printField("Native Package Manager", nativeManager)
	}
	if len(availableManagers) > 0 {
		printField("Available Managers", strings.Join(availableManagers, ", "))
	}
}

func printField(label, value string) {
	fmt.Printf("  %s: %s\n", Cyan(label), value)
}
