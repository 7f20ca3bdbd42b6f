package cli

import (
	"context"
	"strings"

	"forge/internal/ui"
	"forge/pkg/manager"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for packages",
	Long: `Search the catalog and all available package managers for packages
matching the query. Catalog matches are shown first since those carry
install hooks and platform notes.

Examples:
  forge search vscode
  forge search python -s brew
  forge search editor --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchSource string
	searchLimit  int
)

func init() {
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "search a single source only")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 25, "maximum results per source")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	// Catalog matches first.
	if cat, err := loadCatalog(); err == nil {
		if records := cat.Search(query); len(records) > 0 {
			ui.HeaderMsg("Catalog matches")
			ui.PrintCatalog(records)
		}
	}

	opts := manager.SearchOpts{Limit: searchLimit}

	var results []manager.Package
	var err error

	if searchSource != "" {
		mgr, srcErr := registry.ForSource(searchSource)
		if srcErr != nil {
			return srcErr
		}
		err = ui.WithSpinner("Searching "+mgr.DisplayName(), func() error {
			var searchErr error
			results, searchErr = mgr.Search(ctx, query, opts)
			return searchErr
		})
		if err != nil {
			return err
		}
	} else {
		// SearchAll keeps results from the sources that succeeded; show
		// those and only warn about the one that failed.
		ui.WithSpinner("Searching all sources", func() error { //nolint:errcheck
			results, err = registry.SearchAll(ctx, query, opts)
			return err
		})
		if err != nil && len(results) == 0 {
			return err
		}
		if err != nil {
			ui.WarningMsg("Some sources failed: %v", err)
		}
	}

	if len(results) == 0 {
		ui.InfoMsg("No packages found matching %q", query)
		return nil
	}

	ui.PrintSearchResults(results)
	return nil
}
