package cli

import (
	"context"
	"sort"

	"forge/internal/ui"
	"forge/pkg/manager"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries or installed packages",
	Long: `List the catalog entries that apply to this platform, including the
estimated total download size. With --installed, list what is actually
installed according to the package managers instead.

Examples:
  forge list                     # Catalog for this platform
  forge list --category dev      # One category
  forge list --installed         # Installed packages (all managers)
  forge list --installed -s apt  # Installed packages from one source`,
	RunE: runList,
}

var (
	listCategory  string
	listInstalled bool
	listSource    string
	listPattern   string
)

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "limit to one catalog category")
	listCmd.Flags().BoolVarP(&listInstalled, "installed", "i", false, "list installed packages instead of the catalog")
	listCmd.Flags().StringVarP(&listSource, "source", "s", "", "package source (with --installed)")
	listCmd.Flags().StringVarP(&listPattern, "filter", "f", "", "filter by name substring (with --installed)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listInstalled {
		return listInstalledPackages()
	}
	return listCatalog()
}

func listCatalog() error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	records := cat.ForCurrentPlatform(listCategory)
	if len(records) == 0 {
		if listCategory != "" {
			ui.InfoMsg("No catalog entries in category %q for this platform", listCategory)
		} else {
			ui.InfoMsg("The catalog has no entries for this platform")
		}
		return nil
	}

	ui.HeaderMsg("Catalog")
	ui.PrintCatalog(records)

	if categories := cat.Categories(); len(categories) > 1 && listCategory == "" {
		ui.MutedMsg("Categories: %v", categories)
	}
	return nil
}

func listInstalledPackages() error {
	ctx := context.Background()
	opts := manager.ListOpts{Pattern: listPattern}

	var managers []manager.Manager
	if listSource != "" {
		mgr, err := registry.ForSource(listSource)
		if err != nil {
			return err
		}
		managers = []manager.Manager{mgr}
	} else {
		managers = registry.Available()
		if len(managers) == 0 {
			return ErrNoManager
		}
	}

	var all []manager.Package
	for _, mgr := range managers {
		packages, err := mgr.ListInstalled(ctx, opts)
		if err != nil {
			ui.WarningMsg("Failed to list %s packages: %v", mgr.DisplayName(), err)
			continue
		}
		all = append(all, packages...)
	}

	if len(all) == 0 {
		ui.InfoMsg("No installed packages found")
		return nil
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Source != all[j].Source {
			return all[i].Source < all[j].Source
		}
		return all[i].Name < all[j].Name
	})

	ui.PrintPackages(all)
	ui.MutedMsg("%d package(s)", len(all))
	return nil
}
