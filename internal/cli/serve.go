package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"forge/internal/server"
	"forge/internal/ui"
	"forge/pkg/catalog"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web dashboard",
	Long: `Start the web dashboard. It serves the catalog, snapshot and history
views over HTTP, and pushes live install progress to the browser over
a WebSocket while a run is in flight in another terminal.

The server binds to localhost by default; change dashboard.bind_address
in the config to expose it elsewhere. Stop it with Ctrl-C.

Examples:
  forge serve               # http://127.0.0.1:8080
  forge serve --port 9090`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override the configured port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if servePort != 0 {
		cfg.Dashboard.Port = servePort
	}

	// The dashboard stays useful without a catalog file; the packages
	// view is just empty.
	cat, err := loadCatalog()
	if err != nil {
		ui.WarningMsg("%v", err)
		cat = &catalog.Catalog{}
	}

	srv := server.New(cfg, cat, registry)
	ui.InfoMsg("Dashboard listening on http://%s", srv.Addr())
	ui.MutedMsg("Press Ctrl-C to stop")

	return srv.Start(ctx)
}
