package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pedro-hbl/purchy-ledger/internal/server"
	"github.com/spf13/cobra"
)

var listenAddr string

// serveCmd runs the API as a local HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API locally",
	Long: `Serve every route of the API Gateway deployment from one HTTP server. Requests
are converted to proxy events and handled exactly as in Lambda.

Examples:
  purchyctl serve --backend memory         # Throwaway in-memory ledger
  purchyctl serve --addr :9000             # Against the configured tables`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (defaults to LISTEN_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := listenAddr
	if addr == "" {
		addr = a.Config.ListenAddr
	}

	return server.New(addr, server.NewRouter(a.Handler.Router(), a.Logger), a.Logger).Run(ctx)
}
