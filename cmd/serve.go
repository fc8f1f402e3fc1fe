package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sol-checkout/pkg/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the checkout HTTP API",
	Long: `Serve the checkout API, the merchant dashboard endpoints and
Prometheus metrics.

Endpoints:
  GET  /tokens            supported tokens
  POST /quote             price a payment
  POST /payments          run a checkout
  GET  /payments          list payments (?status=)
  GET  /payments/stats    dashboard summary
  GET  /payments/{id}     one payment
  GET  /metrics           Prometheus metrics`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) {
	a, err := loadApp(cmd)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	addr := a.Config.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.Log.WithFields(map[string]interface{}{
		"merchant": a.Config.Merchant.ID,
		"network":  a.Config.Network.Mode,
		"quotes":   a.Config.Quote.Source,
	}).Infof("starting checkout server")

	if err := server.Serve(ctx, addr, server.NewRouter(a, a.Log), a.Log); err != nil {
		printError(err)
		os.Exit(1)
	}
}
