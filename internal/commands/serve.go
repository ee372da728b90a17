package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"TickerScope/internal/api"
	"TickerScope/internal/logger"
)

var (
	serveAddr string
	serveMock bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve analyses over HTTP.

Endpoints:
  GET    /healthz
  GET    /api/v1/analysis/{ticker}   analyze (cached; ?refresh=true bypasses)
  GET    /api/v1/analyses?symbol=    list saved analyses
  POST   /api/v1/analyses            analyze and save {"symbol": "AAPL"}
  GET    /api/v1/analyses/{id}
  DELETE /api/v1/analyses/{id}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveMock, "mock", false, "use generated prices instead of Yahoo")
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := newRuntime(cmd, serveMock)
	if err != nil {
		return err
	}
	defer env.Close()

	addr := env.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	log := logger.WithComponent(env.log, "serve")
	srv := api.NewServer(addr, env.cfg.Server.CORSOrigins, env.collector, env.recorder, newCache(env.cfg), log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
