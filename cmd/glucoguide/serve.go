// cmd/glucoguide/serve.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mcp-glucoguide/internal/glycemic"
	"mcp-glucoguide/internal/identify"
	"mcp-glucoguide/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP tool server over HTTP",
	Long: `Start the HTTP server exposing the analysis tools:

  analyze_food, analyze_meal, analyze_description, compute_risk,
  search_foods, list_categories, save_profile, get_profile, get_analyses

GET /health reports database status and the number of known foods.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host address (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port for HTTP transport (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stor, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stor.Close()

	identifier := identify.NewClient(identify.Config{
		URL:     cfg.Gateway.URL,
		APIKey:  cfg.Gateway.APIKey,
		Model:   cfg.Gateway.Model,
		Timeout: time.Duration(cfg.Gateway.TimeoutSeconds) * time.Second,
	})

	srv, err := server.NewGlucoGuideServer(&server.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Version: version,
	}, stor, glycemic.NewService(stor, newCalculator(cfg)), identifier, logger)
	if err != nil {
		return err
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
		return err
	}
	return nil
}
