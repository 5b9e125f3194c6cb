// Package main provides the searchctl-server binary: the HTTP admin and
// search surface over the reindex orchestrator, evaluation runner, and
// performance benchmarker.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Junhan0037/SearchFoundry/internal/config"
	"github.com/Junhan0037/SearchFoundry/internal/pkg/logger"
	"github.com/Junhan0037/SearchFoundry/internal/server"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "searchctl-server",
		Short: "searchctl-server - search control plane HTTP admin/search surface",
		Long: `searchctl-server exposes the reindex orchestrator, evaluation runner,
and performance benchmarker over HTTP:

  POST /admin/index/create      create a new index generation
  POST /admin/index/bulk        bulk-index documents
  POST /admin/index/reindex     run a blue/green reindex
  POST /admin/index/rollback    roll aliases back to a prior index
  POST /admin/eval/run          run an evaluation dataset
  POST /admin/eval/regression   evaluate and diff against a baseline report
  POST /admin/performance/benchmark   benchmark search latency
  GET  /api/search               execute a search request
  GET  /api/suggest              execute a suggest request
  GET  /api/health                report alias health`,
		RunE:         runServer,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringP("config", "c", "", "config file path")
	rootCmd.Flags().BoolP("verbose", "v", false, "verbose logging")
	rootCmd.Flags().Int("port", 0, "HTTP server port (overrides config)")
	rootCmd.Flags().String("host", "", "HTTP server host (overrides config)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("searchctl-server %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	port, _ := cmd.Flags().GetInt("port")
	host, _ := cmd.Flags().GetString("host")

	logLevel := "info"
	if verbose {
		logLevel = "debug"
	}
	log := logger.New(logLevel, "text")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = host
	}

	log.Info("starting searchctl-server", "version", version, "addr", cfg.Address(), "engine", cfg.Engine.Driver)

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-sigCh:
		log.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Stop(ctx)
}
