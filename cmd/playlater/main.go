package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NeiruBugz/play-later/internal/app"
	"github.com/NeiruBugz/play-later/internal/config"
	"github.com/NeiruBugz/play-later/internal/telemetry"
	"github.com/NeiruBugz/play-later/internal/utils"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "playlater",
		Short:   "Personal game library and backlog tracker",
		Version: version,
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and background sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info().Str("version", version).Msg("Starting play-later")

	shutdownTracing, err := telemetry.Setup("play-later")
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	application, cleanup, err := app.InitializeApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer cleanup()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		return err
	}

	logger.Info().Msg("play-later stopped")
	return nil
}
