// Package main is the entry point for the newswaters CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/newswaters/newswaters/infrastructure/api"
	apimiddleware "github.com/newswaters/newswaters/infrastructure/api/middleware"
	"github.com/newswaters/newswaters/internal/config"
	"github.com/newswaters/newswaters/internal/log"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newswaters",
		Short: "Discussion-board search pipeline",
		Long:  `Newswaters ingests a discussion-board firehose, enriches items with model-generated summaries and keywords, and serves hybrid lexical and semantic search over them.`,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(searchEngineCmd())
	cmd.AddCommand(inferenceCmd())
	cmd.AddCommand(jobCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// setup loads the .env file and installs the process logger.
func setup(envFile string) (*slog.Logger, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	logEnv, err := config.LoadLog()
	if err != nil {
		return nil, fmt.Errorf("load log config: %w", err)
	}
	return log.Configure(log.Format(logEnv.Format), logEnv.Level).Slog(), nil
}

// shutdownTimeout bounds how long in-flight requests may drain after a
// termination signal.
const shutdownTimeout = 15 * time.Second

// runServer mounts the routes and serves until SIGINT or SIGTERM.
func runServer(addr string, logger *slog.Logger, mount func(chi.Router)) error {
	server := api.NewServer(addr, logger)
	server.Router().Use(apimiddleware.Logging(logger))
	mount(server.Router())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
