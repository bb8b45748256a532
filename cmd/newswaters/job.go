package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/newswaters/newswaters/application/job"
	"github.com/newswaters/newswaters/infrastructure/browser"
	"github.com/newswaters/newswaters/infrastructure/feed"
	"github.com/newswaters/newswaters/infrastructure/inference"
	"github.com/newswaters/newswaters/infrastructure/persistence"
	"github.com/newswaters/newswaters/infrastructure/searchengine"
	"github.com/newswaters/newswaters/internal/config"
	"github.com/newswaters/newswaters/internal/database"
)

func jobCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "job <name>",
		Short: "Run a pipeline job",
		Long: fmt.Sprintf(`Run a pipeline job once, or in a loop when JOB_LOOP is set.

Available jobs:
  %s

Configuration comes from JOB_, DATABASE_, SEARCH_ENGINE_ and INFERENCE_
environment variables.`, strings.Join(job.Names(), "\n  ")),
		Args:      cobra.ExactArgs(1),
		ValidArgs: job.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(envFile, args[0])
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runJob(envFile, name string) error {
	logger, err := setup(envFile)
	if err != nil {
		return err
	}

	jobEnv, err := config.LoadJob()
	if err != nil {
		return fmt.Errorf("load job config: %w", err)
	}
	dbEnv, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("load database config: %w", err)
	}
	searchEnv, err := config.LoadSearchEngine()
	if err != nil {
		return fmt.Errorf("load search-engine config: %w", err)
	}
	inferenceEnv, err := config.LoadInference()
	if err != nil {
		return fmt.Errorf("load inference config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("stopping job", slog.String("job", name))
		cancel()
	}()

	db, err := database.NewDatabase(ctx, dbEnv.URL())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("close database", slog.Any("error", closeErr))
		}
	}()

	// The jobs own the schema; the read-side services assume it exists.
	if err := persistence.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	jobs := job.NewJobs(
		job.Config{
			Env:               jobEnv,
			SummaryCollection: searchEnv.VectorSummaryCollectionName,
			KeywordCollection: searchEnv.VectorKeywordCollectionName,
		},
		persistence.NewItemStore(db, logger),
		feed.NewClient(),
		browser.NewFetcher(),
		inference.NewClient(inferenceEnv.URL()),
		searchengine.NewClient(searchEnv.URL()),
		job.WithLogger(logger),
	)

	logger.Info("starting job",
		slog.String("job", name),
		slog.Bool("loop", jobEnv.Loop),
		slog.String("version", version),
	)
	return jobs.Run(ctx, name)
}
