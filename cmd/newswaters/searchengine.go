package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/newswaters/newswaters/infrastructure/api"
	"github.com/newswaters/newswaters/infrastructure/textindex"
	"github.com/newswaters/newswaters/infrastructure/vector"
	"github.com/newswaters/newswaters/internal/config"
)

func searchEngineCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "search-engine",
		Short: "Start the search-engine service",
		Long: `Start the search-engine service.

The service fronts the vector database and the local full-text index:
the embed jobs probe and fill it, the public API queries it.
Configuration comes from SEARCH_ENGINE_ environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearchEngine(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runSearchEngine(envFile string) error {
	logger, err := setup(envFile)
	if err != nil {
		return err
	}

	env, err := config.LoadSearchEngine()
	if err != nil {
		return fmt.Errorf("load search-engine config: %w", err)
	}

	ctx := context.Background()

	vectors := vector.NewQdrant(env.VectorURL())
	if err := vectors.EnsureCollections(ctx, engineCollections(env), env.VectorSize); err != nil {
		return fmt.Errorf("ensure collections: %w", err)
	}

	texts, err := textindex.Open(ctx, env.TextStoragePath)
	if err != nil {
		return fmt.Errorf("open text index: %w", err)
	}
	defer func() {
		if closeErr := texts.Close(); closeErr != nil {
			logger.Error("close text index", slog.Any("error", closeErr))
		}
	}()

	router := api.NewSearchEngineRouter(vectors, texts, logger)

	addr := fmt.Sprintf("%s:%d", env.Host, env.Port)
	logger.Info("starting search engine", slog.String("addr", addr), slog.String("version", version))

	return runServer(addr, logger, func(r chi.Router) {
		r.Mount("/", router.Routes())
	})
}

// engineCollections is the set of collections the service guarantees at
// startup: the queried list plus the two upsert targets, deduplicated.
func engineCollections(env config.SearchEngineEnv) []string {
	seen := map[string]bool{}
	var names []string
	for _, name := range append(env.CollectionNames(), env.VectorSummaryCollectionName, env.VectorKeywordCollectionName) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
