package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/newswaters/newswaters/application/service"
	"github.com/newswaters/newswaters/infrastructure/api"
	"github.com/newswaters/newswaters/infrastructure/inference"
	"github.com/newswaters/newswaters/infrastructure/persistence"
	"github.com/newswaters/newswaters/infrastructure/searchengine"
	"github.com/newswaters/newswaters/internal/config"
	"github.com/newswaters/newswaters/internal/database"
)

func serveCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the public search API",
		Long: `Start the public search API.

The API answers similar-item queries by fusing a lexical and a semantic
leaf from the search engine and hydrating the result ids from the item
store. Configuration comes from WHISTLER_, DATABASE_, SEARCH_ENGINE_
and INFERENCE_ environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runServe(envFile string) error {
	logger, err := setup(envFile)
	if err != nil {
		return err
	}

	whistlerEnv, err := config.LoadWhistler()
	if err != nil {
		return fmt.Errorf("load whistler config: %w", err)
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

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, dbEnv.URL())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("close database", slog.Any("error", closeErr))
		}
	}()

	store := persistence.NewItemStore(db, logger)
	engine := searchengine.NewClient(searchEnv.URL())
	embedder := inference.NewClient(inferenceEnv.URL())

	searchService := service.NewSearch(service.SearchConfig{
		Collections:   searchEnv.CollectionNames(),
		LexicalLimit:  whistlerEnv.SearchSimilarLexicalLimit,
		SemanticLimit: whistlerEnv.SearchSimilarSemanticLimit,
		LexicalWeight: whistlerEnv.SearchSimilarLexicalWeight,
	}, engine, embedder, store)

	router := api.NewWhistlerRouter(searchService, logger)

	addr := fmt.Sprintf("0.0.0.0:%d", whistlerEnv.Port)
	logger.Info("starting whistler", slog.String("addr", addr), slog.String("version", version))

	prefix := whistlerEnv.Prefix
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return runServer(addr, logger, func(r chi.Router) {
		if prefix != "" {
			r.Mount(prefix, router.Routes())
			return
		}
		r.Mount("/", router.Routes())
	})
}
