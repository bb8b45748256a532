package main

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/newswaters/newswaters/infrastructure/api"
	"github.com/newswaters/newswaters/infrastructure/provider"
	"github.com/newswaters/newswaters/internal/config"
)

func inferenceCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "inference",
		Short: "Start the inference facade",
		Long: `Start the inference facade.

The facade serves instruction completions from an OpenAI-compatible
completion server and sentence embeddings from a local ONNX model.
Configuration comes from INFERENCE_ environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInference(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	return cmd
}

func runInference(envFile string) error {
	logger, err := setup(envFile)
	if err != nil {
		return err
	}

	env, err := config.LoadInference()
	if err != nil {
		return fmt.Errorf("load inference config: %w", err)
	}

	instructor := provider.NewLlama(provider.LlamaConfig{
		BaseURL:     env.LlamaBaseURL,
		Model:       env.LlamaModel,
		Template:    env.InstructTemplate,
		Temperature: env.Temperature,
	})
	embedder := provider.NewHugotEmbedder(env.EmbedModelPath)

	router := api.NewInferenceRouter(instructor, embedder, logger)

	addr := fmt.Sprintf("%s:%d", env.Host, env.Port)
	logger.Info("starting inference facade", slog.String("addr", addr), slog.String("version", version))

	return runServer(addr, logger, func(r chi.Router) {
		r.Mount("/", router.Routes())
	})
}
