// Package provider implements the local model backends of the
// inference facade: an ONNX sentence-embedding pipeline and an
// OpenAI-compatible completion client.
package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/newswaters/newswaters/domain/service"
)

// ortSingleton holds the process-wide ONNX Runtime session and
// pipeline. ORT only allows one active session per process and is not
// thread-safe, so every HugotEmbedder shares it and the mutex
// serializes both initialization and inference.
var ortSingleton struct {
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	mu       sync.Mutex
	ready    bool
}

// HugotEmbedder turns sentences into normalized dense vectors using a
// local ONNX model directory.
type HugotEmbedder struct {
	modelPath string
}

// NewHugotEmbedder creates a HugotEmbedder reading the model from
// modelPath. The session loads lazily on the first Embed call.
func NewHugotEmbedder(modelPath string) *HugotEmbedder {
	return &HugotEmbedder{modelPath: modelPath}
}

func (h *HugotEmbedder) initialize() error {
	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	if ortSingleton.ready {
		return nil
	}

	session, err := newHugotSession()
	if err != nil {
		return fmt.Errorf("create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: h.modelPath,
		Name:      "sentence-embeddings",
		Options: []hugot.FeatureExtractionOption{
			pipelines.WithNormalization(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("create feature extraction pipeline: %w", err)
	}

	ortSingleton.session = session
	ortSingleton.pipeline = pipeline
	ortSingleton.ready = true
	return nil
}

// Embed runs one sentence through the embedding pipeline.
func (h *HugotEmbedder) Embed(ctx context.Context, sentence string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := h.initialize(); err != nil {
		return nil, fmt.Errorf("initialize hugot: %w", err)
	}

	ortSingleton.mu.Lock()
	defer ortSingleton.mu.Unlock()

	result, err := ortSingleton.pipeline.RunPipeline([]string{sentence})
	if err != nil {
		return nil, fmt.Errorf("run embedding pipeline: %w", err)
	}
	if len(result.Embeddings) != 1 {
		return nil, fmt.Errorf("expected one embedding, got %d", len(result.Embeddings))
	}
	return result.Embeddings[0], nil
}

var _ service.Embedder = (*HugotEmbedder)(nil)
