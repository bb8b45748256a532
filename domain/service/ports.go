// Package service declares the outward-facing ports of the pipeline:
// the upstream item feed, the page fetcher and the inference service.
package service

import (
	"context"

	"github.com/newswaters/newswaters/domain/item"
)

// Feed is the upstream item API.
type Feed interface {
	// MaxItemID returns the highest id currently published upstream.
	MaxItemID(ctx context.Context) (int32, error)

	// Item fetches one item by id.
	Item(ctx context.Context, id int32) (item.Item, error)

	// TopStoryIDs returns the current front-page ids in rank order.
	TopStoryIDs(ctx context.Context) ([]int32, error)
}

// PageFetcher renders an article URL into an ItemURL outcome. It never
// returns an error for per-page failures; those are folded into the
// Skipped / Canceled variants.
type PageFetcher interface {
	FetchURL(ctx context.Context, url string) item.ItemURL
}

// Instructor runs one instruction completion.
type Instructor interface {
	Instruct(ctx context.Context, instruction string) (string, error)
}

// Embedder turns one sentence into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, sentence string) ([]float32, error)
}

// Inference bundles the two model families the workers need.
type Inference interface {
	Instructor
	Embedder
}
