package search

import "context"

// VectorStore is the port onto the vector database. Collections hold
// fixed-dimension points keyed by item id under cosine distance.
type VectorStore interface {
	// EnsureCollections creates the named collections when missing.
	EnsureCollections(ctx context.Context, names []string, dim int) error

	// FindMissing probes which of ids have no point in the collection.
	FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error)

	// Upsert writes one point, blocking until the write is visible to a
	// subsequent FindMissing.
	Upsert(ctx context.Context, collection string, id int32, vector []float32) error

	// Search returns the k nearest points by descending score.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]ScoredItem, error)
}
