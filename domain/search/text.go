package search

import "context"

// TextIndex is the port onto the full-text index: append-only documents
// keyed by item id, queried by a BM25-style score.
type TextIndex interface {
	// Add appends one document and commits.
	Add(ctx context.Context, id int32, sentence string) error

	// Search returns the top-k documents matching the sentence, by
	// descending score.
	Search(ctx context.Context, sentence string, k int) ([]ScoredItem, error)
}
