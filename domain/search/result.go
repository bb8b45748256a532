// Package search holds the hybrid-search domain: scored results, query
// shape detection, score fusion and the ports onto the vector and
// full-text backends.
package search

// ScoredItem is one (id, score) pair returned by a search leaf.
type ScoredItem struct {
	ID    int32
	Score float32
}

// SimilarItem is a hydrated search result.
type SimilarItem struct {
	ID    int32
	Score float32
	Title *string
	URL   *string
	Time  *int64
}
