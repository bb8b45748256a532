// Package service implements the public search application service:
// hybrid lexical and semantic retrieval over the search-engine backend
// with result hydration from the item store.
package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/newswaters/newswaters/domain/item"
	"github.com/newswaters/newswaters/domain/search"
	domainservice "github.com/newswaters/newswaters/domain/service"
)

// RetrievalQueryPrefix is the role marker the embedding model expects on
// query-side sentences; the indexers use the matching document-side
// marker when embedding content.
const RetrievalQueryPrefix = "Represent this query for retrieving relevant documents: "

// Searcher is the slice of the search-engine API the search service uses.
type Searcher interface {
	SearchSimilarLexical(ctx context.Context, sentence string, limit int) ([]search.ScoredItem, error)
	SearchSimilarSemantic(ctx context.Context, collection string, embedding []float32, limit int) ([]search.ScoredItem, error)
}

// ItemFinder hydrates result ids into display headers.
type ItemFinder interface {
	FindItems(ctx context.Context, ids []int32) (map[int32]item.ItemHeader, error)
}

// SearchConfig carries the fusion knobs and the collection layout.
type SearchConfig struct {
	Collections   []string
	LexicalLimit  int
	SemanticLimit int
	LexicalWeight float64
}

// Search answers similar-item queries.
type Search struct {
	cfg      SearchConfig
	engine   Searcher
	embedder domainservice.Embedder
	items    ItemFinder
}

// NewSearch creates the search service.
func NewSearch(cfg SearchConfig, engine Searcher, embedder domainservice.Embedder, items ItemFinder) *Search {
	return &Search{cfg: cfg, engine: engine, embedder: embedder, items: items}
}

// SearchSimilarItems runs one query. A sentence wrapped in double quotes
// is a lexical-only query; anything else fans out to the text index and
// every configured vector collection concurrently, and the leaves are
// fused on weighted min-max-normalized scores.
func (s *Search) SearchSimilarItems(ctx context.Context, sentence string, limit int) ([]search.SimilarItem, error) {
	if limit <= 0 {
		return []search.SimilarItem{}, nil
	}

	q := search.ParseQuery(sentence)

	var lexical, semantic []search.ScoredItem
	if q.Lexical {
		var err error
		lexical, err = s.engine.SearchSimilarLexical(ctx, q.Sentence, s.cfg.LexicalLimit)
		if err != nil {
			return nil, fmt.Errorf("lexical search: %w", err)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			lexical, err = s.engine.SearchSimilarLexical(gctx, q.Sentence, s.cfg.LexicalLimit)
			if err != nil {
				return fmt.Errorf("lexical search: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			var err error
			semantic, err = s.searchSemantic(gctx, q.Sentence)
			if err != nil {
				return fmt.Errorf("semantic search: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	fused := search.Fuse(lexical, semantic, s.cfg.LexicalWeight, limit)
	return s.hydrate(ctx, fused)
}

func (s *Search) searchSemantic(ctx context.Context, sentence string) ([]search.ScoredItem, error) {
	embedding, err := s.embedder.Embed(ctx, RetrievalQueryPrefix+sentence)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	lists := make([][]search.ScoredItem, len(s.cfg.Collections))
	g, gctx := errgroup.WithContext(ctx)
	for i, collection := range s.cfg.Collections {
		g.Go(func() error {
			list, err := s.engine.SearchSimilarSemantic(gctx, collection, embedding, s.cfg.SemanticLimit)
			if err != nil {
				return fmt.Errorf("collection %s: %w", collection, err)
			}
			lists[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Truncation waits until after fusion with the lexical leaf.
	return search.MergeCollections(lists, -1), nil
}

// hydrate joins fused scores with item headers, preserving score order
// and dropping ids the store no longer knows.
func (s *Search) hydrate(ctx context.Context, fused []search.ScoredItem) ([]search.SimilarItem, error) {
	ids := make([]int32, 0, len(fused))
	for _, it := range fused {
		ids = append(ids, it.ID)
	}

	headers, err := s.items.FindItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate items: %w", err)
	}

	items := make([]search.SimilarItem, 0, len(fused))
	for _, it := range fused {
		header, ok := headers[it.ID]
		if !ok {
			continue
		}
		items = append(items, search.SimilarItem{
			ID:    it.ID,
			Score: it.Score,
			Title: header.Title,
			URL:   header.URL,
			Time:  header.Time,
		})
	}
	return items, nil
}
