package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/newswaters/newswaters/domain/search"
	"github.com/newswaters/newswaters/infrastructure/api/middleware"
)

// SearchEngineRouter exposes the vector store and the full-text index
// to the indexing jobs and the public search service.
type SearchEngineRouter struct {
	vectors search.VectorStore
	texts   search.TextIndex
	logger  *slog.Logger
}

// NewSearchEngineRouter creates a new SearchEngineRouter.
func NewSearchEngineRouter(vectors search.VectorStore, texts search.TextIndex, logger *slog.Logger) *SearchEngineRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchEngineRouter{vectors: vectors, texts: texts, logger: logger}
}

// Routes returns the chi router for the search-engine endpoints.
func (r *SearchEngineRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/healthz", r.Healthz)
	router.Post("/find-missing", r.FindMissing)
	router.Post("/upsert", r.Upsert)
	router.Post("/search-similar", r.SearchSimilar)

	return router
}

// Healthz handles GET /healthz.
func (r *SearchEngineRouter) Healthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok"))
}

type findMissingRequest struct {
	CollectionName string  `json:"collection_name"`
	IDs            []int32 `json:"ids"`
}

type findMissingResponse struct {
	MissingIDs []int32 `json:"missing_ids"`
}

// FindMissing handles POST /find-missing.
func (r *SearchEngineRouter) FindMissing(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body findMissingRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	missing, err := r.vectors.FindMissing(ctx, body.CollectionName, body.IDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if missing == nil {
		missing = []int32{}
	}
	middleware.WriteJSON(w, http.StatusOK, findMissingResponse{MissingIDs: missing})
}

type upsertRequest struct {
	CollectionName string    `json:"collection_name"`
	ID             int32     `json:"id"`
	Embedding      []float32 `json:"embedding"`
	Sentence       *string   `json:"sentence"`
}

// Upsert handles POST /upsert. The embedding goes to the named vector
// collection; when a sentence rides along it also lands in the
// full-text index under the same id.
func (r *SearchEngineRouter) Upsert(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body upsertRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.vectors.Upsert(ctx, body.CollectionName, body.ID, body.Embedding); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if body.Sentence != nil {
		if err := r.texts.Add(ctx, body.ID, *body.Sentence); err != nil {
			middleware.WriteError(w, req, err, r.logger)
			return
		}
	}
	middleware.WriteJSON(w, http.StatusOK, struct{}{})
}

type searchSimilarRequest struct {
	CollectionName string    `json:"collection_name"`
	Sentence       *string   `json:"sentence"`
	Embedding      []float32 `json:"embedding"`
	Limit          int       `json:"limit"`
}

type searchSimilarResponse struct {
	Items [][]any `json:"items"`
}

// SearchSimilar handles POST /search-similar. A sentence selects the
// lexical leaf, an embedding the semantic leaf against the named
// collection; a request carrying neither returns an empty list.
func (r *SearchEngineRouter) SearchSimilar(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body searchSimilarRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var (
		items []search.ScoredItem
		err   error
	)
	switch {
	case body.Sentence != nil:
		items, err = r.texts.Search(ctx, *body.Sentence, body.Limit)
	case len(body.Embedding) > 0:
		items, err = r.vectors.Search(ctx, body.CollectionName, body.Embedding, body.Limit)
	}
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := searchSimilarResponse{Items: make([][]any, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, []any{it.ID, it.Score})
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
