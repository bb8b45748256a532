package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/newswaters/newswaters/application/service"
	"github.com/newswaters/newswaters/infrastructure/api/middleware"
)

// WhistlerRouter exposes the public search API.
type WhistlerRouter struct {
	search *service.Search
	logger *slog.Logger
}

// NewWhistlerRouter creates a new WhistlerRouter.
func NewWhistlerRouter(search *service.Search, logger *slog.Logger) *WhistlerRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WhistlerRouter{search: search, logger: logger}
}

// Routes returns the chi router for the public search endpoints. The
// surface is browser-facing, so it answers cross-origin GET and POST
// from anywhere.
func (r *WhistlerRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	router.Get("/healthz", r.Healthz)
	router.Post("/search-similar-items", r.SearchSimilarItems)

	return router
}

// Healthz handles GET /healthz.
func (r *WhistlerRouter) Healthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok"))
}

type searchSimilarItemsRequest struct {
	Sentence string `json:"sentence"`
	Limit    int    `json:"limit"`
}

type searchSimilarItemsResponse struct {
	// Each element is a [id, score, title, url, time] tuple; title, url
	// and time are null when the store has no value.
	Items [][]any `json:"items"`
}

// SearchSimilarItems handles POST /search-similar-items.
func (r *WhistlerRouter) SearchSimilarItems(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body searchSimilarItemsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	items, err := r.search.SearchSimilarItems(ctx, body.Sentence, body.Limit)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := searchSimilarItemsResponse{Items: make([][]any, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, []any{it.ID, it.Score, it.Title, it.URL, it.Time})
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
