package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainservice "github.com/newswaters/newswaters/domain/service"
	"github.com/newswaters/newswaters/infrastructure/api/middleware"
)

// InferenceRouter fronts the local models: instruction completions and
// sentence embeddings.
type InferenceRouter struct {
	instructor domainservice.Instructor
	embedder   domainservice.Embedder
	logger     *slog.Logger
}

// NewInferenceRouter creates a new InferenceRouter.
func NewInferenceRouter(instructor domainservice.Instructor, embedder domainservice.Embedder, logger *slog.Logger) *InferenceRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InferenceRouter{instructor: instructor, embedder: embedder, logger: logger}
}

// Routes returns the chi router for the inference endpoints.
func (r *InferenceRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/healthz", r.Healthz)
	router.Post("/instruct", r.Instruct)
	router.Post("/embed", r.Embed)

	return router
}

// Healthz handles GET /healthz.
func (r *InferenceRouter) Healthz(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Ok"))
}

type instructRequest struct {
	Instruction string `json:"instruction"`
}

type instructResponse struct {
	Completion string `json:"completion"`
}

// Instruct handles POST /instruct.
func (r *InferenceRouter) Instruct(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body instructRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	completion, err := r.instructor.Instruct(ctx, body.Instruction)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, instructResponse{Completion: completion})
}

type embedRequest struct {
	Sentence string `json:"sentence"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed handles POST /embed.
func (r *InferenceRouter) Embed(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body embedRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	embedding, err := r.embedder.Embed(ctx, body.Sentence)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, embedResponse{Embedding: embedding})
}
