// Package vector implements the vector store port against the Qdrant
// HTTP API.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/newswaters/newswaters/domain/search"
)

// Qdrant is a vector store backed by a Qdrant server.
type Qdrant struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Qdrant client.
type Option func(*Qdrant)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(q *Qdrant) { q.httpClient = hc }
}

// NewQdrant creates a client against baseURL, e.g. "http://localhost:6333".
func NewQdrant(baseURL string, opts ...Option) *Qdrant {
	q := &Qdrant{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

var _ search.VectorStore = (*Qdrant)(nil)

// EnsureCollections creates the named cosine-distance collections when
// they do not exist yet.
func (q *Qdrant) EnsureCollections(ctx context.Context, names []string, dim int) error {
	for _, name := range names {
		exists, err := q.collectionExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check collection %s: %w", name, err)
		}
		if exists {
			continue
		}

		payload := map[string]any{
			"vectors": map[string]any{
				"size":     dim,
				"distance": "Cosine",
			},
		}
		if err := q.do(ctx, http.MethodPut, "/collections/"+name, payload, nil); err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
	}
	return nil
}

func (q *Qdrant) collectionExists(ctx context.Context, name string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.baseURL+"/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// FindMissing retrieves the given ids and reports which of them have no
// point in the collection, preserving input order.
func (q *Qdrant) FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"ids":          ids,
		"with_payload": false,
		"with_vector":  false,
	}
	var out struct {
		Result []struct {
			ID int32 `json:"id"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodPost, "/collections/"+collection+"/points", payload, &out); err != nil {
		return nil, fmt.Errorf("retrieve points in %s: %w", collection, err)
	}

	present := make(map[int32]struct{}, len(out.Result))
	for _, p := range out.Result {
		present[p.ID] = struct{}{}
	}

	var missing []int32
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// Upsert writes one point. The wait flag blocks until the write is
// durable so a follow-up FindMissing never re-reports the id.
func (q *Qdrant) Upsert(ctx context.Context, collection string, id int32, vector []float32) error {
	payload := map[string]any{
		"points": []map[string]any{
			{"id": id, "vector": vector},
		},
	}
	if err := q.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", payload, nil); err != nil {
		return fmt.Errorf("upsert point %d in %s: %w", id, collection, err)
	}
	return nil
}

// Search returns the k nearest points by descending cosine score.
func (q *Qdrant) Search(ctx context.Context, collection string, vector []float32, k int) ([]search.ScoredItem, error) {
	payload := map[string]any{
		"vector": vector,
		"limit":  k,
	}
	var out struct {
		Result []struct {
			ID    int32   `json:"id"`
			Score float32 `json:"score"`
		} `json:"result"`
	}
	if err := q.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", payload, &out); err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}

	items := make([]search.ScoredItem, 0, len(out.Result))
	for _, p := range out.Result {
		items = append(items, search.ScoredItem{ID: p.ID, Score: p.Score})
	}
	return items, nil
}

func (q *Qdrant) do(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
