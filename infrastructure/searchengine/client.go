// Package searchengine implements the HTTP client for the search-engine
// service: embedding upserts, missing-id probes and similarity search.
package searchengine

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

// Client talks to the search-engine service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a search-engine client.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type findMissingRequest struct {
	CollectionName string  `json:"collection_name"`
	IDs            []int32 `json:"ids"`
}

type findMissingResponse struct {
	MissingIDs []int32 `json:"missing_ids"`
}

// FindMissing reports which of ids have no embedding in the collection.
func (c *Client) FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error) {
	var resp findMissingResponse
	err := c.post(ctx, "/find-missing", findMissingRequest{CollectionName: collection, IDs: ids}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.MissingIDs, nil
}

type upsertRequest struct {
	CollectionName string    `json:"collection_name"`
	ID             int32     `json:"id"`
	Embedding      []float32 `json:"embedding"`
	Sentence       *string   `json:"sentence,omitempty"`
}

// Upsert writes one embedding. A non-nil sentence is also appended to
// the service's text index.
func (c *Client) Upsert(ctx context.Context, collection string, id int32, embedding []float32, sentence *string) error {
	req := upsertRequest{
		CollectionName: collection,
		ID:             id,
		Embedding:      embedding,
		Sentence:       sentence,
	}
	return c.post(ctx, "/upsert", req, &struct{}{})
}

type searchSimilarRequest struct {
	CollectionName string    `json:"collection_name,omitempty"`
	Sentence       *string   `json:"sentence,omitempty"`
	Embedding      []float32 `json:"embedding,omitempty"`
	Limit          int       `json:"limit"`
}

type searchSimilarResponse struct {
	Items [][2]float64 `json:"items"`
}

// SearchSimilarLexical queries the service's text index.
func (c *Client) SearchSimilarLexical(ctx context.Context, sentence string, limit int) ([]search.ScoredItem, error) {
	return c.searchSimilar(ctx, searchSimilarRequest{Sentence: &sentence, Limit: limit})
}

// SearchSimilarSemantic queries one vector collection.
func (c *Client) SearchSimilarSemantic(ctx context.Context, collection string, embedding []float32, limit int) ([]search.ScoredItem, error) {
	return c.searchSimilar(ctx, searchSimilarRequest{CollectionName: collection, Embedding: embedding, Limit: limit})
}

func (c *Client) searchSimilar(ctx context.Context, req searchSimilarRequest) ([]search.ScoredItem, error) {
	var resp searchSimilarResponse
	if err := c.post(ctx, "/search-similar", req, &resp); err != nil {
		return nil, err
	}

	items := make([]search.ScoredItem, 0, len(resp.Items))
	for _, pair := range resp.Items {
		items = append(items, search.ScoredItem{ID: int32(pair[0]), Score: float32(pair[1])})
	}
	return items, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
