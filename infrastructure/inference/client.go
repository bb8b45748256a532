// Package inference implements the inference service port against the
// HTTP facade exposed by the inference server.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the inference HTTP facade.
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

// NewClient creates an inference client. Instruction completions on CPU
// hosts routinely take minutes, hence the long timeout.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 600 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type instructRequest struct {
	Instruction string `json:"instruction"`
}

type instructResponse struct {
	Completion string `json:"completion"`
}

// Instruct runs one instruction completion.
func (c *Client) Instruct(ctx context.Context, instruction string) (string, error) {
	var resp instructResponse
	if err := c.post(ctx, "/instruct", instructRequest{Instruction: instruction}, &resp); err != nil {
		return "", err
	}
	return resp.Completion, nil
}

type embedRequest struct {
	Sentence string `json:"sentence"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed turns one sentence into a dense vector.
func (c *Client) Embed(ctx context.Context, sentence string) ([]float32, error) {
	var resp embedResponse
	if err := c.post(ctx, "/embed", embedRequest{Sentence: sentence}, &resp); err != nil {
		return nil, err
	}
	return resp.Embedding, nil
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
