// Package feed implements the upstream item feed port against the
// Hacker News Firebase API.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/newswaters/newswaters/domain/item"
)

// DefaultBaseURL is the public firehose endpoint.
const DefaultBaseURL = "https://hacker-news.firebaseio.com"

// Client talks to the upstream item API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint; used by tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a feed client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxItemID returns the highest id currently published upstream.
func (c *Client) MaxItemID(ctx context.Context) (int32, error) {
	body, err := c.get(ctx, "/v0/maxitem.json")
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse max item id: %w", err)
	}
	return int32(id), nil
}

// Item fetches one item by id.
func (c *Client) Item(ctx context.Context, id int32) (item.Item, error) {
	body, err := c.get(ctx, fmt.Sprintf("/v0/item/%d.json", id))
	if err != nil {
		return item.Item{}, err
	}

	// The upstream API returns the literal "null" for unknown ids.
	if strings.TrimSpace(string(body)) == "null" {
		return item.Item{}, fmt.Errorf("item %d: not published upstream", id)
	}

	var it item.Item
	if err := json.Unmarshal(body, &it); err != nil {
		return item.Item{}, fmt.Errorf("decode item %d: %w", id, err)
	}
	return it, nil
}

// TopStoryIDs returns the current front-page ids in rank order.
func (c *Client) TopStoryIDs(ctx context.Context) ([]int32, error) {
	body, err := c.get(ctx, "/v0/topstories.json")
	if err != nil {
		return nil, err
	}

	var ids []int32
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("decode top story ids: %w", err)
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path + "?print=pretty"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}
