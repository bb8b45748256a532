package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Instruct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/instruct", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "say hi", req["instruction"])

		_ = json.NewEncoder(w).Encode(map[string]string{"completion": "hi"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	got, err := c.Instruct(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestClient_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embed", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req["sentence"])

		_ = json.NewEncoder(w).Encode(map[string][]float32{"embedding": {0.1, 0.2, 0.3}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	got, err := c.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, err := c.Instruct(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
