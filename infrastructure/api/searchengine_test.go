package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newswaters/newswaters/domain/search"
)

type stubVectorStore struct {
	missing    []int32
	missingErr error
	results    []search.ScoredItem

	upsertCollection string
	upsertID         int32
	upsertVector     []float32
	searchCollection string
	searchLimit      int
}

func (s *stubVectorStore) EnsureCollections(ctx context.Context, names []string, dim int) error {
	return nil
}

func (s *stubVectorStore) FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error) {
	return s.missing, s.missingErr
}

func (s *stubVectorStore) Upsert(ctx context.Context, collection string, id int32, vector []float32) error {
	s.upsertCollection = collection
	s.upsertID = id
	s.upsertVector = vector
	return nil
}

func (s *stubVectorStore) Search(ctx context.Context, collection string, vector []float32, k int) ([]search.ScoredItem, error) {
	s.searchCollection = collection
	s.searchLimit = k
	return s.results, nil
}

type stubTextIndex struct {
	added    map[int32]string
	results  []search.ScoredItem
	lastK    int
	lastSent string
}

func (s *stubTextIndex) Add(ctx context.Context, id int32, sentence string) error {
	if s.added == nil {
		s.added = map[int32]string{}
	}
	s.added[id] = sentence
	return nil
}

func (s *stubTextIndex) Search(ctx context.Context, sentence string, k int) ([]search.ScoredItem, error) {
	s.lastSent = sentence
	s.lastK = k
	return s.results, nil
}

func newEngineServer(t *testing.T, vectors *stubVectorStore, texts *stubTextIndex) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewSearchEngineRouter(vectors, texts, nil).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestSearchEngineHealthz(t *testing.T) {
	srv := newEngineServer(t, &stubVectorStore{}, &stubTextIndex{})

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Ok", string(body))
}

func TestSearchEngineFindMissing(t *testing.T) {
	vectors := &stubVectorStore{missing: []int32{6, 8}}
	srv := newEngineServer(t, vectors, &stubTextIndex{})

	resp, err := http.Post(srv.URL+"/find-missing", "application/json",
		strings.NewReader(`{"collection_name": "summaries", "ids": [5, 6, 7, 8]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		MissingIDs []int32 `json:"missing_ids"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, []int32{6, 8}, got.MissingIDs)
}

func TestSearchEngineFindMissingNoneMissing(t *testing.T) {
	srv := newEngineServer(t, &stubVectorStore{}, &stubTextIndex{})

	resp, err := http.Post(srv.URL+"/find-missing", "application/json",
		strings.NewReader(`{"collection_name": "summaries", "ids": [5]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"missing_ids": []}`, string(body))
}

func TestSearchEngineUpsertWithSentence(t *testing.T) {
	vectors := &stubVectorStore{}
	texts := &stubTextIndex{}
	srv := newEngineServer(t, vectors, texts)

	resp, err := http.Post(srv.URL+"/upsert", "application/json",
		strings.NewReader(`{"collection_name": "summaries", "id": 42, "embedding": [0.5, 0.25], "sentence": "a fine summary"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "summaries", vectors.upsertCollection)
	assert.Equal(t, int32(42), vectors.upsertID)
	assert.Equal(t, []float32{0.5, 0.25}, vectors.upsertVector)
	assert.Equal(t, "a fine summary", texts.added[42])
}

func TestSearchEngineUpsertWithoutSentenceSkipsTextIndex(t *testing.T) {
	vectors := &stubVectorStore{}
	texts := &stubTextIndex{}
	srv := newEngineServer(t, vectors, texts)

	resp, err := http.Post(srv.URL+"/upsert", "application/json",
		strings.NewReader(`{"collection_name": "keywords", "id": 7, "embedding": [1]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, int32(7), vectors.upsertID)
	assert.Empty(t, texts.added)
}

func TestSearchEngineSearchSimilarLexical(t *testing.T) {
	texts := &stubTextIndex{results: []search.ScoredItem{{ID: 3, Score: 1.5}, {ID: 1, Score: 0.5}}}
	srv := newEngineServer(t, &stubVectorStore{}, texts)

	resp, err := http.Post(srv.URL+"/search-similar", "application/json",
		strings.NewReader(`{"sentence": "database replication", "limit": 5}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "database replication", texts.lastSent)
	assert.Equal(t, 5, texts.lastK)

	var got struct {
		Items [][]float64 `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, [][]float64{{3, 1.5}, {1, 0.5}}, got.Items)
}

func TestSearchEngineSearchSimilarSemantic(t *testing.T) {
	vectors := &stubVectorStore{results: []search.ScoredItem{{ID: 9, Score: 0.9}}}
	srv := newEngineServer(t, vectors, &stubTextIndex{})

	resp, err := http.Post(srv.URL+"/search-similar", "application/json",
		strings.NewReader(`{"collection_name": "keywords", "embedding": [0.1, 0.2], "limit": 3}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "keywords", vectors.searchCollection)
	assert.Equal(t, 3, vectors.searchLimit)

	var got struct {
		Items [][]float64 `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, [][]float64{{9, 0.9}}, got.Items)
}

func TestSearchEngineSearchSimilarNeitherLeaf(t *testing.T) {
	srv := newEngineServer(t, &stubVectorStore{}, &stubTextIndex{})

	resp, err := http.Post(srv.URL+"/search-similar", "application/json",
		strings.NewReader(`{"limit": 3}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items": []}`, string(body))
}

func TestSearchEngineErrorBody(t *testing.T) {
	vectors := &stubVectorStore{missingErr: errors.New("qdrant unreachable")}
	srv := newEngineServer(t, vectors, &stubTextIndex{})

	resp, err := http.Post(srv.URL+"/find-missing", "application/json",
		strings.NewReader(`{"collection_name": "summaries", "ids": [1]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Something went wrong: qdrant unreachable", string(body))
}
