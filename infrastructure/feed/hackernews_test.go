package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newswaters/newswaters/domain/item"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestClient_MaxItemID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/maxitem.json", r.URL.Path)
		assert.Equal(t, "pretty", r.URL.Query().Get("print"))
		_, _ = w.Write([]byte("38123456\n"))
	})

	id, err := c.MaxItemID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(38123456), id)
}

func TestClient_Item(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/item/8863.json", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"by": "dhouston",
			"descendants": 71,
			"id": 8863,
			"kids": [9224, 8917],
			"score": 104,
			"time": 1175714200,
			"title": "My YC app: Dropbox - Throw away your USB drive",
			"type": "story",
			"url": "http://www.getdropbox.com/u/2/screencast.html"
		}`))
	})

	it, err := c.Item(context.Background(), 8863)
	require.NoError(t, err)
	assert.Equal(t, int32(8863), it.ID)
	require.NotNil(t, it.Kind)
	assert.Equal(t, item.KindStory, *it.Kind)
	assert.Equal(t, "dhouston", *it.By)
	assert.Equal(t, []int32{9224, 8917}, it.Kids)
	assert.Equal(t, int32(71), *it.Descendants)
	assert.Nil(t, it.Text)
}

func TestClient_Item_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("null\n"))
	})

	_, err := c.Item(context.Background(), 1)
	assert.Error(t, err)
}

func TestClient_TopStoryIDs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v0/topstories.json", r.URL.Path)
		_, _ = w.Write([]byte(`[42, 17, 99]`))
	})

	ids, err := c.TopStoryIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int32{42, 17, 99}, ids)
}

func TestClient_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.MaxItemID(context.Background())
	assert.Error(t, err)
}
