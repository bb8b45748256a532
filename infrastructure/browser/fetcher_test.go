package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newswaters/newswaters/domain/item"
)

func TestFetcher_SkipsPDFWithoutRendering(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
	}))
	t.Cleanup(srv.Close)

	rendered := false
	f := NewFetcher(WithRender(func(ctx context.Context, url string) (string, error) {
		rendered = true
		return "", nil
	}))

	got := f.FetchURL(context.Background(), srv.URL)

	assert.Equal(t, item.URLStatusSkipped, got.Status)
	assert.Contains(t, got.Note, "pdf")
	assert.False(t, rendered, "browser must not launch for pdf content")
}

func TestFetcher_SkipsPDFCaseInsensitive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "Application/PDF")
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(WithRender(func(ctx context.Context, url string) (string, error) {
		t.Fatal("render must not be called")
		return "", nil
	}))

	got := f.FetchURL(context.Background(), srv.URL)
	assert.Equal(t, item.URLStatusSkipped, got.Status)
}

func TestFetcher_Finished(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
	}))
	t.Cleanup(srv.Close)

	html := "<html><head><style>p{}</style></head><body><p>Hello</p><p>World</p></body></html>"
	f := NewFetcher(WithRender(func(ctx context.Context, url string) (string, error) {
		return html, nil
	}))

	got := f.FetchURL(context.Background(), srv.URL)

	require.Equal(t, item.URLStatusFinished, got.Status)
	assert.Equal(t, html, got.HTML)
	assert.Equal(t, "Hello\nWorld", got.Text)
}

func TestFetcher_RenderErrorIsCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(srv.Close)

	f := NewFetcher(WithRender(func(ctx context.Context, url string) (string, error) {
		return "", errors.New("browser crashed")
	}))

	got := f.FetchURL(context.Background(), srv.URL)

	assert.Equal(t, item.URLStatusCanceled, got.Status)
	assert.Contains(t, got.Note, "browser crashed")
}

func TestFetcher_ProbeErrorIsCanceled(t *testing.T) {
	f := NewFetcher(WithRender(func(ctx context.Context, url string) (string, error) {
		t.Fatal("render must not be called")
		return "", nil
	}))

	got := f.FetchURL(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.Equal(t, item.URLStatusCanceled, got.Status)
}

func TestHTMLToText_StripsDecoration(t *testing.T) {
	html := `<html><head><title>t</title><script>var x = 1;</script></head>
<body>
  <h1>Headline</h1>
  <script>tracker()</script>
  <p>First paragraph.</p>
  <style>.c { color: red }</style>
  <div>  Second   block </div>
</body></html>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Headline")
	assert.Contains(t, text, "First paragraph.")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "tracker")
	assert.NotContains(t, text, "color: red")
}

func TestHTMLToText_EmptyDocument(t *testing.T) {
	text, err := HTMLToText("")
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestHTMLToText_PlainFragment(t *testing.T) {
	text, err := HTMLToText("just some text")
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, "just some text"))
}
