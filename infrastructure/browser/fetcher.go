// Package browser implements the page fetcher port: a content-type probe,
// a throwaway headless-browser render and an HTML-to-text conversion.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/newswaters/newswaters/domain/item"
)

// RenderFunc turns a URL into its serialized DOM. The default launches a
// fresh headless browser per page; tests substitute it.
type RenderFunc func(ctx context.Context, url string) (string, error)

// Fetcher implements service.PageFetcher.
type Fetcher struct {
	httpClient *http.Client
	render     RenderFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the probe client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) { f.httpClient = hc }
}

// WithRender overrides the browser render step.
func WithRender(render RenderFunc) Option {
	return func(f *Fetcher) { f.render = render }
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		render:     renderWithChrome,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchURL probes the content type, renders the page and converts it to
// plain text. Per-page failures are folded into the Skipped and Canceled
// variants; the method itself never fails.
func (f *Fetcher) FetchURL(ctx context.Context, url string) item.ItemURL {
	contentType, err := f.probeContentType(ctx, url)
	if err != nil {
		return item.CanceledItemURL(fmt.Sprintf("probe %s: %s", url, err))
	}
	if strings.Contains(strings.ToLower(contentType), "pdf") {
		return item.SkippedItemURL("Skipped: " + contentType)
	}

	html, err := f.render(ctx, url)
	if err != nil {
		return item.CanceledItemURL(fmt.Sprintf("render %s: %s", url, err))
	}

	text, err := HTMLToText(html)
	if err != nil {
		return item.CanceledItemURL(fmt.Sprintf("convert %s: %s", url, err))
	}

	return item.FinishedItemURL(html, text)
}

func (f *Fetcher) probeContentType(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	// Only the headers matter; the page body comes from the browser.
	_ = resp.Body.Close()

	return resp.Header.Get("Content-Type"), nil
}

// renderWithChrome launches a fresh headless browser, navigates to url
// and captures the DOM serialization. The browser is never kept warm;
// long-lived instances leak state across pages.
func renderWithChrome(ctx context.Context, url string) (html string, err error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("incognito", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("single-process", true),
		chromedp.Flag("no-zygote", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	err = chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
