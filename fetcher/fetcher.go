// Package fetcher retrieves page text with a two-tier strategy: a cheap
// plain-HTTP fetch first, escalating to a headless-browser fetch when the
// extracted text looks too sparse to be the real page content.
package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/sync/semaphore"

	"github.com/finprobe/finprobe/config"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Result is the outcome of a successful page fetch.
type Result struct {
	// Text is the lowercased visible text with script/style/noscript stripped.
	Text string

	// Method is "simple" or "rendered".
	Method string

	// Title is the page title, when one could be extracted.
	Title string
}

// renderFunc performs the browser-rendered fetch. Held as a field so tests
// can stub the browser out.
type renderFunc func(ctx context.Context, url string) (*Result, error)

// Fetcher implements the two-tier fetch. Safe for concurrent use; rendered
// fetches are bounded by a weighted semaphore so repeated escalations cannot
// exhaust the host with browser processes.
type Fetcher struct {
	cfg        config.FetcherConfig
	browserCfg config.BrowserConfig

	client        *http.Client
	renderSem     *semaphore.Weighted
	activeRenders atomic.Int32
	render        renderFunc
}

// Stats is a snapshot of rendering activity, reported by the health endpoint.
type Stats struct {
	ActiveRenders int
	MaxRenders    int
}

// New creates a Fetcher. No browser is launched here: each rendered fetch
// spawns and tears down its own isolated instance.
func New(cfg config.FetcherConfig, browserCfg config.BrowserConfig) *Fetcher {
	f := &Fetcher{
		cfg:        cfg,
		browserCfg: browserCfg,
		client:     newHTTPClient(cfg),
		renderSem:  semaphore.NewWeighted(int64(browserCfg.MaxConcurrentRenders)),
	}
	f.render = f.renderedFetch
	return f
}

// Fetch retrieves the visible text of the page at url.
//
// Step 1 is a plain HTTP fetch. If it succeeds but yields less than
// MinTextLength characters, the page is likely JavaScript-rendered and
// step 2 (headless browser) runs. Fetch errors abort immediately: the
// escalation is a strategy choice for sparse content, never a retry of a
// failed request.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Result, error) {
	result, err := f.simpleFetch(ctx, url)
	if err != nil {
		return nil, err
	}

	// Character count, not byte count: multi-byte pages must not look
	// longer than they are.
	textLen := utf8.RuneCountInString(result.Text)
	if textLen >= f.cfg.MinTextLength {
		return result, nil
	}

	slog.Debug("sparse text after simple fetch, escalating to rendered fetch",
		"url", url, "length", textLen, "threshold", f.cfg.MinTextLength)

	rendered, err := f.render(ctx, url)
	if err != nil {
		return nil, err
	}
	if rendered.Title == "" {
		rendered.Title = result.Title
	}
	return rendered, nil
}

// Stats returns a snapshot of current rendering activity.
func (f *Fetcher) Stats() Stats {
	return Stats{
		ActiveRenders: int(f.activeRenders.Load()),
		MaxRenders:    f.browserCfg.MaxConcurrentRenders,
	}
}
