package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/finprobe/finprobe/config"
	"github.com/finprobe/finprobe/models"
)

func testConfig() config.FetcherConfig {
	return config.FetcherConfig{
		SimpleTimeout: 5 * time.Second,
		RenderTimeout: 5 * time.Second,
		SettleDelay:   10 * time.Millisecond,
		MinTextLength: 1000,
		MaxRedirects:  5,
		MaxBodyBytes:  10 << 20,
	}
}

func newTestFetcher() *Fetcher {
	return New(testConfig(), config.BrowserConfig{MaxConcurrentRenders: 2})
}

// longHTML builds a page whose visible text comfortably exceeds the
// escalation threshold.
func longHTML() string {
	return "<html><head><title>Long Page</title></head><body><p>" +
		strings.Repeat("plenty of visible content here. ", 60) +
		"</p></body></html>"
}

func TestFetch_SimpleWhenTextLongEnough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, longHTML())
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.render = func(ctx context.Context, url string) (*Result, error) {
		t.Fatal("rendered fetch must not run for content-rich pages")
		return nil, nil
	}

	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Method != models.FetchMethodSimple {
		t.Errorf("method = %q, want %q", res.Method, models.FetchMethodSimple)
	}
	if len(res.Text) < 1000 {
		t.Errorf("expected >= 1000 chars of text, got %d", len(res.Text))
	}
	if res.Title != "Long Page" {
		t.Errorf("title = %q, want %q", res.Title, "Long Page")
	}
}

func TestFetch_EscalatesWhenSparse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>SPA Shell</title></head><body><div id="root"></div></body></html>`)
	}))
	defer srv.Close()

	f := newTestFetcher()
	renderCalls := 0
	f.render = func(ctx context.Context, url string) (*Result, error) {
		renderCalls++
		return &Result{Text: "rendered financing content", Method: models.FetchMethodRendered}, nil
	}

	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if renderCalls != 1 {
		t.Errorf("rendered fetch invoked %d times, want 1", renderCalls)
	}
	if res.Method != models.FetchMethodRendered {
		t.Errorf("method = %q, want %q", res.Method, models.FetchMethodRendered)
	}
	// Simple-fetch title survives when the render produced none.
	if res.Title != "SPA Shell" {
		t.Errorf("title = %q, want fallback %q", res.Title, "SPA Shell")
	}
}

func TestFetch_EscalatesOnSparseMultibyteText(t *testing.T) {
	// 500 CJK characters are 1500 bytes: under the 1000-character threshold,
	// over it in bytes. The threshold counts characters.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><title>CJK</title></head><body><p>%s</p></body></html>`,
			strings.Repeat("金", 500))
	}))
	defer srv.Close()

	f := newTestFetcher()
	renderCalls := 0
	f.render = func(ctx context.Context, url string) (*Result, error) {
		renderCalls++
		return &Result{Text: "rendered content", Method: models.FetchMethodRendered}, nil
	}

	res, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if renderCalls != 1 {
		t.Errorf("rendered fetch invoked %d times, want 1", renderCalls)
	}
	if res.Method != models.FetchMethodRendered {
		t.Errorf("method = %q, want %q", res.Method, models.FetchMethodRendered)
	}
}

func TestFetch_StatusCodeMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusForbidden, models.ErrCodeBlocked},
		{http.StatusNotFound, models.ErrCodeNotFound},
		{http.StatusInternalServerError, models.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newTestFetcher()
			f.render = func(ctx context.Context, url string) (*Result, error) {
				t.Fatal("rendered fetch must not run after a fetch error")
				return nil, nil
			}

			_, err := f.Fetch(context.Background(), srv.URL)
			var fetchErr *models.FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *models.FetchError, got %v", err)
			}
			if fetchErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", fetchErr.Code, tt.wantCode)
			}
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	f := newTestFetcher()
	_, err := f.Fetch(context.Background(), url)

	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *models.FetchError, got %v", err)
	}
	if fetchErr.Code != models.ErrCodeUnreachable {
		t.Errorf("code = %q, want %q", fetchErr.Code, models.ErrCodeUnreachable)
	}
}

func TestFetch_RenderErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>tiny</body></html>`)
	}))
	defer srv.Close()

	f := newTestFetcher()
	f.render = func(ctx context.Context, url string) (*Result, error) {
		return nil, models.NewFetchError(models.ErrCodeTimeout, "render timed out", nil)
	}

	_, err := f.Fetch(context.Background(), srv.URL)
	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *models.FetchError, got %v", err)
	}
	if fetchErr.Code != models.ErrCodeTimeout {
		t.Errorf("code = %q, want %q", fetchErr.Code, models.ErrCodeTimeout)
	}
}

func TestSimpleFetch_StripsAndLowercases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<title>Dealer</title>
			<style>body { color: red; }</style>
			<script>console.log("TRACKING");</script>
		</head><body>
			<p>FINANCING Available - Apply Now</p>
			<noscript>Please enable JavaScript</noscript>
		</body></html>`)
	}))
	defer srv.Close()

	f := newTestFetcher()
	res, err := f.simpleFetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("simpleFetch failed: %v", err)
	}

	if strings.Contains(res.Text, "tracking") || strings.Contains(res.Text, "color: red") {
		t.Errorf("script/style content leaked into text: %q", res.Text)
	}
	if strings.Contains(res.Text, "enable javascript") {
		t.Errorf("noscript content leaked into text: %q", res.Text)
	}
	if !strings.Contains(res.Text, "financing available") {
		t.Errorf("expected lowercased visible text, got %q", res.Text)
	}
	if res.Text != strings.ToLower(res.Text) {
		t.Error("text is not fully lowercased")
	}
}

func TestFetcher_Stats(t *testing.T) {
	f := newTestFetcher()
	stats := f.Stats()
	if stats.ActiveRenders != 0 {
		t.Errorf("ActiveRenders = %d, want 0", stats.ActiveRenders)
	}
	if stats.MaxRenders != 2 {
		t.Errorf("MaxRenders = %d, want 2", stats.MaxRenders)
	}
}
