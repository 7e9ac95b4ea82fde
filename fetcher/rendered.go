package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/finprobe/finprobe/models"
)

// renderedExtractJS strips non-visible elements in-page and reads the
// rendered text. The page is discarded afterwards, so mutating the live DOM
// is fine.
const renderedExtractJS = `() => {
	for (const el of document.querySelectorAll('script, style, noscript')) {
		el.remove();
	}
	const root = document.body || document.documentElement;
	return (root ? root.innerText : '').toLowerCase();
}`

// renderedFetch retrieves the page with an isolated headless browser so
// JavaScript-generated content is captured.
//
// Lifecycle (numbered steps match the inline comments):
//
//  1. Render slot      – bound concurrent browser instances
//  2. Timeout guard    – hard deadline on the entire render
//  3. Launch browser   – fresh instance per invocation
//  4. DEFER: teardown  – browser + launcher cleanup on every exit path
//  5. Page setup       – user-agent, headers, optional stealth (before navigation!)
//  6. Idle listener    – registered before Navigate so no request is missed
//  7. Navigate + wait  – network idle, then a fixed settle delay
//  8. Extract          – in-page JS reads the rendered visible text
func (f *Fetcher) renderedFetch(ctx context.Context, targetURL string) (*Result, error) {
	// ── 1. Render slot ───────────────────────────────────────────────
	if err := f.renderSem.Acquire(ctx, 1); err != nil {
		return nil, models.NewFetchError(models.ErrCodeTimeout,
			"waiting for a render slot", err)
	}
	defer f.renderSem.Release(1)

	f.activeRenders.Add(1)
	defer f.activeRenders.Add(-1)

	// ── 2. Timeout guard ─────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(ctx, f.cfg.RenderTimeout)
	defer cancel()

	// ── 3. Launch browser ────────────────────────────────────────────
	l := launcher.New().
		Headless(f.browserCfg.Headless).
		NoSandbox(f.browserCfg.NoSandbox)
	if f.browserCfg.BrowserBin != "" {
		l = l.Bin(f.browserCfg.BrowserBin)
	}
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeRenderLaunch,
			"failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewFetchError(models.ErrCodeRenderLaunch,
			"failed to connect to browser", err)
	}

	// ── 4. CRITICAL DEFER: kill the browser process on every exit path,
	// including error returns below. Leaked Chrome processes under repeated
	// failures are the main resource hazard here.
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			slog.Warn("rendered fetch: browser close failed", "error", closeErr)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeRenderLaunch,
			"failed to open page", err)
	}

	p := page.Context(ctx)

	// ── 5. Page setup (must precede navigation) ──────────────────────
	if err := p.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: chromeUA}); err != nil {
		slog.Warn("rendered fetch: failed to set user-agent", "error", err)
	}
	if f.browserCfg.Stealth {
		if _, evalErr := p.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("rendered fetch: stealth injection failed, proceeding without",
				"error", evalErr)
		}
	}
	_ = proto.NetworkSetExtraHTTPHeaders{
		Headers: toHeadersMap(map[string]string{
			"Accept-Language": "en-US,en;q=0.9",
		}),
	}.Call(p)

	// ── 6. Idle listener before navigation ───────────────────────────
	waitIdle := p.WaitRequestIdle(300*time.Millisecond, nil, nil, nil)

	// ── 7. Navigate + wait ───────────────────────────────────────────
	if err := p.Navigate(targetURL); err != nil {
		return nil, categorizeRenderError(err, "navigation to target URL failed")
	}
	waitIdle()

	// Fixed settle delay for content injected after network idle.
	select {
	case <-ctx.Done():
		return nil, models.NewFetchError(models.ErrCodeTimeout,
			"render timed out before settling", ctx.Err())
	case <-time.After(f.cfg.SettleDelay):
	}

	// ── 8. Extract ───────────────────────────────────────────────────
	res, err := p.Eval(renderedExtractJS)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewFetchError(models.ErrCodeTimeout,
				"render timed out during extraction", err)
		}
		return nil, models.NewFetchError(models.ErrCodeRenderEval,
			"in-page text extraction failed", err)
	}

	title := evalStringOrEmpty(p, `() => document.title`)

	return &Result{
		Text:   strings.TrimSpace(res.Value.Str()),
		Method: models.FetchMethodRendered,
		Title:  title,
	}, nil
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (used for optional metadata only).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeRenderError maps browser navigation failures onto the fetch
// error taxonomy.
func categorizeRenderError(err error, msg string) *models.FetchError {
	errStr := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return models.NewFetchError(models.ErrCodeTimeout, msg, err)
	case strings.Contains(errStr, "ERR_NAME_NOT_RESOLVED"),
		strings.Contains(errStr, "ERR_CONNECTION_REFUSED"),
		strings.Contains(errStr, "ERR_ADDRESS_UNREACHABLE"):
		return models.NewFetchError(models.ErrCodeUnreachable, msg, err)
	default:
		return models.NewFetchError(models.ErrCodeNetwork, msg, err)
	}
}
