package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	tls "github.com/refraction-networking/utls"

	"github.com/finprobe/finprobe/config"
	"github.com/finprobe/finprobe/models"
)

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		// Spec generation only fails on an incompatible utls version; the
		// dialer falls back to HelloChrome_Auto in that case.
		return
	}
	// Replace h2 with http/1.1 only in the ALPN extension so the server
	// never negotiates HTTP/2 (which Go's http.Transport cannot handle
	// over a utls connection).
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// newHTTPClient builds the simple-fetch client: Chrome TLS fingerprint and a
// bounded redirect chain.
func newHTTPClient(cfg config.FetcherConfig) *http.Client {
	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	maxRedirects := cfg.MaxRedirects
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.SimpleTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	if len(chromeH1Spec.Extensions) == 0 {
		tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloChrome_Auto)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}

	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetcher: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// simpleFetch issues a browser-like GET and extracts the visible text.
func (f *Fetcher) simpleFetch(ctx context.Context, targetURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.SimpleTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeNetwork, "build request", err)
	}

	// Simulate browser-like headers.
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, models.NewFetchError(models.ErrCodeBlocked,
			"access blocked by target site (403)", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, models.NewFetchError(models.ErrCodeNotFound,
			"page not found (404)", nil)
	case resp.StatusCode >= 400:
		return nil, models.NewFetchError(models.ErrCodeNetwork,
			fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	text, err := extractVisibleText(body)
	if err != nil {
		return nil, models.NewFetchError(models.ErrCodeNetwork, "parse HTML", err)
	}

	return &Result{
		Text:   text,
		Method: models.FetchMethodSimple,
		Title:  extractTitle(body),
	}, nil
}

// classifyTransportError maps raw transport errors onto the fetch error
// taxonomy: DNS/connection failures are "unreachable", deadline expiry is
// "timeout", everything else is generic "network".
func classifyTransportError(err error) *models.FetchError {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewFetchError(models.ErrCodeTimeout, "fetch timed out", err)
	case errors.As(err, &dnsErr):
		return models.NewFetchError(models.ErrCodeUnreachable, "DNS resolution failed", err)
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return models.NewFetchError(models.ErrCodeUnreachable, "connection failed", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewFetchError(models.ErrCodeTimeout, "fetch timed out", err)
	}
	return models.NewFetchError(models.ErrCodeNetwork, "request failed", err)
}
