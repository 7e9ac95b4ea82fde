package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetcher   FetcherConfig
	Browser   BrowserConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetcherConfig controls the two-tier fetch pipeline.
type FetcherConfig struct {
	// SimpleTimeout is the deadline for the plain HTTP fetch.
	SimpleTimeout time.Duration // default: 10s

	// RenderTimeout is the deadline for the headless-browser fetch.
	RenderTimeout time.Duration // default: 15s

	// SettleDelay is the fixed wait after navigation settles, giving
	// deferred scripts a chance to inject content.
	SettleDelay time.Duration // default: 2s

	// MinTextLength is the extracted-text length, in characters, below which
	// the page is treated as JavaScript-rendered and the rendered fetch
	// kicks in.
	MinTextLength int // default: 1000

	// MaxRedirects is the redirect cap for the simple fetch.
	MaxRedirects int // default: 5

	// MaxBodyBytes caps the response body read during the simple fetch.
	MaxBodyBytes int64 // default: 10 MB
}

// BrowserConfig controls the per-request Rod browser instances.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Stealth enables anti-bot-detection evasions on rendered fetches.
	Stealth bool // default: false

	// MaxConcurrentRenders bounds concurrently running browser instances.
	MaxConcurrentRenders int // default: 4
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("FINPROBE_HOST", "0.0.0.0"),
			Port: envIntOr("FINPROBE_PORT", 8080),
			Mode: envOr("FINPROBE_MODE", "release"),
		},
		Fetcher: FetcherConfig{
			SimpleTimeout: envDurationOr("FINPROBE_SIMPLE_TIMEOUT", 10*time.Second),
			RenderTimeout: envDurationOr("FINPROBE_RENDER_TIMEOUT", 15*time.Second),
			SettleDelay:   envDurationOr("FINPROBE_SETTLE_DELAY", 2*time.Second),
			MinTextLength: envIntOr("FINPROBE_MIN_TEXT_LENGTH", 1000),
			MaxRedirects:  envIntOr("FINPROBE_MAX_REDIRECTS", 5),
			MaxBodyBytes:  int64(envIntOr("FINPROBE_MAX_BODY_BYTES", 10<<20)),
		},
		Browser: BrowserConfig{
			Headless:             envBoolOr("FINPROBE_HEADLESS", true),
			NoSandbox:            envBoolOr("FINPROBE_NO_SANDBOX", false),
			BrowserBin:           os.Getenv("FINPROBE_BROWSER_BIN"),
			Stealth:              envBoolOr("FINPROBE_STEALTH", false),
			MaxConcurrentRenders: envIntOr("FINPROBE_MAX_RENDERS", 4),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("FINPROBE_AUTH_ENABLED", false),
			APIKeys: envSliceOr("FINPROBE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("FINPROBE_RATE_RPS", 5.0),
			Burst:             envIntOr("FINPROBE_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("FINPROBE_LOG_LEVEL", "info"),
			Format: envOr("FINPROBE_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
