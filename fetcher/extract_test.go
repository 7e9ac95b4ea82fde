package fetcher

import (
	"strings"
	"testing"
)

func TestExtractVisibleText(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		want        string
		wantAbsent  []string
	}{
		{
			name: "basic body text",
			html: `<html><body><p>Hello World</p></body></html>`,
			want: "hello world",
		},
		{
			name: "script and style stripped",
			html: `<html><head><style>.x{}</style></head><body><script>var a=1;</script><p>Visible</p></body></html>`,
			want: "visible",
			wantAbsent: []string{"var a=1", ".x{}"},
		},
		{
			name: "noscript stripped",
			html: `<html><body><noscript>Enable JS</noscript>Content</body></html>`,
			want: "content",
			wantAbsent: []string{"enable js"},
		},
		{
			name: "no body wrapper",
			html: `<p>Fragment Text</p>`,
			want: "fragment text",
		},
		{
			name: "empty document",
			html: ``,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractVisibleText([]byte(tt.html))
			if err != nil {
				t.Fatalf("extractVisibleText failed: %v", err)
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("stripped content leaked: %q in %q", absent, got)
				}
			}
			if strings.TrimSpace(got) != tt.want && !strings.Contains(got, tt.want) {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if got != strings.ToLower(got) {
				t.Error("text not lowercased")
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"simple", `<html><head><title>My Page</title></head><body></body></html>`, "My Page"},
		{"whitespace trimmed", `<title>  Spaced  </title>`, "Spaced"},
		{"no title", `<html><body>no title here</body></html>`, ""},
		{"empty title", `<title></title>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle([]byte(tt.html)); got != tt.want {
				t.Errorf("extractTitle = %q, want %q", got, tt.want)
			}
		})
	}
}
