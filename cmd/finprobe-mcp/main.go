// finprobe-mcp exposes the analysis API as an MCP stdio server so agent
// tooling can classify websites without speaking HTTP directly.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// analyzeRequest mirrors the finprobe API request model.
type analyzeRequest struct {
	URL string `json:"url"`
}

// analyzeResponse mirrors the finprobe API response model.
type analyzeResponse struct {
	Success bool `json:"success"`
	Report  *struct {
		URL            string  `json:"url"`
		Classification string  `json:"classification"`
		IsDetected     bool    `json:"is_detected"`
		Confidence     float64 `json:"confidence"`
		Matches        []struct {
			Keyword        string   `json:"keyword"`
			Count          int      `json:"count"`
			HighConfidence bool     `json:"high_confidence"`
			Examples       []string `json:"examples"`
		} `json:"matches"`
		TotalMatches  int    `json:"total_matches"`
		FetchMethod   string `json:"fetch_method"`
		ContentLength int    `json:"content_length"`
		Title         string `json:"title"`
	} `json:"report"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("FINPROBE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FINPROBE_API_KEY")

	s := server.NewMCPServer(
		"finprobe",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_website",
		mcp.WithDescription("Fetch a web page (rendering JavaScript when needed) and classify whether it proactively promotes financing or credit offers. Returns the classification, confidence score, and matched signals."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to analyze"),
		),
	)

	s.AddTool(analyzeTool, handleAnalyzeWebsite(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleAnalyzeWebsite(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := json.Marshal(analyzeRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/analyze", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var analyzeResp analyzeResponse
		if err := json.Unmarshal(respBody, &analyzeResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !analyzeResp.Success || analyzeResp.Report == nil {
			errMsg := "analysis failed"
			if analyzeResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", analyzeResp.Error.Code, analyzeResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatReport(&analyzeResp)), nil
	}
}

// formatReport renders the report as readable text for the tool result.
func formatReport(resp *analyzeResponse) string {
	r := resp.Report

	var sb strings.Builder
	fmt.Fprintf(&sb, "URL: %s\n", r.URL)
	if r.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", r.Title)
	}
	fmt.Fprintf(&sb, "Classification: %s\n", r.Classification)
	fmt.Fprintf(&sb, "Confidence: %.3f\n", r.Confidence)
	fmt.Fprintf(&sb, "Fetch method: %s (%d chars of text)\n", r.FetchMethod, r.ContentLength)

	if len(r.Matches) > 0 {
		fmt.Fprintf(&sb, "\nMatched signals (%d occurrences total):\n", r.TotalMatches)
		for _, m := range r.Matches {
			marker := ""
			if m.HighConfidence {
				marker = " [high confidence]"
			}
			fmt.Fprintf(&sb, "  - %s x%d%s", m.Keyword, m.Count, marker)
			if len(m.Examples) > 0 {
				fmt.Fprintf(&sb, " (e.g. %q)", m.Examples[0])
			}
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("\nNo financing signals found.\n")
	}

	return sb.String()
}
