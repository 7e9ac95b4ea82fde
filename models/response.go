package models

// AnalyzeResponse is the response for POST /api/v1/analyze.
type AnalyzeResponse struct {
	// Success indicates whether the analysis completed without errors.
	Success bool `json:"success"`

	// Report holds the classification record. Nil when Success is false.
	Report *AnalysisReport `json:"report,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// FetchMs is the time spent fetching (and possibly rendering) the page.
	FetchMs int64 `json:"fetch_ms"`

	// AnalysisMs is the time spent scanning the extracted text.
	AnalysisMs int64 `json:"analysis_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"` // "healthy" or "degraded"
	Uptime        string `json:"uptime"`
	ActiveRenders int    `json:"active_renders"`
	MaxRenders    int    `json:"max_renders"`
	Version       string `json:"version"`
}
