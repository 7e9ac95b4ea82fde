package models

// AnalyzeRequest is the payload for POST /api/v1/analyze.
type AnalyzeRequest struct {
	// URL is the target page to analyze. Required.
	URL string `json:"url" binding:"required,url"`
}
