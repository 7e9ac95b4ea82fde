package models

// Fetch method tags reported in AnalysisReport.FetchMethod.
const (
	FetchMethodSimple   = "simple"
	FetchMethodRendered = "rendered"
)

// Classification labels derived from AnalysisResult.IsDetected.
const (
	ClassificationProactive = "Proactive"
	ClassificationNonUser   = "Non User"
)

// Match records one keyword or pattern that occurred at least once in the
// analyzed text. Entries with zero occurrences produce no Match.
type Match struct {
	// Keyword is the matched keyword, or "financial_pattern" for regex matches.
	Keyword string `json:"keyword"`

	// Count is the number of non-overlapping occurrences. Always >= 1.
	Count int `json:"count"`

	// HighConfidence marks keywords that alone strongly imply financing
	// intent. Pattern matches are always high-confidence.
	HighConfidence bool `json:"high_confidence"`

	// Examples holds up to 3 literal matched substrings. Patterns only.
	Examples []string `json:"examples,omitempty"`
}

// AnalysisResult is the output of the content analyzer.
type AnalysisResult struct {
	// IsDetected is true iff matches are non-empty AND (at least one
	// high-confidence occurrence exists OR >= 3 distinct entries matched).
	IsDetected bool `json:"is_detected"`

	// Confidence is the accumulated score, clamped to [0, 1] and rounded
	// to 3 decimal places.
	Confidence float64 `json:"confidence"`

	// Matches is sorted by Count descending; ties keep configuration order.
	Matches []Match `json:"matches"`

	// TotalMatches is the sum of Count across all matches.
	TotalMatches int `json:"total_matches"`

	// HighConfidenceMatches is the total occurrence count of high-confidence
	// keywords and patterns.
	HighConfidenceMatches int `json:"high_confidence_matches"`
}

// AnalysisReport is the final classification record for one URL:
// analyzer output plus fetch metadata.
type AnalysisReport struct {
	// URL is the original requested URL.
	URL string `json:"url"`

	// Classification is "Proactive" when IsDetected, else "Non User".
	Classification string `json:"classification"`

	AnalysisResult

	// FetchMethod indicates how the text was obtained: "simple" or "rendered".
	FetchMethod string `json:"fetch_method"`

	// ContentLength is the length of the extracted text in characters.
	ContentLength int `json:"content_length"`

	// Title is the page title, when one could be extracted.
	Title string `json:"title,omitempty"`
}
