package analyzer

import "regexp"

// KeywordEntry is one entry in the static financing vocabulary.
type KeywordEntry struct {
	// Keyword is matched as a case-insensitive whole word or phrase.
	Keyword string

	// HighConfidence marks terms whose presence alone strongly implies
	// financing intent. They weigh 3x a standard keyword.
	HighConfidence bool
}

// keywords is the read-only financing-promotion vocabulary. Order matters:
// the analyzer enumerates entries in this order, and ties in the result are
// resolved by encounter order.
var keywords = []KeywordEntry{
	// High-confidence terms.
	{Keyword: "financing", HighConfidence: true},
	{Keyword: "apply now", HighConfidence: true},
	{Keyword: "credit approval", HighConfidence: true},
	{Keyword: "pre-approved", HighConfidence: true},
	{Keyword: "no credit check", HighConfidence: true},
	{Keyword: "instant approval", HighConfidence: true},
	{Keyword: "guaranteed approval", HighConfidence: true},
	{Keyword: "buy now pay later", HighConfidence: true},
	{Keyword: "bad credit ok", HighConfidence: true},

	// Standard terms.
	{Keyword: "credit", HighConfidence: false},
	{Keyword: "loan", HighConfidence: false},
	{Keyword: "lease", HighConfidence: false},
	{Keyword: "apr", HighConfidence: false},
	{Keyword: "monthly payment", HighConfidence: false},
	{Keyword: "down payment", HighConfidence: false},
	{Keyword: "payment plan", HighConfidence: false},
	{Keyword: "installment", HighConfidence: false},
	{Keyword: "flexible payments", HighConfidence: false},
	{Keyword: "low monthly", HighConfidence: false},
	{Keyword: "trade-in", HighConfidence: false},
	{Keyword: "special offer", HighConfidence: false},
}

// patterns are structural financing cues: phrasing shapes rather than fixed
// terms. Always treated as high-confidence.
var patterns = []*regexp.Regexp{
	// Monthly payment amounts: "$99 per month", "$199/mo".
	regexp.MustCompile(`(?i)\$\s?\d[\d,]*(?:\.\d+)?\s?(?:/|per\s)\s?mo(?:nth)?s?\b`),

	// APR percentages: "0% APR", "3.9 % apr".
	regexp.MustCompile(`(?i)\d+(?:\.\d+)?\s?%\s?apr\b`),

	// Teaser price floors: "as low as $49".
	regexp.MustCompile(`(?i)as low as\s?\$\s?\d[\d,]*`),

	// Zero-down offers: "no money down", "$0 down".
	regexp.MustCompile(`(?i)(?:no money|\$\s?0)\s?down\b`),
}

// keywordPatterns holds the compiled whole-word matcher for each keyword,
// index-aligned with keywords. Literals are escaped before embedding so
// metacharacters in a keyword cannot change the match semantics.
var keywordPatterns = func() []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		compiled[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw.Keyword) + `\b`)
	}
	return compiled
}()
