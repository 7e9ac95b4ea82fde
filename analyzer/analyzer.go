// Package analyzer scans extracted page text for financing/credit promotion
// signals using a fixed keyword vocabulary and structural regex patterns.
package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/finprobe/finprobe/models"
)

// Scoring weights per occurrence.
const (
	highConfidenceWeight = 0.3
	standardWeight       = 0.1
	patternWeight        = 0.25
)

const (
	// patternKeyword labels all pattern matches in the result.
	patternKeyword = "financial_pattern"

	// maxPatternExamples caps the literal substrings kept per pattern.
	maxPatternExamples = 3

	// minDistinctMatches is the distinct-entry count that triggers detection
	// without any high-confidence occurrence. Distinct entries, not total
	// occurrences.
	minDistinctMatches = 3
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Analyze classifies the given text. Pure and deterministic: same input,
// same result, no I/O.
//
// Scoring: each high-confidence keyword occurrence adds 0.3, each standard
// keyword occurrence 0.1, each pattern occurrence 0.25. The sum is clamped
// to 1.0 and rounded to 3 decimal places. Detection requires at least one
// match AND (a high-confidence occurrence OR >= 3 distinct matched entries).
func Analyze(text string) models.AnalysisResult {
	normalized := strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))

	matches := []models.Match{}
	var (
		confidence     float64
		totalMatches   int
		highConfidence int
	)

	// Keywords first, in configuration order.
	for i, kw := range keywords {
		count := len(keywordPatterns[i].FindAllStringIndex(normalized, -1))
		if count == 0 {
			continue
		}
		matches = append(matches, models.Match{
			Keyword:        kw.Keyword,
			Count:          count,
			HighConfidence: kw.HighConfidence,
		})
		totalMatches += count
		if kw.HighConfidence {
			confidence += highConfidenceWeight * float64(count)
			highConfidence += count
		} else {
			confidence += standardWeight * float64(count)
		}
	}

	// Structural patterns after keywords.
	for _, p := range patterns {
		found := p.FindAllString(normalized, -1)
		if len(found) == 0 {
			continue
		}
		examples := found
		if len(examples) > maxPatternExamples {
			examples = examples[:maxPatternExamples]
		}
		matches = append(matches, models.Match{
			Keyword:        patternKeyword,
			Count:          len(found),
			HighConfidence: true,
			Examples:       examples,
		})
		totalMatches += len(found)
		highConfidence += len(found)
		confidence += patternWeight * float64(len(found))
	}

	if confidence > 1.0 {
		confidence = 1.0
	}

	// Stable sort keeps encounter order on equal counts.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Count > matches[j].Count
	})

	return models.AnalysisResult{
		IsDetected:            len(matches) > 0 && (highConfidence > 0 || len(matches) >= minDistinctMatches),
		Confidence:            math.Round(confidence*1000) / 1000,
		Matches:               matches,
		TotalMatches:          totalMatches,
		HighConfidenceMatches: highConfidence,
	}
}
