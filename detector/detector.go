// Package detector wires the fetch and analysis stages into the single
// website-classification operation and assembles the final report.
package detector

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/finprobe/finprobe/analyzer"
	"github.com/finprobe/finprobe/fetcher"
	"github.com/finprobe/finprobe/models"
)

// PageFetcher retrieves the visible text of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*fetcher.Result, error)
}

// Detector runs the fetch-then-analyze pipeline. Stateless apart from the
// injected fetcher; safe for concurrent use.
type Detector struct {
	fetcher PageFetcher
}

// New creates a Detector using the given fetcher.
func New(f PageFetcher) *Detector {
	return &Detector{fetcher: f}
}

// AnalyzeWebsite fetches the page at url, classifies its text, and returns
// the assembled report with per-stage timings. Fetch errors abort the
// pipeline before analysis: the analyzer never runs on partial or absent
// content.
func (d *Detector) AnalyzeWebsite(ctx context.Context, url string) (*models.AnalysisReport, models.TimingInfo, error) {
	var timing models.TimingInfo

	fetchStart := time.Now()
	fetchRes, err := d.fetcher.Fetch(ctx, url)
	timing.FetchMs = time.Since(fetchStart).Milliseconds()
	if err != nil {
		return nil, timing, err
	}

	analysisStart := time.Now()
	analysis := analyzer.Analyze(fetchRes.Text)
	timing.AnalysisMs = time.Since(analysisStart).Milliseconds()

	slog.Debug("analysis complete",
		"url", url,
		"method", fetchRes.Method,
		"detected", analysis.IsDetected,
		"confidence", analysis.Confidence,
		"matches", len(analysis.Matches),
	)

	return assembleReport(url, fetchRes, analysis), timing, nil
}

// assembleReport combines fetch metadata with the analysis outcome.
func assembleReport(url string, fetchRes *fetcher.Result, analysis models.AnalysisResult) *models.AnalysisReport {
	classification := models.ClassificationNonUser
	if analysis.IsDetected {
		classification = models.ClassificationProactive
	}

	return &models.AnalysisReport{
		URL:            url,
		Classification: classification,
		AnalysisResult: analysis,
		FetchMethod:    fetchRes.Method,
		ContentLength:  utf8.RuneCountInString(fetchRes.Text),
		Title:          fetchRes.Title,
	}
}
