package detector

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/finprobe/finprobe/fetcher"
	"github.com/finprobe/finprobe/models"
)

type stubFetcher struct {
	result *fetcher.Result
	err    error
	calls  int
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (*fetcher.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestAnalyzeWebsite_Proactive(t *testing.T) {
	stub := &stubFetcher{result: &fetcher.Result{
		Text:   "we offer financing options and you can apply now for credit approval",
		Method: models.FetchMethodSimple,
		Title:  "Dealer Site",
	}}

	report, _, err := New(stub).AnalyzeWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("AnalyzeWebsite failed: %v", err)
	}

	if report.Classification != models.ClassificationProactive {
		t.Errorf("classification = %q, want %q", report.Classification, models.ClassificationProactive)
	}
	if !report.IsDetected {
		t.Error("expected IsDetected=true")
	}
	if report.URL != "https://example.com" {
		t.Errorf("url = %q", report.URL)
	}
	if report.FetchMethod != models.FetchMethodSimple {
		t.Errorf("fetch method = %q", report.FetchMethod)
	}
	if report.ContentLength != len(stub.result.Text) {
		t.Errorf("content length = %d, want %d", report.ContentLength, len(stub.result.Text))
	}
	if report.Title != "Dealer Site" {
		t.Errorf("title = %q", report.Title)
	}
}

func TestAnalyzeWebsite_NonUser(t *testing.T) {
	stub := &stubFetcher{result: &fetcher.Result{
		Text:   "this is a regular website about cooking recipes and food",
		Method: models.FetchMethodRendered,
	}}

	report, _, err := New(stub).AnalyzeWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("AnalyzeWebsite failed: %v", err)
	}

	if report.Classification != models.ClassificationNonUser {
		t.Errorf("classification = %q, want %q", report.Classification, models.ClassificationNonUser)
	}
	if report.IsDetected {
		t.Error("expected IsDetected=false")
	}
	if report.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", report.Confidence)
	}
	if report.FetchMethod != models.FetchMethodRendered {
		t.Errorf("fetch method = %q", report.FetchMethod)
	}
}

func TestAnalyzeWebsite_ContentLengthInCharacters(t *testing.T) {
	text := strings.Repeat("金", 10) + " financing"
	stub := &stubFetcher{result: &fetcher.Result{
		Text:   text,
		Method: models.FetchMethodSimple,
	}}

	report, _, err := New(stub).AnalyzeWebsite(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("AnalyzeWebsite failed: %v", err)
	}

	want := utf8.RuneCountInString(text)
	if report.ContentLength != want {
		t.Errorf("content length = %d, want %d characters (not %d bytes)",
			report.ContentLength, want, len(text))
	}
}

func TestAnalyzeWebsite_FetchErrorAbortsPipeline(t *testing.T) {
	wantErr := models.NewFetchError(models.ErrCodeBlocked, "access blocked", nil)
	stub := &stubFetcher{err: wantErr}

	report, _, err := New(stub).AnalyzeWebsite(context.Background(), "https://example.com")
	if report != nil {
		t.Errorf("expected nil report on fetch error, got %+v", report)
	}

	var fetchErr *models.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *models.FetchError, got %v", err)
	}
	if fetchErr.Code != models.ErrCodeBlocked {
		t.Errorf("error kind = %q, want %q (kind must survive propagation)", fetchErr.Code, models.ErrCodeBlocked)
	}
}
