package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finprobe/finprobe/models"
)

// WebsiteAnalyzer is the pipeline the analyze handler delegates to.
type WebsiteAnalyzer interface {
	AnalyzeWebsite(ctx context.Context, url string) (*models.AnalysisReport, models.TimingInfo, error)
}

// Analyze returns a handler for POST /api/v1/analyze.
//
// Orchestration flow:
//  1. Parse & validate request (URL presence/format).
//  2. Detector.AnalyzeWebsite → fetch + classify  (stage timings come back with it)
//  3. Fill TotalMs, return 200.
func Analyze(d WebsiteAnalyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		// ── 1. Parse request ────────────────────────────────────────
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.AnalyzeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		// ── 2. Fetch + analyze ──────────────────────────────────────
		report, timing, err := d.AnalyzeWebsite(c.Request.Context(), req.URL)
		timing.TotalMs = time.Since(totalStart).Milliseconds()

		if err != nil {
			respondError(c, err, timing)
			return
		}

		// ── 3. Respond ──────────────────────────────────────────────
		c.JSON(http.StatusOK, models.AnalyzeResponse{
			Success: true,
			Report:  report,
			Timing:  timing,
		})
	}
}

// respondError maps a FetchError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	fetchErr, ok := err.(*models.FetchError)
	if !ok {
		fetchErr = models.NewFetchError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(fetchErr), models.AnalyzeResponse{
		Success: false,
		Error:   fetchErr.ToDetail(),
		Timing:  timing,
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.FetchError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeUnreachable,
		models.ErrCodeBlocked,
		models.ErrCodeNotFound,
		models.ErrCodeNetwork,
		models.ErrCodeRenderLaunch,
		models.ErrCodeRenderEval:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
