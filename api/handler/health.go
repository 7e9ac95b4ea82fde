package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finprobe/finprobe/fetcher"
	"github.com/finprobe/finprobe/models"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports rendering activity and degrades status when all render slots are
// in use.
func Health(f *fetcher.Fetcher, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := f.Stats()

		status := "healthy"
		if stats.MaxRenders > 0 && stats.ActiveRenders >= stats.MaxRenders {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			ActiveRenders: stats.ActiveRenders,
			MaxRenders:    stats.MaxRenders,
			Version:       "0.1.0",
		})
	}
}
