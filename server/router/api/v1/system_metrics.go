package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/fastdatetime/internal/observability"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalCalls   int64                                       `json:"total_calls"`
	ErrorCount   int64                                       `json:"error_count"`
	SuccessRate  float64                                     `json:"success_rate"`
	AvgLatencyUs int64                                       `json:"avg_latency_us"`
	Ops          map[string]*observability.OpMetricsSnapshot `json:"ops"`
	FormatCache  FormatCacheStats                            `json:"format_cache"`
	ZoneMode     string                                      `json:"zone_resolution"`
}

// FormatCacheStats reports the compiled-format cache.
type FormatCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Size   int   `json:"size"`
}

// GetMetricsOverview returns the system metrics overview
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snap := s.Metrics.Snapshot()

	var totalUs int64
	for _, op := range snap.Ops {
		totalUs += op.TotalDurationUs
	}
	var avg int64
	if snap.CallTotal > 0 {
		avg = totalUs / snap.CallTotal
	}

	hits, misses, size := s.Parser.CacheStats()
	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalCalls:   snap.CallTotal,
		ErrorCount:   snap.CallFailed,
		SuccessRate:  snap.SuccessRate(),
		AvgLatencyUs: avg,
		Ops:          snap.Ops,
		FormatCache:  FormatCacheStats{Hits: hits, Misses: misses, Size: size},
		ZoneMode:     s.Parser.Resolver().Mode().String(),
	})
}
