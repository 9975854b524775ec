package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/errs"
	"github.com/seo-optimizer/seoscore/logging"
	"github.com/seo-optimizer/seoscore/middleware"
	"github.com/seo-optimizer/seoscore/stats"
)

// Analyzer is the part of *analyzer.Analyzer the handlers need.
type Analyzer interface {
	Analyze(ctx context.Context, raw string) (*analyzer.Report, error)
}

// MonthlyCounter exposes the current month's analysis counters.
type MonthlyCounter interface {
	GetCurrentStats() stats.MonthlyStats
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	URL string `json:"url" binding:"required"`
}

// AnalyzeResponse is a successful analysis: the report flattened next to
// the success flag.
type AnalyzeResponse struct {
	Success bool `json:"success"`
	*analyzer.Report
}

// ErrorResponse is every failed API call.
type ErrorResponse struct {
	Success     bool     `json:"success"`
	Error       string   `json:"error"`
	Kind        string   `json:"kind,omitempty"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func errorResponse(e *errs.Error) ErrorResponse {
	return ErrorResponse{
		Error:       e.Message,
		Kind:        string(e.Kind),
		Details:     e.Details,
		Suggestions: e.Suggestions,
	}
}

// Analyze handles POST /api/analyze.
func Analyze(a Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:       "A JSON body with a url field is required",
				Kind:        string(errs.KindInvalidURL),
				Details:     err.Error(),
				Suggestions: []string{`Send {"url": "https://example.com"}`},
			})
			return
		}
		c.Set(middleware.AnalyzedURLKey, req.URL)

		report, err := a.Analyze(c.Request.Context(), req.URL)
		if err != nil {
			e := errs.From(err)
			status := errs.HTTPStatusFor(e)
			slog.Warn("analysis failed",
				"request_id", logging.RequestID(c.Request.Context()),
				"url", req.URL,
				"kind", string(e.Kind),
				"status", status,
				"error", e.Error(),
			)
			c.JSON(status, errorResponse(e))
			return
		}
		c.Set(middleware.AnalyzedURLKey, report.URL)

		c.JSON(http.StatusOK, AnalyzeResponse{Success: true, Report: report})
	}
}

// Health handles GET /api/health.
func Health(version string, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": version,
			"uptime":  time.Since(started).Round(time.Second).String(),
		})
	}
}

// MonthlySummary is the current month's analysis counters.
type MonthlySummary struct {
	Month           string         `json:"month"`
	Analyses        int            `json:"analyses"`
	StaticFetches   int            `json:"staticFetches"`
	RenderedFetches int            `json:"renderedFetches"`
	Failures        int            `json:"failures"`
	FailuresByKind  map[string]int `json:"failuresByKind,omitempty"`
	AverageScore    float64        `json:"averageScore"`
}

// StatisticsResponse is the body of GET /api/statistics.
type StatisticsResponse struct {
	logging.Summary
	Month *MonthlySummary `json:"month,omitempty"`
}

// Statistics handles GET /api/statistics.
func Statistics(requests *logging.Statistics, monthly MonthlyCounter, devMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp StatisticsResponse
		if requests != nil {
			resp.Summary = requests.Summary(devMode)
		}
		if monthly != nil {
			m := monthly.GetCurrentStats()
			resp.Month = &MonthlySummary{
				Month:           time.Now().Format("2006-01"),
				Analyses:        m.Analyses,
				StaticFetches:   m.StaticFetches,
				RenderedFetches: m.RenderedFetches,
				Failures:        m.Failures,
				FailuresByKind:  m.FailuresByKind,
				AverageScore:    float64(int(m.AverageScore()*100+0.5)) / 100,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}
