package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoscore/logging"
)

// AnalyzedURLKey is the gin context key the analyze handler stores the
// normalized target under.
const AnalyzedURLKey = "analyzed_url"

// saveEvery persists statistics after this many analysis requests.
const saveEvery = 100

// Stats tracks visitors and analysis requests in stats.
func Stats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Track unique visitor
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		// Only track analysis requests
		if c.FullPath() != "/api/analyze" || c.Request.Method != http.MethodPost {
			return
		}
		stats.TrackAnalysis(c.GetString(AnalyzedURLKey), time.Since(start), c.Writer.Status() >= http.StatusBadRequest)

		if stats.Requests()%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					slog.Warn("failed to save request statistics", "error", err)
				}
			}()
		}
	}
}
