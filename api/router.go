// Package api exposes the analyzer over HTTP and as an MCP tool.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/seoscore/logging"
	"github.com/seo-optimizer/seoscore/middleware"
)

// Deps are the collaborators the router wires into its handlers. Stats,
// Monthly and Limiter are optional.
type Deps struct {
	Analyzer Analyzer
	Stats    *logging.Statistics
	Monthly  MonthlyCounter
	Limiter  *middleware.RateLimiter
	Mode     string
	DevMode  bool
	Version  string
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  ErrorHandler → RequestID → CORS → Stats
//	Analyze: RateLimit
func NewRouter(d Deps) *gin.Engine {
	if d.Mode != "" {
		gin.SetMode(d.Mode)
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())
	if d.Stats != nil {
		r.Use(middleware.Stats(d.Stats))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})

	api := r.Group("/api")
	api.GET("/health", Health(d.Version, time.Now()))
	api.GET("/statistics", Statistics(d.Stats, d.Monthly, d.DevMode))

	analyze := api.Group("")
	if d.Limiter != nil {
		analyze.Use(d.Limiter.RateLimit())
	}
	analyze.POST("/analyze", Analyze(d.Analyzer))

	return r
}
