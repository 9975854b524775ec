package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/seoscore/analyzer"
	"github.com/seo-optimizer/seoscore/errs"
	"github.com/seo-optimizer/seoscore/fetcher"
	"github.com/seo-optimizer/seoscore/logging"
	"github.com/seo-optimizer/seoscore/middleware"
	"github.com/seo-optimizer/seoscore/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const page = `<!DOCTYPE html>
<html>
<head>
<title>Welcome to the Example Bakery Guide</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="canonical" href="https://example.com/">
</head>
<body>
<h1>Welcome</h1>
<h2>Bread</h2>
<h2>Cakes</h2>
<p>Fresh bread every morning.</p>
<a href="/about">About</a>
<a href="https://other.example/">Elsewhere</a>
</body>
</html>`

type stubRetriever struct {
	res fetcher.Result
	err error
}

func (s stubRetriever) Retrieve(context.Context, string) (fetcher.Result, error) {
	return s.res, s.err
}

func okRetriever() stubRetriever {
	return stubRetriever{res: fetcher.Result{HTML: page, Method: fetcher.MethodStatic}}
}

func newTestRouter(t *testing.T, r analyzer.Retriever) (*gin.Engine, *stats.Storage, *logging.Statistics) {
	t.Helper()
	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Shutdown() })

	requests := logging.NewStatistics("")
	router := NewRouter(Deps{
		Analyzer: analyzer.New(r, analyzer.WithObserver(storage)),
		Stats:    requests,
		Monthly:  storage,
		Version:  "test",
	})
	return router, storage, requests
}

func postAnalyze(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAnalyzeSuccess(t *testing.T) {
	router, storage, requests := newTestRouter(t, okRetriever())

	w := postAnalyze(router, `{"url": "example.com"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "1", body["schemaVersion"])
	assert.Equal(t, "https://example.com/", body["url"])
	assert.Equal(t, "static", body["fetchMethod"])
	assert.Contains(t, body, "analyzedAt")
	assert.Contains(t, body, "recommendations")

	overall, ok := body["overallScore"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, overall, "score")
	assert.Contains(t, overall, "interpretation")

	scores, ok := body["detailedScores"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, scores, 8)
	heading := scores["headings"].(map[string]any)
	assert.Equal(t, "positive", heading["impact"])

	assert.Equal(t, 1, storage.GetCurrentStats().Analyses)
	assert.Equal(t, 1, requests.Requests())
}

func TestAnalyzeRequestErrors(t *testing.T) {
	tests := []struct {
		name      string
		retriever stubRetriever
		body      string
		status    int
		kind      string
		message   string
	}{
		{
			name:      "missing url",
			retriever: okRetriever(),
			body:      `{}`,
			status:    http.StatusBadRequest,
			kind:      "InvalidURL",
		},
		{
			name:      "malformed json",
			retriever: okRetriever(),
			body:      `{"url":`,
			status:    http.StatusBadRequest,
			kind:      "InvalidURL",
		},
		{
			name:      "unparseable url",
			retriever: okRetriever(),
			body:      `{"url": "http://"}`,
			status:    http.StatusBadRequest,
			kind:      "InvalidURL",
		},
		{
			name: "blocked after refused connection",
			retriever: stubRetriever{err: errs.Blocked(
				errs.Network(errs.ReasonConnectionRefused, "connection refused", nil),
				errs.Render("navigation failed", nil),
			)},
			body:    `{"url": "example.com"}`,
			status:  http.StatusServiceUnavailable,
			kind:    "BlockedError",
			message: "anti-bot protection suspected",
		},
		{
			name: "blocked after host not found",
			retriever: stubRetriever{err: errs.Blocked(
				errs.Network(errs.ReasonHostNotFound, "host not found", nil),
				errs.Render("navigation failed", nil),
			)},
			body:    `{"url": "no-such-host.invalid"}`,
			status:  http.StatusBadRequest,
			kind:    "BlockedError",
			message: "anti-bot protection suspected",
		},
		{
			name: "blocked after http status",
			retriever: stubRetriever{err: errs.Blocked(
				errs.HTTPStatus(http.StatusForbidden),
				errs.Render("navigation failed", nil),
			)},
			body:    `{"url": "example.com"}`,
			status:  http.StatusInternalServerError,
			kind:    "BlockedError",
			message: "anti-bot protection suspected",
		},
		{
			name:      "uncategorized failure",
			retriever: stubRetriever{err: errors.New("boom")},
			body:      `{"url": "example.com"}`,
			status:    http.StatusInternalServerError,
			kind:      "UnknownError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, storage, requests := newTestRouter(t, tt.retriever)

			w := postAnalyze(router, tt.body)
			assert.Equal(t, tt.status, w.Code)

			body := decode(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
			if tt.message != "" {
				assert.Contains(t, body["error"], tt.message)
				assert.NotEmpty(t, body["suggestions"])
				assert.Contains(t, body["details"], "static fetch:")
			}
			assert.Equal(t, 0, storage.GetCurrentStats().Analyses)
			assert.Equal(t, 1, requests.Summary(false).TotalRequests)
			assert.Equal(t, 100.0, requests.Summary(false).ErrorRate)
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter(t, okRetriever())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, "/api/analyze", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, false, decode(t, w)["success"])
	}
}

func TestNotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, okRetriever())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t, okRetriever())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t, okRetriever())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestStatistics(t *testing.T) {
	router, _, _ := newTestRouter(t, okRetriever())

	require.Equal(t, http.StatusOK, postAnalyze(router, `{"url": "example.com"}`).Code)
	require.Equal(t, http.StatusBadRequest, postAnalyze(router, `{"url": "http://"}`).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/statistics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatisticsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalRequests)
	assert.Equal(t, 50.0, resp.ErrorRate)
	assert.Nil(t, resp.PopularURLs)

	require.NotNil(t, resp.Month)
	assert.Equal(t, 1, resp.Month.Analyses)
	assert.Equal(t, 1, resp.Month.StaticFetches)
	assert.Equal(t, 0, resp.Month.RenderedFetches)
	assert.Equal(t, 1, resp.Month.Failures)
	assert.Equal(t, map[string]int{"InvalidURL": 1}, resp.Month.FailuresByKind)
}

func TestRateLimitOnAnalyzeOnly(t *testing.T) {
	router := NewRouter(Deps{
		Analyzer: analyzer.New(okRetriever()),
		Limiter:  middleware.NewRateLimiter(0.001, 1),
	})

	assert.Equal(t, http.StatusOK, postAnalyze(router, `{"url": "example.com"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, postAnalyze(router, `{"url": "example.com"}`).Code)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func callTool(t *testing.T, a Analyzer, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = "analyze_page"
	req.Params.Arguments = args

	res, err := handleAnalyzePage(a)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	return res
}

func toolText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPAnalyzePage(t *testing.T) {
	a := analyzer.New(okRetriever())

	t.Run("json", func(t *testing.T) {
		res := callTool(t, a, map[string]any{"url": "example.com"})
		assert.False(t, res.IsError)

		var report analyzer.Report
		require.NoError(t, json.Unmarshal([]byte(toolText(t, res)), &report))
		assert.Equal(t, "https://example.com/", report.URL)
		assert.Equal(t, "static", report.FetchMethod)
	})

	t.Run("summary", func(t *testing.T) {
		res := callTool(t, a, map[string]any{"url": "example.com", "format": "summary"})
		assert.False(t, res.IsError)
		assert.Contains(t, toolText(t, res), "Heading Structure")
	})

	t.Run("missing url", func(t *testing.T) {
		res := callTool(t, a, map[string]any{})
		assert.True(t, res.IsError)
		assert.Equal(t, "url is required", toolText(t, res))
	})

	t.Run("analysis failure", func(t *testing.T) {
		blocked := analyzer.New(stubRetriever{err: errs.Blocked(
			errs.Network(errs.ReasonTimeout, "request timed out", nil),
			errs.Render("navigation failed", nil),
		)})
		res := callTool(t, blocked, map[string]any{"url": "example.com"})
		assert.True(t, res.IsError)
		text := toolText(t, res)
		assert.True(t, strings.HasPrefix(text, "[BlockedError]"))
		assert.Contains(t, text, "anti-bot protection suspected")
		assert.Contains(t, text, "- The site may be blocking automated requests")
	})
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(analyzer.New(okRetriever()), "test")
	require.NotNil(t, s)
}
