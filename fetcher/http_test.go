package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/seoscore/config"
	"github.com/seo-optimizer/seoscore/errs"
)

func testFetcher() *HTTPFetcher {
	cfg := config.Default().Fetch
	cfg.Timeout = 2 * time.Second
	return NewHTTPFetcher(cfg)
}

func TestFetchStaticSendsBrowserHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><title>ok</title><p id=ua>%s</p><p id=accept>%s</p></html>",
			r.Header.Get("User-Agent"), r.Header.Get("Accept"))
	}))
	defer srv.Close()

	html, err := testFetcher().FetchStatic(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, html, "<title>ok</title>")
	assert.Contains(t, html, config.DefaultUserAgent)
	assert.Contains(t, html, "text/html,application/xhtml+xml")
}

func TestFetchStaticDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body>caf\xe9</body></html>"))
	}))
	defer srv.Close()

	html, err := testFetcher().FetchStatic(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "café")
}

func TestFetchStaticNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchStatic(context.Background(), srv.URL)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindNetwork, e.Kind)
	assert.Equal(t, errs.ReasonHTTPStatus, e.Reason)
	assert.Equal(t, http.StatusForbidden, e.StatusCode)
	assert.Contains(t, e.Message, "403 Forbidden")
}

func TestFetchStaticRedirectLimit(t *testing.T) {
	var hops atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hops.Add(1)
		http.Redirect(w, r, "/loop", http.StatusFound)
	}))
	defer srv.Close()

	_, err := testFetcher().FetchStatic(context.Background(), srv.URL)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ReasonTooManyRedirects, e.Reason)
	assert.Equal(t, int32(6), hops.Load(), "the original request plus five redirects")
}

func TestFetchStaticConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testFetcher().FetchStatic(context.Background(), url)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ReasonConnectionRefused, e.Reason)
	assert.Equal(t, http.StatusServiceUnavailable, errs.HTTPStatusFor(err))
}

func TestClassifyHostNotFound(t *testing.T) {
	err := &url.Error{
		Op:  "Get",
		URL: "https://no-such-host.invalid/",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{
			Err:        "no such host",
			Name:       "no-such-host.invalid",
			IsNotFound: true,
		}},
	}

	e := classify(err)
	assert.Equal(t, errs.KindNetwork, e.Kind)
	assert.Equal(t, errs.ReasonHostNotFound, e.Reason)
	assert.Equal(t, http.StatusBadRequest, errs.HTTPStatusFor(e))
}

func TestFetchStaticTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := config.Default().Fetch
	cfg.Timeout = 100 * time.Millisecond
	_, err := NewHTTPFetcher(cfg).FetchStatic(context.Background(), srv.URL)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.ReasonTimeout, e.Reason)
}

func TestRenderDisabled(t *testing.T) {
	cfg := config.Default().Render
	cfg.Enabled = false

	_, err := NewBrowserRenderer(cfg, "").Render(context.Background(), "https://example.com/")

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, errs.KindRender, e.Kind)
	assert.Contains(t, e.Message, "disabled")
}
