package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid url", InvalidURL("", nil), http.StatusBadRequest},
		{"connection refused", Network(ReasonConnectionRefused, "refused", nil), http.StatusServiceUnavailable},
		{"no response", Network(ReasonNoResponse, "eof", nil), http.StatusServiceUnavailable},
		{"host not found", Network(ReasonHostNotFound, "dns", nil), http.StatusBadRequest},
		{"http status", HTTPStatus(http.StatusForbidden), http.StatusInternalServerError},
		{"blocked after refused", Blocked(Network(ReasonConnectionRefused, "refused", nil), Render("nav", nil)), http.StatusServiceUnavailable},
		{"blocked after host not found", Blocked(Network(ReasonHostNotFound, "dns", nil), Render("nav", nil)), http.StatusBadRequest},
		{"blocked after 403", Blocked(HTTPStatus(http.StatusForbidden), Render("nav", nil)), http.StatusInternalServerError},
		{"render", Render("launch", nil), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped invalid url", fmt.Errorf("ctx: %w", InvalidURL("x", nil)), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HTTPStatusFor(tt.err))
		})
	}
}

func TestHTTPStatusCarriesCodeAndText(t *testing.T) {
	t.Parallel()

	e := HTTPStatus(http.StatusForbidden)
	assert.Equal(t, KindNetwork, e.Kind)
	assert.Equal(t, ReasonHTTPStatus, e.Reason)
	assert.Equal(t, http.StatusForbidden, e.StatusCode)
	assert.Contains(t, e.Message, "403 Forbidden")
}

func TestBlockedCombinesBothStages(t *testing.T) {
	t.Parallel()

	static := Network(ReasonConnectionRefused, "connection refused", errors.New("dial tcp: refused"))
	rendered := Render("navigation failed", errors.New("net::ERR_CONNECTION_REFUSED"))

	e := Blocked(static, rendered)
	require.Equal(t, KindBlocked, e.Kind)
	assert.Equal(t, "fetch-rendered", e.Stage)
	assert.Contains(t, e.Message, "anti-bot protection suspected")
	assert.NotContains(t, e.Message, "unknown")
	assert.Contains(t, e.Details, "static fetch:")
	assert.Contains(t, e.Details, "rendered fetch:")
	assert.NotEmpty(t, e.Suggestions)
	assert.True(t, errors.Is(e, rendered))
}

func TestFromWrapsForeignErrors(t *testing.T) {
	t.Parallel()

	assert.Nil(t, From(nil))

	e := From(errors.New("boom"))
	assert.Equal(t, KindUnknown, e.Kind)

	orig := Render("launch", nil)
	assert.Same(t, orig, From(fmt.Errorf("wrap: %w", orig)))
}
