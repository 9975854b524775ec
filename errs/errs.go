// Package errs defines the error taxonomy surfaced by an analysis and its
// mapping onto HTTP status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the top-level error category.
type Kind string

const (
	KindInvalidURL Kind = "InvalidURL"
	KindNetwork    Kind = "NetworkError"
	KindRender     Kind = "RenderError"
	KindBlocked    Kind = "BlockedError"
	KindUnknown    Kind = "UnknownError"
)

// Reason narrows a network failure down to what the caller can act on.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonConnectionRefused Reason = "connection-refused"
	ReasonHostNotFound      Reason = "host-not-found"
	ReasonHTTPStatus        Reason = "http-status"
	ReasonNoResponse        Reason = "no-response"
	ReasonTimeout           Reason = "timeout"
	ReasonTooManyRedirects  Reason = "too-many-redirects"
)

// Error is the internal error type carrying a kind, the pipeline stage that
// produced it and caller-facing hints. It supports wrapping via Unwrap.
type Error struct {
	Kind        Kind
	Reason      Reason
	Stage       string
	Message     string
	Details     string
	StatusCode  int // upstream HTTP status for ReasonHTTPStatus
	Suggestions []string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidURL reports a URL that could not be normalized.
func InvalidURL(raw string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidURL,
		Stage:   "normalize",
		Message: fmt.Sprintf("invalid URL %q", raw),
		Suggestions: []string{
			"Check the URL format, for example https://example.com",
			"Try a different URL",
		},
		Cause: cause,
	}
}

// Network reports a static fetch failure.
func Network(reason Reason, message string, cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Reason:  reason,
		Stage:   "fetch-static",
		Message: message,
		Cause:   cause,
	}
}

// HTTPStatus reports a non-2xx response to the static fetch.
func HTTPStatus(code int) *Error {
	text := http.StatusText(code)
	if text == "" {
		text = "unknown status"
	}
	e := Network(ReasonHTTPStatus, fmt.Sprintf("server responded with %d %s", code, text), nil)
	e.StatusCode = code
	return e
}

// Render reports a headless browser launch or navigation failure.
func Render(message string, cause error) *Error {
	return &Error{
		Kind:    KindRender,
		Stage:   "fetch-rendered",
		Message: message,
		Cause:   cause,
	}
}

// Unknown wraps anything uncategorized.
func Unknown(stage, message string, cause error) *Error {
	return &Error{
		Kind:    KindUnknown,
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// Blocked combines the static and rendered failures into the single error
// surfaced when both retrieval stages fail. The static reason is kept so the
// status mapping still distinguishes an unreachable host.
func Blocked(static, rendered *Error) *Error {
	e := &Error{
		Kind:  KindBlocked,
		Stage: "fetch-rendered",
		Message: "could not retrieve the page: anti-bot protection suspected " +
			"(static fetch failed, then rendered fetch failed)",
		Suggestions: []string{
			"The site may be blocking automated requests",
			"Verify the URL is publicly reachable in a regular browser",
			"Try again later or try a different URL",
		},
		Cause: rendered,
	}
	if static != nil {
		e.Reason = static.Reason
		e.StatusCode = static.StatusCode
		e.Details = "static fetch: " + static.Error()
	}
	if rendered != nil {
		if e.Details != "" {
			e.Details += "; "
		}
		e.Details += "rendered fetch: " + rendered.Error()
	}
	return e
}

// From returns err as an *Error, wrapping it as unknown when it is not one.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unknown("", "unexpected failure", err)
}

// HTTPStatusFor maps an error onto the status the HTTP layer should answer with.
func HTTPStatusFor(err error) int {
	e := From(err)
	if e == nil {
		return http.StatusOK
	}
	switch e.Kind {
	case KindInvalidURL:
		return http.StatusBadRequest
	case KindNetwork, KindBlocked:
		switch e.Reason {
		case ReasonHostNotFound:
			return http.StatusBadRequest
		case ReasonConnectionRefused, ReasonNoResponse:
			return http.StatusServiceUnavailable
		}
	}
	return http.StatusInternalServerError
}
