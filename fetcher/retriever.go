// Package fetcher retrieves page HTML: a plain HTTP fetch first, then a
// headless browser render when the plain fetch fails.
package fetcher

import (
	"context"
	"time"

	"github.com/seo-optimizer/seoscore/errs"
	"github.com/seo-optimizer/seoscore/logging"
)

// Method records which stage produced the HTML.
type Method string

const (
	MethodStatic   Method = "static"
	MethodRendered Method = "rendered"
)

// Result is a successful retrieval.
type Result struct {
	HTML   string
	Method Method
}

// StaticFetcher performs a plain HTTP GET.
type StaticFetcher interface {
	FetchStatic(ctx context.Context, url string) (string, error)
}

// Renderer loads the page in a browser and returns the rendered DOM.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

type state int

const (
	stateStatic state = iota
	stateRendered
)

// Retriever runs the two retrieval stages in order. The rendered stage runs
// exactly once after a static failure and never after a static success.
type Retriever struct {
	static   StaticFetcher
	renderer Renderer
	recorder logging.Recorder
}

// NewRetriever wires the two stages. A nil recorder discards events.
func NewRetriever(static StaticFetcher, renderer Renderer, recorder logging.Recorder) *Retriever {
	if recorder == nil {
		recorder = logging.NopRecorder{}
	}
	return &Retriever{static: static, renderer: renderer, recorder: recorder}
}

// Retrieve returns the page HTML and the method that produced it. When both
// stages fail the error is an *errs.Error of kind Blocked carrying both causes.
func (r *Retriever) Retrieve(ctx context.Context, url string) (Result, error) {
	var staticErr *errs.Error

	for st := stateStatic; ; {
		switch st {
		case stateStatic:
			start := time.Now()
			html, err := r.static.FetchStatic(ctx, url)
			if err == nil {
				r.record(ctx, logging.StageFetchStatic, logging.OutcomeOK, "url", url, "duration_ms", time.Since(start).Milliseconds(), "bytes", len(html))
				r.record(ctx, logging.StageFetchRendered, logging.OutcomeSkipped)
				return Result{HTML: html, Method: MethodStatic}, nil
			}
			staticErr = asStageError(err, func(cause error) *errs.Error {
				return errs.Network(errs.ReasonNone, "static fetch failed", cause)
			})
			r.record(ctx, logging.StageFetchStatic, logging.OutcomeFailed, "url", url, "reason", string(staticErr.Reason), "error", staticErr.Error())
			st = stateRendered

		case stateRendered:
			start := time.Now()
			html, err := r.renderer.Render(ctx, url)
			if err == nil {
				r.record(ctx, logging.StageFetchRendered, logging.OutcomeOK, "url", url, "duration_ms", time.Since(start).Milliseconds(), "bytes", len(html))
				return Result{HTML: html, Method: MethodRendered}, nil
			}
			renderErr := asStageError(err, func(cause error) *errs.Error {
				return errs.Render("rendered fetch failed", cause)
			})
			r.record(ctx, logging.StageFetchRendered, logging.OutcomeFailed, "url", url, "error", renderErr.Error())
			return Result{}, errs.Blocked(staticErr, renderErr)
		}
	}
}

func (r *Retriever) record(ctx context.Context, stage logging.Stage, outcome logging.Outcome, attrs ...any) {
	r.recorder.Record(ctx, logging.Event{Stage: stage, Outcome: outcome, Attrs: attrs})
}

// asStageError keeps an *errs.Error as is and wraps anything else with wrap.
func asStageError(err error, wrap func(error) *errs.Error) *errs.Error {
	if e := errs.From(err); e.Kind != errs.KindUnknown {
		return e
	}
	return wrap(err)
}
