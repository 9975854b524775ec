// Package analyzer scores a single web page for on-page SEO.
package analyzer

import (
	"context"
	"time"

	"github.com/seo-optimizer/seoscore/errs"
	"github.com/seo-optimizer/seoscore/fetcher"
	"github.com/seo-optimizer/seoscore/logging"
)

// Retriever produces the HTML of a page.
type Retriever interface {
	Retrieve(ctx context.Context, url string) (fetcher.Result, error)
}

// Observer is told about every finished analysis. Implementations must be
// safe for concurrent use.
type Observer interface {
	RecordAnalysis(method string, score int)
	RecordFailure(kind string)
}

// Analyzer performs SEO analysis on a given URL. It holds no per-request
// state and is safe for concurrent use.
type Analyzer struct {
	retriever Retriever
	recorder  logging.Recorder
	observer  Observer
	now       func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithRecorder sets the stage recorder.
func WithRecorder(r logging.Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// WithObserver sets the observer notified after each analysis.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observer = o }
}

// WithClock overrides the time source used for Report.AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates a new Analyzer instance
func New(retriever Retriever, opts ...Option) *Analyzer {
	a := &Analyzer{
		retriever: retriever,
		recorder:  logging.NopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze normalizes raw, retrieves the page and builds its report. Errors
// are always *errs.Error.
func (a *Analyzer) Analyze(ctx context.Context, raw string) (*Report, error) {
	if logging.RequestID(ctx) == "" {
		ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	}

	url, err := Normalize(raw)
	if err != nil {
		a.record(ctx, logging.StageNormalize, logging.OutcomeFailed, "input", raw, "error", err.Error())
		return nil, a.fail(err)
	}
	a.record(ctx, logging.StageNormalize, logging.OutcomeOK, "url", url)

	res, err := a.retriever.Retrieve(ctx, url)
	if err != nil {
		return nil, a.fail(err)
	}

	page, err := ParseHTML(res.HTML)
	if err != nil {
		a.record(ctx, logging.StageParse, logging.OutcomeFailed, "error", err.Error())
		return nil, a.fail(errs.Unknown(string(logging.StageParse), "could not parse page markup", err))
	}
	a.record(ctx, logging.StageParse, logging.OutcomeOK, "keywords", len(page.Keywords))

	report := a.BuildReport(ctx, url, res.Method, page)
	if a.observer != nil {
		a.observer.RecordAnalysis(string(res.Method), report.OverallScore.Score)
	}
	return report, nil
}

// BuildReport runs the analyzers, the aggregator and the recommendation
// generator over an already parsed page.
func (a *Analyzer) BuildReport(ctx context.Context, url string, method fetcher.Method, page *Page) *Report {
	scores := AnalyzeAll(page)
	a.record(ctx, logging.StageAnalyze, logging.OutcomeOK,
		"title", scores.Title.Score,
		"meta_description", scores.MetaDescription.Score,
		"headings", scores.Headings.Score,
		"images", scores.ImageOptimization.Score,
		"content", scores.Content.Score,
		"technical", scores.Technical.Score,
		"mobile", scores.MobileFriendliness.Score,
		"linking", scores.LinkingStructure.Score,
	)

	overall := Aggregate(scores)
	recs := GenerateRecommendations(scores)
	a.record(ctx, logging.StageAggregate, logging.OutcomeOK,
		"score", overall.Score,
		"interpretation", overall.Interpretation,
		"recommendations", len(recs),
	)

	return &Report{
		SchemaVersion:   SchemaVersion,
		URL:             url,
		FetchMethod:     string(method),
		AnalyzedAt:      a.now().UTC(),
		OverallScore:    overall,
		DetailedScores:  scores,
		Recommendations: recs,
	}
}

func (a *Analyzer) fail(err error) error {
	e := errs.From(err)
	if a.observer != nil {
		a.observer.RecordFailure(string(e.Kind))
	}
	return e
}

func (a *Analyzer) record(ctx context.Context, stage logging.Stage, outcome logging.Outcome, attrs ...any) {
	a.recorder.Record(ctx, logging.Event{Stage: stage, Outcome: outcome, Attrs: attrs})
}
