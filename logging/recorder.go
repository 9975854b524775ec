package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Stage names one step of the analysis pipeline.
type Stage string

const (
	StageNormalize     Stage = "normalize"
	StageFetchStatic   Stage = "fetch-static"
	StageFetchRendered Stage = "fetch-rendered"
	StageParse         Stage = "parse"
	StageAnalyze       Stage = "analyze"
	StageAggregate     Stage = "aggregate"
)

// Outcome is the result of a stage.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeFailed  Outcome = "failed"
	OutcomeSkipped Outcome = "skipped"
)

// Event is one recorded stage transition.
type Event struct {
	RequestID string
	Stage     Stage
	Outcome   Outcome
	Attrs     []any // slog-style key/value pairs
}

// Recorder receives stage transitions. Implementations must be safe for
// concurrent use.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// SlogRecorder writes stage events to a slog logger.
type SlogRecorder struct {
	logger *slog.Logger
}

// NewSlogRecorder returns a Recorder backed by logger (slog.Default if nil).
func NewSlogRecorder(logger *slog.Logger) *SlogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogRecorder{logger: logger}
}

func (r *SlogRecorder) Record(ctx context.Context, ev Event) {
	if ev.RequestID == "" {
		ev.RequestID = RequestID(ctx)
	}
	level := slog.LevelInfo
	if ev.Outcome == OutcomeFailed {
		level = slog.LevelWarn
	}
	args := append([]any{
		"request_id", ev.RequestID,
		"stage", string(ev.Stage),
		"outcome", string(ev.Outcome),
	}, ev.Attrs...)
	r.logger.Log(ctx, level, "pipeline stage", args...)
}

// MemoryRecorder keeps events in memory (useful for tests).
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *MemoryRecorder) Record(ctx context.Context, ev Event) {
	if ev.RequestID == "" {
		ev.RequestID = RequestID(ctx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events in order.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Transitions returns "stage:outcome" strings in recording order.
func (r *MemoryRecorder) Transitions() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = string(ev.Stage) + ":" + string(ev.Outcome)
	}
	return out
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
