package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jsphweid/melodex/logging"
	"github.com/jsphweid/melodex/maqam"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/normalize"
	"github.com/jsphweid/melodex/reference"
	"github.com/jsphweid/melodex/scale"
	"github.com/jsphweid/melodex/sequence"
)

type Mode string

const (
	ModeMaqam Mode = "maqam"
	ModeTune  Mode = "tune"
)

type FailureKind string

const (
	EmptySequence    FailureKind = "empty_sequence"
	InvalidEvent     FailureKind = "invalid_event"
	QueryTooShort    FailureKind = "query_too_short"
	InsufficientData FailureKind = "insufficient_data"
)

// Failure is a query that could not be analyzed. It is data, not an error,
// so one bad query never stops a batch.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

type Report struct {
	QueryID uuid.UUID           `json:"query_id"`
	Mode    Mode                `json:"mode"`
	Results []model.MatchResult `json:"results"`
	Failure *Failure            `json:"failure,omitempty"`
}

type Options struct {
	Patterns  *maqam.Library
	Reference *reference.Library
	Scale     *scale.Matcher
	Sequence  *sequence.Matcher
	Normalize normalize.Options
	Logger    *slog.Logger
}

type Engine struct {
	opts Options
}

func New(opts Options) *Engine {
	if opts.Scale == nil {
		opts.Scale = scale.NewMatcher(scale.DefaultConfig())
	}
	if opts.Sequence == nil {
		opts.Sequence = sequence.NewMatcher(sequence.DefaultConfig())
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger()
	}
	return &Engine{opts: opts}
}

func (e *Engine) Patterns() *maqam.Library {
	return e.opts.Patterns
}

func (e *Engine) Reference() *reference.Library {
	return e.opts.Reference
}

func classify(err error) (FailureKind, bool) {
	switch {
	case errors.Is(err, model.ErrEmptySequence):
		return EmptySequence, true
	case errors.Is(err, model.ErrInvalidEvent), errors.Is(err, model.ErrUnorderedOnsets):
		return InvalidEvent, true
	case errors.Is(err, model.ErrQueryTooShort):
		return QueryTooShort, true
	case errors.Is(err, model.ErrInsufficientData):
		return InsufficientData, true
	}
	return "", false
}

// settle turns data-shape errors into a failed report and passes everything
// else through.
func (e *Engine) settle(ctx context.Context, report Report, err error) (Report, error) {
	if err == nil {
		if report.Results == nil {
			report.Results = []model.MatchResult{}
		}
		return report, nil
	}
	kind, ok := classify(err)
	if !ok {
		return report, err
	}
	e.opts.Logger.InfoContext(ctx, "query rejected",
		slog.String("queryID", report.QueryID.String()),
		slog.String("mode", string(report.Mode)),
		slog.String("kind", string(kind)),
		slog.String("reason", err.Error()))
	report.Results = []model.MatchResult{}
	report.Failure = &Failure{Kind: kind, Message: err.Error()}
	return report, nil
}

func (e *Engine) prepare(events []model.PitchEvent) (model.NormalizedSequence, error) {
	seq, err := model.NewNoteSequence(events)
	if err != nil {
		return model.NormalizedSequence{}, err
	}
	return normalize.Normalize(seq, e.opts.Normalize)
}

// Maqam ranks the mode templates against the query, best first.
func (e *Engine) Maqam(ctx context.Context, events []model.PitchEvent, topK int) (Report, error) {
	report := Report{QueryID: uuid.New(), Mode: ModeMaqam}
	if e.opts.Patterns == nil {
		return report, errors.New("engine: no pattern library")
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	q, err := e.prepare(events)
	if err != nil {
		return e.settle(ctx, report, err)
	}
	results := e.opts.Scale.ScoreAll(q, e.opts.Patterns)
	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	report.Results = results
	e.opts.Logger.DebugContext(ctx, "maqam query",
		slog.String("queryID", report.QueryID.String()),
		slog.Int("notes", q.Len()),
		slog.Int("results", len(results)))
	return e.settle(ctx, report, nil)
}

// Tune ranks the reference entries against the query, best first.
// An unprepared library is returned as an error.
func (e *Engine) Tune(ctx context.Context, events []model.PitchEvent, topK int) (Report, error) {
	report := Report{QueryID: uuid.New(), Mode: ModeTune}
	if !e.opts.Reference.Prepared() {
		return report, model.ErrLibraryNotPrepared
	}
	q, err := e.prepare(events)
	if err != nil {
		return e.settle(ctx, report, err)
	}
	results, err := e.opts.Sequence.ScoreAll(ctx, q, e.opts.Reference, topK)
	if err != nil {
		return e.settle(ctx, report, err)
	}
	report.Results = results
	e.opts.Logger.DebugContext(ctx, "tune query",
		slog.String("queryID", report.QueryID.String()),
		slog.Int("notes", q.Len()),
		slog.Int("results", len(results)))
	return e.settle(ctx, report, nil)
}

func (e *Engine) Run(ctx context.Context, mode Mode, events []model.PitchEvent, topK int) (Report, error) {
	if mode == ModeTune {
		return e.Tune(ctx, events, topK)
	}
	return e.Maqam(ctx, events, topK)
}

// Batch scores every query in order. Failed queries are reported in place;
// only programming errors and cancellation stop the batch.
func (e *Engine) Batch(ctx context.Context, mode Mode, queries [][]model.PitchEvent, topK int) ([]Report, error) {
	res := make([]Report, 0, len(queries))
	for _, q := range queries {
		report, err := e.Run(ctx, mode, q, topK)
		if err != nil {
			return res, err
		}
		res = append(res, report)
	}
	return res, nil
}
