// Package assistant answers analytics questions end to end.
//
// A question goes to the intent resolver, the returned expression through the
// resolution pipeline, and a successful query to the executor exactly once.
// Every answer is recorded in history and counted in metrics when those are
// configured.
package assistant

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/clock"
	"github.com/roach88/asksql/internal/intent"
	"github.com/roach88/asksql/internal/ir"
	"github.com/roach88/asksql/internal/metrics"
	"github.com/roach88/asksql/internal/pipeline"
	"github.com/roach88/asksql/internal/store"
	"github.com/roach88/asksql/internal/warehouse"
)

// ErrHistoryDisabled is returned by History when no store is configured.
var ErrHistoryDisabled = errors.New("history is disabled")

// Answer is the result of one question or expression.
type Answer struct {
	ID         string               `json:"id"`
	Question   string               `json:"question,omitempty"`
	Expression string               `json:"expression"`
	Anchor     civil.Date           `json:"anchor"`
	Result     *pipeline.Result     `json:"result"`
	Rows       *warehouse.ResultSet `json:"rows,omitempty"`
	Duration   time.Duration        `json:"duration_ns"`
}

// OK reports whether the outcome is success. An executor failure turns the
// outcome into execution_error, so OK is false for it too.
func (a *Answer) OK() bool {
	return a.Result != nil && a.Result.OK()
}

// Err returns the taxonomy error of a failed answer, or nil.
func (a *Answer) Err() error {
	if a.Result == nil || a.Result.Err == nil {
		return nil
	}
	return a.Result.Err
}

// Assistant orchestrates intent, pipeline, executor and history.
//
// Thread-safety: safe for concurrent use when its collaborators are.
type Assistant struct {
	intent   intent.Resolver
	pipeline *pipeline.Pipeline
	executor warehouse.Executor
	history  *store.Store
	metrics  *metrics.Metrics
	clock    clock.Clock
	newID    func() string
	log      *zap.Logger
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithExecutor runs successful queries. Without one, answers carry the query
// text only.
func WithExecutor(e warehouse.Executor) Option {
	return func(a *Assistant) { a.executor = e }
}

// WithHistory records every answer in s.
func WithHistory(s *store.Store) Option {
	return func(a *Assistant) { a.history = s }
}

// WithMetrics counts outcomes and execution latency in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Assistant) { a.metrics = m }
}

// WithClock sets the anchor clock. The default is the UTC wall clock.
func WithClock(c clock.Clock) Option {
	return func(a *Assistant) { a.clock = c }
}

// WithIDGenerator replaces the random UUID answer IDs.
func WithIDGenerator(next func() string) Option {
	return func(a *Assistant) { a.newID = next }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(a *Assistant) { a.log = log }
}

// New creates an Assistant. resolver may be nil when only Resolve is used.
func New(resolver intent.Resolver, p *pipeline.Pipeline, opts ...Option) *Assistant {
	a := &Assistant{
		intent:   resolver,
		pipeline: p,
		clock:    clock.NewSystem(nil),
		newID:    uuid.NewString,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Pipeline returns the pipeline the assistant runs.
func (a *Assistant) Pipeline() *pipeline.Pipeline {
	return a.pipeline
}

// Clock returns the anchor clock.
func (a *Assistant) Clock() clock.Clock {
	return a.clock
}

// Ask translates question into a call expression and resolves it.
//
// Intent failures are returned as errors; they are outside the resolution
// taxonomy and produce no Answer. Every other failure is reported through
// the Answer's Result.
func (a *Assistant) Ask(ctx context.Context, question string) (*Answer, error) {
	if a.intent == nil {
		return nil, errors.WithHint(errors.New("no intent resolver configured"),
			"set intent.provider in the configuration")
	}

	expr, err := a.intent.Resolve(ctx, question)
	if err != nil {
		a.metrics.RecordIntentFailure()
		a.log.Warn("intent resolution failed",
			zap.String("question", question),
			zap.Error(err))
		return nil, errors.Wrap(err, "resolve intent")
	}
	return a.answer(ctx, question, expr), nil
}

// Resolve runs an expression the caller already has, anchored at today.
func (a *Assistant) Resolve(ctx context.Context, expression string) *Answer {
	return a.answer(ctx, "", expression)
}

func (a *Assistant) answer(ctx context.Context, question, expression string) *Answer {
	start := time.Now()
	ans := &Answer{
		ID:         a.newID(),
		Question:   question,
		Expression: expression,
		Anchor:     a.clock.Today(),
	}

	ans.Result = a.pipeline.Run(expression, ans.Anchor)
	a.metrics.RecordResolution(ans.Result.Function(), string(ans.Result.Outcome))

	if ans.Result.OK() && a.executor != nil {
		a.execute(ctx, ans)
	}
	ans.Duration = time.Since(start)

	a.log.Info("answered",
		zap.String("id", ans.ID),
		zap.String("function", ans.Result.Function()),
		zap.String("outcome", string(ans.Result.Outcome)),
		zap.Int("rows", ans.Rows.Len()),
		zap.Duration("duration", ans.Duration))

	a.record(ctx, ans)
	return ans
}

// execute runs the query once. Executor errors are passed through unmodified
// inside an ExecutionError.
func (a *Assistant) execute(ctx context.Context, ans *Answer) {
	fn := ans.Result.Function()
	start := time.Now()
	rows, err := a.executor.Execute(ctx, ans.Result.Query)
	elapsed := time.Since(start)
	a.metrics.RecordExecution(fn, elapsed, rows.Len(), err)

	if err != nil {
		ans.Result.Err = ir.NewExecutionError(fn, err)
		ans.Result.Outcome = pipeline.OutcomeExecutionError
		a.log.Warn("query execution failed",
			zap.String("id", ans.ID),
			zap.String("function", fn),
			zap.Duration("latency", elapsed),
			zap.Error(err))
		return
	}
	ans.Rows = rows
	a.log.Debug("query executed",
		zap.String("id", ans.ID),
		zap.String("function", fn),
		zap.Duration("latency", elapsed),
		zap.Int("rows", rows.Len()))
}

// record appends ans to history. A history failure never fails the answer.
func (a *Assistant) record(ctx context.Context, ans *Answer) {
	if a.history == nil {
		return
	}
	rec := &store.Record{
		ID:         ans.ID,
		Anchor:     ans.Anchor,
		Question:   ans.Question,
		Expression: ans.Expression,
		Function:   ans.Result.Function(),
		Arguments:  ans.Result.Arguments,
		Outcome:    string(ans.Result.Outcome),
		Query:      ans.Result.Query,
		RowCount:   ans.Rows.Len(),
		Duration:   ans.Duration,
	}
	if re := ans.Result.Err; re != nil {
		rec.ErrorCode = string(re.Code)
		rec.ErrorMessage = re.Message
	}
	if _, err := a.history.Append(ctx, rec); err != nil {
		a.log.Warn("history append failed", zap.String("id", ans.ID), zap.Error(err))
	}
}

// History returns the most recent answers, or nil when history is disabled.
func (a *Assistant) History(ctx context.Context, f store.Filter) ([]store.Record, error) {
	if a.history == nil {
		return nil, errors.WithHint(ErrHistoryDisabled,
			"set history.enabled: true in the configuration")
	}
	return a.history.Recent(ctx, f)
}
