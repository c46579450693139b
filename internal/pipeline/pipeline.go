// Package pipeline turns raw call-expression text into query text.
//
// Run is strictly sequential: Parsed -> Normalized -> Looked up -> Checked -> Dispatched.
// The first failing stage ends the run with the matching outcome; nothing is
// retried. A Pipeline holds only read-only state and is safe for concurrent
// use.
package pipeline

import (
	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/asksql/internal/callexpr"
	"github.com/roach88/asksql/internal/ir"
	"github.com/roach88/asksql/internal/normalize"
	"github.com/roach88/asksql/internal/registry"
)

// Outcome is the terminal state of a resolution.
type Outcome string

const (
	OutcomeSuccess             Outcome = "success"
	OutcomeMalformedExpression Outcome = "malformed_expression"
	OutcomeUnknownFunction     Outcome = "unknown_function"
	OutcomeArgumentError       Outcome = "argument_error"

	// OutcomeExecutionError is never produced by Run. Callers that execute
	// the query use it to record executor failures.
	OutcomeExecutionError Outcome = "execution_error"
)

// OutcomeOf maps a taxonomy error to its outcome.
func OutcomeOf(err error) Outcome {
	switch ir.CodeOf(err) {
	case ir.ErrCodeMalformedExpression:
		return OutcomeMalformedExpression
	case ir.ErrCodeUnknownFunction:
		return OutcomeUnknownFunction
	case ir.ErrCodeExecutionError:
		return OutcomeExecutionError
	default:
		return OutcomeArgumentError
	}
}

// Result is the outcome of one Run.
//
// Expression is set once parsing succeeds and Arguments once normalization
// has run. Query is set only on success; Err only on failure.
type Result struct {
	Outcome    Outcome             `json:"outcome"`
	Raw        string              `json:"raw"`
	Expression *ir.CallExpression  `json:"expression,omitempty"`
	Arguments  *ir.Args            `json:"arguments,omitempty"`
	Query      string              `json:"query,omitempty"`
	Err        *ir.ResolutionError `json:"-"`
}

// OK reports whether the run produced a query.
func (r *Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Function returns the parsed function name, or "" when parsing failed.
func (r *Result) Function() string {
	if r.Expression == nil {
		return ""
	}
	return r.Expression.Name
}

// Pipeline wires the parser, normalizer and registry together.
type Pipeline struct {
	registry *registry.Registry
	strict   bool
	log      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStrictParser selects callexpr.ParseStrict instead of callexpr.Parse.
func WithStrictParser(strict bool) Option {
	return func(p *Pipeline) { p.strict = strict }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New creates a Pipeline over reg.
func New(reg *registry.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{registry: reg, log: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry the pipeline dispatches to.
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// Run resolves raw against anchor.
func (p *Pipeline) Run(raw string, anchor civil.Date) *Result {
	res := &Result{Raw: raw}
	text := norm.NFC.String(raw)

	expr, err := p.parse(text)
	if err != nil {
		return p.fail(res, err)
	}
	res.Expression = expr
	p.log.Debug("parsed",
		zap.String("function", expr.Name),
		zap.Strings("keys", expr.Args.Keys()))

	args := normalize.Normalize(expr.Args, anchor)
	res.Arguments = args
	p.log.Debug("normalized",
		zap.String("function", expr.Name),
		zap.Any("arguments", args.Map()),
		zap.Stringer("anchor", anchor))

	if _, ok := p.registry.Lookup(expr.Name); !ok {
		return p.fail(res, ir.NewUnknownFunctionError(expr.Name))
	}
	if err := normalize.CheckDatePair(args); err != nil {
		return p.fail(res, err)
	}

	query, err := p.registry.Invoke(expr.Name, args)
	if err != nil {
		return p.fail(res, err)
	}
	res.Query = query
	res.Outcome = OutcomeSuccess
	p.log.Info("resolved",
		zap.String("function", expr.Name),
		zap.String("outcome", string(res.Outcome)))
	return res
}

func (p *Pipeline) parse(text string) (*ir.CallExpression, error) {
	if p.strict {
		return callexpr.ParseStrict(text)
	}
	return callexpr.Parse(text)
}

// fail records err as the terminal state of res.
func (p *Pipeline) fail(res *Result, err error) *Result {
	var re *ir.ResolutionError
	if !errors.As(err, &re) {
		re = ir.NewArgumentError(res.Function(), "", err.Error())
	}
	if re.Function == "" && re.Code != ir.ErrCodeMalformedExpression {
		re.Function = res.Function()
	}
	if re.Code == ir.ErrCodeMalformedExpression {
		re.Raw = res.Raw
	}

	res.Err = re
	res.Outcome = OutcomeOf(re)
	p.log.Info("resolution failed",
		zap.String("function", re.Function),
		zap.String("outcome", string(res.Outcome)),
		zap.String("code", string(re.Code)),
		zap.String("message", re.Message))
	return res
}
