package harness

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/catalog"
	"github.com/roach88/asksql/internal/ir"
	"github.com/roach88/asksql/internal/pipeline"
	"github.com/roach88/asksql/internal/registry"
)

// Harness runs scenarios against one registry.
//
// Scenarios carry their own anchor, so runs never depend on wall-clock time.
type Harness struct {
	registry *registry.Registry
	logger   *zap.Logger
}

// New creates a harness over reg. A nil logger discards everything.
func New(reg *registry.Registry, logger *zap.Logger) *Harness {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Harness{registry: reg, logger: logger}
}

// Run executes a scenario against the builtin catalog with the default
// project and dataset.
func Run(scenario *Scenario) (*Result, error) {
	cat, err := catalog.Builtin()
	if err != nil {
		return nil, errors.Wrap(err, "load builtin catalog")
	}
	return New(cat.Registry(catalog.DefaultConstants), nil).Run(scenario)
}

// Run executes scenario and evaluates its expectations.
//
// The returned error covers only harness failures (bad anchor, snapshot
// encoding). Expectation mismatches are reported in Result.Errors.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	anchor, err := scenario.AnchorDate()
	if err != nil {
		return nil, err
	}

	p := pipeline.New(h.registry,
		pipeline.WithStrictParser(scenario.Strict),
		pipeline.WithLogger(h.logger.With(zap.String("scenario", scenario.Name))))

	result := NewResult()
	result.Resolution = p.Run(scenario.Expression, anchor)

	for _, msg := range EvaluateExpect(scenario.Expect, result.Resolution) {
		result.AddError(msg)
	}

	result.Snapshot, err = Snapshot(scenario.Name, result.Resolution)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Snapshot renders the canonical JSON compared against golden files.
func Snapshot(name string, res *pipeline.Result) ([]byte, error) {
	snap := map[string]any{
		"name":    name,
		"outcome": string(res.Outcome),
	}
	if fn := res.Function(); fn != "" {
		snap["function"] = fn
	}
	if res.Arguments != nil {
		snap["arguments"] = res.Arguments.Map()
	}
	if res.Query != "" {
		snap["query"] = res.Query
	}
	if res.Err != nil {
		snap["error_code"] = string(res.Err.Code)
	}

	data, err := ir.MarshalCanonical(snap)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", name)
	}
	return data, nil
}
