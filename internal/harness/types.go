package harness

import (
	"github.com/roach88/asksql/internal/pipeline"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Resolution is the pipeline's result.
	Resolution *pipeline.Result `json:"-"`

	// Snapshot is the canonical JSON compared with golden files.
	Snapshot []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
