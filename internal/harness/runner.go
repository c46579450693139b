package harness

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// ScenarioResult is the verdict for one scenario file.
type ScenarioResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Pass   bool         `json:"pass"`
	Golden GoldenStatus `json:"-"`
	Errors []string     `json:"errors,omitempty"`
}

// Summary aggregates a directory run.
type Summary struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// RunOptions controls RunDir.
type RunOptions struct {
	// Update rewrites golden files instead of comparing them.
	Update bool

	// Filter is a glob over scenario base names.
	Filter string
}

// RunDir runs every scenario under dir. A scenario passes when its
// expectations hold and its golden file, if present, matches.
func (h *Harness) RunDir(dir string, opts RunOptions) (*Summary, error) {
	files, err := FindScenarioFiles(dir, opts.Filter)
	if err != nil {
		return nil, errors.Wrap(err, "find scenarios")
	}

	sum := &Summary{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := h.runFile(file, opts.Update)
		if sr.Pass {
			sum.Passed++
		} else {
			sum.Failed++
		}
		sum.Scenarios = append(sum.Scenarios, sr)
	}
	return sum, nil
}

func (h *Harness) runFile(file string, update bool) ScenarioResult {
	sr := ScenarioResult{File: file, Name: filepath.Base(file)}

	scenario, err := LoadScenario(file)
	if err != nil {
		sr.Errors = []string{"load: " + err.Error()}
		return sr
	}
	sr.Name = scenario.Name

	result, err := h.Run(scenario)
	if err != nil {
		sr.Errors = []string{"run: " + err.Error()}
		return sr
	}
	sr.Errors = result.Errors

	sr.Golden, err = CheckGolden(GoldenPath(file, scenario.Name), result, update)
	if err != nil {
		sr.Errors = append(sr.Errors, "golden: "+err.Error())
		return sr
	}
	if sr.Golden == GoldenMismatch {
		sr.Errors = append(sr.Errors, "snapshot does not match golden file (run with --update to regenerate)")
	}

	sr.Pass = len(sr.Errors) == 0
	return sr
}
