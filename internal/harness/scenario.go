package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/asksql/internal/pipeline"
)

// Scenario is one conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Anchor is the YYYY-MM-DD date relative phrases resolve against.
	Anchor string `yaml:"anchor"`

	// Expression is the raw call-expression text fed to the pipeline.
	Expression string `yaml:"expression"`

	// Strict selects the quote-aware parser.
	Strict bool `yaml:"strict,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect states what the pipeline must produce. Only Outcome is required;
// other fields are checked when set.
type Expect struct {
	Outcome pipeline.Outcome `yaml:"outcome"`

	Function string `yaml:"function,omitempty"`

	// Arguments must match the normalized arguments exactly when non-nil.
	Arguments map[string]string `yaml:"arguments,omitempty"`

	// QueryContains lists substrings the rendered query must contain.
	QueryContains []string `yaml:"query_contains,omitempty"`

	// Argument names the argument an argument_error must report.
	Argument string `yaml:"argument,omitempty"`
}

// AnchorDate parses Anchor.
func (s *Scenario) AnchorDate() (civil.Date, error) {
	d, err := civil.ParseDate(s.Anchor)
	if err != nil {
		return civil.Date{}, errors.Wrapf(err, "anchor %q", s.Anchor)
	}
	return d, nil
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario file")
	}

	// Strict field validation catches typos like "expected:" vs "expect:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(path))
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, errors.Wrapf(err, "invalid scenario %s", filepath.Base(path))
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return errors.New("name is required")
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return errors.Newf("name %q must not contain path separators", s.Name)
	}
	if s.Description == "" {
		return errors.New("description is required")
	}
	if _, err := s.AnchorDate(); err != nil {
		return err
	}

	switch s.Expect.Outcome {
	case pipeline.OutcomeSuccess,
		pipeline.OutcomeMalformedExpression,
		pipeline.OutcomeUnknownFunction,
		pipeline.OutcomeArgumentError:
	case "":
		return errors.New("expect.outcome is required")
	default:
		return errors.Newf("expect.outcome: unknown outcome %q", s.Expect.Outcome)
	}

	if s.Expect.Argument != "" && s.Expect.Outcome != pipeline.OutcomeArgumentError {
		return errors.New("expect.argument is only valid with outcome argument_error")
	}
	if len(s.Expect.QueryContains) > 0 && s.Expect.Outcome != pipeline.OutcomeSuccess {
		return errors.New("expect.query_contains is only valid with outcome success")
	}
	return nil
}

// FindScenarioFiles returns the .yaml and .yml files under dir, in lexical
// order, whose base name (without extension) matches the glob filter.
// An empty filter matches everything. Golden directories are skipped.
func FindScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == goldenDir && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return errors.Wrap(err, "invalid filter pattern")
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
