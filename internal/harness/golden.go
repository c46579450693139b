package harness

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/sebdah/goldie/v2"
)

const goldenDir = "golden"

// GoldenPath returns golden/<name>.golden next to the scenario file.
func GoldenPath(scenarioFile, name string) string {
	return filepath.Join(filepath.Dir(scenarioFile), goldenDir, name+".golden")
}

// GoldenStatus is the result of comparing a snapshot with its golden file.
type GoldenStatus int

const (
	GoldenMatch GoldenStatus = iota
	GoldenMismatch
	GoldenMissing
	GoldenUpdated
)

func (s GoldenStatus) String() string {
	switch s {
	case GoldenMatch:
		return "match"
	case GoldenMismatch:
		return "mismatch"
	case GoldenMissing:
		return "missing"
	case GoldenUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// CheckGolden compares result's snapshot with the golden file at path, or
// rewrites the file when update is set.
func CheckGolden(path string, result *Result, update bool) (GoldenStatus, error) {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return 0, errors.Wrap(err, "create golden directory")
		}
		if err := os.WriteFile(path, result.Snapshot, 0o644); err != nil {
			return 0, errors.Wrap(err, "write golden file")
		}
		return GoldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return GoldenMissing, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "read golden file")
	}
	if !bytes.Equal(want, result.Snapshot) {
		return GoldenMismatch, nil
	}
	return GoldenMatch, nil
}

// RunWithGolden runs the scenario file at path and compares its snapshot
// against <dir>/golden/<name>.golden using goldie, so `go test -update`
// regenerates it. Expectation failures fail t.
func RunWithGolden(t *testing.T, path string) *Result {
	t.Helper()

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("run %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Errorf("scenario %s failed:\n  %s", scenario.Name, strings.Join(result.Errors, "\n  "))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join(filepath.Dir(path), goldenDir)),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, result.Snapshot)
	return result
}
