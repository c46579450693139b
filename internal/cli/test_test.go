package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommand_Scenarios(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "test", scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ bounce_rate_last_month")
	assert.Contains(t, out, "10 passed, 0 failed, 10 total")
}

func TestTestCommand_Filter(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "--format", "json", "test", scenariosDir, "--filter", "*_dates")
	require.NoError(t, err)

	data := decode(t, out).Data.(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 2, data["passed"])
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommand_NonExistentDir(t *testing.T) {
	out, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestTestCommand_Empty(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "test", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no scenarios found")
}

func TestTestCommand_FailureAndUpdate(t *testing.T) {
	cfg := testConfig(t, "")
	dir := t.TempDir()
	scenario := `name: top_pages
description: Top pages with the default limit
anchor: "2025-06-12"
expression: "get_top_pages(date_range='last month', limit='10')"
expect:
  outcome: success
  function: get_top_pages
  arguments:
    limit: "5"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top_pages.yaml"), []byte(scenario), 0o644))

	out, _, err := execute(t, "-c", cfg, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ top_pages")
	assert.Contains(t, out, `arguments.limit: expected "5", got "10"`)
	assert.Contains(t, out, "0 passed, 1 failed, 1 total")

	fixed := []byte(`name: top_pages
description: Top pages with the default limit
anchor: "2025-06-12"
expression: "get_top_pages(date_range='last month', limit='10')"
expect:
  outcome: success
  arguments:
    start_date: "2025-05-01"
    end_date: "2025-05-31"
    limit: "10"
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top_pages.yaml"), fixed, 0o644))

	out, _, err = execute(t, "-c", cfg, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "(golden: updated)")
	assert.FileExists(t, filepath.Join(dir, "golden", "top_pages.golden"))

	out, _, err = execute(t, "-c", cfg, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ top_pages\n")
}
