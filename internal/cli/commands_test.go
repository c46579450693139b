package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const bounceLastMonth = "get_bounce_rate(date_range='last month')"

func TestResolve(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "resolve", bounceLastMonth)
	require.NoError(t, err)
	assert.Contains(t, out, "BETWEEN '2025-05-01' AND '2025-05-31'")
	assert.Contains(t, out, "`your_project.ga4_sample_ai_agent.flat_sessions`")
	assert.NotContains(t, out, "(1 row)", "resolve without --execute must not run the query")
}

func TestResolve_AnchorFlag(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "resolve", "--anchor", "2024-02-10",
		"get_bounce_rate(date_range='this month')")
	require.NoError(t, err)
	assert.Contains(t, out, "BETWEEN '2024-02-01' AND '2024-02-29'")
}

func TestResolve_BadAnchor(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "resolve", "--anchor", "12/06/2025", bounceLastMonth)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [CONFIG]")
}

func TestResolve_Failures(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		code       string
	}{
		{"malformed", "bounce rate please", "MALFORMED_EXPRESSION"},
		{"unknown function", "get_weather(city='Paris')", "UNKNOWN_FUNCTION"},
		{"missing argument", "get_sessions_by_country(date_range='last month')", "ARGUMENT_ERROR"},
		{"reversed dates", "get_bounce_rate(start_date='2025-05-31', end_date='2025-05-01')", "ARGUMENT_ERROR"},
	}

	cfg := testConfig(t, "")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "-c", cfg, "resolve", tt.expression)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}

func TestResolve_JSON(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "--format", "json", "resolve", bounceLastMonth)
	require.NoError(t, err)

	resp := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "get_bounce_rate", data["function"])
	assert.Equal(t, "success", data["outcome"])
	assert.Equal(t, "2025-06-12", data["anchor"])
	args, ok := data["arguments"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2025-05-01", args["start_date"])
	assert.Equal(t, "2025-05-31", args["end_date"])
}

func TestResolve_JSONFailure(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "--format", "json", "resolve", "get_sessions_by_country(date_range='last month')")
	require.Error(t, err)

	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ARGUMENT_ERROR", resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "country", details["argument"])
	assert.Equal(t, "argument_error", details["outcome"])
}

func TestResolve_ExecuteAndHistory(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "resolve", "--execute", bounceLastMonth)
	require.NoError(t, err)
	assert.Contains(t, out, "bounce_rate")
	assert.Contains(t, out, "0.4286")
	assert.Contains(t, out, "(1 row)")

	_, _, err = execute(t, "-c", cfg, "resolve", "-x", "get_weather(city='Paris')")
	require.Error(t, err)

	out, _, err = execute(t, "-c", cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "OUTCOME")
	assert.Contains(t, out, bounceLastMonth)
	assert.Contains(t, out, "unknown_function")

	out, _, err = execute(t, "-c", cfg, "history", "--outcome", "success")
	require.NoError(t, err)
	assert.Contains(t, out, bounceLastMonth)
	assert.NotContains(t, out, "get_weather")
}

func TestDates(t *testing.T) {
	cfg := testConfig(t, "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"last", "month"}, "2025-05-01 .. 2025-05-31  (last_month, 31 days)"},
		{[]string{"this week"}, "2025-06-09 .. 2025-06-15  (this_week, 7 days)"},
		{[]string{"Q1 2025"}, "2025-01-01 .. 2025-03-31  (quarter, 90 days)"},
		{[]string{"--anchor", "2025-03-05", "past 7 days"}, "2025-02-27 .. 2025-03-05  (past_7_days, 7 days)"},
		{[]string{"whenever"}, "2025-06-01 .. 2025-06-30  (fallback, 30 days)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"-c", cfg, "dates"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}
}

func TestDates_JSON(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "--format", "json", "dates", "last month")
	require.NoError(t, err)

	data := decode(t, out).Data.(map[string]any)
	assert.Equal(t, "2025-05-01", data["start_date"])
	assert.Equal(t, "2025-05-31", data["end_date"])
	assert.Equal(t, "last_month", data["rule"])
	assert.EqualValues(t, 31, data["days"])
}

func TestFunctions(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "functions")
	require.NoError(t, err)
	assert.Contains(t, out, `get_top_pages(start_date, end_date, limit="10")`)
	assert.Contains(t, out, "21 functions")
}

func TestFunctions_CustomCatalog(t *testing.T) {
	dir := t.TempDir()
	src := `
package custom

function: get_signups: {
	description: "Signups for a day."
	params: day: {type: "date"}
	sql: "SELECT n FROM signups WHERE day = '{day}'"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.cue"), []byte(src), 0o644))
	cfg := testConfig(t, "catalog:\n  dir: "+dir+"\n")

	out, _, err := execute(t, "-c", cfg, "functions")
	require.NoError(t, err)
	assert.Contains(t, out, "get_signups(day)")
	assert.Contains(t, out, "22 functions")

	out, _, err = execute(t, "-c", cfg, "resolve", "get_signups(day='2025-06-01')")
	require.NoError(t, err)
	assert.Contains(t, out, "WHERE day = '2025-06-01'")
}

func TestAsk(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "ask", "What was the bounce rate", "last month?")
	require.NoError(t, err)
	assert.Contains(t, out, "-- "+bounceLastMonth)
	assert.Contains(t, out, "0.4286")

	out, _, err = execute(t, "-c", cfg, "--format", "json", "history", "--limit", "1")
	require.NoError(t, err)
	records := decode(t, out).Data.(map[string]any)["records"].([]any)
	require.Len(t, records, 1)
	rec := records[0].(map[string]any)
	assert.Equal(t, "What was the bounce rate last month?", rec["question"])
	assert.EqualValues(t, 1, rec["row_count"])
}

func TestAsk_DryRun(t *testing.T) {
	cfg := testConfig(t, "")
	t.Setenv("ASKSQL_WAREHOUSE_DRIVER", "bigquery")

	out, _, err := execute(t, "-c", cfg, "ask", "--dry-run", "what was the bounce rate last month?")
	require.NoError(t, err)
	assert.Contains(t, out, "BETWEEN '2025-05-01' AND '2025-05-31'")
	assert.NotContains(t, out, "(1 row)")
}

func TestAsk_Failures(t *testing.T) {
	cfg := testConfig(t, "")

	t.Run("no intent", func(t *testing.T) {
		out, _, err := execute(t, "-c", cfg, "ask", "how tall is the eiffel tower?")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [INTENT]")
		assert.Contains(t, out, "rephrasing")
	})

	t.Run("argument error", func(t *testing.T) {
		out, _, err := execute(t, "-c", cfg, "ask", "sessions by country")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "Error [ARGUMENT_ERROR]")
	})
}

func TestAsk_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ASKSQL_INTENT_API_KEY", "")
	cfg := testConfig(t, "")
	t.Setenv("ASKSQL_INTENT_PROVIDER", "openai")

	out, _, err := execute(t, "-c", cfg, "ask", "anything")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [INTENT]")
}

func TestHistory_Disabled(t *testing.T) {
	cfg := testConfig(t, "")
	t.Setenv("ASKSQL_HISTORY_ENABLED", "false")

	out, _, err := execute(t, "-c", cfg, "history")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [HISTORY]")
}

func TestHistory_Empty(t *testing.T) {
	cfg := testConfig(t, "")

	out, _, err := execute(t, "-c", cfg, "history")
	require.NoError(t, err)
	assert.Equal(t, "no history\n", out)
}

func TestHistory_NegativeLimit(t *testing.T) {
	cfg := testConfig(t, "")

	_, _, err := execute(t, "-c", cfg, "history", "--limit", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMissingConfigFile(t *testing.T) {
	out, _, err := execute(t, "-c", filepath.Join(t.TempDir(), "nope.yaml"), "functions")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [CONFIG]")
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t, "server:\n  shutdown_timeout: 1s\n")

	ctx, cancel := context.WithCancel(context.Background())
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"-c", cfg, "serve", "--addr", "127.0.0.1:0"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
