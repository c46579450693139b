package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksql/internal/catalog"
	"github.com/roach88/asksql/internal/ir"
)

func openSample(t *testing.T) *SQLite {
	t.Helper()
	wh, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { wh.Close() })

	c := catalog.DefaultConstants
	require.NoError(t, wh.CreateSampleTables(context.Background(), c.Project, c.Dataset))
	return wh
}

// render resolves a builtin query with the May 2025 sample window.
func render(t *testing.T, function string, extra ...string) string {
	t.Helper()
	cat, err := catalog.Builtin()
	require.NoError(t, err)

	args := ir.NewArgs()
	args.Set("start_date", "2025-05-01")
	args.Set("end_date", "2025-05-31")
	for i := 0; i+1 < len(extra); i += 2 {
		args.Set(extra[i], extra[i+1])
	}
	q, err := cat.Registry(catalog.DefaultConstants).Invoke(function, args)
	require.NoError(t, err)
	return q
}

func TestSQLite_BounceRate(t *testing.T) {
	wh := openSample(t)

	rs, err := wh.Execute(context.Background(), render(t, "get_bounce_rate"))
	require.NoError(t, err)
	assert.Equal(t, []string{"bounce_rate"}, rs.Columns)
	require.Equal(t, 1, rs.Len())
	assert.InDelta(t, 3.0/7.0, rs.Rows[0][0], 1e-9)
}

func TestSQLite_SessionsByCountry(t *testing.T) {
	wh := openSample(t)

	rs, err := wh.Execute(context.Background(), render(t, "get_sessions_by_country", "country", "France"))
	require.NoError(t, err)
	assert.Equal(t, []string{"country", "session_count"}, rs.Columns)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []any{"France", int64(3)}, rs.Rows[0])
}

func TestSQLite_CompactDateTables(t *testing.T) {
	wh := openSample(t)

	rs, err := wh.Execute(context.Background(), render(t, "get_top_pages", "limit", "2"))
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, []any{"Home", int64(3)}, rs.Rows[0])
	assert.Equal(t, []any{"Pricing", int64(2)}, rs.Rows[1])

	rs, err = wh.Execute(context.Background(), render(t, "get_revenue_by_country"))
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "United Arab Emirates", rs.Rows[0][0])
	assert.InDelta(t, 125.25, rs.Rows[0][1], 1e-9)
}

func TestSQLite_Records(t *testing.T) {
	wh := openSample(t)

	rs, err := wh.Execute(context.Background(), render(t, "get_sessions_by_device"))
	require.NoError(t, err)

	total := int64(0)
	for _, rec := range rs.Records() {
		assert.Contains(t, rec, "device_category")
		total += rec["sessions"].(int64)
	}
	assert.Equal(t, int64(7), total)
}

func TestSQLite_EmptyResult(t *testing.T) {
	wh := openSample(t)

	rs, err := wh.Execute(context.Background(), render(t, "get_sessions_by_country", "country", "Atlantis"))
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
	assert.NotNil(t, rs.Rows)
}

func TestSQLite_QueryError(t *testing.T) {
	wh, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer wh.Close()

	_, err = wh.Execute(context.Background(), "SELECT * FROM `missing.table`")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such table")
}

func TestSQLite_SafeDivide(t *testing.T) {
	wh, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer wh.Close()

	rs, err := wh.Execute(context.Background(), "SELECT SAFE_DIVIDE(1, 4), SAFE_DIVIDE(1, 0), SAFE_DIVIDE(NULL, 2)")
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, []any{0.25, nil, nil}, rs.Rows[0])
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.5, safeDivide(int64(5), int64(2)))
	assert.Equal(t, 0.5, safeDivide(1.0, int64(2)))
	assert.Nil(t, safeDivide(int64(1), int64(0)))
	assert.Nil(t, safeDivide("a", int64(1)))
	assert.Nil(t, safeDivide(nil, int64(1)))
}

func TestCreateSampleTables_Idempotent(t *testing.T) {
	wh := openSample(t)
	c := catalog.DefaultConstants
	require.NoError(t, wh.CreateSampleTables(context.Background(), c.Project, c.Dataset))

	rs, err := wh.Execute(context.Background(), "SELECT COUNT(*) FROM `your_project.ga4_sample_ai_agent.flat_sessions`")
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleSessions)), rs.Rows[0][0])
}

func TestResultSet_NilSafe(t *testing.T) {
	var rs *ResultSet
	assert.Equal(t, 0, rs.Len())
	assert.Nil(t, rs.Records())
}
