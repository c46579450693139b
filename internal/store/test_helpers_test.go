package store

import (
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/roach88/asksql/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a successful record with minimal fields.
func createTestRecord(id, function string) *Record {
	args := ir.NewArgs()
	args.Set("start_date", "2025-05-01")
	args.Set("end_date", "2025-05-31")
	return &Record{
		ID:         id,
		CreatedAt:  time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC),
		Anchor:     civil.Date{Year: 2025, Month: time.June, Day: 15},
		Question:   "what happened last month?",
		Expression: function + "(date_range='last month')",
		Function:   function,
		Arguments:  args,
		Outcome:    "success",
		Query:      "SELECT 1",
		RowCount:   1,
		Duration:   42 * time.Millisecond,
	}
}
