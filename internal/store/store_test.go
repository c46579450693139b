package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='resolutions'").Scan(&name)
	if err != nil {
		t.Errorf("resolutions table not found after repeated opens: %v", err)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

func TestOpen_MigratesVersionZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	// Build a version 0 database by hand: the base schema, no query_hash.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("create v0 schema: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO resolutions (id, created_at, anchor, expression, outcome)
		VALUES ('old', '2025-01-01T00:00:00.000000000Z', '2025-01-01', 'f()', 'success')`); err != nil {
		t.Fatalf("insert v0 row: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var hash string
	if err := s.db.QueryRow("SELECT query_hash FROM resolutions WHERE id = 'old'").Scan(&hash); err != nil {
		t.Fatalf("query_hash column missing after migration: %v", err)
	}
	if hash != "" {
		t.Errorf("query_hash = %q, want empty default", hash)
	}

	var index string
	err = s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_resolutions_query_hash'").Scan(&index)
	if err != nil {
		t.Errorf("query_hash index missing: %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var s Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on zero Store = %v", err)
	}
}
