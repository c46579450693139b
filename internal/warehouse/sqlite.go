package warehouse

import (
	"context"
	"database/sql"

	"github.com/cockroachdb/errors"
	"github.com/mattn/go-sqlite3"
)

// sqliteDriver is go-sqlite3 with the BigQuery helpers the catalog uses.
const sqliteDriver = "sqlite3_asksql"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("SAFE_DIVIDE", safeDivide, true)
		},
	})
}

// safeDivide mirrors BigQuery SAFE_DIVIDE: NULL instead of a division error.
func safeDivide(a, b any) any {
	x, okX := toFloat(a)
	y, okY := toFloat(b)
	if !okX || !okY || y == 0 {
		return nil
	}
	return x / y
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// SQLite executes queries against a local SQLite database. Backtick-quoted
// names such as `project.dataset.flat_sessions` are single table names in
// SQLite, so catalog queries run unchanged against tables created with
// those names (see CreateSampleTables).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. Use ":memory:" for an
// ephemeral warehouse.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite warehouse")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect sqlite warehouse")
	}
	// A single connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return &SQLite{db: db}, nil
}

// DB returns the underlying database for seeding and tests.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Execute runs query and materializes every row.
func (s *SQLite) Execute(ctx context.Context, query string) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	rs := &ResultSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rs, nil
}
