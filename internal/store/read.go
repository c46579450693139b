package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// Filter narrows Recent.
type Filter struct {
	// Limit caps the number of records. Zero or negative means 50.
	Limit int

	// Outcome keeps only records with this outcome when non-empty.
	Outcome string

	// Function keeps only records for this function when non-empty.
	Function string
}

const defaultLimit = 50

const selectColumns = `
	SELECT seq, id, created_at, anchor, question, expression, function, arguments,
	       outcome, error_code, error_message, query, query_hash, row_count, duration_ms
	FROM resolutions`

// Recent returns the newest records first (ORDER BY seq DESC).
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var where []string
	var args []any
	if f.Outcome != "" {
		where = append(where, "outcome = ?")
		args = append(args, f.Outcome)
	}
	if f.Function != "" {
		where = append(where, "function = ?")
		args = append(args, f.Function)
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate history")
	}
	return records, nil
}

// Get returns the record with the given ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return rec, err
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM resolutions").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count history")
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		rec        Record
		createdAt  string
		anchor     string
		argsJSON   string
		durationMS int64
	)
	err := sc.Scan(
		&rec.Seq, &rec.ID, &createdAt, &anchor, &rec.Question, &rec.Expression,
		&rec.Function, &argsJSON, &rec.Outcome, &rec.ErrorCode, &rec.ErrorMessage,
		&rec.Query, &rec.QueryHash, &rec.RowCount, &durationMS,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "scan record")
	}

	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, err
	}
	if anchor != "" {
		if rec.Anchor, err = civil.ParseDate(anchor); err != nil {
			return Record{}, errors.Wrapf(err, "parse anchor %q", anchor)
		}
	}
	if rec.Arguments, err = unmarshalArgs(argsJSON); err != nil {
		return Record{}, err
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, nil
}
