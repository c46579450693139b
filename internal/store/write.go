package store

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/roach88/asksql/internal/ir"
)

// Record is one resolution in the history.
type Record struct {
	Seq          int64         `json:"seq"`
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	Anchor       civil.Date    `json:"anchor"`
	Question     string        `json:"question,omitempty"`
	Expression   string        `json:"expression"`
	Function     string        `json:"function,omitempty"`
	Arguments    *ir.Args      `json:"arguments,omitempty"`
	Outcome      string        `json:"outcome"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	Query        string        `json:"query,omitempty"`
	QueryHash    string        `json:"query_hash,omitempty"`
	RowCount     int           `json:"row_count"`
	Duration     time.Duration `json:"duration_ns"`
}

// Append inserts rec and returns its sequence number.
//
// A record without an ID gets a random UUID. Records with an ID that is
// already stored are ignored (ON CONFLICT DO NOTHING) and the existing
// sequence number is returned.
//
// QueryHash is computed from Function, Arguments and Query when a query is
// present and no hash was supplied.
func (s *Store) Append(ctx context.Context, rec *Record) (int64, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.QueryHash == "" && rec.Query != "" {
		h, err := ir.QueryHash(rec.Function, rec.Arguments, rec.Query)
		if err != nil {
			return 0, errors.Wrap(err, "append record")
		}
		rec.QueryHash = h
	}

	argsJSON, err := marshalArgs(rec.Arguments)
	if err != nil {
		return 0, errors.Wrap(err, "append record")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, created_at, anchor, question, expression, function, arguments,
		 outcome, error_code, error_message, query, query_hash, row_count, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		formatTime(rec.CreatedAt),
		anchorText(rec.Anchor),
		rec.Question,
		rec.Expression,
		rec.Function,
		argsJSON,
		rec.Outcome,
		rec.ErrorCode,
		rec.ErrorMessage,
		rec.Query,
		rec.QueryHash,
		rec.RowCount,
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "append record")
	}

	if err := s.db.QueryRowContext(ctx, `SELECT seq FROM resolutions WHERE id = ?`, rec.ID).Scan(&rec.Seq); err != nil {
		return 0, errors.Wrap(err, "append record")
	}
	return rec.Seq, nil
}

func anchorText(d civil.Date) string {
	if !d.IsValid() {
		return ""
	}
	return d.String()
}
