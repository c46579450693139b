// Package warehouse executes rendered queries against a tabular store.
//
// The pipeline never interprets query text; an Executor receives exactly the
// string the registry produced and returns rows or an error that is passed
// through unmodified.
package warehouse

import (
	"context"
)

// ResultSet is a materialized query result.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Records returns the rows as column-keyed maps.
func (r *ResultSet) Records() []map[string]any {
	if r == nil {
		return nil
	}
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for j, col := range r.Columns {
			if j < len(row) {
				rec[col] = row[j]
			}
		}
		out[i] = rec
	}
	return out
}

// Executor runs one query.
//
// Thread-safety: implementations must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context, query string) (*ResultSet, error)
	Close() error
}
