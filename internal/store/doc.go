// Package store keeps the history of resolutions in SQLite.
//
// Each record captures the question, the call expression, the normalized
// arguments, the rendered query and the outcome. Records are append-only and
// read back in insertion order (seq).
package store
