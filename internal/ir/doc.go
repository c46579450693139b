// Package ir provides the shared representation types for asksql.
//
// This package contains type definitions and the error taxonomy. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Args preserve source order; keys are unique (last write wins)
//   - Dates are calendar dates (civil.Date), never timestamps
//   - Resolution failures are values of *ResolutionError, not panics
//   - Canonical JSON (RFC 8785 style) is the only serialization used for hashing
package ir
