// Package harness runs conformance scenarios against the resolution pipeline.
//
// A scenario pins an anchor date and a call expression, then states what the
// pipeline must produce. Each run also yields a snapshot that is compared
// byte-for-byte with a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: bounce_rate_last_month
//	description: "Relative range expands to start_date and end_date"
//	anchor: "2025-06-12"
//	expression: get_bounce_rate(date_range='last month')
//	strict: false
//	expect:
//	  outcome: success
//	  function: get_bounce_rate
//	  arguments: { start_date: "2025-05-01", end_date: "2025-05-31" }
//	  query_contains: ["BETWEEN '2025-05-01' AND '2025-05-31'"]
//
// Failure scenarios name the outcome and, for argument errors, the offending
// argument:
//
//	expect:
//	  outcome: argument_error
//	  argument: country
//
// # Golden Files
//
// The snapshot is the canonical JSON (RFC 8785) of
// {name, outcome, function, arguments, query, error_code}, with empty fields
// omitted. Golden files live next to the scenarios at golden/<name>.golden.
// Regenerate with `asksql test <dir> --update` or `go test ./internal/harness -update`.
package harness
