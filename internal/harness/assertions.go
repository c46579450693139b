package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/asksql/internal/pipeline"
)

// EvaluateExpect checks res against want and returns one message per
// mismatch. An empty slice means every expectation held.
func EvaluateExpect(want Expect, res *pipeline.Result) []string {
	var errs []string

	if res.Outcome != want.Outcome {
		msg := fmt.Sprintf("outcome: expected %s, got %s", want.Outcome, res.Outcome)
		if res.Err != nil {
			msg += fmt.Sprintf(" (%s)", res.Err.Message)
		}
		errs = append(errs, msg)
	}

	if want.Function != "" && res.Function() != want.Function {
		errs = append(errs, fmt.Sprintf("function: expected %q, got %q", want.Function, res.Function()))
	}

	if want.Arguments != nil {
		errs = append(errs, compareArguments(want.Arguments, res.Arguments.Map())...)
	}

	for _, sub := range want.QueryContains {
		if !strings.Contains(res.Query, sub) {
			errs = append(errs, fmt.Sprintf("query: missing %q", sub))
		}
	}

	if want.Argument != "" {
		got := ""
		if res.Err != nil {
			got = res.Err.Argument
		}
		if got != want.Argument {
			errs = append(errs, fmt.Sprintf("argument: expected %q, got %q", want.Argument, got))
		}
	}
	return errs
}

// compareArguments reports missing, unexpected and differing keys in sorted
// key order so messages are deterministic.
func compareArguments(want, got map[string]string) []string {
	keys := make(map[string]struct{}, len(want)+len(got))
	for k := range want {
		keys[k] = struct{}{}
	}
	for k := range got {
		keys[k] = struct{}{}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var errs []string
	for _, k := range sorted {
		w, inWant := want[k]
		g, inGot := got[k]
		switch {
		case !inGot:
			errs = append(errs, fmt.Sprintf("arguments.%s: missing, expected %q", k, w))
		case !inWant:
			errs = append(errs, fmt.Sprintf("arguments.%s: unexpected value %q", k, g))
		case w != g:
			errs = append(errs, fmt.Sprintf("arguments.%s: expected %q, got %q", k, w, g))
		}
	}
	return errs
}
