// Package callexpr parses textual function-call expressions such as
//
//	get_bounce_rate(start_date='2021-01-01', end_date='2021-01-31')
//
// into a name and an ordered mapping of raw string arguments.
//
// Two parsers are provided. Parse is the compatible parser: it splits the
// argument list on every comma, including commas inside quoted values, and
// silently drops tokens without '='. ParseStrict is a quote-aware grammar that
// rejects anything it cannot account for. Parse is the default; ParseStrict is
// enabled with the parser.strict setting.
package callexpr

import (
	"regexp"
	"strings"

	"github.com/roach88/asksql/internal/ir"
)

// callPattern matches `identifier(arg_list)` over the whole trimmed input.
var callPattern = regexp.MustCompile(`^([A-Za-z_]\w*)\((.*)\)$`)

// Parse converts one line of text into a CallExpression.
//
// Behavior kept for compatibility with existing prompts:
//   - arguments are split on every comma, quoted or not
//   - tokens without '=' are dropped
//   - duplicate keys keep their first position and their last value
//   - values are trimmed and lose exactly one layer of matching quotes
//
// Returns a MALFORMED_EXPRESSION *ir.ResolutionError when the text is not
// shaped like a call.
func Parse(raw string) (*ir.CallExpression, error) {
	m := callPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, ir.NewMalformedExpressionError(raw, "")
	}

	args := ir.NewArgs()
	for _, part := range strings.Split(m[2], ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		args.Set(strings.TrimSpace(key), Unquote(strings.TrimSpace(value)))
	}

	return &ir.CallExpression{Name: m[1], Args: args}, nil
}

// Unquote strips one layer of matching single or double quotes.
// Values without matching quotes at both ends are returned unchanged.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if first == last && (first == '\'' || first == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
