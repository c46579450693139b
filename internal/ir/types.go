package ir

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
)

// Canonical argument keys for a date range.
const (
	StartDateKey = "start_date"
	EndDateKey   = "end_date"
)

// identifierPattern is the grammar for a callable name.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// isoDatePattern matches a literal YYYY-MM-DD value.
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsIdentifier reports whether s is a valid callable name.
func IsIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// IsISODate reports whether s has the literal YYYY-MM-DD shape.
// It does not check that the date exists; use ParseISODate for that.
func IsISODate(s string) bool {
	return isoDatePattern.MatchString(s)
}

// ParseISODate parses a YYYY-MM-DD value into a calendar date.
func ParseISODate(s string) (civil.Date, bool) {
	if !IsISODate(s) {
		return civil.Date{}, false
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}

// CallExpression is a parsed `name(key=value, ...)` invocation.
// Values are raw strings; no coercion is applied.
type CallExpression struct {
	Name string `json:"name"`
	Args *Args  `json:"arguments"`
}

// String renders the expression back into call syntax with single-quoted values.
func (c *CallExpression) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	if c.Args != nil {
		for i, k := range c.Args.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			v, _ := c.Args.Get(k)
			b.WriteString(k)
			b.WriteString("='")
			b.WriteString(v)
			b.WriteByte('\'')
		}
	}
	b.WriteByte(')')
	return b.String()
}

// DateRange is an inclusive pair of calendar dates with Start <= End.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Days returns the number of days covered by the range, inclusive.
func (r DateRange) Days() int {
	return r.End.DaysSince(r.Start) + 1
}

// Valid reports whether the range is well-formed.
func (r DateRange) Valid() bool {
	return r.Start.IsValid() && r.End.IsValid() && !r.End.Before(r.Start)
}

// String renders the range as "start..end".
func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}
