// Package normalize reconciles raw call arguments with the start_date/end_date
// convention used by every query template.
package normalize

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/roach88/asksql/internal/dates"
	"github.com/roach88/asksql/internal/ir"
)

// Normalize resolves relative date phrases in args against anchor.
//
// Values that are not date expressions keep their key and value. A date
// expression is replaced according to its key:
//
//	key contains "start"  -> start_date = range start
//	key contains "end"    -> end_date   = range end
//	otherwise             -> start_date and end_date from the whole range
//
// Later writes to a canonical key overwrite earlier ones. The input is not
// modified. Normalize never fails; incomplete or inverted pairs are reported
// by CheckDatePair and unknown keys by the registry.
func Normalize(args *ir.Args, anchor civil.Date) *ir.Args {
	out := ir.NewArgs()
	for _, key := range args.Keys() {
		value, _ := args.Get(key)
		if !dates.IsDateExpression(value) {
			out.Set(key, value)
			continue
		}

		r := dates.Resolve(value, anchor)
		lower := strings.ToLower(key)
		switch {
		case strings.Contains(lower, "start"):
			out.Set(ir.StartDateKey, r.Start.String())
		case strings.Contains(lower, "end"):
			out.Set(ir.EndDateKey, r.End.String())
		default:
			out.Set(ir.StartDateKey, r.Start.String())
			out.Set(ir.EndDateKey, r.End.String())
		}
	}
	return out
}

// CheckDatePair rejects a partial date pair and a pair whose start falls
// after its end. Values that are not ISO dates are left for the registry's
// type check.
func CheckDatePair(args *ir.Args) error {
	start, hasStart := args.Get(ir.StartDateKey)
	end, hasEnd := args.Get(ir.EndDateKey)

	switch {
	case hasStart && !hasEnd:
		return ir.NewArgumentError("", ir.EndDateKey,
			fmt.Sprintf("%s is required when %s is given", ir.EndDateKey, ir.StartDateKey))
	case hasEnd && !hasStart:
		return ir.NewArgumentError("", ir.StartDateKey,
			fmt.Sprintf("%s is required when %s is given", ir.StartDateKey, ir.EndDateKey))
	case !hasStart:
		return nil
	}

	s, okStart := ir.ParseISODate(start)
	e, okEnd := ir.ParseISODate(end)
	if okStart && okEnd && e.Before(s) {
		return ir.NewArgumentError("", ir.StartDateKey,
			fmt.Sprintf("%s %s is after %s %s", ir.StartDateKey, start, ir.EndDateKey, end))
	}
	return nil
}
