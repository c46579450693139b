package store

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roach88/asksql/internal/ir"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalArgs converts arguments to canonical JSON TEXT for storage.
// Nil arguments are stored as an empty object.
func marshalArgs(args *ir.Args) (string, error) {
	if args == nil {
		return "{}", nil
	}
	data, err := ir.MarshalCanonical(args)
	if err != nil {
		return "", errors.Wrap(err, "marshal arguments")
	}
	return string(data), nil
}

// unmarshalArgs parses stored arguments. Keys come back in canonical order.
func unmarshalArgs(s string) (*ir.Args, error) {
	args := ir.NewArgs()
	if err := args.UnmarshalJSON([]byte(s)); err != nil {
		return nil, errors.Wrap(err, "unmarshal arguments")
	}
	return args, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse created_at %q", s)
	}
	return t, nil
}
