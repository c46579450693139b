package ir

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"get_bounce_rate", true},
		{"_private", true},
		{"Fn2", true},
		{"2fn", false},
		{"get-bounce", false},
		{"", false},
		{"a b", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsIdentifier(tt.in))
		})
	}
}

func TestParseISODate(t *testing.T) {
	d, ok := ParseISODate("2025-02-28")
	assert.True(t, ok)
	assert.Equal(t, civil.Date{Year: 2025, Month: 2, Day: 28}, d)

	_, ok = ParseISODate("2025-02-30")
	assert.False(t, ok, "shape matches but the day does not exist")

	_, ok = ParseISODate("20250228")
	assert.False(t, ok)

	assert.True(t, IsISODate("2025-02-30"))
	assert.False(t, IsISODate("2025-2-3"))
}

func TestCallExpressionString(t *testing.T) {
	args := NewArgs()
	args.Set("start_date", "2021-01-01")
	args.Set("end_date", "2021-01-31")
	expr := &CallExpression{Name: "get_bounce_rate", Args: args}

	assert.Equal(t, "get_bounce_rate(start_date='2021-01-01', end_date='2021-01-31')", expr.String())
	assert.Equal(t, "f()", (&CallExpression{Name: "f"}).String())
}

func TestDateRange(t *testing.T) {
	r := DateRange{
		Start: civil.Date{Year: 2025, Month: 5, Day: 1},
		End:   civil.Date{Year: 2025, Month: 5, Day: 31},
	}
	assert.True(t, r.Valid())
	assert.Equal(t, 31, r.Days())
	assert.Equal(t, "2025-05-01..2025-05-31", r.String())

	reversed := DateRange{Start: r.End, End: r.Start}
	assert.False(t, reversed.Valid())
}
