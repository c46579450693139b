package callexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/asksql/internal/ir"
)

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantName string
		wantKeys []string
		wantArgs map[string]string
	}{
		{
			name:     "two quoted dates",
			raw:      "get_bounce_rate(start_date='2021-01-01', end_date='2021-01-31')",
			wantName: "get_bounce_rate",
			wantKeys: []string{"start_date", "end_date"},
			wantArgs: map[string]string{"start_date": "2021-01-01", "end_date": "2021-01-31"},
		},
		{
			name:     "comma inside quotes",
			raw:      "get_users_by_country(country='Korea, Republic of', date_range='last month')",
			wantName: "get_users_by_country",
			wantKeys: []string{"country", "date_range"},
			wantArgs: map[string]string{"country": "Korea, Republic of", "date_range": "last month"},
		},
		{
			name:     "escaped quote",
			raw:      `f(name='O\'Brien')`,
			wantName: "f",
			wantKeys: []string{"name"},
			wantArgs: map[string]string{"name": "O'Brien"},
		},
		{
			name:     "bare words joined",
			raw:      "get_total_users(date_range=last   month)",
			wantName: "get_total_users",
			wantKeys: []string{"date_range"},
			wantArgs: map[string]string{"date_range": "last month"},
		},
		{
			name:     "empty value",
			raw:      "f(a=)",
			wantName: "f",
			wantKeys: []string{"a"},
			wantArgs: map[string]string{"a": ""},
		},
		{
			name:     "no arguments with spaces",
			raw:      "  get_top_pages ( )  ",
			wantName: "get_top_pages",
			wantKeys: []string{},
			wantArgs: map[string]string{},
		},
		{
			name:     "duplicate key",
			raw:      `f(a="1", a="2")`,
			wantName: "f",
			wantKeys: []string{"a"},
			wantArgs: map[string]string{"a": "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseStrict(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, expr.Name)
			assert.Equal(t, tt.wantKeys, expr.Args.Keys())
			assert.Equal(t, tt.wantArgs, expr.Args.Map())
		})
	}
}

func TestParseStrict_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare word", "bad_expr"},
		{"empty", ""},
		{"positional argument", "get_top_pages('last week', limit=5)"},
		{"trailing text", "get_bounce_rate() please"},
		{"unterminated string", "f(a='x)"},
		{"leading digit", "1abc(a='b')"},
		{"dotted name", "os.system(cmd='ls')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := ParseStrict(tt.raw)
			require.Error(t, err)
			assert.Nil(t, expr)
			assert.True(t, ir.IsMalformedExpression(err))
		})
	}
}

// Both parsers agree on well-formed input without embedded commas.
func TestParseStrict_AgreesWithParse(t *testing.T) {
	raws := []string{
		"get_bounce_rate(start_date='2021-01-01', end_date='2021-01-31')",
		"get_total_users(date_range='last month')",
		`get_users_by_country(country="France")`,
		"get_top_pages()",
	}
	for _, raw := range raws {
		a, err := Parse(raw)
		require.NoError(t, err)
		b, err := ParseStrict(raw)
		require.NoError(t, err)

		assert.Equal(t, a.Name, b.Name, raw)
		assert.True(t, a.Args.Equal(b.Args), "args differ for %s", raw)
	}
}
