package registry

import (
	"strings"

	"github.com/roach88/asksql/internal/ir"
)

// DateFormat names how a template writes date parameters into SQL.
type DateFormat string

const (
	// DateFormatISO keeps YYYY-MM-DD.
	DateFormatISO DateFormat = "iso"

	// DateFormatCompact strips '-' giving YYYYMMDD, for tables keyed by event_date.
	DateFormatCompact DateFormat = "compact"
)

// Valid reports whether f is a known format.
func (f DateFormat) Valid() bool {
	return f == DateFormatISO || f == DateFormatCompact
}

// Format applies f to a parameter value just before substitution.
// Only date parameters are affected.
func (f DateFormat) Format(p Param, value string) string {
	if f == DateFormatCompact && p.Type == TypeDate {
		return strings.ReplaceAll(value, "-", "")
	}
	return value
}

// TemplateGenerator substitutes `{param}` placeholders in a fixed SQL text.
// Values are inserted verbatim; no quoting or escaping is applied.
type TemplateGenerator struct {
	name        string
	description string
	sql         string
	params      []Param
	format      DateFormat
	constants   map[string]string
}

// TemplateOption configures a TemplateGenerator.
type TemplateOption func(*TemplateGenerator)

// WithDescription sets the human description.
func WithDescription(d string) TemplateOption {
	return func(t *TemplateGenerator) { t.description = d }
}

// WithDateFormat sets the per-template date formatting hook.
func WithDateFormat(f DateFormat) TemplateOption {
	return func(t *TemplateGenerator) { t.format = f }
}

// WithConstants adds fixed placeholders such as {project} and {dataset}.
// Parameters with the same name take precedence.
func WithConstants(c map[string]string) TemplateOption {
	return func(t *TemplateGenerator) {
		for k, v := range c {
			t.constants[k] = v
		}
	}
}

// NewTemplate creates a generator named name rendering sql.
func NewTemplate(name, sql string, params []Param, opts ...TemplateOption) *TemplateGenerator {
	t := &TemplateGenerator{
		name:      name,
		sql:       sql,
		params:    append([]Param(nil), params...),
		format:    DateFormatISO,
		constants: make(map[string]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *TemplateGenerator) Name() string        { return t.name }
func (t *TemplateGenerator) Description() string { return t.description }
func (t *TemplateGenerator) SQL() string         { return t.sql }
func (t *TemplateGenerator) DateFormat() DateFormat {
	return t.format
}

// Params returns a copy of the declared parameters in order.
func (t *TemplateGenerator) Params() []Param {
	return append([]Param(nil), t.params...)
}

// Generate renders the SQL. Placeholders are replaced in a single pass, so a
// substituted value containing `{x}` is never expanded again.
func (t *TemplateGenerator) Generate(args *ir.Args) (string, error) {
	values := make(map[string]string, len(t.constants)+len(t.params))
	for k, v := range t.constants {
		values[k] = v
	}
	for _, p := range t.params {
		v, _ := args.Get(p.Name)
		values[p.Name] = t.format.Format(p, v)
	}

	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(t.sql), nil
}
