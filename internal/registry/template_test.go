package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_CompactDates(t *testing.T) {
	g := NewTemplate("get_pages", "WHERE event_date BETWEEN '{start_date}' AND '{end_date}' AND page = '{page}'",
		append(dateParams(), Param{Name: "page", Type: TypeString, Required: true}),
		WithDateFormat(DateFormatCompact))

	q, err := g.Generate(args("start_date", "2025-05-01", "end_date", "2025-05-31", "page", "2025-home"))
	require.NoError(t, err)
	assert.Equal(t, "WHERE event_date BETWEEN '20250501' AND '20250531' AND page = '2025-home'", q)
}

func TestTemplate_ISODatesByDefault(t *testing.T) {
	g := NewTemplate("f", "{start_date}", dateParams())
	assert.Equal(t, DateFormatISO, g.DateFormat())

	q, err := g.Generate(args("start_date", "2025-05-01", "end_date", "2025-05-31"))
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", q)
}

func TestTemplate_Constants(t *testing.T) {
	g := NewTemplate("f", "SELECT 1 FROM `{project}.{dataset}.flat_sessions`", nil,
		WithConstants(map[string]string{"project": "p", "dataset": "d"}))

	q, err := g.Generate(args())
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM `p.d.flat_sessions`", q)
}

func TestTemplate_ParamShadowsConstant(t *testing.T) {
	g := NewTemplate("f", "{dataset}", []Param{{Name: "dataset", Type: TypeString, Required: true}},
		WithConstants(map[string]string{"dataset": "fixed"}))

	q, err := g.Generate(args("dataset", "mine"))
	require.NoError(t, err)
	assert.Equal(t, "mine", q)
}

func TestTemplate_SinglePassSubstitution(t *testing.T) {
	g := NewTemplate("f", "'{country}' '{limit}'", []Param{
		{Name: "country", Type: TypeString, Required: true},
		{Name: "limit", Type: TypeString, Required: true},
	})

	q, err := g.Generate(args("country", "{limit}", "limit", "5"))
	require.NoError(t, err)
	assert.Equal(t, "'{limit}' '5'", q)
}

func TestTemplate_ValuesVerbatim(t *testing.T) {
	g := NewTemplate("f", "country = '{country}'", []Param{{Name: "country", Type: TypeString, Required: true}})

	q, err := g.Generate(args("country", "Cote d'Ivoire"))
	require.NoError(t, err)
	assert.Equal(t, "country = 'Cote d'Ivoire'", q)
}

func TestTemplate_ParamsIsCopy(t *testing.T) {
	g := NewTemplate("f", "", dateParams())
	p := g.Params()
	p[0].Name = "changed"
	assert.Equal(t, "start_date", g.Params()[0].Name)
}

func TestDescription(t *testing.T) {
	g := NewTemplate("f", "", nil, WithDescription("Bounce rate for a period."))
	assert.Equal(t, "Bounce rate for a period.", Description(g))
}
