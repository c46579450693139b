// Package catalog declares query template generators in CUE and compiles
// them into a registry.Registry.
//
// A catalog file declares functions under the top-level `function` struct:
//
//	function: get_bounce_rate: {
//		description: "Share of sessions with a single pageview."
//		table:       "flat_sessions"
//		params: {
//			start_date: {type: "date"}
//			end_date: {type: "date"}
//		}
//		sql: """
//			SELECT ... WHERE session_start_date BETWEEN '{start_date}' AND '{end_date}'
//			"""
//	}
//
// Parameters keep their declaration order. `{project}` and `{dataset}` are
// filled from Constants rather than from call arguments.
package catalog

import (
	"embed"
	"sort"
	"sync"

	"cuelang.org/go/cue/token"

	"github.com/roach88/asksql/internal/registry"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed builtin/*.cue
var builtinFS embed.FS

// Function is one compiled catalog entry.
type Function struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Table       string              `json:"table,omitempty"`
	DateFormat  registry.DateFormat `json:"date_format"`
	Params      []registry.Param    `json:"params"`
	SQL         string              `json:"sql"`

	Pos token.Pos `json:"-"`
}

// Constants are the fixed placeholders shared by every template.
type Constants struct {
	Project string
	Dataset string
}

// DefaultConstants match the sample GA4 export the builtin catalog targets.
var DefaultConstants = Constants{Project: "your_project", Dataset: "ga4_sample_ai_agent"}

func (c Constants) placeholders() map[string]string {
	return map[string]string{"project": c.Project, "dataset": c.Dataset}
}

// Generator builds the registry generator for f.
func (f *Function) Generator(c Constants) *registry.TemplateGenerator {
	return registry.NewTemplate(f.Name, f.SQL, f.Params,
		registry.WithDescription(f.Description),
		registry.WithDateFormat(f.DateFormat),
		registry.WithConstants(c.placeholders()),
	)
}

// Catalog is an ordered set of functions with unique names.
type Catalog struct {
	functions []Function
	index     map[string]int
}

func newCatalog() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// add inserts fn, replacing an existing function with the same name in place.
func (c *Catalog) add(fn Function) {
	if i, ok := c.index[fn.Name]; ok {
		c.functions[i] = fn
		return
	}
	c.index[fn.Name] = len(c.functions)
	c.functions = append(c.functions, fn)
}

// Functions returns the functions sorted by name.
func (c *Catalog) Functions() []Function {
	out := append([]Function(nil), c.functions...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the function named name.
func (c *Catalog) Lookup(name string) (Function, bool) {
	i, ok := c.index[name]
	if !ok {
		return Function{}, false
	}
	return c.functions[i], true
}

// Len returns the number of functions.
func (c *Catalog) Len() int {
	return len(c.functions)
}

// Merge returns a new catalog holding c's functions overridden by other's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := newCatalog()
	for _, fn := range c.functions {
		out.add(fn)
	}
	if other != nil {
		for _, fn := range other.functions {
			out.add(fn)
		}
	}
	return out
}

// Registry registers every function into a new registry.
func (c *Catalog) Registry(consts Constants) *registry.Registry {
	r := registry.New()
	for i := range c.functions {
		fn := &c.functions[i]
		r.Register(fn.Name, fn.Generator(consts))
	}
	return r
}

var builtin = sync.OnceValues(compileBuiltin)

// Builtin returns the embedded catalog. It is compiled once per process.
func Builtin() (*Catalog, error) {
	return builtin()
}
