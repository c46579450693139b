// Package registry maps function names to query template generators.
//
// A Registry is populated once at startup (see the catalog package) and is
// read-only afterwards. Registration happens-before any Invoke, so lookups
// take no locks.
package registry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/asksql/internal/ir"
)

// ParamType is the declared type of a generator parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeDate   ParamType = "date"
	TypeInt    ParamType = "int"
)

// Valid reports whether t is a known parameter type.
func (t ParamType) Valid() bool {
	switch t {
	case TypeString, TypeDate, TypeInt:
		return true
	}
	return false
}

// Param describes one named parameter of a generator.
type Param struct {
	Name     string    `json:"name"`
	Type     ParamType `json:"type"`
	Required bool      `json:"required"`

	// Default fills an optional parameter the caller omitted.
	// Nil means the parameter is substituted as an empty string.
	Default *string `json:"default,omitempty"`
}

// Generator renders query text for one named analytic question.
//
// Generate must be pure: identical args give byte-identical text. Args are
// already bound by Invoke, so every declared parameter is present.
type Generator interface {
	Name() string
	Params() []Param
	Generate(args *ir.Args) (string, error)
}

// Describer is implemented by generators that carry a human description.
type Describer interface {
	Description() string
}

// Registry is the process-wide function table.
type Registry struct {
	generators map[string]Generator
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds g under name. Registering a name again replaces the earlier
// generator.
func (r *Registry) Register(name string, g Generator) {
	r.generators[name] = g
}

// Lookup returns the generator registered under name.
func (r *Registry) Lookup(name string) (Generator, bool) {
	g, ok := r.generators[name]
	return g, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for n := range r.generators {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered generators.
func (r *Registry) Len() int {
	return len(r.generators)
}

// Invoke binds args to the generator registered under name and renders the
// query.
//
// Checks run in this order and stop at the first failure:
//  1. name is registered (UNKNOWN_FUNCTION)
//  2. no argument outside the declared parameters (ARGUMENT_ERROR)
//  3. every required parameter present; defaults fill optional ones
//  4. date parameters are YYYY-MM-DD, int parameters are base-10 integers
//
// A failure never yields partial query text.
func (r *Registry) Invoke(name string, args *ir.Args) (string, error) {
	g, ok := r.Lookup(name)
	if !ok {
		return "", ir.NewUnknownFunctionError(name)
	}

	bound, err := Bind(g, args)
	if err != nil {
		return "", err
	}

	query, err := g.Generate(bound)
	if err != nil {
		return "", ir.NewArgumentError(name, "", err.Error())
	}
	return query, nil
}

// Bind checks args against g's parameters and returns them in parameter
// order with defaults applied.
func Bind(g Generator, args *ir.Args) (*ir.Args, error) {
	name := g.Name()
	params := g.Params()

	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p.Name] = true
	}
	for _, key := range args.Keys() {
		if !declared[key] {
			return nil, ir.NewArgumentError(name, key, "unexpected argument")
		}
	}

	bound := ir.NewArgs()
	for _, p := range params {
		value, ok := args.Get(p.Name)
		switch {
		case ok:
		case p.Required:
			return nil, ir.NewArgumentError(name, p.Name, "missing required argument")
		case p.Default != nil:
			value = *p.Default
		}
		bound.Set(p.Name, value)
	}

	for _, p := range params {
		value, _ := bound.Get(p.Name)
		if err := p.Check(value); err != nil {
			return nil, ir.NewArgumentError(name, p.Name, err.Error())
		}
	}
	return bound, nil
}

// Check reports whether value satisfies the parameter type. An empty value
// for an optional parameter is accepted.
func (p Param) Check(value string) error {
	if value == "" && !p.Required {
		return nil
	}
	switch p.Type {
	case TypeDate:
		if _, ok := ir.ParseISODate(value); !ok {
			return fmt.Errorf("expected a YYYY-MM-DD date, got %q", value)
		}
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("expected an integer, got %q", value)
		}
	}
	return nil
}

// Signature renders g as `name(a, b, c=default)` for listings and prompts.
func Signature(g Generator) string {
	var b strings.Builder
	b.WriteString(g.Name())
	b.WriteByte('(')
	for i, p := range g.Params() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		if p.Default != nil {
			b.WriteString("=")
			b.WriteString(strconv.Quote(*p.Default))
		}
	}
	b.WriteByte(')')
	return b.String()
}

// Description returns g's description, or "" when it has none.
func Description(g Generator) string {
	if d, ok := g.(Describer); ok {
		return d.Description()
	}
	return ""
}
