package catalog

import (
	"fmt"
	"io/fs"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/asksql/internal/registry"
)

// CompileError is a catalog compilation failure with its source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func compileBuiltin() (*Catalog, error) {
	ctx := cuecontext.New()
	value, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	// fs.Glob returns names in lexical order, so unification order is stable.
	names, err := fs.Glob(builtinFS, "builtin/*.cue")
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		v := ctx.CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		value = value.Unify(v)
	}

	return Compile(value)
}

func compileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return schema, nil
}

// CompileString compiles catalog source text against the catalog schema.
// Useful for tests and for catalogs held outside the filesystem.
func CompileString(src string) (*Catalog, error) {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}
	v := ctx.CompileString(src, cue.Filename("catalog.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return Compile(schema.Unify(v))
}

// Compile reads every entry of the `function` struct in v.
// A value without a `function` field compiles to an empty catalog.
func Compile(v cue.Value) (*Catalog, error) {
	// Validate surfaces conflicts nested anywhere below v; Err only covers v itself.
	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}

	cat := newCatalog()
	fnsVal := v.LookupPath(cue.ParsePath("function"))
	if !fnsVal.Exists() {
		return cat, nil
	}

	iter, err := fnsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		fn, err := CompileFunction(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		cat.add(*fn)
	}
	return cat, nil
}

// CompileFunction converts one catalog entry into a Function.
//
// Missing fields compile to zero values; Validate reports them with codes.
// Only CUE-level failures (conflicts, wrong kinds) are returned as errors.
func CompileFunction(name string, v cue.Value) (*Function, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	fn := &Function{Name: name, Pos: v.Pos()}

	var err error
	if fn.Description, err = stringField(v, "description"); err != nil {
		return nil, err
	}
	if fn.Table, err = stringField(v, "table"); err != nil {
		return nil, err
	}
	if fn.SQL, err = stringField(v, "sql"); err != nil {
		return nil, err
	}

	format, err := stringField(v, "date_format")
	if err != nil {
		return nil, err
	}
	fn.DateFormat = registry.DateFormat(format)

	fn.Params, err = compileParams(v)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// compileParams reads params in declaration order.
func compileParams(v cue.Value) ([]registry.Param, error) {
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil
	}

	iter, err := paramsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var params []registry.Param
	for iter.Next() {
		pv := iter.Value()
		p := registry.Param{Name: iter.Label()}

		typ, err := stringField(pv, "type")
		if err != nil {
			return nil, err
		}
		p.Type = registry.ParamType(typ)

		reqVal, _ := pv.LookupPath(cue.ParsePath("required")).Default()
		if reqVal.Exists() {
			if p.Required, err = reqVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		defVal := pv.LookupPath(cue.ParsePath("default"))
		if defVal.Exists() {
			d, err := defVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			p.Default = &d
		}

		params = append(params, p)
	}
	return params, nil
}

// stringField returns the concrete string at path, resolving defaults.
// Absent or non-concrete fields yield "".
func stringField(v cue.Value, path string) (string, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", nil
	}
	f, _ = f.Default()
	if !f.IsConcrete() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
