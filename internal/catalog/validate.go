package catalog

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/asksql/internal/ir"
)

// Validation error codes (C100-C199)
const (
	ErrInvalidFunctionName   = "C100" // name is not an identifier
	ErrDescriptionEmpty      = "C101" // description is required
	ErrSQLEmpty              = "C102" // sql is required
	ErrUndeclaredPlaceholder = "C103" // {x} in sql is neither a param nor a constant
	ErrUnusedParam           = "C104" // declared param never appears in sql
	ErrDefaultOnRequired     = "C105" // required params cannot carry a default
	ErrInvalidParamType      = "C106" // type must be string, date or int
	ErrInvalidDateFormat     = "C107" // date_format must be iso or compact
	ErrInvalidDefault        = "C108" // default does not satisfy the param type
)

// ValidationError is one catalog rule violation.
type ValidationError struct {
	Function string `json:"function"`
	Field    string `json:"field"`
	Message  string `json:"message"`
	Code     string `json:"code"`
	Line     int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s.%s: %s", e.Code, e.Line, e.Function, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s.%s: %s", e.Code, e.Function, e.Field, e.Message)
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_]\w*)\}`)

// constantNames are placeholders filled from Constants.
var constantNames = map[string]bool{"project": true, "dataset": true}

// Validate checks every function and returns all violations, ordered by
// function name. It does not stop at the first error.
func (c *Catalog) Validate() []ValidationError {
	var errs []ValidationError
	for _, fn := range c.Functions() {
		errs = append(errs, ValidateFunction(&fn)...)
	}
	return errs
}

// ValidateFunction checks one function.
func ValidateFunction(fn *Function) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		e := ValidationError{
			Function: fn.Name,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Code:     code,
		}
		if fn.Pos.IsValid() {
			e.Line = fn.Pos.Line()
		}
		errs = append(errs, e)
	}

	if !ir.IsIdentifier(fn.Name) {
		add("name", ErrInvalidFunctionName, "%q is not a valid function name", fn.Name)
	}
	if strings.TrimSpace(fn.Description) == "" {
		add("description", ErrDescriptionEmpty, "description is required and must be non-empty")
	}
	if !fn.DateFormat.Valid() {
		add("date_format", ErrInvalidDateFormat, "unknown date format %q (want iso or compact)", fn.DateFormat)
	}

	declared := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		declared[p.Name] = true
		field := "params." + p.Name

		if !p.Type.Valid() {
			add(field, ErrInvalidParamType, "unknown type %q (want string, date or int)", p.Type)
		}
		if p.Required && p.Default != nil {
			add(field, ErrDefaultOnRequired, "required parameter cannot have a default")
		}
		if p.Default != nil && p.Type.Valid() && p.Check(*p.Default) != nil {
			add(field, ErrInvalidDefault, "default %q is not a valid %s", *p.Default, p.Type)
		}
	}

	if strings.TrimSpace(fn.SQL) == "" {
		add("sql", ErrSQLEmpty, "sql is required and must be non-empty")
		return errs
	}

	used := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(fn.SQL, -1) {
		used[m[1]] = true
	}
	for _, name := range sortedKeys(used) {
		if !declared[name] && !constantNames[name] {
			add("sql", ErrUndeclaredPlaceholder, "placeholder {%s} is not a declared parameter", name)
		}
	}
	for _, p := range fn.Params {
		if !used[p.Name] {
			add("params."+p.Name, ErrUnusedParam, "parameter is never used in sql")
		}
	}

	return errs
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
