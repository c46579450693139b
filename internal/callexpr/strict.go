package callexpr

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/roach88/asksql/internal/ir"
)

// strictLexer tokenizes call expressions. Quoted strings are single tokens,
// so commas and '=' inside them never split arguments.
var strictLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:\\.|[^'\\])*'|"(?:\\.|[^"\\])*"`},
	{Name: "Punct", Pattern: `[(),=]`},
	{Name: "Word", Pattern: `[^\s(),='"]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// strictCall is the parse tree for `name(key=value, ...)`.
type strictCall struct {
	Name string       `parser:"@Word \"(\""`
	Args []*strictArg `parser:"( @@ ( \",\" @@ )* )? \")\""`
}

type strictArg struct {
	Key   string       `parser:"@Word \"=\""`
	Value *strictValue `parser:"@@?"`
}

// strictValue is either one quoted string or a run of bare words.
// Bare words are rejoined with single spaces.
type strictValue struct {
	Quoted *string  `parser:"  @String"`
	Words  []string `parser:"| @Word+"`
}

var strictParser = participle.MustBuild[strictCall](
	participle.Lexer(strictLexer),
	participle.Elide("Whitespace"),
)

// ParseStrict is a quote-aware alternative to Parse.
//
// Differences from Parse:
//   - commas inside quoted values do not split arguments
//   - backslash escapes of the quote character are honoured inside quotes
//   - an argument without '=' or trailing text after ')' is malformed
//
// Duplicate keys still keep their first position and last value.
func ParseStrict(raw string) (*ir.CallExpression, error) {
	tree, err := strictParser.ParseString("", strings.TrimSpace(raw))
	if err != nil {
		return nil, ir.NewMalformedExpressionError(raw, err.Error())
	}
	if !ir.IsIdentifier(tree.Name) {
		return nil, ir.NewMalformedExpressionError(raw, "invalid function name "+tree.Name)
	}

	args := ir.NewArgs()
	for _, a := range tree.Args {
		args.Set(a.Key, a.Value.text())
	}

	return &ir.CallExpression{Name: tree.Name, Args: args}, nil
}

func (v *strictValue) text() string {
	switch {
	case v == nil:
		return ""
	case v.Quoted != nil:
		return unescapeQuoted(*v.Quoted)
	default:
		return strings.Join(v.Words, " ")
	}
}

// unescapeQuoted drops the surrounding quotes and resolves \<quote> and \\.
func unescapeQuoted(s string) string {
	q := s[:1]
	body := s[1 : len(s)-1]
	return strings.NewReplacer(`\\`, `\`, `\`+q, q).Replace(body)
}
