// Package intent maps a free-text question to raw call-expression text.
//
// Resolvers return untrusted text. The pipeline re-parses and validates
// everything they produce.
package intent

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNoIntent is returned when a resolver has no call expression for a question.
var ErrNoIntent = errors.New("no call expression for question")

// Resolver produces a call expression for a question.
type Resolver interface {
	Resolve(ctx context.Context, question string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, question string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// Static answers from a fixed table keyed by the trimmed, lower-cased
// question. Used for tests, demos and offline runs.
type Static struct {
	answers map[string]string
}

// NewStatic builds a Static resolver.
func NewStatic(answers map[string]string) *Static {
	s := &Static{answers: make(map[string]string, len(answers))}
	for q, expr := range answers {
		s.answers[staticKey(q)] = expr
	}
	return s
}

func (s *Static) Resolve(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	expr, ok := s.answers[staticKey(question)]
	if !ok {
		return "", errors.Wrapf(ErrNoIntent, "question %q", question)
	}
	return expr, nil
}

func staticKey(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// CleanReply extracts the call expression from a model reply.
//
// Models sometimes wrap the answer in a code fence, repeat the "Function:"
// label from the prompt, or add prose after it. The first non-empty line
// left after removing those is returned.
func CleanReply(reply string) string {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "Function:"))
		line = strings.Trim(line, "`")
		if line != "" {
			return line
		}
	}
	return ""
}
