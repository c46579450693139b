package intent

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/prompts"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/clock"
	"github.com/roach88/asksql/internal/registry"
)

const systemMessage = "You are a helpful assistant for analytics."

const promptTemplate = `You are a data assistant that maps user questions to function calls.

Today is {{.today}}. Dates are YYYY-MM-DD. Relative periods may be passed as
quoted phrases instead, for example date_range='last month' or
date_range='q1 2025'.

Available functions:
{{.functions}}

Here are examples:

User: What was the bounce rate in January?
Function: get_bounce_rate(start_date='2021-01-01', end_date='2021-01-31')

User: How many sessions came from the United Arab Emirates in March?
Function: get_sessions_by_country(country='United Arab Emirates', start_date='2021-03-01', end_date='2021-03-31')

User: Which pages had the most views in January?
Function: get_top_pages(start_date='2021-01-01', end_date='2021-01-31', limit=10)

User: How many sessions came from different devices in March?
Function: get_sessions_by_device(start_date='2021-03-01', end_date='2021-03-31')

User: What was the revenue by country in January?
Function: get_revenue_by_country(start_date='2021-01-01', end_date='2021-01-31')

User: {{.question}}
Function:`

// OpenAIConfig configures the OpenAI chat model.
type OpenAIConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewOpenAI creates an OpenAI-backed model.
func NewOpenAI(cfg OpenAIConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, errors.WithHint(errors.New("openai: missing API key"),
			"set intent.api_key, ASKSQL_INTENT_API_KEY or OPENAI_API_KEY")
	}
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "openai")
	}
	return llm, nil
}

// LLMResolver asks a chat model for the call expression using a few-shot
// prompt that lists the registered functions.
type LLMResolver struct {
	model     llms.Model
	prompt    prompts.PromptTemplate
	functions string
	clock     clock.Clock
	log       *zap.Logger
}

// LLMOption configures an LLMResolver.
type LLMOption func(*LLMResolver)

// WithClock sets the clock used for the "Today is" line.
func WithClock(c clock.Clock) LLMOption {
	return func(r *LLMResolver) { r.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) LLMOption {
	return func(r *LLMResolver) { r.log = log }
}

// NewLLMResolver creates a resolver over model. Function signatures are taken
// from reg once, at construction.
func NewLLMResolver(model llms.Model, reg *registry.Registry, opts ...LLMOption) *LLMResolver {
	r := &LLMResolver{
		model:     model,
		prompt:    prompts.NewPromptTemplate(promptTemplate, []string{"today", "functions", "question"}),
		functions: describeFunctions(reg),
		clock:     clock.NewSystem(nil),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Prompt renders the user prompt for question.
func (r *LLMResolver) Prompt(question string) (string, error) {
	return r.prompt.Format(map[string]any{
		"today":     r.clock.Today().String(),
		"functions": r.functions,
		"question":  strings.TrimSpace(question),
	})
}

// Resolve sends the prompt at temperature 0 and returns the cleaned reply.
func (r *LLMResolver) Resolve(ctx context.Context, question string) (string, error) {
	prompt, err := r.Prompt(question)
	if err != nil {
		return "", errors.Wrap(err, "render prompt")
	}

	resp, err := r.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemMessage),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(0))
	if err != nil {
		return "", errors.Wrap(err, "intent model")
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrNoIntent, "model returned no choices")
	}

	raw := resp.Choices[0].Content
	expr := CleanReply(raw)
	r.log.Debug("intent resolved",
		zap.String("question", question),
		zap.String("reply", raw),
		zap.String("expression", expr))
	if expr == "" {
		return "", errors.Wrap(ErrNoIntent, "model reply was empty")
	}
	return expr, nil
}

func describeFunctions(reg *registry.Registry) string {
	var b strings.Builder
	for i, name := range reg.Names() {
		g, _ := reg.Lookup(name)
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(registry.Signature(g))
		if d := registry.Description(g); d != "" {
			b.WriteString(": ")
			b.WriteString(d)
		}
	}
	return b.String()
}
