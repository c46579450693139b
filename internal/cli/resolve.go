package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/pipeline"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Anchor  string
	Execute bool
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <expression>",
		Short: "Resolve a call expression into SQL",
		Long: `Resolve parses a call expression, resolves its date phrases against
the anchor date and prints the generated query.

With --execute the query also runs against the configured warehouse and
the answer is recorded in history.`,
		Example: `  asksql resolve "get_bounce_rate(date_range='last month')"
  asksql resolve "get_top_pages(start_date='2025-01-01', end_date='2025-01-31', limit='5')" --anchor 2025-02-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "anchor date for relative phrases (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&opts.Execute, "execute", "x", false, "run the query against the warehouse")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *ResolveOptions, expression string) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts.RootOptions, opts.Anchor)
	if err != nil {
		return reportSetup(f, err)
	}

	var n needs
	if opts.Execute {
		n = needWarehouse | needHistory
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), n)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	ans := a.assistant.Resolve(cmd.Context(), expression)
	f.VerboseLog("anchor %s, outcome %s", ans.Anchor, ans.Result.Outcome)
	return printAnswer(f, ans)
}

// printAnswer writes an answer and returns ExitFailure when it did not
// produce a query or its execution failed.
func printAnswer(f *OutputFormatter, ans *assistant.Answer) error {
	res := ans.Result
	if !res.OK() {
		if err := f.Error(string(res.Err.Code), res.Err.UserMessage(), answerDetails(ans)); err != nil {
			return err
		}
		return reported(ExitFailure, string(res.Outcome))
	}

	var b strings.Builder
	if ans.Question != "" {
		fmt.Fprintf(&b, "-- %s\n", ans.Expression)
	}
	b.WriteString(strings.TrimSpace(res.Query))
	if ans.Rows != nil {
		b.WriteString("\n\n")
		writeRows(&b, ans.Rows)
	}
	return f.Success(answerData(ans), b.String())
}

type answerJSON struct {
	ID         string           `json:"id,omitempty"`
	Question   string           `json:"question,omitempty"`
	Expression string           `json:"expression"`
	Anchor     string           `json:"anchor"`
	Outcome    pipeline.Outcome `json:"outcome"`
	Function   string           `json:"function,omitempty"`
	Arguments  any              `json:"arguments,omitempty"`
	Query      string           `json:"query,omitempty"`
	Columns    []string         `json:"columns,omitempty"`
	Rows       []map[string]any `json:"rows,omitempty"`
}

func answerData(ans *assistant.Answer) answerJSON {
	out := answerJSON{
		ID:         ans.ID,
		Question:   ans.Question,
		Expression: ans.Expression,
		Anchor:     ans.Anchor.String(),
		Outcome:    ans.Result.Outcome,
		Function:   ans.Result.Function(),
		Query:      ans.Result.Query,
	}
	if ans.Result.Arguments != nil {
		out.Arguments = ans.Result.Arguments
	}
	if ans.Rows != nil {
		out.Columns = ans.Rows.Columns
		out.Rows = ans.Rows.Records()
	}
	return out
}

func answerDetails(ans *assistant.Answer) map[string]string {
	d := map[string]string{
		"outcome":    string(ans.Result.Outcome),
		"expression": ans.Expression,
		"detail":     ans.Result.Err.Message,
	}
	if fn := ans.Result.Err.Function; fn != "" {
		d["function"] = fn
	}
	if arg := ans.Result.Err.Argument; arg != "" {
		d["argument"] = arg
	}
	if ans.Result.Query != "" {
		d["query"] = ans.Result.Query
	}
	return d
}
