package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/intent"
)

// AskOptions holds flags for the ask command.
type AskOptions struct {
	*RootOptions
	Anchor string
	DryRun bool
}

// NewAskCommand creates the ask command.
func NewAskCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AskOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question in plain language",
		Long: `Ask sends the question to the configured intent provider, resolves the
call expression it returns and runs the query against the warehouse.`,
		Example: `  asksql ask "What was the bounce rate last month?"
  asksql ask "How many sessions came from Canada in Q1 2025?" --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "anchor date for relative phrases (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the query without running it")

	return cmd
}

func runAsk(cmd *cobra.Command, opts *AskOptions, question string) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts.RootOptions, opts.Anchor)
	if err != nil {
		return reportSetup(f, err)
	}

	n := needIntent | needHistory
	if !opts.DryRun {
		n |= needWarehouse
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), n)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	ans, err := a.assistant.Ask(cmd.Context(), question)
	if err != nil {
		var details any
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			details = hints
		}
		if ferr := f.Error(ErrCodeIntent, intentMessage(err), details); ferr != nil {
			return ferr
		}
		return reported(ExitFailure, err.Error())
	}

	f.VerboseLog("expression %s", ans.Expression)
	return printAnswer(f, ans)
}

func intentMessage(err error) string {
	if errors.Is(err, intent.ErrNoIntent) {
		return "I couldn't match that question to a known report. Try rephrasing it."
	}
	return err.Error()
}
