package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit    int
	Outcome  string
	Function string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent resolutions",
		Example: `  asksql history --limit 5
  asksql history --outcome argument_error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of records")
	cmd.Flags().StringVar(&opts.Outcome, "outcome", "", "only records with this outcome")
	cmd.Flags().StringVar(&opts.Function, "function", "", "only records for this function")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	f := opts.formatter(cmd)

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, "--limit must not be negative")
	}

	cfg, err := loadConfig(opts.RootOptions, "")
	if err != nil {
		return reportSetup(f, err)
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), needHistory)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	recs, err := a.assistant.History(cmd.Context(), store.Filter{
		Limit:    opts.Limit,
		Outcome:  opts.Outcome,
		Function: opts.Function,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrHistoryDisabled) {
			if ferr := f.Error(ErrCodeHistory, err.Error(), errors.FlattenHints(err)); ferr != nil {
				return ferr
			}
			return reported(ExitCommandError, err.Error())
		}
		return WrapExitError(ExitFailure, "read history", err)
	}

	return f.Success(map[string]any{"records": recs}, historyText(recs))
}

func historyText(recs []store.Record) string {
	if len(recs) == 0 {
		return "no history"
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tTIME\tANCHOR\tOUTCOME\tROWS\tEXPRESSION")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.Seq,
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Anchor,
			r.Outcome,
			r.RowCount,
			r.Expression)
	}
	tw.Flush()
	return strings.TrimRight(b.String(), "\n")
}
