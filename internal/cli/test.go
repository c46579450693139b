package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool
	Filter string
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against the catalog",
		Long: `Test runs every scenario YAML file under the directory through the
pipeline, checks its expectations and compares its snapshot with the file
in the golden/ directory next to it.`,
		Example: `  asksql test ./scenarios
  asksql test ./scenarios --filter "bounce_*"
  asksql test ./scenarios --update`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVarP(&opts.Update, "update", "u", false, "rewrite golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "glob over scenario file names")

	return cmd
}

func runTests(cmd *cobra.Command, opts *TestOptions, dir string) error {
	f := opts.formatter(cmd)

	if _, err := os.Stat(dir); err != nil {
		if ferr := f.Error(ErrCodeScenario, fmt.Sprintf("scenarios directory not found: %s", dir), nil); ferr != nil {
			return ferr
		}
		return reported(ExitCommandError, "scenarios directory not found")
	}

	cfg, err := loadConfig(opts.RootOptions, "")
	if err != nil {
		return reportSetup(f, err)
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), 0)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	h := harness.New(a.registry, a.log.Named("harness"))
	sum, err := h.RunDir(dir, harness.RunOptions{Update: opts.Update, Filter: opts.Filter})
	if err != nil {
		return WrapExitError(ExitCommandError, "run scenarios", err)
	}
	if sum.Total == 0 {
		if ferr := f.Error(ErrCodeScenario, fmt.Sprintf("no scenarios found in %s", dir), nil); ferr != nil {
			return ferr
		}
		return reported(ExitCommandError, "no scenarios")
	}

	if err := f.Success(sum, summaryText(sum, opts.Verbose)); err != nil {
		return err
	}
	if sum.Failed > 0 {
		return reported(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", sum.Failed, sum.Total))
	}
	return nil
}

func summaryText(sum *harness.Summary, verbose bool) string {
	var b strings.Builder
	for _, sr := range sum.Scenarios {
		mark := "✓"
		if !sr.Pass {
			mark = "✗"
		}
		fmt.Fprintf(&b, "%s %s", mark, sr.Name)
		if verbose || sr.Golden == harness.GoldenUpdated || sr.Golden == harness.GoldenMissing {
			fmt.Fprintf(&b, " (golden: %s)", sr.Golden)
		}
		b.WriteString("\n")
		for _, e := range sr.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "\n%d passed, %d failed, %d total", sum.Passed, sum.Failed, sum.Total)
	return b.String()
}
