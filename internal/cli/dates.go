package cli

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/clock"
	"github.com/roach88/asksql/internal/config"
	"github.com/roach88/asksql/internal/dates"
)

// DatesOptions holds flags for the dates command.
type DatesOptions struct {
	*RootOptions
	Anchor string
}

// NewDatesCommand creates the dates command.
func NewDatesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DatesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dates <phrase>",
		Short: "Show the date range a phrase resolves to",
		Example: `  asksql dates "last month"
  asksql dates "Q1 2025"
  asksql dates "past 7 days" --anchor 2025-06-12`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDates(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.Anchor, "anchor", "", "anchor date (YYYY-MM-DD)")

	return cmd
}

type datesJSON struct {
	Phrase    string `json:"phrase"`
	Anchor    string `json:"anchor"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Rule      string `json:"rule"`
	Days      int    `json:"days"`
}

func runDates(cmd *cobra.Command, opts *DatesOptions, phrase string) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts.RootOptions, opts.Anchor)
	if err != nil {
		return reportSetup(f, err)
	}
	anchor, err := anchorDate(cfg.Clock)
	if err != nil {
		return reportSetup(f, setupFailed(ErrCodeConfig, err))
	}

	r, rule := dates.ResolveRule(phrase, anchor)
	f.VerboseLog("anchor %s", anchor)

	text := fmt.Sprintf("%s .. %s  (%s, %d days)", r.Start, r.End, rule, r.Days())
	return f.Success(datesJSON{
		Phrase:    phrase,
		Anchor:    anchor.String(),
		StartDate: r.Start.String(),
		EndDate:   r.End.String(),
		Rule:      string(rule),
		Days:      r.Days(),
	}, text)
}

// anchorDate is today in the configured clock, or the pinned anchor.
func anchorDate(cc config.ClockConfig) (civil.Date, error) {
	if cc.Anchor != "" {
		return civil.ParseDate(cc.Anchor)
	}
	c, err := clock.NewSystemIn(cc.Timezone)
	if err != nil {
		return civil.Date{}, err
	}
	return c.Today(), nil
}
