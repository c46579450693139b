package cli

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/catalog"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog-dir]",
		Short: "Validate catalog CUE files",
		Long: `Validate compiles the CUE files in the directory against the catalog
schema and checks every function: placeholders, parameter types, defaults
and date formats.

Without a directory the configured catalog (builtin plus catalog.dir) is
checked.`,
		Example: `  asksql validate ./catalog
  asksql validate --format json ./catalog`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(cmd, rootOpts, dir)
		},
	}
}

type validateJSON struct {
	Valid     bool                      `json:"valid"`
	Functions int                       `json:"functions"`
	Errors    []catalog.ValidationError `json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, opts *RootOptions, dir string) error {
	f := opts.formatter(cmd)

	cat, err := loadCatalog(opts, dir)
	if err != nil {
		var details any
		var le *catalog.LoadError
		var ce *catalog.CompileError
		switch {
		case errors.As(err, &le):
			details = map[string]string{"load_code": le.Code}
		case errors.As(err, &ce):
			details = map[string]any{"line": ce.Pos.Line(), "column": ce.Pos.Column()}
		}
		if ferr := f.Error(ErrCodeCatalog, err.Error(), details); ferr != nil {
			return ferr
		}
		return reported(ExitCommandError, "catalog did not compile")
	}

	f.VerboseLog("compiled %d functions", cat.Len())

	verrs := cat.Validate()
	if len(verrs) > 0 {
		if f.IsJSON() {
			if err := f.Success(validateJSON{Functions: cat.Len(), Errors: verrs}, ""); err != nil {
				return err
			}
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "✗ %d errors in %d functions\n", len(verrs), cat.Len())
			for _, v := range verrs {
				fmt.Fprintf(&b, "  %s\n", v.Error())
			}
			if err := f.Success(nil, strings.TrimRight(b.String(), "\n")); err != nil {
				return err
			}
		}
		return reported(ExitFailure, "catalog is invalid")
	}

	return f.Success(
		validateJSON{Valid: true, Functions: cat.Len()},
		fmt.Sprintf("✓ %d functions valid", cat.Len()))
}

// loadCatalog loads dir alone, or the configured catalog when dir is empty.
func loadCatalog(opts *RootOptions, dir string) (*catalog.Catalog, error) {
	if dir != "" {
		return catalog.LoadDir(dir)
	}
	cfg, err := loadConfig(opts, "")
	if err != nil {
		return nil, err
	}
	return catalog.LoadWithBuiltin(cfg.Catalog.Dir)
}
