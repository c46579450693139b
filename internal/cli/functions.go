package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/asksql/internal/registry"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the functions the catalog registers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFunctions(cmd, rootOpts)
		},
	}
}

type functionJSON struct {
	Name        string           `json:"name"`
	Signature   string           `json:"signature"`
	Description string           `json:"description,omitempty"`
	Params      []registry.Param `json:"params"`
}

func runFunctions(cmd *cobra.Command, opts *RootOptions) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts, "")
	if err != nil {
		return reportSetup(f, err)
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), 0)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	var (
		list []functionJSON
		b    strings.Builder
	)
	for _, name := range a.registry.Names() {
		g, _ := a.registry.Lookup(name)
		fn := functionJSON{
			Name:        name,
			Signature:   registry.Signature(g),
			Description: registry.Description(g),
			Params:      g.Params(),
		}
		list = append(list, fn)

		b.WriteString(fn.Signature)
		if fn.Description != "" {
			fmt.Fprintf(&b, "\n    %s", fn.Description)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d functions", len(list))

	return f.Success(map[string]any{"functions": list}, b.String())
}
