package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve exposes resolve, dates, functions, ask and history over HTTP
together with Prometheus metrics on /metrics. It stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	f := opts.formatter(cmd)

	cfg, err := loadConfig(opts.RootOptions, "")
	if err != nil {
		return reportSetup(f, err)
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, cmd.ErrOrStderr(), needWarehouse|needIntent|needHistory|needMetrics)
	if err != nil {
		return reportSetup(f, err)
	}
	defer a.Close()

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := server.New(a.assistant,
		server.WithMetrics(a.metrics),
		server.WithLogger(a.log.Named("server")))

	a.log.Info("serving",
		zap.String("addr", cfg.Server.Addr),
		zap.String("warehouse", cfg.Warehouse.Driver),
		zap.String("intent", cfg.Intent.Provider),
		zap.Int("functions", a.registry.Len()))

	if err := srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout); err != nil {
		return WrapExitError(ExitFailure, "serve", err)
	}
	return nil
}
