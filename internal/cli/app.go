package cli

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/catalog"
	"github.com/roach88/asksql/internal/clock"
	"github.com/roach88/asksql/internal/config"
	"github.com/roach88/asksql/internal/intent"
	"github.com/roach88/asksql/internal/logging"
	"github.com/roach88/asksql/internal/metrics"
	"github.com/roach88/asksql/internal/pipeline"
	"github.com/roach88/asksql/internal/registry"
	"github.com/roach88/asksql/internal/store"
	"github.com/roach88/asksql/internal/warehouse"
)

// needs selects the collaborators a command builds beyond the pipeline.
type needs uint8

const (
	needWarehouse needs = 1 << iota
	needIntent
	needHistory
	needMetrics
)

// app is everything a command runs against, built from configuration.
type app struct {
	cfg       *config.Config
	log       *zap.Logger
	catalog   *catalog.Catalog
	registry  *registry.Registry
	pipeline  *pipeline.Pipeline
	clock     clock.Clock
	metrics   *metrics.Metrics
	history   *store.Store
	assistant *assistant.Assistant

	closers []io.Closer
}

// setupError is a failure building the app, with the code to report it under.
type setupError struct {
	code string
	err  error
}

func (e *setupError) Error() string { return e.err.Error() }
func (e *setupError) Unwrap() error { return e.err }

func setupFailed(code string, err error) error {
	return &setupError{code: code, err: err}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions, anchor string) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, setupFailed(ErrCodeConfig, err)
	}
	if opts.Verbose {
		cfg.Log = logging.Verbose(cfg.Log)
	}
	if anchor != "" {
		cfg.Clock.Anchor = anchor
		if err := cfg.Validate(); err != nil {
			return nil, setupFailed(ErrCodeConfig, err)
		}
	}
	return cfg, nil
}

// newApp builds the pipeline and whichever collaborators n asks for.
// Callers must Close the app.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer, n needs) (*app, error) {
	log, err := logging.NewTo(logOut, cfg.Log)
	if err != nil {
		return nil, setupFailed(ErrCodeConfig, err)
	}
	a := &app{cfg: cfg, log: log}

	if err := a.buildCore(); err != nil {
		return nil, err
	}

	var aopts []assistant.Option
	aopts = append(aopts, assistant.WithClock(a.clock), assistant.WithLogger(log.Named("assistant")))

	if n&needMetrics != 0 {
		a.metrics = metrics.New()
		aopts = append(aopts, assistant.WithMetrics(a.metrics))
	}
	if n&needWarehouse != 0 {
		exec, err := a.openWarehouse(ctx)
		if err != nil {
			a.Close()
			return nil, setupFailed(ErrCodeConfig, err)
		}
		aopts = append(aopts, assistant.WithExecutor(exec))
	}
	if n&needHistory != 0 && cfg.History.Enabled {
		st, err := store.Open(cfg.History.Path)
		if err != nil {
			a.Close()
			return nil, setupFailed(ErrCodeHistory, err)
		}
		a.history = st
		a.closers = append(a.closers, st)
		aopts = append(aopts, assistant.WithHistory(st))
	}

	var resolver intent.Resolver
	if n&needIntent != 0 {
		resolver, err = a.newResolver()
		if err != nil {
			a.Close()
			return nil, setupFailed(ErrCodeIntent, err)
		}
	}

	a.assistant = assistant.New(resolver, a.pipeline, aopts...)
	return a, nil
}

func (a *app) buildCore() error {
	var err error
	if a.catalog, err = catalog.LoadWithBuiltin(a.cfg.Catalog.Dir); err != nil {
		return setupFailed(ErrCodeCatalog, err)
	}
	if verrs := a.catalog.Validate(); len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return setupFailed(ErrCodeCatalog,
			errors.WithHint(errors.Newf("catalog has %d invalid entries", len(verrs)),
				strings.Join(msgs, "\n")))
	}

	a.registry = a.catalog.Registry(catalog.Constants{
		Project: a.cfg.Warehouse.Project,
		Dataset: a.cfg.Warehouse.Dataset,
	})
	a.pipeline = pipeline.New(a.registry,
		pipeline.WithStrictParser(a.cfg.Parser.Strict),
		pipeline.WithLogger(a.log.Named("pipeline")))

	if a.cfg.Clock.Anchor != "" {
		if a.clock, err = clock.ParseFixed(a.cfg.Clock.Anchor); err != nil {
			return setupFailed(ErrCodeConfig, err)
		}
		return nil
	}
	if a.clock, err = clock.NewSystemIn(a.cfg.Clock.Timezone); err != nil {
		return setupFailed(ErrCodeConfig, err)
	}
	return nil
}

func (a *app) openWarehouse(ctx context.Context) (warehouse.Executor, error) {
	wc := a.cfg.Warehouse
	switch wc.Driver {
	case config.DriverBigQuery:
		bq, err := warehouse.NewBigQuery(ctx, warehouse.BigQueryConfig{
			Project:         wc.Project,
			CredentialsFile: wc.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, bq)
		return bq, nil
	default:
		db, err := warehouse.OpenSQLite(wc.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		if wc.Sample {
			if err := db.CreateSampleTables(ctx, wc.Project, wc.Dataset); err != nil {
				return nil, errors.Wrap(err, "create sample tables")
			}
			a.log.Debug("sample tables ready", zap.String("path", wc.SQLitePath))
		}
		return db, nil
	}
}

func (a *app) newResolver() (intent.Resolver, error) {
	ic := a.cfg.Intent
	switch ic.Provider {
	case config.ProviderStatic:
		return intent.NewStatic(ic.Answers), nil
	default:
		model, err := intent.NewOpenAI(intent.OpenAIConfig{
			Model:   ic.Model,
			APIKey:  ic.APIKey,
			BaseURL: ic.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return intent.NewLLMResolver(model, a.registry,
			intent.WithClock(a.clock),
			intent.WithLogger(a.log.Named("intent"))), nil
	}
}

// Close releases the warehouse, the history store and the logger.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.log.Sync()
}

// reportSetup prints a setup failure and converts it to an exit error.
func reportSetup(f *OutputFormatter, err error) error {
	code := ErrCodeConfig
	var se *setupError
	if errors.As(err, &se) {
		code = se.code
	}
	var details any
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		details = hints
	}
	if ferr := f.Error(code, err.Error(), details); ferr != nil {
		return ferr
	}
	return reported(ExitCommandError, err.Error())
}
