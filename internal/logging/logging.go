// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/asksql/internal/config"
)

// New builds a logger writing to stderr. JSON output uses the production
// encoder; otherwise a console encoder with short timestamps.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	return NewTo(os.Stderr, cfg)
}

// NewTo is New with an explicit sink.
func NewTo(w io.Writer, cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", cfg.Level)
	}

	var enc zapcore.Encoder
	if cfg.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// Verbose lowers the level to debug, for the CLI's --verbose flag.
func Verbose(cfg config.LogConfig) config.LogConfig {
	cfg.Level = zapcore.DebugLevel.String()
	return cfg
}
