package logging

import (
	"fmt"

	"github.com/vvka-141/pgetl/pkg/pgetl"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ pgetl.Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap.Logger to pgetl.Logger. Verbose maps to debug level.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a JSON logger on stderr. Debug records are emitted only when verbose is set.
func NewZapLogger(verbose bool) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Sampling = nil
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return NewZapLoggerFrom(logger), nil
}

// NewZapLoggerFrom wraps an existing zap.Logger.
func NewZapLoggerFrom(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{sugar: logger.Sugar()}
}

// With returns a logger that adds the given key/value pairs to every record.
func (l *ZapLogger) With(keysAndValues ...interface{}) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *ZapLogger) Verbose(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *ZapLogger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *ZapLogger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered records.
func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}
