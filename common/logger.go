package common

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the leveled logging interface shared by every component of the engine.
// Components accept a Logger through their builder options and fall back to a no-op
// logger when none is provided.
type Logger interface {
	// DebugEnabled reports whether Debugf output is currently emitted.
	DebugEnabled() bool

	// SetDebug toggles Debugf output.
	SetDebug(enabled bool)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// DefaultLogger is a Logger backed by a zap.SugaredLogger using the development console encoder.
// Each message is tagged with the configured prefix in the "[Prefix] message" form, and the
// debug switch is a zap.AtomicLevel so it can be flipped while the logger is shared.
type DefaultLogger struct {
	level zap.AtomicLevel
	tag   string
	sugar *zap.SugaredLogger
}

var _ Logger = &DefaultLogger{}

// NewDefaultLogger creates a DefaultLogger writing to stderr.
//
// Parameters:
//   - prefix: the tag printed in brackets before each message, omitted when empty
//   - debug: whether Debugf output is enabled
//
// Returns:
//   - *DefaultLogger: the logger
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(debugLevel(debug))
	cfg.DisableStacktrace = true

	base, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.Lock(os.Stderr), cfg.Level)
		base = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	return newLogger(prefix, cfg.Level, base)
}

func newLogger(prefix string, level zap.AtomicLevel, base *zap.Logger) *DefaultLogger {
	l := &DefaultLogger{level: level, sugar: base.Sugar()}
	if prefix != "" {
		l.tag = "[" + prefix + "] "
	}
	return l
}

// tagged prepends the tag as an argument so it is never parsed as a verb and the
// template is always formatted, even when the caller passes no arguments.
func (l *DefaultLogger) tagged(format string, args []any) (string, []any) {
	return "%s" + format, append([]any{l.tag}, args...)
}

func debugLevel(debug bool) zapcore.Level {
	if debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

func (l *DefaultLogger) DebugEnabled() bool {
	return l.level.Enabled(zap.DebugLevel)
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.level.SetLevel(debugLevel(enabled))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	format, args = l.tagged(format, args)
	l.sugar.Debugf(format, args...)
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	format, args = l.tagged(format, args)
	l.sugar.Infof(format, args...)
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	format, args = l.tagged(format, args)
	l.sugar.Warnf(format, args...)
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	format, args = l.tagged(format, args)
	l.sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func (l *DefaultLogger) Sync() error {
	return l.sugar.Sync()
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return newLogger("", zap.NewAtomicLevelAt(zap.InfoLevel), zap.NewNop())
}

// LoggerOrNop returns l, or a no-op logger when l is nil.
func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
