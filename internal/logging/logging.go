// Package logging wires structured logging for the daemon and client.
//
// Components depend on the Logger interface, not on *zap.Logger directly,
// so tests can substitute a recording double (mirrors the SLogger seam
// used by network-measurement libraries to decouple callers from a
// concrete logging package).
//
// The message and every key/value field passed to Debugw/Infow/Warnw/
// Errorw go through the redaction sink before they reach the underlying
// zap core; string values are redacted and truncated, other values are
// passed on unchanged. cmd/annad reports config and logger setup failures
// through the standard log package before a Logger exists; those lines
// bypass the sink.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface every component depends on.
type Logger interface {
	Debugw(msg string, kv ...any)
	Infow(msg string, kv ...any)
	Warnw(msg string, kv ...any)
	Errorw(msg string, kv ...any)
	Named(name string) Logger
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

var _ Logger = (*zapLogger)(nil)

// Options configures the logging stack.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string
	// Component is the top-level logger name (e.g. "annad").
	Component string
	// RollDir, when non-empty, also writes daily-rolled JSONL files there
	// via NewRollingWriter. When empty, only stderr is used (client mode).
	RollDir string
}

// New constructs a Logger writing redacted structured JSON to stderr and,
// if opts.RollDir is set, to a daily-rolled JSONL file per component.
func New(opts Options) (Logger, error) {
	level := parseLevel(opts.Level)

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "component",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if opts.RollDir != "" {
		rw, err := NewRollingWriter(opts.RollDir, opts.Component)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rw), level))
	}

	core := zapcore.NewTee(cores...)
	base := zap.New(core).Named(opts.Component)
	return &zapLogger{s: base.Sugar()}, nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debugw(msg string, kv ...any) { l.s.Debugw(RedactString(msg), Redact(kv)...) }
func (l *zapLogger) Infow(msg string, kv ...any)  { l.s.Infow(RedactString(msg), Redact(kv)...) }
func (l *zapLogger) Warnw(msg string, kv ...any)  { l.s.Warnw(RedactString(msg), Redact(kv)...) }
func (l *zapLogger) Errorw(msg string, kv ...any) { l.s.Errorw(RedactString(msg), Redact(kv)...) }

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{s: l.s.Named(name)}
}

func (l *zapLogger) Sync() error { return l.s.Sync() }

// NewNop returns a Logger that discards everything; used in tests where
// the component under test requires a Logger but the test asserts on
// something else.
func NewNop() Logger { return &zapLogger{s: zap.NewNop().Sugar()} }
