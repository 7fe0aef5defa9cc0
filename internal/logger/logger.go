// Package logger wraps zerolog for locknote diagnostics.
//
// Human-facing command output goes to stdout through fmt; the logger writes
// diagnostics (record IDs, paths, byte counts) to stderr. Passwords and
// plaintext must never be logged.
package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// Options controls how New builds a logger.
type Options struct {
	Level string
	JSON  bool
	Out   io.Writer
}

// New constructs a *Logger for the given component. An unparsable level
// falls back to warn.
func New(component string, opts Options) *Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.WarnLevel
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	l := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("component", component).
		Logger()

	return &Logger{l}
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// Module returns a child logger tagged with the package that owns it.
func (l *Logger) Module(name string) *Logger {
	return &Logger{l.With().Str("module", name).Logger()}
}

// WithContext stores l in ctx.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return l.Logger.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or a disabled logger if
// there is none.
func FromContext(ctx context.Context) *Logger {
	return &Logger{*zerolog.Ctx(ctx)}
}
