package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"golang.org/x/term"
)

// Format selects the log encoding: text for people, JSON for machines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// LevelTrace is below debug and reports every optimistic skip the
// definition checker makes.
const LevelTrace = slog.LevelDebug - 4

// Config describes a logger built by New. A nil Output means stderr and an
// unknown Format means text.
type Config struct {
	Level  slog.Level
	Format Format
	Output io.Writer
}

func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.Format == FormatJSON {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(NewHandler(out, opts))
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// LevelFromVerbosity maps the count of -v flags to a log level.
// Zero (or negative) means warnings only; one adds info, two debug,
// three or more trace.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default if there is none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// IsTTY reports whether w is a terminal. Only writers exposing Fd, such as
// *os.File, can be one.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// SupportsColor reports whether ANSI colors should be written to w.
// NO_COLOR and TERM=dumb turn colors off, FORCE_COLOR turns them on for
// pipes.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return isTTY
}

// testWriter sends each written line to t.Log.
type testWriter struct {
	t testing.TB
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a trace-level logger whose output shows up in the test
// log, visible on failure or with -v.
func ForTest(t testing.TB) *slog.Logger {
	t.Helper()
	return New(Config{Level: LevelTrace, Output: &testWriter{t: t}})
}
