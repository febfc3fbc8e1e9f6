package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Handler writes one human-readable line per record, colored when the
// writer is a color-capable terminal. defcheck uses it for stderr logs.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	colors *palette
}

// palette is nil for plain output.
type palette struct {
	time, key                       *color.Color
	trace, debug, info, warn, err *color.Color
}

func newPalette() *palette {
	return &palette{
		time:  color.New(color.FgHiBlack),
		key:   color.New(color.FgCyan),
		trace: color.New(color.FgHiBlack),
		debug: color.New(color.FgMagenta),
		info:  color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
}

// NewHandler returns a Handler writing to out. A nil opts logs at info.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	h := &Handler{out: out, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	if h.opts.Level == nil {
		return level >= slog.LevelInfo
	}
	return level >= h.opts.Level.Level()
}

// Handle writes the record as a single line: time, level, message, attributes.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		sb.WriteString(h.paint(func(p *palette) *color.Color { return p.time }, r.Time.Format(time.Kitchen)))
		sb.WriteByte(' ')
	}

	fmt.Fprintf(&sb, "%-5s ", h.levelString(r.Level))
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&sb, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&sb, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *Handler) levelString(level slog.Level) string {
	name := level.String()
	pick := func(p *palette) *color.Color { return p.trace }
	switch {
	case level >= slog.LevelError:
		pick = func(p *palette) *color.Color { return p.err }
	case level >= slog.LevelWarn:
		pick = func(p *palette) *color.Color { return p.warn }
	case level >= slog.LevelInfo:
		pick = func(p *palette) *color.Color { return p.info }
	case level > LevelTrace:
		pick = func(p *palette) *color.Color { return p.debug }
	default:
		name = "TRACE"
	}
	return h.paint(pick, name)
}

func (h *Handler) appendAttr(sb *strings.Builder, a slog.Attr) {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	h.writeAttr(sb, prefix, a)
}

func (h *Handler) writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := prefix + a.Key
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(sb, key+".", ga)
		}
		return
	}
	fmt.Fprintf(sb, " %s=%v", h.paint(func(p *palette) *color.Color { return p.key }, key), a.Value.Resolve().Any())
}

func (h *Handler) paint(pick func(*palette) *color.Color, s string) string {
	if h.colors == nil {
		return s
	}
	return pick(h.colors).Sprint(s)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Concat(h.attrs, attrs)
	return &clone
}

// WithGroup prefixes the keys of later attributes with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = slices.Concat(h.groups, []string{name})
	return &clone
}

// MultiHandler fans records out to several handlers, e.g. stderr and
// --log-file.
type MultiHandler struct {
	handlers []slog.Handler
}

func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(m.handlers, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

// Handle passes r to every enabled handler, even after one fails.
func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *MultiHandler) each(fn func(slog.Handler) slog.Handler) *MultiHandler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = fn(h)
	}
	return NewMultiHandler(handlers...)
}
