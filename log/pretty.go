package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
)

// ANSI escape sequences used by the pretty handlers.
const (
	ansiReset   = "\033[0m"
	ansiGray    = "\033[90m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiYellow  = "\033[33m"
	ansiBlue    = "\033[34m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

// paint writes text wrapped in an ANSI color sequence.
func paint(buf *bytes.Buffer, color, text string) {
	buf.WriteString(color)
	buf.WriteString(text)
	buf.WriteString(ansiReset)
}

// levelColor picks the color a level renders in.
func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed
	case level >= slog.LevelWarn:
		return ansiYellow
	case level >= slog.LevelInfo:
		return ansiGreen
	default:
		return ansiBlue
	}
}

// prettyBase carries the state shared by both pretty handlers. The
// mutex is shared across WithAttrs/WithGroup derivatives so interleaved
// records never tear on the writer.
type prettyBase struct {
	opts slog.HandlerOptions
	mu   *sync.Mutex
	w    io.Writer
}

func (h prettyBase) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h prettyBase) flush(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// source renders the record's origin as file:line when the handler is
// configured to add it.
func (h prettyBase) source(r slog.Record) (string, bool) {
	if !h.opts.AddSource {
		return "", false
	}

	src := r.Source()
	if src == nil {
		return "", false
	}

	return fmt.Sprintf("%s:%d", src.File, src.Line), true
}

// prettyTextHandler renders records as colorized key=value text.
type prettyTextHandler struct {
	prettyBase
}

func newPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *prettyTextHandler {
	return &prettyTextHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	if !r.Time.IsZero() {
		h.attr(buf, slog.Time(slog.TimeKey, r.Time))
	}

	h.attr(buf, slog.Any(slog.LevelKey, r.Level))

	if src, ok := h.source(r); ok {
		h.attr(buf, slog.String(slog.SourceKey, src))
	}

	h.attr(buf, slog.String(slog.MessageKey, r.Message))

	r.Attrs(func(a slog.Attr) bool {
		h.attr(buf, a)

		return true
	})

	return h.flush(buf)
}

// WithAttrs and WithGroup return a handler sharing the same base; the
// pretty format flattens groups and renders attrs per record.
func (h *prettyTextHandler) WithAttrs([]slog.Attr) slog.Handler {
	return &prettyTextHandler{h.prettyBase}
}

func (h *prettyTextHandler) WithGroup(string) slog.Handler {
	return &prettyTextHandler{h.prettyBase}
}

func (h *prettyTextHandler) attr(buf *bytes.Buffer, a slog.Attr) {
	if buf.Len() > 0 {
		buf.WriteByte(' ')
	}

	paint(buf, ansiGray, a.Key)
	buf.WriteByte('=')
	h.value(buf, a.Value)
}

func (h *prettyTextHandler) value(buf *bytes.Buffer, v slog.Value) {
	switch v.Kind() {
	case slog.KindString:
		paint(buf, ansiCyan, v.String())

	case slog.KindInt64:
		paint(buf, ansiYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		paint(buf, ansiYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		paint(buf, ansiYellow, strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			paint(buf, ansiGreen, "true")
		} else {
			paint(buf, ansiRed, "false")
		}

	case slog.KindDuration:
		paint(buf, ansiMagenta, v.Duration().String())

	case slog.KindTime:
		paint(buf, ansiBlue, v.Time().String())

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			// Render with the package naming so trace prints as
			// "trace" rather than slog's "DEBUG-4".
			paint(buf, levelColor(level), Level(level).String())

			return
		}

		paint(buf, ansiCyan, v.String())

	default:
		paint(buf, ansiCyan, v.String())
	}
}

// prettyJSONHandler renders records as colorized, indented JSON-shaped
// output. The coloring makes the result for human eyes only; values
// are deliberately left unquoted.
type prettyJSONHandler struct {
	prettyBase
}

func newPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) *prettyJSONHandler {
	return &prettyJSONHandler{prettyBase{opts: *opts, mu: &sync.Mutex{}, w: w}}
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	buf := new(bytes.Buffer)

	buf.WriteString("{\n")

	first := true

	if !r.Time.IsZero() {
		h.field(buf, slog.TimeKey, r.Time.Format("2006-01-02T15:04:05Z07:00"), &first)
	}

	h.field(buf, slog.LevelKey, Level(r.Level).String(), &first)

	if src, ok := h.source(r); ok {
		h.field(buf, slog.SourceKey, src, &first)
	}

	h.field(buf, slog.MessageKey, r.Message, &first)

	r.Attrs(func(a slog.Attr) bool {
		h.field(buf, a.Key, a.Value.Any(), &first)

		return true
	})

	buf.WriteString("\n}")

	return h.flush(buf)
}

func (h *prettyJSONHandler) WithAttrs([]slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.prettyBase}
}

func (h *prettyJSONHandler) WithGroup(string) slog.Handler {
	return &prettyJSONHandler{h.prettyBase}
}

func (h *prettyJSONHandler) field(buf *bytes.Buffer, key string, value any, first *bool) {
	if !*first {
		buf.WriteString(",\n")
	}

	*first = false

	buf.WriteString("  ")
	paint(buf, ansiGray, key)
	buf.WriteString(": ")
	h.value(buf, value)
}

func (h *prettyJSONHandler) value(buf *bytes.Buffer, v any) {
	switch val := v.(type) {
	case string:
		paint(buf, ansiCyan, val)

	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		buf.WriteString(ansiYellow)
		fmt.Fprint(buf, val)
		buf.WriteString(ansiReset)

	case float32, float64:
		buf.WriteString(ansiYellow)
		fmt.Fprint(buf, val)
		buf.WriteString(ansiReset)

	case bool:
		if val {
			paint(buf, ansiGreen, "true")
		} else {
			paint(buf, ansiRed, "false")
		}

	case nil:
		paint(buf, ansiGray, "null")

	default:
		buf.WriteString(ansiCyan)
		fmt.Fprint(buf, val)
		buf.WriteString(ansiReset)
	}
}
