package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to a
// renderer for the handler's writer, so color is dropped automatically when
// the writer is not a terminal.
type palette struct {
	key, str, num, dur, tim, null lipgloss.Style
	yes, no                       lipgloss.Style
	trace, debug, info, warn, err lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		dur:   fg("5"),
		tim:   fg("4"),
		null:  fg("8").Faint(true),
		yes:   fg("2"),
		no:    fg("1"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

// prettyBase is shared by both pretty handlers: options, styles, the
// accumulated attributes and the open group prefix.
type prettyBase struct {
	opts       slog.HandlerOptions
	mu         *sync.Mutex
	w          io.Writer
	style      palette
	formatTime FormatTime
	attrs      []slog.Attr
	group      string
}

func makePrettyBase(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) prettyBase {
	if formatTime == nil {
		formatTime = makeFormatTimeFunc(DefaultTimeLayout)
	}

	return prettyBase{
		opts:       *opts,
		mu:         &sync.Mutex{},
		w:          w,
		style:      makePalette(w),
		formatTime: formatTime,
	}
}

func (b prettyBase) enabled(level slog.Level) bool {
	lowest := slog.LevelInfo
	if b.opts.Level != nil {
		lowest = b.opts.Level.Level()
	}

	return level >= lowest
}

func (b prettyBase) withAttrs(attrs []slog.Attr) prettyBase {
	qualified := make([]slog.Attr, 0, len(b.attrs)+len(attrs))
	qualified = append(qualified, b.attrs...)

	for _, a := range attrs {
		qualified = append(qualified, b.qualify(a))
	}

	b.attrs = qualified

	return b
}

func (b prettyBase) withGroup(name string) prettyBase {
	if name == "" {
		return b
	}

	if b.group != "" {
		name = b.group + "." + name
	}

	b.group = name

	return b
}

func (b prettyBase) qualify(a slog.Attr) slog.Attr {
	if b.group != "" {
		a.Key = b.group + "." + a.Key
	}

	return a
}

// header returns the fixed leading attributes of a record: time, level,
// source and message.
func (b prettyBase) header(r slog.Record) []slog.Attr {
	head := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		if s := b.formatTime(r.Time); s != "" {
			head = append(head, slog.String(slog.TimeKey, s))
		}
	}

	head = append(head, slog.Any(slog.LevelKey, r.Level))

	if b.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			head = append(head, slog.String(
				slog.SourceKey, src.File+":"+strconv.Itoa(src.Line),
			))
		}
	}

	return append(head, slog.String(slog.MessageKey, r.Message))
}

// body returns the handler's accumulated attributes followed by the record's.
func (b prettyBase) body(r slog.Record) []slog.Attr {
	body := make([]slog.Attr, 0, len(b.attrs)+r.NumAttrs())
	body = append(body, b.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		body = append(body, b.qualify(a))

		return true
	})

	return body
}

func (b prettyBase) write(buf *bytes.Buffer) error {
	buf.WriteByte('\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.w.Write(buf.Bytes())

	return err
}

// render formats a resolved value with the style for its kind.
func (b prettyBase) render(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindString:
		return b.style.str.Render(v.String())

	case slog.KindInt64:
		return b.style.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return b.style.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return b.style.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return b.style.yes.Render("true")
		}

		return b.style.no.Render("false")

	case slog.KindDuration:
		return b.style.dur.Render(v.Duration().String())

	case slog.KindTime:
		return b.style.tim.Render(v.Time().Format(time.RFC3339Nano))

	case slog.KindGroup:
		var buf bytes.Buffer

		buf.WriteByte('{')

		for i, a := range v.Group() {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(b.style.key.Render(a.Key))
			buf.WriteByte('=')
			buf.WriteString(b.render(a.Value))
		}

		buf.WriteByte('}')

		return buf.String()

	default:
		switch x := v.Any().(type) {
		case slog.Level:
			return b.style.level(x).Render(Level(x).String())
		case nil:
			return b.style.null.Render("null")
		case error:
			return b.style.no.Render(x.Error())
		default:
			return b.style.str.Render(fmt.Sprint(x))
		}
	}
}

// prettyTextHandler writes one styled key=value line per record.
type prettyTextHandler struct {
	prettyBase
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{makePrettyBase(w, opts, formatTime)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, a := range append(h.header(r), h.body(r)...) {
		if a.Equal(slog.Attr{}) {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteByte('=')
		buf.WriteString(h.render(a.Value))
	}

	return h.write(&buf)
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes an indented, styled object per record.
// The output is meant for humans and is not guaranteed to be valid JSON.
type prettyJSONHandler struct {
	prettyBase
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{makePrettyBase(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{")

	first := true

	for _, a := range append(h.header(r), h.body(r)...) {
		if a.Equal(slog.Attr{}) {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		buf.WriteString("\n  ")
		buf.WriteString(h.style.key.Render(a.Key))
		buf.WriteString(": ")
		buf.WriteString(h.render(a.Value))
	}

	buf.WriteString("\n}")

	return h.write(&buf)
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}
