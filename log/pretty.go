package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals
var (
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	timeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	msgStyle   = lipgloss.NewStyle().Bold(true)
	strStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	numStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	boolStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	levelStyle = map[slog.Level]lipgloss.Style{
		slog.Level(LevelTrace): lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		slog.LevelDebug:        lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		slog.LevelInfo:         lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		slog.LevelWarn:         lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		slog.LevelError:        lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler is a colorized [slog.Handler] producing either single-line
// key=value text or indented JSON.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	group  string
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	format Format,
) *prettyHandler {
	return &prettyHandler{opts: *opts, format: format, mu: &sync.Mutex{}, w: w}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.group + name + "."

	return &c
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.group == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.group + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr != nil {
		return h.opts.ReplaceAttr(nil, a)
	}

	return a
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	head := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		head = append(head, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	head = append(head, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			head = append(head, slog.String(slog.SourceKey,
				fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	head = append(head, slog.String(slog.MessageKey, r.Message))

	body := append([]slog.Attr(nil), h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		body = append(body, h.qualify([]slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, r.Level, head, body)
	} else {
		h.writeText(&buf, r.Level, head, body)
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(
	buf *bytes.Buffer,
	level slog.Level,
	head, body []slog.Attr,
) {
	for _, a := range head {
		if a.Key == "" {
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		switch a.Key {
		case slog.TimeKey:
			buf.WriteString(timeStyle.Render(a.Value.String()))
		case slog.LevelKey:
			buf.WriteString(levelStyle[level].Render(fmt.Sprintf("%-5s", a.Value.String())))
		case slog.MessageKey:
			buf.WriteString(msgStyle.Render(a.Value.String()))
		default:
			buf.WriteString(keyStyle.Render(a.Value.String()))
		}
	}

	for _, a := range flatten("", body) {
		buf.WriteByte(' ')
		buf.WriteString(keyStyle.Render(a.Key + "="))
		buf.WriteString(renderValue(a.Value))
	}
}

func (h *prettyHandler) writeJSON(
	buf *bytes.Buffer,
	level slog.Level,
	head, body []slog.Attr,
) {
	buf.WriteString("{")

	first := true

	for _, a := range append(head, body...) {
		if a.Key == "" {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		key, _ := json.Marshal(a.Key)
		buf.WriteString("\n  ")
		buf.WriteString(keyStyle.Render(string(key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			val, _ := json.Marshal(a.Value.String())
			buf.WriteString(levelStyle[level].Render(string(val)))

			continue
		}

		buf.WriteString(renderJSON(a.Value))
	}

	buf.WriteString("\n}")
}

// flatten expands group values into dotted keys.
func flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	for _, a := range attrs {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}

			out = append(out, flatten(p, v.Group())...)

			continue
		}

		if a.Key != "" {
			out = append(out, slog.Attr{Key: prefix + a.Key, Value: v})
		}
	}

	return out
}

func renderValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return numStyle.Render(v.String())
	case slog.KindBool:
		return boolStyle.Render(v.String())
	default:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			b, _ := json.Marshal(s)
			s = string(b)
		}

		return strStyle.Render(s)
	}
}

func renderJSON(v slog.Value) string {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		parts := make([]string, 0, len(v.Group()))

		for _, a := range v.Group() {
			key, _ := json.Marshal(a.Key)
			parts = append(parts, keyStyle.Render(string(key))+": "+renderJSON(a.Value))
		}

		return "{" + strings.Join(parts, ", ") + "}"

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numStyle.Render(v.String())

	case slog.KindBool:
		return boolStyle.Render(v.String())

	case slog.KindString:
		b, _ := json.Marshal(v.String())

		return strStyle.Render(string(b))

	default:
		if err, ok := v.Any().(error); ok {
			b, _ := json.Marshal(err.Error())

			return strStyle.Render(string(b))
		}

		b, err := json.Marshal(v.Any())
		if err != nil {
			b, _ = json.Marshal(v.String())
		}

		return strStyle.Render(string(b))
	}
}
