package schema

import (
	"log/slog"
	"strings"

	"github.com/ardnew/cmf/lang"
)

// Placeholder verbs.
const (
	VerbUnsigned = 'u' // digits
	VerbFloat    = 'f' // digits with at most one '.'
	VerbString   = 's' // letters, digits, punctuation
)

// class[verb][c] reports whether byte c may appear in a run captured by verb.
var class = func() (t [128][256]bool) {
	for c := range 256 {
		digit := '0' <= c && c <= '9'
		t[VerbUnsigned][c] = digit
		t[VerbFloat][c] = digit || c == '.'
		t[VerbString][c] = ('!' <= c && c <= '~') || c >= 0x80
	}

	return t
}()

// segment is either a literal byte or a placeholder for fields[field].
type segment struct {
	verb  byte // 0 for a literal
	lit   byte
	field int
}

// Format is a compiled scan/print pattern such as "%u/%u/%u".
type Format struct {
	text   string
	segs   []segment
	fields []lang.Prioritized
}

// NewFormat compiles text, binding its placeholders in order to fields.
func NewFormat(text string, fields []lang.Prioritized) (*Format, error) {
	f := &Format{text: text, fields: make([]lang.Prioritized, len(fields))}
	copy(f.fields, fields)

	seen := make(map[string]bool, len(fields))
	for _, p := range fields {
		if seen[p.Name] {
			return nil, lang.ErrDuplicateFormat.With(
				slog.String("format", text),
				slog.String("component", p.Name),
			)
		}

		seen[p.Name] = true
	}

	n := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			f.segs = append(f.segs, segment{lit: text[i]})

			continue
		}

		if i+1 >= len(text) {
			return nil, lang.ErrUnknownFormatType.With(
				slog.String("format", text),
				slog.String("verb", "%"),
			)
		}

		i++

		switch verb := text[i]; verb {
		case '%':
			f.segs = append(f.segs, segment{lit: '%'})

		case VerbUnsigned, VerbFloat, VerbString:
			f.segs = append(f.segs, segment{verb: verb, field: n})
			n++

		default:
			return nil, lang.ErrUnknownFormatType.With(
				slog.String("format", text),
				slog.String("verb", "%"+string(verb)),
			)
		}
	}

	if n != len(fields) {
		return nil, lang.ErrMissingArgument.With(
			slog.String("format", text),
			slog.Int("placeholders", n),
			slog.Int("components", len(fields)),
		)
	}

	return f, nil
}

// String returns the format text.
func (f *Format) String() string { return f.text }

// Fields returns the components bound to the placeholders, in placeholder
// order.
func (f *Format) Fields() []lang.Prioritized {
	return append([]lang.Prioritized(nil), f.fields...)
}

// Scan matches input against f and returns the captured text of each
// component. Whitespace in input before a placeholder is skipped; input
// remaining after the last segment is ignored.
func (f *Format) Scan(input string) (map[string]string, error) {
	comps := make(map[string]string, len(f.fields))
	pos := 0

	for i, seg := range f.segs {
		if seg.verb == 0 {
			if pos >= len(input) {
				if f.placeholdersFrom(i) {
					return nil, f.truncated(input)
				}

				return comps, nil
			}

			if input[pos] != seg.lit {
				return nil, ErrFormatMismatch.With(
					slog.String("format", f.text),
					slog.String("input", input),
					slog.Int("offset", pos),
				)
			}

			pos++

			continue
		}

		for pos < len(input) && (input[pos] == ' ' || input[pos] == '\t') {
			pos++
		}

		if pos >= len(input) {
			return nil, f.truncated(input)
		}

		stop, hasStop := f.stopper(i)
		start := pos
		dot := false

		for pos < len(input) {
			c := input[pos]
			if !class[seg.verb][c] || (hasStop && c == stop) {
				break
			}

			if seg.verb == VerbFloat && c == '.' {
				if dot {
					break
				}

				dot = true
			}

			pos++
		}

		if pos == start {
			return nil, ErrFormatMismatch.With(
				slog.String("format", f.text),
				slog.String("input", input),
				slog.Int("offset", pos),
				slog.String("verb", "%"+string(seg.verb)),
			)
		}

		comps[f.fields[seg.field].Name] = input[start:pos]
	}

	return comps, nil
}

// Print renders comps through f. Missing components render empty.
func (f *Format) Print(comps map[string]string) string {
	var b strings.Builder

	for _, seg := range f.segs {
		if seg.verb == 0 {
			b.WriteByte(seg.lit)
		} else {
			b.WriteString(comps[f.fields[seg.field].Name])
		}
	}

	return b.String()
}

// stopper returns the literal following segment i, if any.
func (f *Format) stopper(i int) (byte, bool) {
	if i+1 < len(f.segs) && f.segs[i+1].verb == 0 {
		return f.segs[i+1].lit, true
	}

	return 0, false
}

func (f *Format) placeholdersFrom(i int) bool {
	for _, seg := range f.segs[i:] {
		if seg.verb != 0 {
			return true
		}
	}

	return false
}

func (f *Format) truncated(input string) error {
	return ErrTruncatedInput.With(
		slog.String("format", f.text),
		slog.String("input", input),
	)
}
