package schema

import (
	"cmp"
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
)

// Serialization tags. Values of different shapes order by tag.
const (
	tagText byte = iota
	tagNumber
	tagComponents
)

// Component is a named part of a formatted value.
type Component struct {
	Name     string
	Priority int
	Text     string
}

// Value is an immutable snapshot of a variable, usable as a table cell or as
// an element of a [Group]. Two values are equal when their canonical
// serializations are equal; alternatives and phase do not take part.
type Value struct {
	text         string
	components   []Component
	numeric      bool
	integer      bool
	number       int64
	alternatives []string
	phase        int
	key          string
}

// NewValue returns a plain value. Text is numeric only when it is the
// canonical rendering of a 64-bit integer, so "01" and "1" stay distinct.
// Non-canonical integers such as "007" still sum as integers.
func NewValue(text string) Value {
	v := Value{text: text}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		v.integer, v.number = true, n
		v.numeric = strconv.FormatInt(n, 10) == text
	}

	v.key = v.serialize()

	return v
}

// NumberValue returns a numeric value.
func NumberValue(n int64) Value {
	v := Value{text: strconv.FormatInt(n, 10), numeric: true, integer: true, number: n}
	v.key = v.serialize()

	return v
}

// ComponentValue returns a formatted value with the given rendering and
// components. Components are ordered by priority, ties keeping their order.
func ComponentValue(text string, comps []Component) Value {
	v := Value{text: text, components: slices.Clone(comps)}

	slices.SortStableFunc(v.components, func(a, b Component) int {
		return cmp.Compare(a.Priority, b.Priority)
	})

	v.key = v.serialize()

	return v
}

// WithAlternatives returns a copy of v carrying the unselected fit candidates.
func (v Value) WithAlternatives(alts []string) Value {
	v.alternatives = slices.Clone(alts)

	return v
}

// WithPhase returns a copy of v stamped with a load phase.
func (v Value) WithPhase(phase int) Value {
	v.phase = phase

	return v
}

// Text returns the rendered value.
func (v Value) Text() string { return v.text }

func (v Value) String() string { return v.text }

// Number returns the integer value and whether v is numeric.
func (v Value) Number() (int64, bool) { return v.number, v.numeric }

// Int returns the parsed integer, or 0 if v is not [Value.Integral].
func (v Value) Int() int64 { return v.number }

// Integral reports whether the text of v parses as an integer, leading
// zeros included.
func (v Value) Integral() bool { return v.integer }

// Components returns the components in priority order.
func (v Value) Components() []Component { return slices.Clone(v.components) }

// Component returns the text of the named component.
func (v Value) Component(name string) (string, bool) {
	for _, c := range v.components {
		if c.Name == name {
			return c.Text, true
		}
	}

	return "", false
}

// Alternatives returns the fit candidates not selected for v.
func (v Value) Alternatives() []string { return slices.Clone(v.alternatives) }

// Phase returns the load phase v was recorded in.
func (v Value) Phase() int { return v.phase }

// Add returns the integer sum of v and w. Operands that are not
// [Value.Integral] count as 0.
// The result carries v's phase.
func (v Value) Add(w Value) Value {
	return NumberValue(v.number + w.number).WithPhase(v.phase)
}

// Key returns the canonical serialization of v.
func (v Value) Key() string { return v.key }

// Equal reports whether v and w have the same canonical serialization.
func (v Value) Equal(w Value) bool { return v.key == w.key }

// Compare orders v and w by canonical serialization.
func (v Value) Compare(w Value) int { return strings.Compare(v.key, w.key) }

func (v Value) serialize() string {
	var b []byte

	switch {
	case len(v.components) > 0:
		b = append(b, tagComponents)
		for _, c := range v.components {
			b = appendText(b, c.Text)
		}

	case v.numeric:
		b = append(b, tagNumber)
		b = appendNumber(b, v.number)

	default:
		b = append(b, tagText)
		b = append(b, v.text...)
		b = append(b, 0)
	}

	return string(b)
}

// appendText appends a component: integers as sign-biased big-endian so that
// byte order matches numeric order, anything else NUL-terminated. Leading
// zeros are ignored here, so "01" and "1" name the same day in two formats.
func appendText(b []byte, s string) []byte {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return appendNumber(append(b, tagNumber), n)
	}

	b = append(b, tagText)
	b = append(b, s...)

	return append(b, 0)
}

func appendNumber(b []byte, n int64) []byte {
	return binary.BigEndian.AppendUint64(b, uint64(n)^(1<<63))
}

// Group is an ordered tuple of key values identifying one record.
type Group []Value

// Compare orders groups element-wise, a shorter prefix first.
func (g Group) Compare(h Group) int {
	for i := range min(len(g), len(h)) {
		if c := g[i].Compare(h[i]); c != 0 {
			return c
		}
	}

	return cmp.Compare(len(g), len(h))
}

// Equal reports whether g and h compare equal.
func (g Group) Equal(h Group) bool { return g.Compare(h) == 0 }

// Clone returns a copy of g.
func (g Group) Clone() Group { return slices.Clone(g) }

func (g Group) String() string {
	part := make([]string, len(g))
	for i, v := range g {
		part[i] = v.text
	}

	return "(" + strings.Join(part, ", ") + ")"
}

// CompareGroups is a comparator over [Group] values stored as interfaces.
func CompareGroups(a, b any) int { return a.(Group).Compare(b.(Group)) }
