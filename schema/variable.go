package schema

import (
	"maps"
	"slices"
	"strings"

	"github.com/ardnew/cmf/lang"
)

// FitSeparator joins the members of a fit group in a single cell.
const FitSeparator = "|"

// Variable is a schema variable. Its flags are fixed once compiled; its
// current value and alignment change while a document reads rows.
type Variable struct {
	literal    string
	numeric    bool
	marker     bool
	exceptions map[string]string
	format     *Format
	fit        []*Variable

	key        bool
	helper     bool
	aggregates bool
	trails     bool

	raw   string
	comps map[string]string
	index int
}

func newVariable(literal string, kind lang.Kind, exceptions map[string]string) *Variable {
	v := &Variable{
		literal:    literal,
		numeric:    kind == lang.KindNumber,
		marker:     kind == lang.KindMul,
		exceptions: exceptions,
		index:      -1,
	}

	if v.numeric {
		v.raw = literal
	}

	return v
}

// Literal returns the text the variable was declared with. For linked
// variables this is the header label.
func (v *Variable) Literal() string { return v.literal }

// Numeric reports whether the variable was declared from a number.
func (v *Variable) Numeric() bool { return v.numeric }

// Key reports whether the variable is part of the grouping key. The
// trailing variable always is.
func (v *Variable) Key() bool { return v.key || v.trails }

// Helper reports whether the variable is an aggregate omitted from output.
func (v *Variable) Helper() bool { return v.helper }

// Aggregates reports whether repeated records accumulate the variable.
func (v *Variable) Aggregates() bool { return v.aggregates }

// Trails reports whether the variable is the pivoted dimension.
func (v *Variable) Trails() bool { return v.trails }

// Format returns the bound format, or nil.
func (v *Variable) Format() *Format { return v.format }

// Fit returns the members of a fit group.
func (v *Variable) Fit() []*Variable { return slices.Clone(v.fit) }

// IsFit reports whether the variable is a fit group.
func (v *Variable) IsFit() bool { return len(v.fit) > 0 }

// Exceptions returns a copy of the raw-to-canonical substitutions.
func (v *Variable) Exceptions() map[string]string { return maps.Clone(v.exceptions) }

// Index returns the aligned column, or -1.
func (v *Variable) Index() int { return v.index }

// SetIndex aligns the variable to column i; -1 unaligns it.
func (v *Variable) SetIndex(i int) { v.index = i }

// Reset clears the current value, including fit members.
func (v *Variable) Reset() {
	for _, m := range v.fit {
		m.Reset()
	}

	v.raw, v.comps = "", nil
}

// Read sets the current value from s. Fit groups split s on
// [FitSeparator] and read each member; otherwise exceptions are substituted
// and the result is scanned against the format, if any.
func (v *Variable) Read(s string) error {
	if v.IsFit() {
		parts := strings.SplitN(s, FitSeparator, len(v.fit))

		for i, m := range v.fit {
			var part string
			if i < len(parts) {
				part = parts[i]
			}

			if err := m.Read(part); err != nil {
				return err
			}
		}

		return nil
	}

	if c, ok := v.exceptions[s]; ok {
		s = c
	}

	v.raw = s
	v.comps = nil

	if v.format == nil || s == "" {
		return nil
	}

	comps, err := v.format.Scan(s)
	if err != nil {
		return err
	}

	v.comps = comps

	return nil
}

// Write renders the current value: formatted variables print their
// components through the format and fit groups join their members.
func (v *Variable) Write() string {
	switch {
	case v.IsFit():
		part := make([]string, len(v.fit))
		for i, m := range v.fit {
			part[i] = m.Write()
		}

		return strings.Join(part, FitSeparator)

	case v.format != nil && v.comps != nil:
		return v.format.Print(v.comps)

	default:
		return v.raw
	}
}

// Set loads a recorded value. Components are copied when both sides are
// formatted, so the value renders in this variable's format.
func (v *Variable) Set(val Value) error {
	if v.format != nil && len(val.components) > 0 {
		v.comps = make(map[string]string, len(val.components))
		for _, c := range val.components {
			v.comps[c.Name] = c.Text
		}

		v.raw = v.format.Print(v.comps)

		return nil
	}

	return v.Read(val.text)
}

// Imprint snapshots the current value. Fit groups choose their
// representative through fs.
func (v *Variable) Imprint(fs *FitnessSet) Value {
	switch {
	case v.IsFit():
		cands := make([]string, len(v.fit))
		for i, m := range v.fit {
			cands[i] = m.Write()
		}

		sel, alts := fs.Select(cands)

		return NewValue(sel).WithAlternatives(alts)

	case v.format != nil && v.comps != nil:
		fields := v.format.fields
		comps := make([]Component, len(fields))

		for i, f := range fields {
			comps[i] = Component{Name: f.Name, Priority: f.Priority, Text: v.comps[f.Name]}
		}

		return ComponentValue(v.Write(), comps)

	default:
		return NewValue(v.raw)
	}
}

func (v *Variable) clone() *Variable {
	c := *v
	c.exceptions = maps.Clone(v.exceptions)
	c.comps = maps.Clone(v.comps)
	c.fit = nil

	return &c
}
