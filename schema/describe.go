package schema

import (
	"strconv"
	"strings"

	"github.com/ardnew/cmf/lang"
)

// Description is a serializable summary of a compiled context.
type Description struct {
	Name         string        `json:"name,omitempty"          yaml:"name,omitempty"`
	Statements   []string      `json:"statements"              yaml:"statements"`
	Variables    []VariableDoc `json:"variables"               yaml:"variables"`
	Aspects      []Aspect      `json:"aspects,omitempty"       yaml:"aspects,omitempty"`
	AspectSource string        `json:"aspect_source,omitempty" yaml:"aspect_source,omitempty"`
	Trailing     string        `json:"trailing,omitempty"      yaml:"trailing,omitempty"`
	Keys         []string      `json:"keys"                    yaml:"keys"`
}

// VariableDoc describes one variable.
type VariableDoc struct {
	Name       string             `json:"name"                 yaml:"name"`
	Header     string             `json:"header,omitempty"     yaml:"header,omitempty"`
	Format     string             `json:"format,omitempty"     yaml:"format,omitempty"`
	Components []lang.Prioritized `json:"components,omitempty" yaml:"components,omitempty"`
	Fit        []string           `json:"fit,omitempty"        yaml:"fit,omitempty"`
	Exceptions map[string]string  `json:"exceptions,omitempty" yaml:"exceptions,omitempty"`
	Numeric    bool               `json:"numeric,omitempty"    yaml:"numeric,omitempty"`
	Key        bool               `json:"key,omitempty"        yaml:"key,omitempty"`
	Aggregate  bool               `json:"aggregate,omitempty"  yaml:"aggregate,omitempty"`
	Helper     bool               `json:"helper,omitempty"     yaml:"helper,omitempty"`
	Trailing   bool               `json:"trailing,omitempty"   yaml:"trailing,omitempty"`
}

// Describe summarizes c.
func (c *Context) Describe() Description {
	d := Description{
		Name:         c.name,
		Aspects:      c.Aspects(),
		AspectSource: c.aspectSource,
		Keys:         c.KeyNames(),
	}

	if c.program != nil {
		for _, s := range c.program.Statements {
			d.Statements = append(d.Statements, s.String())
		}
	}

	if c.trailing != nil {
		d.Trailing = c.names[c.trailing]
	}

	for _, v := range c.vars {
		doc := VariableDoc{
			Name:       c.names[v],
			Exceptions: v.Exceptions(),
			Numeric:    v.numeric,
			Key:        v.Key(),
			Aggregate:  v.aggregates,
			Helper:     v.helper,
			Trailing:   v.trails,
		}

		if h := c.Header(v); h != doc.Name {
			doc.Header = h
		}

		if v.format != nil {
			doc.Format = v.format.text
			doc.Components = v.format.Fields()
		}

		for _, m := range v.fit {
			doc.Fit = append(doc.Fit, c.names[m])
		}

		d.Variables = append(d.Variables, doc)
	}

	return d
}

// Definition renders how v is bound: its fit members, format, trailing
// marker or linked header.
func (v VariableDoc) Definition() string {
	switch {
	case len(v.Fit) > 0:
		return "fit " + strings.Join(v.Fit, ", ")

	case v.Format != "":
		comps := make([]string, len(v.Components))
		for i, c := range v.Components {
			comps[i] = c.String()
		}

		return strconv.Quote(v.Format) + " as {" + strings.Join(comps, ", ") + "}"

	case v.Trailing:
		return "*"

	case v.Header != "":
		return strconv.Quote(v.Header)
	}

	return ""
}

// Flags returns the bracketed role markers of v, such as "[key]".
func (v VariableDoc) Flags() []string {
	var f []string

	for _, b := range []struct {
		set  bool
		name string
	}{
		{v.Key, "key"},
		{v.Aggregate, "sum"},
		{v.Helper, "helper"},
		{v.Trailing, "trailing"},
		{v.Numeric, "numeric"},
		{len(v.Exceptions) > 0, "except"},
	} {
		if b.set {
			f = append(f, "["+b.name+"]")
		}
	}

	return f
}
