package schema

import (
	"cmp"
	"slices"

	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/log"
)

// DefaultAspect labels trailing data in a schema that declares no aspects.
const DefaultAspect = "value"

// Aspect is a declared data slice. A negative priority marks an aspect with
// no data in the current set of sources.
type Aspect struct {
	Label    string `json:"label"    yaml:"label"`
	Priority int    `json:"priority" yaml:"priority"`
}

// Present reports whether the aspect has data.
func (a Aspect) Present() bool { return a.Priority >= 0 }

// Link binds a header label to a variable name.
type Link struct {
	Header string
	Name   string
}

// Context is a compiled schema. Its variables and metadata are fixed once
// compiled; only variable values and alignment change during a document
// pass.
type Context struct {
	name         string
	vars         []*Variable
	byName       map[string]*Variable
	names        map[*Variable]string
	links        map[string]string
	linkOrder    []string
	aspects      []Aspect
	declared     []int
	aspectSource string
	trailing     *Variable
	program      *lang.Program
	logger       log.Logger
}

// Option configures compilation.
type Option func(*Context)

// WithLogger sets the logger used while compiling.
func WithLogger(logger log.Logger) Option {
	return func(c *Context) { c.logger = logger }
}

// WithName names the compiled schema.
func WithName(name string) Option {
	return func(c *Context) { c.name = name }
}

func newContext(opts ...Option) *Context {
	c := &Context{
		byName: make(map[string]*Variable),
		names:  make(map[*Variable]string),
		links:  make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the schema name.
func (c *Context) Name() string { return c.name }

// Program returns the parsed statements the context was compiled from.
func (c *Context) Program() *lang.Program { return c.program }

// Logger returns the logger the context was compiled with.
func (c *Context) Logger() log.Logger { return c.logger }

// Variables returns the variables in declaration order.
func (c *Context) Variables() []*Variable { return slices.Clone(c.vars) }

// Lookup returns the variable bound to name, including aliases.
func (c *Context) Lookup(name string) (*Variable, bool) {
	v, ok := c.byName[name]

	return v, ok
}

// NameOf returns the canonical name of v.
func (c *Context) NameOf(v *Variable) string { return c.names[v] }

// Link returns the name of the variable linked to a header label.
func (c *Context) Link(header string) (string, bool) {
	n, ok := c.links[header]

	return n, ok
}

// Links returns the header links in declaration order.
func (c *Context) Links() []Link {
	links := make([]Link, len(c.linkOrder))
	for i, h := range c.linkOrder {
		links[i] = Link{Header: h, Name: c.links[h]}
	}

	return links
}

// Header returns the column label of v: its linked header, or its name.
func (c *Context) Header(v *Variable) string {
	name := c.names[v]

	for _, h := range c.linkOrder {
		if c.links[h] == name {
			return h
		}
	}

	return name
}

// Aspects returns the declared aspects ordered by declared priority. A
// schema with trailing data and no declaration has the single implicit
// aspect [DefaultAspect].
func (c *Context) Aspects() []Aspect { return slices.Clone(c.aspects) }

// AspectSource returns the name of the variable aspect cells are cloned
// from, or "".
func (c *Context) AspectSource() string { return c.aspectSource }

// SetAspectPresent marks the named aspect as having data or not. An aspect
// without data is seeded with "0" when records are created.
func (c *Context) SetAspectPresent(label string, present bool) {
	for i := range c.aspects {
		if c.aspects[i].Label != label {
			continue
		}

		switch {
		case present:
			c.aspects[i].Priority = c.declared[i]
		case !present:
			c.aspects[i].Priority = -1
		}
	}
}

// Trailing returns the pivoted variable, or nil.
func (c *Context) Trailing() *Variable { return c.trailing }

// Keys returns the key variables ordered by name.
func (c *Context) Keys() []*Variable {
	var keys []*Variable

	for _, v := range c.vars {
		if v.Key() {
			keys = append(keys, v)
		}
	}

	slices.SortFunc(keys, func(a, b *Variable) int {
		return cmp.Compare(c.names[a], c.names[b])
	})

	return keys
}

// KeyNames returns the names of [Context.Keys].
func (c *Context) KeyNames() []string {
	keys := c.Keys()
	names := make([]string, len(keys))

	for i, v := range keys {
		names[i] = c.names[v]
	}

	return names
}

// Fused reports whether v is a member of some fit group.
func (c *Context) Fused(v *Variable) bool {
	for _, w := range c.vars {
		if slices.Contains(w.fit, v) {
			return true
		}
	}

	return false
}

// Clone returns a deep copy of c sharing no variables with it.
func (c *Context) Clone() *Context {
	d := newContext(WithName(c.name), WithLogger(c.logger))

	remap := make(map[*Variable]*Variable, len(c.vars))
	for _, v := range c.vars {
		remap[v] = v.clone()
	}

	for _, v := range c.vars {
		w := remap[v]
		for _, m := range v.fit {
			w.fit = append(w.fit, remap[m])
		}
	}

	for _, v := range c.vars {
		d.vars = append(d.vars, remap[v])
		d.names[remap[v]] = c.names[v]
	}

	for n, v := range c.byName {
		d.byName[n] = remap[v]
	}

	for _, h := range c.linkOrder {
		d.links[h] = c.links[h]
	}

	d.linkOrder = slices.Clone(c.linkOrder)
	d.aspects = slices.Clone(c.aspects)
	d.declared = slices.Clone(c.declared)
	d.aspectSource = c.aspectSource
	d.trailing = remap[c.trailing]

	if c.program != nil {
		d.program = c.program.Clone()
	}

	return d
}
