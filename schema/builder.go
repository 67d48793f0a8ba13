package schema

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/ardnew/cmf/lang"
)

// Builder evaluates statements into a [Context]. It implements
// [lang.Callbacks].
type Builder struct {
	ctx  *Context
	temp []*Variable
}

var _ lang.Callbacks = (*Builder)(nil)

// NewBuilder returns a builder for an empty context.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{ctx: newContext(opts...)}
}

// Apply evaluates every statement of prog. Statements evaluated before a
// failing one remain applied.
func (b *Builder) Apply(ctx context.Context, prog *lang.Program) error {
	if err := prog.Eval(ctx, b); err != nil {
		return err
	}

	if b.ctx.program == nil {
		b.ctx.program = prog.Clone()
	} else {
		b.ctx.program.Statements = append(b.ctx.program.Statements, prog.Clone().Statements...)
		b.ctx.program.Source += prog.Source
	}

	return nil
}

// Context validates the declarations applied so far and returns a copy of
// the compiled context.
func (b *Builder) Context() (*Context, error) {
	c := b.ctx.Clone()

	if c.aspectSource != "" {
		if _, ok := c.byName[c.aspectSource]; !ok {
			return nil, lang.ErrUndefinedVariable.With(
				slog.String("name", c.aspectSource),
				slog.String("role", "aspect source"),
			)
		}
	}

	if c.trailing != nil && len(c.aspects) == 0 {
		c.aspects = []Aspect{{Label: DefaultAspect}}
		c.declared = []int{0}
	}

	return c, nil
}

func (b *Builder) ref(v *Variable) lang.Ref {
	b.temp = append(b.temp, v)

	return lang.Ref(len(b.temp))
}

func (b *Builder) get(r lang.Ref) (*Variable, error) {
	if r < 1 || int(r) > len(b.temp) {
		return nil, lang.ErrMissingArgument.With(slog.String("issue", "statement has no value"))
	}

	return b.temp[r-1], nil
}

// Load resolves a declared variable.
func (b *Builder) Load(name string) (lang.Ref, error) {
	v, ok := b.ctx.byName[name]
	if !ok {
		return 0, lang.ErrUndefinedVariable.With(slog.String("name", name))
	}

	return b.ref(v), nil
}

// Save binds ref to name. Saving an already named variable under a new name
// makes the new name canonical; the old name still resolves.
func (b *Builder) Save(name string, ref lang.Ref) error {
	v, err := b.get(ref)
	if err != nil {
		return err
	}

	if w, ok := b.ctx.byName[name]; ok && w != v {
		return lang.ErrRedeclared.With(slog.String("name", name))
	}

	c := b.ctx

	if prev, ok := c.names[v]; ok {
		c.names[v] = name
		c.byName[name] = v

		for h, n := range c.links {
			if n == prev {
				c.links[h] = name
			}
		}

		c.logger.Trace("renamed variable",
			slog.String("from", prev),
			slog.String("to", name),
		)

		return nil
	}

	switch {
	case v.marker:
		if c.trailing != nil {
			return lang.ErrDuplicateTrailing.With(
				slog.String("name", name),
				slog.String("trailing", c.names[c.trailing]),
			)
		}

		v.trails = true
		c.trailing = v

	case !v.numeric && !v.IsFit():
		if _, ok := c.links[v.literal]; !ok {
			c.linkOrder = append(c.linkOrder, v.literal)
		}

		c.links[v.literal] = name
	}

	c.byName[name] = v
	c.names[v] = name
	c.vars = append(c.vars, v)

	c.logger.Trace("declared variable",
		slog.String("name", name),
		slog.String("literal", v.literal),
		slog.Bool("trailing", v.trails),
	)

	return nil
}

// Constant creates a variable from a literal.
func (b *Builder) Constant(text string, kind lang.Kind, exceptions map[string]string) (lang.Ref, error) {
	return b.ref(newVariable(text, kind, exceptions)), nil
}

// Scanf binds a format to the variable at input.
func (b *Builder) Scanf(input lang.Ref, format string, fields []lang.Prioritized) (lang.Ref, error) {
	v, err := b.get(input)
	if err != nil {
		return 0, err
	}

	if v.format != nil {
		return 0, lang.ErrDuplicateFormat.With(
			slog.String("format", format),
			slog.String("bound", v.format.text),
		)
	}

	if v.IsFit() {
		return 0, lang.ErrConflictingFlags.With(slog.String("issue", "format bound to fit group"))
	}

	f, err := NewFormat(format, fields)
	if err != nil {
		return 0, err
	}

	v.format = f

	return input, nil
}

// Sum marks the variable at ref as an aggregate.
func (b *Builder) Sum(ref lang.Ref) (lang.Ref, error) {
	v, err := b.get(ref)
	if err != nil {
		return 0, err
	}

	if v.aggregates {
		return 0, lang.ErrDuplicateAggregate.With(slog.String("literal", v.literal))
	}

	v.aggregates = true

	return ref, nil
}

// DeclareAspects registers the aspect labels, ordered by priority, and the
// optional variable aspect cells are cloned from.
func (b *Builder) DeclareAspects(labels []lang.Prioritized, source string) (lang.Ref, error) {
	if len(b.ctx.aspects) > 0 {
		return 0, lang.ErrDuplicateAspects
	}

	if len(labels) < 2 {
		return 0, lang.ErrMissingArgument.With(slog.Int("aspects", len(labels)))
	}

	sorted := slices.Clone(labels)
	slices.SortStableFunc(sorted, func(x, y lang.Prioritized) int {
		return cmp.Compare(x.Priority, y.Priority)
	})

	for _, l := range sorted {
		b.ctx.aspects = append(b.ctx.aspects, Aspect{Label: l.Name, Priority: l.Priority})
		b.ctx.declared = append(b.ctx.declared, l.Priority)
	}

	b.ctx.aspectSource = source

	return 0, nil
}

// Fit builds a fit group from declared variables.
func (b *Builder) Fit(names []string) (lang.Ref, error) {
	if len(names) < 2 {
		return 0, lang.ErrMissingArgument.With(slog.Int("members", len(names)))
	}

	v := newVariable("", lang.KindInvalid, nil)

	for _, n := range names {
		m, ok := b.ctx.byName[n]
		if !ok {
			return 0, lang.ErrUnknownFitMember.With(slog.String("name", n))
		}

		v.fit = append(v.fit, m)
	}

	return b.ref(v), nil
}

// Key marks the variable at ref as part of the grouping key.
func (b *Builder) Key(ref lang.Ref) (lang.Ref, error) {
	v, err := b.get(ref)
	if err != nil {
		return 0, err
	}

	switch {
	case v.helper:
		return 0, lang.ErrConflictingFlags.With(slog.String("issue", "key declared on helper"))
	case v.key:
		return 0, lang.ErrDuplicateKey.With(slog.String("literal", v.literal))
	}

	v.key = true

	return ref, nil
}

// Helper marks the aggregate at ref as omitted from output.
func (b *Builder) Helper(ref lang.Ref) (lang.Ref, error) {
	v, err := b.get(ref)
	if err != nil {
		return 0, err
	}

	switch {
	case v.key || v.trails:
		return 0, lang.ErrConflictingFlags.With(slog.String("issue", "helper declared on key"))
	case v.helper:
		return 0, lang.ErrDuplicateHelper.With(slog.String("literal", v.literal))
	case !v.aggregates:
		return 0, lang.ErrConflictingFlags.With(slog.String("issue", "helper must be an aggregate"))
	}

	v.helper = true

	return ref, nil
}
