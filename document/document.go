// Package document loads tabular data through a compiled schema into a
// grouped table, merges tables, and writes them back out.
package document

import (
	"slices"

	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/schema"
)

// Document is a compiled schema together with the records loaded through
// it.
type Document struct {
	ctx     *schema.Context
	fitness *schema.FitnessSet
	table   *Table
	logger  log.Logger

	keys       []*schema.Variable
	values     []*schema.Variable
	aggregates []*schema.Variable
	trailing   *schema.Variable

	phase   int
	active  string
	aligned []*schema.Variable
	trail   []string
	missing log.Once
	inexact log.Once
}

// Option configures a [Document].
type Option func(*Document)

// WithLogger sets the logger used while loading, merging and writing.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) { d.logger = logger }
}

// New returns an empty document over ctx. Documents that take part in the
// same merge must share fs.
func New(ctx *schema.Context, fs *schema.FitnessSet, opts ...Option) *Document {
	d := &Document{
		ctx:      ctx,
		fitness:  fs,
		table:    NewTable(),
		trailing: ctx.Trailing(),
		keys:     ctx.Keys(),
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.trailing != nil && !d.explicitAspects() {
		d.active = schema.DefaultAspect
	}

	for _, v := range ctx.Variables() {
		if v.Key() || ctx.Fused(v) {
			continue
		}

		d.values = append(d.values, v)

		if v.Aggregates() {
			d.aggregates = append(d.aggregates, v)
		}
	}

	return d
}

// Context returns the compiled schema.
func (d *Document) Context() *schema.Context { return d.ctx }

// Name returns the schema name.
func (d *Document) Name() string { return d.ctx.Name() }

// Table returns the loaded records.
func (d *Document) Table() *Table { return d.table }

// Fitness returns the shared fitness set.
func (d *Document) Fitness() *schema.FitnessSet { return d.fitness }

// Phase returns the number of sources loaded.
func (d *Document) Phase() int { return d.phase }

// KeyNames returns the names of the key variables in group order.
func (d *Document) KeyNames() []string { return d.ctx.KeyNames() }

// keyPos returns the position of the named key in a group, or -1.
func (d *Document) keyPos(name string) int {
	return slices.Index(d.KeyNames(), name)
}

// Trailing reports whether the schema declares a pivoted variable.
func (d *Document) Trailing() bool { return d.trailing != nil }

// Aspects returns the aspect labels in priority order.
func (d *Document) Aspects() []string {
	var labels []string
	for _, a := range d.ctx.Aspects() {
		labels = append(labels, a.Label)
	}

	return labels
}

// explicitAspects reports whether the schema declares its own aspects, as
// opposed to the implicit aspect of undeclared trailing data.
func (d *Document) explicitAspects() bool {
	a := d.ctx.Aspects()

	return len(a) > 1 || (len(a) == 1 && a[0].Label != schema.DefaultAspect)
}
