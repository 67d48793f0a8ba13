package document

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/schema"
	"github.com/ardnew/cmf/table"
)

// MissingCell is written for a pivoted cell absent from the table.
const MissingCell = "0"

// Index returns the distinct values recorded for the named key, in order.
func (d *Document) Index(key string) []schema.Value {
	pos := d.keyPos(key)
	if pos < 0 {
		return nil
	}

	return d.index(pos)
}

func (d *Document) index(pos int) []schema.Value {
	var vals []schema.Value

	d.table.Each(func(g schema.Group, _ Record) bool {
		vals = append(vals, g[pos])

		return true
	})

	slices.SortFunc(vals, schema.Value.Compare)

	return slices.CompactFunc(vals, schema.Value.Equal)
}

// columns assigns output positions to every variable written as its own
// column and returns them in declaration order.
func (d *Document) columns() []*schema.Variable {
	var cols []*schema.Variable

	for _, v := range d.ctx.Variables() {
		v.SetIndex(-1)

		if v.Trails() || v.Helper() || d.ctx.Fused(v) {
			continue
		}

		v.SetIndex(len(cols))
		cols = append(cols, v)
	}

	return cols
}

// render formats val through v when both carry components.
func render(v *schema.Variable, val schema.Value) string {
	if v.Format() == nil || len(val.Components()) == 0 {
		return val.Text()
	}

	if err := v.Set(val); err != nil {
		return val.Text()
	}

	return v.Write()
}

// Emit produces the output rows, header first, passing each to fn. Pivoted
// schemas emit the cells of one aspect; others ignore aspect.
func (d *Document) Emit(ctx context.Context, aspect string, fn func([]string) error) error {
	cols := d.columns()
	keyPos := make(map[string]int, len(d.keys))

	for i, name := range d.KeyNames() {
		keyPos[name] = i
	}

	header := make([]string, len(cols))
	for i, v := range cols {
		header[i] = d.ctx.Header(v)
	}

	if d.trailing == nil {
		aspects := d.Aspects()

		if err := fn(append(header, aspects...)); err != nil {
			return err
		}

		var err error

		d.table.Each(func(g schema.Group, rec Record) bool {
			row := d.fill(cols, keyPos, g, rec)

			for _, a := range aspects {
				if val, ok := rec[a]; ok {
					row = append(row, val.Text())
				} else {
					row = append(row, MissingCell)
				}
			}

			err = fn(row)

			return err == nil
		})

		return err
	}

	return d.emitPivot(ctx, aspect, cols, keyPos, header, fn)
}

// fill renders the columns of one record.
func (d *Document) fill(cols []*schema.Variable, keyPos map[string]int, g schema.Group, rec Record) []string {
	row := make([]string, len(cols))

	for i, v := range cols {
		name := d.ctx.NameOf(v)

		if p, ok := keyPos[name]; ok && p < len(g) {
			row[i] = render(v, g[p])
		} else if val, ok := rec[name]; ok {
			row[i] = render(v, val)
		}
	}

	return row
}

func (d *Document) emitPivot(
	ctx context.Context,
	aspect string,
	cols []*schema.Variable,
	keyPos map[string]int,
	header []string,
	fn func([]string) error,
) error {
	tpos := keyPos[d.ctx.NameOf(d.trailing)]
	tvals := d.index(tpos)

	for _, tv := range tvals {
		header = append(header, render(d.trailing, tv))
	}

	if err := fn(header); err != nil {
		return err
	}

	// Distinct non-trailing key tuples, each with its first record.
	rest := treemap.NewWith(schema.CompareGroups)

	d.table.Each(func(g schema.Group, rec Record) bool {
		p := project(g, tpos)
		if _, ok := rest.Get(p); !ok {
			rest.Put(p, rec)
		}

		return true
	})

	restPos := make(map[string]int, len(keyPos))
	for name, p := range keyPos {
		switch {
		case p < tpos:
			restPos[name] = p
		case p > tpos:
			restPos[name] = p - 1
		}
	}

	var missing log.Once

	it := rest.Iterator()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := it.Key().(schema.Group)
		row := d.fill(cols, restPos, p, it.Value().(Record))

		for _, tv := range tvals {
			rec, ok := d.table.Get(inject(p, tpos, tv))

			var val schema.Value
			if ok {
				val, ok = rec[aspect]
			}

			if !ok {
				missing.Warn(ctx, d.logger, p.String(), "missing pivot cell",
					slog.String("schema", d.Name()),
					slog.String("key", p.String()),
					slog.String("trailing", tv.Text()),
					slog.String("aspect", aspect),
				)

				row = append(row, MissingCell)

				continue
			}

			row = append(row, val.Text())
		}

		if err := fn(row); err != nil {
			return err
		}
	}

	return nil
}

// project returns g without position pos.
func project(g schema.Group, pos int) schema.Group {
	p := make(schema.Group, 0, len(g)-1)
	p = append(p, g[:pos]...)

	return append(p, g[pos+1:]...)
}

// inject returns p with v inserted at pos.
func inject(p schema.Group, pos int, v schema.Value) schema.Group {
	return slices.Insert(p.Clone(), pos, v)
}

// Rows returns the output rows of one aspect, header first.
func (d *Document) Rows(ctx context.Context, aspect string) ([][]string, error) {
	var rows [][]string

	err := d.Emit(ctx, aspect, func(row []string) error {
		rows = append(rows, row)

		return nil
	})

	return rows, err
}

// WriteTo writes the output rows of one aspect to w.
func (d *Document) WriteTo(ctx context.Context, w *table.Writer, aspect string) error {
	if err := d.Emit(ctx, aspect, w.Write); err != nil {
		return err
	}

	return w.Flush()
}

// Outputs returns each aspect written and the file it is written to when
// writing to path. Pivoted schemas with declared aspects write one file per
// aspect; everything else writes path.
func (d *Document) Outputs(path string) map[string]string {
	if d.trailing == nil {
		return map[string]string{"": path}
	}

	if !d.explicitAspects() {
		return map[string]string{schema.DefaultAspect: path}
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))
	out := make(map[string]string)

	for _, label := range d.Aspects() {
		out[label] = AspectPath(base, label)
	}

	return out
}

// WriteFile writes the document to path, or to one file per aspect. It
// returns the files written in aspect order.
func (d *Document) WriteFile(ctx context.Context, path string) ([]string, error) {
	outs := d.Outputs(path)

	labels := make([]string, 0, len(outs))
	for label := range outs {
		labels = append(labels, label)
	}

	order := d.Aspects()
	slices.SortFunc(labels, func(a, b string) int {
		return slices.Index(order, a) - slices.Index(order, b)
	})

	var written []string

	for _, label := range labels {
		file := outs[label]

		if err := d.writeFile(ctx, file, label); err != nil {
			return written, err
		}

		written = append(written, file)
	}

	d.logger.DebugContext(ctx, "wrote document",
		slog.String("schema", d.Name()),
		slog.Int("files", len(written)),
		slog.Int("groups", d.table.Len()),
	)

	return written, nil
}

func (d *Document) writeFile(ctx context.Context, path, aspect string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := d.WriteTo(ctx, table.NewWriter(f), aspect); err != nil {
		_ = f.Close()

		return err
	}

	return f.Close()
}
