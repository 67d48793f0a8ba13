package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/cmf/schema"
	"github.com/ardnew/cmf/table"
)

// Align binds header columns to variables. A header matches a variable by
// its linked label, or by name when the variable has no link. The first
// unmatched header starts the pivoted region when the schema has a trailing
// variable; that header and all following are kept as trailing values.
func (d *Document) Align(ctx context.Context, headers []string) {
	for _, v := range d.ctx.Variables() {
		v.SetIndex(-1)
	}

	d.aligned = d.aligned[:0]
	d.trail = nil

	for i, h := range headers {
		if v := d.match(h); v != nil {
			v.SetIndex(i)
			d.aligned = append(d.aligned, v)

			continue
		}

		if d.trailing != nil {
			d.trailing.SetIndex(i)
			d.trail = append([]string(nil), headers[i:]...)

			break
		}

		d.logger.DebugContext(ctx, "ignored column",
			slog.String("schema", d.Name()),
			slog.String("header", h),
		)
	}

	for _, v := range d.ctx.Variables() {
		if v.Index() < 0 && !v.IsFit() && !v.Numeric() && !v.Trails() {
			v.Reset()
		}
	}

	d.logger.DebugContext(ctx, "aligned headers",
		slog.String("schema", d.Name()),
		slog.Int("columns", len(headers)),
		slog.Int("aligned", len(d.aligned)),
		slog.Int("trailing", len(d.trail)),
	)
}

func (d *Document) match(header string) *schema.Variable {
	if name, ok := d.ctx.Link(header); ok {
		v, _ := d.ctx.Lookup(name)

		return v
	}

	if v, ok := d.ctx.Lookup(header); ok && !v.Trails() && d.ctx.Header(v) == header {
		return v
	}

	return nil
}

// Process reads one data row into the aligned variables and records it:
// once without a pivoted region, or once per trailing column with that
// column's cell as the aspect value.
func (d *Document) Process(ctx context.Context, row []string) error {
	for _, v := range d.aligned {
		if err := v.Read(d.cell(ctx, row, v.Index(), d.ctx.Header(v))); err != nil {
			return err
		}
	}

	if d.trailing == nil || len(d.trail) == 0 {
		return d.record(ctx, nil)
	}

	for j, h := range d.trail {
		if err := d.trailing.Read(h); err != nil {
			return err
		}

		cell := d.cell(ctx, row, d.trailing.Index()+j, h)

		if err := d.record(ctx, &cell); err != nil {
			return err
		}
	}

	return nil
}

// cell returns row[i], warning once per header when the row is short.
func (d *Document) cell(ctx context.Context, row []string, i int, header string) string {
	if i < len(row) {
		return row[i]
	}

	d.missing.Warn(ctx, d.logger, header, "row missing field",
		slog.String("schema", d.Name()),
		slog.String("field", header),
		slog.Int("columns", len(row)),
	)

	return ""
}

// record folds the current variable state into the table.
func (d *Document) record(ctx context.Context, aspect *string) error {
	g := make(schema.Group, len(d.keys))
	for i, v := range d.keys {
		g[i] = v.Imprint(d.fitness)
	}

	rec, exists := d.table.Get(g)

	if exists && d.active != "" && len(d.aggregates) == 0 {
		d.setAspect(ctx, rec, aspect, false)

		return nil
	}

	if !exists {
		rec = make(Record, len(d.values)+len(d.ctx.Aspects()))

		for _, v := range d.values {
			rec[d.ctx.NameOf(v)] = v.Imprint(d.fitness).WithPhase(d.phase)
		}

		for _, a := range d.ctx.Aspects() {
			if !a.Present() {
				rec[a.Label] = schema.NewValue("0")
			}
		}
	} else {
		for _, v := range d.values {
			name := d.ctx.NameOf(v)
			cur := v.Imprint(d.fitness).WithPhase(d.phase)

			if old, ok := rec[name]; ok && v.Aggregates() && old.Phase() == d.phase {
				cur = d.sum(ctx, name, old, cur)
			}

			rec[name] = cur
		}
	}

	d.setAspect(ctx, rec, aspect, exists && len(d.aggregates) > 0)
	d.table.Put(g, rec)

	d.logger.TraceContext(ctx, "recorded state",
		slog.String("schema", d.Name()),
		slog.String("group", g.String()),
		slog.Bool("existing", exists),
		slog.Int("phase", d.phase),
	)

	return nil
}

// setAspect fills the active aspect cell from the aspect source field or
// from the explicit value. With accumulate set, a cell recorded earlier in
// the same phase is summed.
func (d *Document) setAspect(
	ctx context.Context, rec Record, aspect *string, accumulate bool,
) {
	if d.active == "" {
		return
	}

	var val schema.Value

	switch src := d.ctx.AspectSource(); {
	case src != "":
		v, ok := rec[src]
		if !ok {
			return
		}

		val = v
	case aspect != nil:
		val = schema.NewValue(*aspect)
	default:
		return
	}

	val = val.WithPhase(d.phase)

	if old, ok := rec[d.active]; ok && accumulate && old.Phase() == d.phase {
		val = d.sum(ctx, d.active, old, val)
	}

	rec[d.active] = val
}

// sum adds two cells of the named field. Non-empty cells that are not
// integers count as 0 and are reported once per field.
func (d *Document) sum(ctx context.Context, name string, a, b schema.Value) schema.Value {
	for _, v := range [...]schema.Value{a, b} {
		if v.Text() == "" || v.Integral() {
			continue
		}

		d.inexact.Warn(ctx, d.logger, name, "non-integer value summed as 0",
			slog.String("schema", d.Name()),
			slog.String("field", name),
			slog.String("value", v.Text()),
		)
	}

	return a.Add(b)
}

// Load reads a header row and all data rows from r as one source. Each
// call starts a new load phase.
func (d *Document) Load(ctx context.Context, r io.Reader) error {
	d.phase++

	rows := table.NewReader(r)
	defer rows.Close()

	header, err := rows.Read()
	if errors.Is(err, io.EOF) {
		return ErrMissingHeader.With(slog.String("schema", d.Name()))
	}

	if err != nil {
		return err
	}

	d.Align(ctx, header)

	n := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		row, err := rows.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return err
		}

		if err := d.Process(ctx, row); err != nil {
			return err
		}

		n++
	}

	d.logger.DebugContext(ctx, "loaded source",
		slog.String("schema", d.Name()),
		slog.String("aspect", d.active),
		slog.Int("phase", d.phase),
		slog.Int("rows", n),
		slog.Int("groups", d.table.Len()),
	)

	return nil
}

// LoadFile loads the data at path. For a schema declaring aspects, path
// names the base of one file per aspect, <base>_<label>.csv; labels without
// a file are marked absent and seeded with "0". It returns the files read.
func (d *Document) LoadFile(ctx context.Context, path string) ([]string, error) {
	if !d.explicitAspects() {
		return []string{path}, d.loadPath(ctx, path)
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))

	var (
		files  []string
		labels []string
	)

	for _, label := range d.Aspects() {
		file := AspectPath(base, label)

		if _, err := os.Stat(file); err != nil {
			d.ctx.SetAspectPresent(label, false)

			d.logger.DebugContext(ctx, "aspect absent",
				slog.String("schema", d.Name()),
				slog.String("aspect", label),
				slog.String("path", file),
			)

			continue
		}

		d.ctx.SetAspectPresent(label, true)
		files = append(files, file)
		labels = append(labels, label)
	}

	if len(files) == 0 {
		_, err := os.Stat(AspectPath(base, d.Aspects()[0]))

		return nil, err
	}

	for i, file := range files {
		d.active = labels[i]

		if err := d.loadPath(ctx, file); err != nil {
			return files[:i], err
		}
	}

	return files, nil
}

func (d *Document) loadPath(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return d.Load(ctx, f)
}

// AspectPath returns the file holding one aspect of the data at base.
func AspectPath(base, label string) string {
	return base + "_" + label + ".csv"
}

// SetAspect selects the aspect recorded by subsequent calls to [Document.Load].
func (d *Document) SetAspect(label string) { d.active = label }
