package cmd

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/ardnew/cmf/document"
	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/metrics"
	"github.com/ardnew/cmf/schema"
	"github.com/ardnew/cmf/store"
)

// Merge loads schema-described data sets and merges them into the layout of
// a destination schema.
type Merge struct {
	Mode     string `default:"merge_dest" enum:"${mergeModes}" help:"Merge mode (${enum})."                                          short:"m"`
	Dest     string `                                          help:"Destination schema file or name."                              required:"" short:"d"`
	DestData string `                                          help:"Existing destination data loaded before merging."              type:"path"`
	Output   string `                                          help:"Output CSV; aspect schemas write <base>_<aspect>.csv per aspect." required:"" short:"o" type:"path"`
	Param    string `                                          help:"Key that merge_forward advances along."`
	Where    string `                                          help:"Keep only groups whose record satisfies this expression."`

	SQLite      string `help:"Also export the merged rows to this SQLite database." name:"sqlite"       type:"path"`
	MetricsFile string `help:"Write Prometheus metrics to this textfile."           name:"metrics-file" type:"path"`

	Pairs []string `arg:"" help:"Source schema and data file pairs, lowest priority first." name:"schema-data"`
}

// Run executes the merge command.
func (m *Merge) Run(ctx context.Context) error {
	if len(m.Pairs)%2 != 0 {
		return ErrUsage.With(
			slog.Int("args", len(m.Pairs)),
			slog.String("issue", "sources must be schema and data pairs"),
		)
	}

	mode, err := document.ParseMode(m.Mode)
	if err != nil {
		return err
	}

	var met *metrics.Metrics
	if m.MetricsFile != "" {
		met = metrics.New()

		defer func() {
			if werr := met.WriteFile(m.MetricsFile); werr != nil {
				log.WarnContext(ctx, "failed to write metrics",
					slog.String("path", m.MetricsFile),
					slog.Any("error", werr),
				)
			}
		}()
	}

	run := store.NewRun(m.Dest, mode.String(), len(m.Pairs)/2)
	logger := log.With(slog.String("run", run.ID.String()))
	fitness := schema.NewFitnessSet()

	dest, err := m.open(ctx, m.Dest, m.DestData, fitness, logger, met)
	if err != nil {
		return err
	}

	run.Schema = dest.Name()

	sources := make([]*document.Document, 0, len(m.Pairs)/2)

	for i := 0; i < len(m.Pairs); i += 2 {
		doc, err := m.open(ctx, m.Pairs[i], m.Pairs[i+1], fitness, logger, met)
		if err != nil {
			return err
		}

		sources = append(sources, doc)
	}

	start := time.Now()
	err = dest.Import(ctx, mode, sources, m.Param)
	met.Observe(metrics.OpMerge, dest.Name(), start, err)

	if err != nil {
		return err
	}

	if m.Where != "" {
		n, err := dest.Filter(ctx, m.Where)
		if err != nil {
			return err
		}

		logger.DebugContext(ctx, "filtered groups",
			slog.String("where", m.Where),
			slog.Int("removed", n),
		)
	}

	met.Groups(dest.Name(), "dest", dest.Table().Len())

	start = time.Now()
	files, err := dest.WriteFile(ctx, m.Output)
	met.Observe(metrics.OpWrite, dest.Name(), start, err)

	if err != nil {
		return opened(err)
	}

	if m.SQLite != "" {
		start = time.Now()
		err = m.export(ctx, dest, run, logger, met)
		met.Observe(metrics.OpExport, dest.Name(), start, err)

		if err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "merged",
		slog.String("schema", dest.Name()),
		slog.String("mode", mode.String()),
		slog.Int("sources", len(sources)),
		slog.Int("groups", dest.Table().Len()),
		slog.Any("files", files),
	)

	return nil
}

// open compiles a schema and loads its data, if any.
func (m *Merge) open(
	ctx context.Context,
	name, data string,
	fitness *schema.FitnessSet,
	logger log.Logger,
	met *metrics.Metrics,
) (*document.Document, error) {
	start := time.Now()

	sc, err := compileSchema(ctx, name, logger)
	met.Observe(metrics.OpCompile, name, start, err)

	if err != nil {
		return nil, err
	}

	doc := document.New(sc, fitness, document.WithLogger(logger))

	if data == "" {
		return doc, nil
	}

	start = time.Now()
	files, err := doc.LoadFile(ctx, data)
	met.Observe(metrics.OpLoad, doc.Name(), start, err)

	if err != nil {
		return nil, opened(err)
	}

	met.Groups(doc.Name(), data, doc.Table().Len())

	logger.DebugContext(ctx, "loaded data",
		slog.String("schema", doc.Name()),
		slog.Any("files", files),
		slog.Int("groups", doc.Table().Len()),
	)

	return doc, nil
}

// export writes each output aspect of dest to its own table.
func (m *Merge) export(
	ctx context.Context,
	dest *document.Document,
	run store.Run,
	logger log.Logger,
	met *metrics.Metrics,
) error {
	db, err := store.Open(ctx, m.SQLite, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer db.Close()

	for _, label := range slices.Sorted(maps.Keys(dest.Outputs(m.Output))) {
		rows, err := dest.Rows(ctx, label)
		if err != nil {
			return err
		}

		name := dest.Name()
		if label != "" && label != schema.DefaultAspect {
			name += "_" + label
		}

		if err := db.Export(ctx, run, name, rows); err != nil {
			return err
		}

		met.Rows(dest.Name(), "out", len(rows)-1)
	}

	return nil
}
