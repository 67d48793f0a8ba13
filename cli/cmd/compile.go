package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/pkg"
	"github.com/ardnew/cmf/schema"
)

// Compile compiles a schema and prints its statements and variable table.
type Compile struct {
	Format string `default:"text" enum:"text,json,yaml,dump" help:"Output format (${enum})."              short:"F"`
	Watch  bool   `                                          help:"Recompile whenever the schema changes." short:"w"`

	Schema string `arg:"" help:"Schema file, or name on the schema search path." name:"schema"`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) error {
	out := stdout(ctx)

	err := c.compile(ctx, out)
	if !c.Watch {
		return err
	}

	if err != nil {
		log.ErrorContext(ctx, "compile failed", slog.Any("error", err))
	}

	path, ok := pkg.FindSchema(c.Schema)
	if !ok {
		return err
	}

	return watch(ctx, path, func() {
		if err := c.compile(ctx, out); err != nil {
			log.ErrorContext(ctx, "compile failed", slog.Any("error", err))
		}
	})
}

func (c *Compile) compile(ctx context.Context, out io.Writer) error {
	sc, err := compileSchema(ctx, c.Schema, log.Default())
	if err != nil {
		return err
	}

	return Render(out, sc.Describe(), c.Format)
}

// Render writes d to w in the named format: text, json, yaml or dump.
func Render(w io.Writer, d schema.Description, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(d); err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

	case "yaml":
		if err := yaml.NewEncoder(w, yaml.Indent(2)).Encode(d); err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

	case "dump":
		cfg := spew.ConfigState{
			Indent:                  "  ",
			SortKeys:                true,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
		}
		cfg.Fdump(w, d)

	default:
		return renderText(w, d)
	}

	return nil
}

func renderText(w io.Writer, d schema.Description) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if d.Name != "" {
		fmt.Fprintf(tw, "Schema: %s\n", d.Name)
	}

	fmt.Fprintln(tw, "Statements:")

	for i, s := range d.Statements {
		fmt.Fprintf(tw, "%4d\t%s;\n", i+1, s)
	}

	fmt.Fprintln(tw, "Vars:")

	for _, v := range d.Variables {
		fmt.Fprintf(tw, "- %s\t%s\t%s\n", v.Name, v.Definition(), strings.Join(v.Flags(), " "))
	}

	if links := links(d); len(links) > 0 {
		fmt.Fprintln(tw, "Links:")

		for _, l := range links {
			fmt.Fprintf(tw, "- %q\t=> %s\n", l[0], l[1])
		}
	}

	if len(d.Aspects) > 0 {
		fmt.Fprintln(tw, "Aspects:")

		for _, a := range d.Aspects {
			fmt.Fprintf(tw, "- %s\t(%d)\n", a.Label, a.Priority)
		}

		if d.AspectSource != "" {
			fmt.Fprintf(tw, "  from %s\n", d.AspectSource)
		}
	}

	if d.Trailing != "" {
		fmt.Fprintf(tw, "Trailing: %s\n", d.Trailing)
	}

	fmt.Fprintf(tw, "Keys: %s\n", strings.Join(d.Keys, ", "))

	return tw.Flush()
}

func links(d schema.Description) [][2]string {
	var out [][2]string

	for _, v := range d.Variables {
		if v.Header != "" && !v.Trailing {
			out = append(out, [2]string{v.Header, v.Name})
		}
	}

	return out
}

// watch calls fn each time the file at path is written or replaced, until
// ctx is done.
func watch(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return opened(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file on save.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return ErrOpenFile.Wrap(err).With(slog.String("path", filepath.Dir(abs)))
	}

	log.InfoContext(ctx, "watching schema", slog.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			log.DebugContext(ctx, "schema changed",
				slog.String("path", abs),
				slog.String("op", ev.Op.String()),
			)

			fn()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
