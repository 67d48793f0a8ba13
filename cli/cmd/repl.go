package cmd

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/cmf/cli/cmd/repl"
	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/pkg"
)

// Repl starts an interactive session, optionally seeded with a schema.
type Repl struct {
	Schema string `arg:"" help:"Schema to load into the session." optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	name := "repl"

	var src io.Reader

	if r.Schema != "" {
		path, ok := pkg.FindSchema(r.Schema)
		if !ok {
			return opened(&fs.PathError{Op: "open", Path: r.Schema, Err: fs.ErrNotExist})
		}

		f, err := os.Open(path)
		if err != nil {
			return opened(err)
		}
		defer f.Close()

		src = f
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	logger := log.Default()
	logger.DebugContext(ctx, "repl", slog.String("schema", name))

	return repl.Run(ctx, name, src, variable(ctx, CacheIdentifier, pkg.CacheDir()), logger)
}
