package cmd

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/pkg"
	"github.com/ardnew/cmf/schema"
)

type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer kong was configured with, or [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// variable returns the kong interpolation variable name, or def.
func variable(ctx context.Context, name, def string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[name]; ok {
			return v
		}
	}

	return def
}

// compileSchema resolves name on the schema search path and compiles it.
func compileSchema(ctx context.Context, name string, logger log.Logger) (*schema.Context, error) {
	path, ok := pkg.FindSchema(name)
	if !ok {
		return nil, opened(&fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist})
	}

	sc, err := schema.CompileFile(ctx, path, schema.WithLogger(logger))
	if err != nil {
		return nil, opened(err)
	}

	return sc, nil
}
