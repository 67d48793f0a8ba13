package schema

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/cmf/lang"
)

// Compile parses and evaluates schema text.
func Compile(ctx context.Context, src string, opts ...Option) (*Context, error) {
	b := NewBuilder(opts...)

	prog, err := lang.Parse(ctx, src, lang.WithLogger(b.ctx.logger))
	if err != nil {
		return nil, err
	}

	return b.compile(ctx, prog)
}

// CompileReader compiles schema text read from r.
func CompileReader(ctx context.Context, r io.Reader, opts ...Option) (*Context, error) {
	b := NewBuilder(opts...)

	prog, err := lang.ParseReader(ctx, r, lang.WithLogger(b.ctx.logger))
	if err != nil {
		return nil, err
	}

	return b.compile(ctx, prog)
}

// CompileFile compiles the schema at path. The context is named after the
// file unless an option names it.
func CompileFile(ctx context.Context, path string, opts ...Option) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return CompileReader(ctx, f, append([]Option{WithName(name)}, opts...)...)
}

func (b *Builder) compile(ctx context.Context, prog *lang.Program) (*Context, error) {
	if err := b.Apply(ctx, prog); err != nil {
		return nil, err
	}

	c, err := b.Context()
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "compiled schema",
		slog.String("name", c.name),
		slog.Int("statements", len(prog.Statements)),
		slog.Int("variables", len(c.vars)),
		slog.Int("links", len(c.linkOrder)),
		slog.Int("aspects", len(c.aspects)),
	)

	return c, nil
}
