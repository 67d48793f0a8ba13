package document

import (
	"context"
	"log/slog"

	"github.com/expr-lang/expr"

	"github.com/ardnew/cmf/schema"
)

// Filter removes every group whose record does not satisfy the boolean
// expression. Keys and fields are visible by name; integer values are
// int64, all others strings. It returns the number of groups removed.
func (d *Document) Filter(ctx context.Context, expression string) (int, error) {
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return 0, ErrFilter.Wrap(err).With(slog.String("expression", expression))
	}

	keys := d.KeyNames()

	var drop []schema.Group

	var runErr error

	d.table.Each(func(g schema.Group, rec Record) bool {
		env := make(map[string]any, len(keys)+len(rec))

		for i, k := range keys {
			env[k] = envValue(g[i])
		}

		for f, val := range rec {
			env[f] = envValue(val)
		}

		out, err := expr.Run(program, env)
		if err != nil {
			runErr = ErrFilter.Wrap(err).With(
				slog.String("expression", expression),
				slog.String("group", g.String()),
			)

			return false
		}

		if keep, _ := out.(bool); !keep {
			drop = append(drop, g)
		}

		return true
	})

	if runErr != nil {
		return 0, runErr
	}

	for _, g := range drop {
		d.table.Remove(g)
	}

	d.logger.DebugContext(ctx, "filtered groups",
		slog.String("schema", d.Name()),
		slog.String("expression", expression),
		slog.Int("removed", len(drop)),
		slog.Int("remaining", d.table.Len()),
	)

	return len(drop), nil
}

func envValue(v schema.Value) any {
	if n, ok := v.Number(); ok {
		return n
	}

	return v.Text()
}
