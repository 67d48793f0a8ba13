package repl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/log"
	"github.com/ardnew/cmf/schema"
)

// session evaluates statements incrementally against one context.
type session struct {
	name    string
	source  string
	builder *schema.Builder
	logger  log.Logger
}

func newSession(ctx context.Context, name, source string, logger log.Logger) (*session, error) {
	s := &session{name: name, source: source, logger: logger}

	if err := s.reset(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// reset discards every statement entered since the session began.
func (s *session) reset(ctx context.Context) error {
	return s.load(ctx, s.source)
}

// load replaces the session state with the evaluation of src.
func (s *session) load(ctx context.Context, src string) error {
	b := schema.NewBuilder(schema.WithName(s.name), schema.WithLogger(s.logger))

	if strings.TrimSpace(src) != "" {
		prog, err := lang.Parse(ctx, src, lang.WithLogger(s.logger))
		if err != nil {
			return err
		}

		if err := b.Apply(ctx, prog); err != nil {
			return err
		}
	}

	s.builder = b

	return nil
}

// eval applies the statements of input and returns them rendered back in
// canonical form. A bare variable name prints that variable instead.
func (s *session) eval(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if !strings.HasSuffix(input, ";") {
		input += ";"
	}

	prog, err := lang.Parse(ctx, input, lang.WithLogger(s.logger))
	if err != nil {
		return "", err
	}

	if len(prog.Statements) == 1 {
		if ref, ok := prog.Statements[0].(*lang.VariableRef); ok {
			return s.show(ref.Name)
		}
	}

	if err := s.builder.Apply(ctx, prog); err != nil {
		return "", err
	}

	s.logger.TraceContext(ctx, "repl applied",
		slog.Int("statements", len(prog.Statements)),
	)

	return strings.TrimSuffix(prog.String(), "\n"), nil
}

func (s *session) context() (*schema.Context, error) { return s.builder.Context() }

// program returns the statements applied so far.
func (s *session) program() string {
	c, err := s.context()
	if err != nil || c.Program() == nil {
		return ""
	}

	return c.Program().String()
}

// names returns the declared variable names.
func (s *session) names() []string {
	c, err := s.context()
	if err != nil {
		return nil
	}

	d := c.Describe()
	names := make([]string, len(d.Variables))

	for i, v := range d.Variables {
		names[i] = v.Name
	}

	return names
}

func (s *session) show(name string) (string, error) {
	c, err := s.context()
	if err != nil {
		return "", err
	}

	for _, v := range c.Describe().Variables {
		if v.Name == name {
			return line(v), nil
		}
	}

	return "", lang.ErrUndefinedVariable.With(slog.String("name", name))
}

// vars lists every variable with its binding and role markers.
func (s *session) vars() (string, error) {
	c, err := s.context()
	if err != nil {
		return "", err
	}

	d := c.Describe()
	if len(d.Variables) == 0 {
		return "  (no variables)", nil
	}

	var b strings.Builder

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, v := range d.Variables {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", v.Name, v.Definition(), strings.Join(v.Flags(), " "))
	}

	if len(d.Keys) > 0 {
		fmt.Fprintf(tw, "  keys:\t%s\n", strings.Join(d.Keys, ", "))
	}

	_ = tw.Flush()

	return strings.TrimSuffix(b.String(), "\n"), nil
}

// links lists header labels and the variables they bind.
func (s *session) links() (string, error) {
	c, err := s.context()
	if err != nil {
		return "", err
	}

	links := c.Links()
	if len(links) == 0 {
		return "  (no links)", nil
	}

	out := make([]string, len(links))
	for i, l := range links {
		out[i] = fmt.Sprintf("  %q => %s", l.Header, l.Name)
	}

	return strings.Join(out, "\n"), nil
}

func line(v schema.VariableDoc) string {
	parts := []string{v.Name}

	if d := v.Definition(); d != "" {
		parts = append(parts, "=", d)
	}

	return strings.Join(append(parts, v.Flags()...), " ")
}
