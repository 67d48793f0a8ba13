package repl

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/log"
)

const baseSource = `country = "Country";`

func testSession(t *testing.T) *session {
	t.Helper()

	s, err := newSession(context.Background(), "test", baseSource, log.Make(io.Discard))
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}

	return s
}

func TestSession_Eval(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"statement", `region = key "Province"`, `region = key "Province";`, nil},
		{"terminated", `n = 100;`, `n = 100;`, nil},
		{"show", `country`, `country = "Country"`, nil},
		{"undefined", `nope`, "", lang.ErrUndefinedVariable},
		{"syntax", `= =`, "", lang.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSession(t)

			got, err := s.eval(context.Background(), tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("eval() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("eval() error = %v", err)
			}

			if got != tt.want {
				t.Errorf("eval() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSession_Reset(t *testing.T) {
	ctx := context.Background()
	s := testSession(t)

	if _, err := s.eval(ctx, `cases = sum("Cases")`); err != nil {
		t.Fatalf("eval() error = %v", err)
	}

	if got := s.names(); !slices.Equal(got, []string{"country", "cases"}) {
		t.Fatalf("names() = %v", got)
	}

	if err := s.reset(ctx); err != nil {
		t.Fatalf("reset() error = %v", err)
	}

	if got := s.names(); !slices.Equal(got, []string{"country"}) {
		t.Errorf("names() after reset = %v", got)
	}

	if got, want := s.program(), "country = \"Country\";\n"; got != want {
		t.Errorf("program() = %q, want %q", got, want)
	}
}

func TestSession_Load(t *testing.T) {
	ctx := context.Background()
	s := testSession(t)

	if err := s.load(ctx, `a = b;`); !errors.Is(err, lang.ErrUndefinedVariable) {
		t.Fatalf("load() error = %v, want %v", err, lang.ErrUndefinedVariable)
	}

	if got := s.names(); !slices.Equal(got, []string{"country"}) {
		t.Errorf("failed load replaced state: names() = %v", got)
	}

	if err := s.load(ctx, `x = "X"; y = "Y";`); err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if got := s.names(); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("names() = %v", got)
	}
}

func TestSession_Listings(t *testing.T) {
	s := testSession(t)

	links, err := s.links()
	if err != nil {
		t.Fatalf("links() error = %v", err)
	}

	if want := `  "Country" => country`; links != want {
		t.Errorf("links() = %q, want %q", links, want)
	}

	if err := s.load(context.Background(), ""); err != nil {
		t.Fatalf("load() error = %v", err)
	}

	for name, tt := range map[string]struct {
		fn   func() (string, error)
		want string
	}{
		"links": {s.links, "  (no links)"},
		"vars":  {s.vars, "  (no variables)"},
	} {
		got, err := tt.fn()
		if err != nil {
			t.Fatalf("%s() error = %v", name, err)
		}

		if got != tt.want {
			t.Errorf("%s() on empty session = %q, want %q", name, got, tt.want)
		}
	}
}
