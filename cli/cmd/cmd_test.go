package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/log"
)

// writeFile creates name under dir with the given content and returns its
// path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// kongContext parses args against cli with vars and output captured in out.
func kongContext(t *testing.T, cli any, out *bytes.Buffer, vars kong.Vars, args ...string) context.Context {
	t.Helper()

	parser, err := kong.New(cli, vars, kong.Writers(out, out))
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

func TestKongContext(t *testing.T) {
	var out bytes.Buffer

	if kongContextFrom(context.Background()) != nil {
		t.Error("kongContextFrom(empty) should return nil")
	}

	if got := variable(context.Background(), "missing", "fallback"); got != "fallback" {
		t.Errorf("variable() = %q, want fallback", got)
	}

	var cli struct{}

	ctx := kongContext(t, &cli, &out, kong.Vars{CacheIdentifier: "/tmp/cache"})

	if got := variable(ctx, CacheIdentifier, "fallback"); got != "/tmp/cache" {
		t.Errorf("variable() = %q, want /tmp/cache", got)
	}

	if stdout(ctx) != &out {
		t.Error("stdout() should return the kong writer")
	}
}

func TestCompileSchema(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.cmf", `g = key "G";`)
	bad := writeFile(t, dir, "bad.cmf", `g = h;`)

	tests := []struct {
		name    string
		schema  string
		want    string
		wantErr error
	}{
		{"compiles", good, "good", nil},
		{"missing", filepath.Join(dir, "missing.cmf"), "", ErrOpenFile},
		{"directory", dir, "", ErrOpenFile},
		{"semantic", bad, "", lang.ErrSemantic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := compileSchema(context.Background(), tt.schema, log.Default())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("compileSchema() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("compileSchema() error = %v", err)
			}

			if sc.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", sc.Name(), tt.want)
			}
		})
	}
}
