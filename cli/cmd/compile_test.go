package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/cmf/schema"
)

const seriesSchema = `c = key "Country"; d = * as "%u-%u-%u";`

func describe(t *testing.T) schema.Description {
	t.Helper()

	sc, err := schema.Compile(context.Background(), seriesSchema, schema.WithName("series"))
	if err != nil {
		t.Fatal(err)
	}

	return sc.Describe()
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer

	if err := Render(&buf, describe(t), "text"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		"Schema: series\n",
		"Statements:\n",
		`c = key "Country";`,
		"Vars:\n",
		"[key]",
		"[trailing]",
		"Links:\n",
		`- "Country"  => c`,
		"Aspects:\n",
		"- value",
		"Trailing: d\n",
		"Keys: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() output missing %q:\n%s", want, out)
		}
	}
}

func TestRender_Structured(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer

			if err := Render(&buf, describe(t), tt.format); err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			var got schema.Description
			if err := tt.unmarshal(buf.Bytes(), &got); err != nil {
				t.Fatalf("unmarshal: %v\n%s", err, buf.String())
			}

			if got.Name != "series" || got.Trailing != "d" || len(got.Variables) != 2 {
				t.Errorf("decoded %+v", got)
			}
		})
	}
}

func TestRender_Dump(t *testing.T) {
	var buf bytes.Buffer

	if err := Render(&buf, describe(t), "dump"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if want := `Name: (string) (len=6) "series"`; !strings.Contains(buf.String(), want) {
		t.Errorf("dump missing %q:\n%s", want, buf.String())
	}
}

func TestCompile_Run(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "series.cmf", seriesSchema)

	var out bytes.Buffer

	var cli struct {
		Compile Compile `cmd:""`
	}

	ctx := kongContext(t, &cli, &out, nil, "compile", "--format=json", path)

	if err := cli.Compile.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !strings.Contains(out.String(), `"name": "series"`) {
		t.Errorf("Run() output = %s", out.String())
	}

	missing := &Compile{Format: "text", Schema: filepath.Join(dir, "none.cmf")}
	if err := missing.Run(ctx); !errors.Is(err, ErrOpenFile) {
		t.Errorf("Run() error = %v, want %v", err, ErrOpenFile)
	}
}
