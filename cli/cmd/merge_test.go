package cmd

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/cmf/document"
)

const groupSchema = `g = key "G"; value = "Value";`

type mergeFiles struct {
	dir, schema, dest, source string
}

func mergeSetup(t *testing.T) mergeFiles {
	t.Helper()

	dir := t.TempDir()

	return mergeFiles{
		dir:    dir,
		schema: writeFile(t, dir, "groups.cmf", groupSchema),
		dest:   writeFile(t, dir, "dest.csv", "G,Value\nG1,5\n"),
		source: writeFile(t, dir, "source.csv", "G,Value\nG1,9\nG2,1\n"),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return string(data)
}

func TestMerge_Run(t *testing.T) {
	tests := []struct {
		mode  string
		where string
		want  string
	}{
		{"merge_dest", "", "G,Value\nG1,5\nG2,1\n"},
		{"merge_source", "", "G,Value\nG1,9\nG2,1\n"},
		{"merge_dest", `g == "G2"`, "G,Value\nG2,1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.mode+tt.where, func(t *testing.T) {
			f := mergeSetup(t)
			out := filepath.Join(f.dir, "out.csv")

			m := &Merge{
				Mode:     tt.mode,
				Dest:     f.schema,
				DestData: f.dest,
				Output:   out,
				Where:    tt.where,
				Pairs:    []string{f.schema, f.source},
			}

			if err := m.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if got := readFile(t, out); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge_Export(t *testing.T) {
	f := mergeSetup(t)
	db := filepath.Join(f.dir, "runs.db")
	prom := filepath.Join(f.dir, "cmf.prom")

	m := &Merge{
		Mode:        "merge_dest",
		Dest:        f.schema,
		DestData:    f.dest,
		Output:      filepath.Join(f.dir, "out.csv"),
		SQLite:      db,
		MetricsFile: prom,
		Pairs:       []string{f.schema, f.source},
	}

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	conn, err := sql.Open("sqlite", db)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM "groups"`).Scan(&n); err != nil {
		t.Fatalf("query table: %v", err)
	}

	if n != 2 {
		t.Errorf("exported %d rows, want 2", n)
	}

	var mode, tables string
	if err := conn.QueryRow(`SELECT mode, tables FROM runs`).Scan(&mode, &tables); err != nil {
		t.Fatalf("query runs: %v", err)
	}

	if mode != "merge_dest" || tables != "groups" {
		t.Errorf("run = (%q, %q), want (merge_dest, groups)", mode, tables)
	}

	text := readFile(t, prom)
	for _, want := range []string{
		`cmf_operations_total{op="merge",result="success",schema="groups"} 1`,
		"cmf_operation_duration_seconds",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics missing %q:\n%s", want, text)
		}
	}
}

func TestMerge_Errors(t *testing.T) {
	f := mergeSetup(t)
	out := filepath.Join(f.dir, "out.csv")
	noHeader := writeFile(t, f.dir, "empty.csv", "")

	tests := []struct {
		name    string
		merge   Merge
		wantErr error
	}{
		{
			"odd pairs",
			Merge{Mode: "merge_dest", Dest: f.schema, Output: out, Pairs: []string{f.schema}},
			ErrUsage,
		},
		{
			"unknown mode",
			Merge{Mode: "merge_sideways", Dest: f.schema, Output: out, Pairs: []string{f.schema, f.source}},
			document.ErrUnknownMode,
		},
		{
			"missing data",
			Merge{Mode: "merge_dest", Dest: f.schema, Output: out, Pairs: []string{f.schema, filepath.Join(f.dir, "nope.csv")}},
			ErrOpenFile,
		},
		{
			"missing header",
			Merge{Mode: "merge_dest", Dest: f.schema, Output: out, Pairs: []string{f.schema, noHeader}},
			document.ErrMissingHeader,
		},
		{
			"bad filter",
			Merge{Mode: "merge_dest", Dest: f.schema, Output: out, Where: "g ==", Pairs: []string{f.schema, f.source}},
			document.ErrFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.merge.Run(context.Background()); !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
