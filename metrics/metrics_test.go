package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	start := time.Now()

	m.Observe(OpLoad, "jhu", start, nil)
	m.Observe(OpLoad, "jhu", start, nil)
	m.Observe(OpLoad, "jhu", start, errors.New("boom"))

	tests := []struct {
		result string
		want   float64
	}{
		{"success", 2},
		{"error", 1},
	}

	for _, tt := range tests {
		got := testutil.ToFloat64(m.operations.WithLabelValues(OpLoad, "jhu", tt.result))
		if got != tt.want {
			t.Errorf("operations{result=%q} = %v, want %v", tt.result, got, tt.want)
		}
	}

	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestGroupsAndRows(t *testing.T) {
	m := New()

	m.Groups("jhu", "dest", 4)
	m.Groups("jhu", "dest", 7)
	m.Rows("jhu", "in", 3)
	m.Rows("jhu", "in", 0)
	m.Rows("jhu", "in", 2)

	if got := testutil.ToFloat64(m.groups.WithLabelValues("jhu", "dest")); got != 7 {
		t.Errorf("groups = %v, want 7", got)
	}

	if got := testutil.ToFloat64(m.rows.WithLabelValues("jhu", "in")); got != 5 {
		t.Errorf("rows = %v, want 5", got)
	}
}

func TestWriteFile(t *testing.T) {
	m := New()
	m.Observe(OpMerge, "jhu", time.Now(), nil)

	path := filepath.Join(t.TempDir(), "cmf.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		`cmf_operations_total{op="merge",result="success",schema="jhu"} 1`,
		"# TYPE cmf_operation_duration_seconds histogram",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("WriteFile() output missing %q:\n%s", want, data)
		}
	}
}

func TestNil(t *testing.T) {
	var m *Metrics

	m.Observe(OpWrite, "x", time.Now(), nil)
	m.Groups("x", "y", 1)
	m.Rows("x", "out", 1)

	if err := m.WriteFile(filepath.Join(t.TempDir(), "never")); err != nil {
		t.Errorf("WriteFile() error = %v", err)
	}

	if m.Registry() != nil {
		t.Error("Registry() != nil")
	}
}
