package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestLogger_Make_DefaultConfiguration(t *testing.T) {
	logger := Make(&bytes.Buffer{})

	if logger.Level() != LevelInfo {
		t.Errorf("expected default level info, got %v", logger.Level())
	}

	if logger.Format() != FormatJSON {
		t.Errorf("expected default format json, got %v", logger.Format())
	}

	if logger.caller {
		t.Error("expected caller disabled by default")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(Logger, string, ...slog.Attr)
		min     Level
		logged  bool
	}{
		{"trace at trace", (Logger).Trace, LevelTrace, true},
		{"trace at debug", (Logger).Trace, LevelDebug, false},
		{"debug at info", (Logger).Debug, LevelInfo, false},
		{"info at info", (Logger).Info, LevelInfo, true},
		{"warn at error", (Logger).Warn, LevelError, false},
		{"error at debug", (Logger).Error, LevelDebug, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			tt.logFunc(Make(&buf, WithLevel(tt.min), WithPretty(false)), "message")

			if got := buf.Len() > 0; got != tt.logged {
				t.Errorf("expected logged=%v, got output %q", tt.logged, buf.String())
			}
		})
	}
}

func TestLogger_Format(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatJSON), WithPretty(false)).
			Info("hello", slog.String("key", "value"))

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("invalid JSON %q: %v", buf.String(), err)
		}

		if rec["msg"] != "hello" || rec["key"] != "value" {
			t.Errorf("unexpected record: %v", rec)
		}

		if rec["level"] != "INFO" {
			t.Errorf("expected level INFO, got %v", rec["level"])
		}
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithFormat(FormatText), WithPretty(false)).
			Info("hello", slog.String("key", "value"))

		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected key=value in %q", buf.String())
		}
	})

	t.Run("trace level name", func(t *testing.T) {
		var buf bytes.Buffer

		Make(&buf, WithLevel(LevelTrace), WithFormat(FormatText), WithPretty(false)).
			Trace("deep")

		if !strings.Contains(buf.String(), "level=TRACE") {
			t.Errorf("expected level=TRACE in %q", buf.String())
		}
	})
}

func TestLogger_Pretty(t *testing.T) {
	for _, format := range []Format{FormatText, FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer

			Make(&buf, WithFormat(format), WithPretty(true)).
				With(slog.String("run", "abc")).
				Warn("missing field", slog.String("field", "Lat"), slog.Int("row", 3))

			out := buf.String()
			for _, want := range []string{"missing field", "run", "abc", "field", "Lat", "row"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithPretty(false)).Info("where")

	if !strings.Contains(buf.String(), "log_test.go") {
		t.Errorf("expected caller file in %q", buf.String())
	}
}

func TestLogger_With_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithPretty(false)).With(slog.String("doc", "jhu")).Info("loaded")

	if !strings.Contains(buf.String(), `"doc":"jhu"`) {
		t.Errorf("expected doc attribute in %q", buf.String())
	}
}

func TestLogger_Wrap_KeepsOutput(t *testing.T) {
	var buf bytes.Buffer

	base := Make(&buf, WithPretty(false), WithLevel(LevelError))
	base.Wrap(WithLevel(LevelDebug)).Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected wrapped logger to share output, got %q", buf.String())
	}

	if base.Level() != LevelError {
		t.Errorf("wrap modified the original logger level: %v", base.Level())
	}
}

func TestLogger_ZeroValue_Safety(t *testing.T) {
	var logger Logger

	logger.Info("discarded")
	logger.ErrorContext(context.Background(), "discarded")
	logger.With(slog.Int("n", 1)).Warn("discarded")

	if logger.Level() != DefaultLevel {
		t.Errorf("expected default level from zero logger, got %v", logger.Level())
	}
}

func TestLogger_ConcurrentCalls(t *testing.T) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
		wg  sync.WaitGroup
	)

	logger := Make(&lockedWriter{w: &buf, mu: &mu}, WithPretty(false))

	for i := range 100 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("concurrent", slog.Int("id", i))
		}()
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "\n"); n != 100 {
		t.Errorf("expected 100 lines, got %d", n)
	}
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}

func TestPackage_Config(t *testing.T) {
	var buf bytes.Buffer

	prev := Default()
	t.Cleanup(func() {
		defaultMu.Lock()
		defaultLog = prev
		defaultMu.Unlock()
	})

	Config(WithOutput(&buf), WithPretty(false), WithLevel(LevelDebug))
	DebugContext(context.Background(), "package debug")
	With(slog.String("k", "v")).Info("package with")

	out := buf.String()
	if !strings.Contains(out, "package debug") || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("unexpected package logger output %q", out)
	}
}
