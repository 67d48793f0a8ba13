package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestOnce_Warn(t *testing.T) {
	var (
		buf  bytes.Buffer
		once Once
	)

	logger := Make(&buf, WithPretty(false), WithFormat(FormatText))
	ctx := context.Background()

	for range 3 {
		once.Warn(ctx, logger, "field:Lat", "missing field", slog.String("field", "Lat"))
	}

	once.Warn(ctx, logger, "field:Long", "missing field", slog.String("field", "Long"))

	if n := strings.Count(buf.String(), "missing field"); n != 2 {
		t.Errorf("expected 2 warnings, got %d in %q", n, buf.String())
	}

	if once.Keys() != 2 {
		t.Errorf("expected 2 keys, got %d", once.Keys())
	}

	if once.Count("field:Lat") != 3 {
		t.Errorf("expected 3 occurrences of field:Lat, got %d", once.Count("field:Lat"))
	}
}

func TestOnce_First(t *testing.T) {
	var once Once

	if !once.First("a") {
		t.Error("expected first occurrence")
	}

	if once.First("a") {
		t.Error("expected repeat to be suppressed")
	}
}
