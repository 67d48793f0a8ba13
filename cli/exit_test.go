package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"

	"github.com/ardnew/cmf/cli/cmd"
	"github.com/ardnew/cmf/document"
	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/schema"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", cmd.ErrUsage.With(slog.Int("args", 3)), ExitUsage},
		{"unknown", errors.New("boom"), ExitUsage},
		{"open", cmd.ErrOpenFile.Wrap(&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}), ExitOpenFile},
		{"lex", lang.ErrUnterminatedString, ExitCompile},
		{"parse", lang.ErrParse.With(slog.String("token", ")")), ExitCompile},
		{"semantic", lang.ErrUndefinedVariable, ExitCompile},
		{"format", schema.ErrFormatMismatch, ExitCompile},
		{"header", fmt.Errorf("load: %w", document.ErrMissingHeader), ExitMissingHeader},
		{"merge", document.ErrUnknownMode, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
