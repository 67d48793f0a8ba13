package cmd

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/ardnew/cmf/lang"
)

var (
	ErrUsage       = lang.NewError("invalid usage")
	ErrOpenFile    = lang.NewError("failed to open file")
	ErrMarshal     = lang.NewError("failed to encode output")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
	ErrExport      = lang.NewError("failed to export")
)

// opened wraps err in [ErrOpenFile] when it reports a file system path.
func opened(err error) error {
	var pe *fs.PathError
	if err == nil || !errors.As(err, &pe) {
		return err
	}

	return ErrOpenFile.Wrap(err).With(
		slog.String("path", pe.Path),
		slog.String("op", pe.Op),
	)
}
