package table

import (
	"log/slog"

	"github.com/ardnew/cmf/lang"
)

var (
	ErrRead  = lang.NewError("failed to read row")
	ErrWrite = lang.NewError("failed to write row")
)

func lineAttr(line int) slog.Attr { return slog.Int("line", line) }
