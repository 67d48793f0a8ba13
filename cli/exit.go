package cli

import (
	"errors"

	"github.com/ardnew/cmf/cli/cmd"
	"github.com/ardnew/cmf/document"
	"github.com/ardnew/cmf/lang"
	"github.com/ardnew/cmf/schema"
)

// Process exit codes.
const (
	ExitOK = iota
	ExitUsage
	ExitOpenFile
	ExitCompile
	ExitMissingHeader
)

// ExitCode maps an error returned by [Run] to the process exit code.
// Errors without a dedicated code exit with [ExitUsage].
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK

	case errors.Is(err, cmd.ErrOpenFile):
		return ExitOpenFile

	case errors.Is(err, lang.ErrLex),
		errors.Is(err, lang.ErrParse),
		errors.Is(err, lang.ErrSemantic),
		errors.Is(err, schema.ErrFormat):
		return ExitCompile

	case errors.Is(err, document.ErrMissingHeader):
		return ExitMissingHeader
	}

	return ExitUsage
}
