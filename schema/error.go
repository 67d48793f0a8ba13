package schema

import "github.com/ardnew/cmf/lang"

// Format errors occur while scanning input against a variable's format.
var (
	ErrFormat         = lang.NewError("format error")
	ErrFormatMismatch = ErrFormat.Derive("input does not match format")
	ErrTruncatedInput = ErrFormat.Derive("input truncated before format completed")
)
