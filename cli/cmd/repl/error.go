package repl

import "github.com/ardnew/cmf/lang"

var (
	ErrOutOfBounds  = lang.NewError("index out of range")
	ErrEditDeclined = lang.NewError("decline edit")
)
