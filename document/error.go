package document

import "github.com/ardnew/cmf/lang"

var (
	ErrMissingHeader = lang.NewError("missing header row")

	ErrMerge            = lang.NewError("merge error")
	ErrUnknownMode      = ErrMerge.Derive("unknown merge mode")
	ErrSourceCount      = ErrMerge.Derive("wrong number of sources")
	ErrMergeParam       = ErrMerge.Derive("missing or invalid merge parameter")
	ErrIncompatibleKeys = ErrMerge.Derive("sources do not share the destination key")

	ErrFilter = lang.NewError("invalid filter expression")
)
