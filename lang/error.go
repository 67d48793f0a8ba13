package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Sentinel errors. Specific errors derive from a broader category, so
// errors.Is(ErrUndefinedVariable.With(...), ErrSemantic) holds.
var (
	ErrReadInput = NewError("failed to read input")

	ErrLex                = NewError("lex error")
	ErrUnexpectedChar     = ErrLex.Derive("unexpected character")
	ErrUnterminatedString = ErrLex.Derive("unterminated string")

	ErrParse = NewError("failed to treeify")

	ErrSemantic           = NewError("semantic error")
	ErrUndefinedVariable  = ErrSemantic.Derive("undefined variable")
	ErrRedeclared         = ErrSemantic.Derive("variable already declared")
	ErrDuplicateKey       = ErrSemantic.Derive("duplicate key declaration")
	ErrDuplicateHelper    = ErrSemantic.Derive("duplicate helper declaration")
	ErrDuplicateAggregate = ErrSemantic.Derive("duplicate aggregate declaration")
	ErrDuplicateTrailing  = ErrSemantic.Derive("duplicate trailing variable")
	ErrDuplicateAspects   = ErrSemantic.Derive("duplicate aspects declaration")
	ErrDuplicateFormat    = ErrSemantic.Derive("duplicate format binding")
	ErrConflictingFlags   = ErrSemantic.Derive("conflicting variable flags")
	ErrUnknownFitMember   = ErrSemantic.Derive("unknown fit member")
	ErrUnknownFormatType  = ErrSemantic.Derive("unknown format-type")
	ErrMissingArgument    = ErrSemantic.Derive("missing priority or argument")
	ErrSymbolExceptions   = ErrSemantic.Derive("non-constant value exceptions not supported")
)

// Error is an error with structured logging attributes. Values derived from a
// sentinel with [Error.With] or [Error.Wrap] still match that sentinel (and
// its category) with errors.Is.
type Error struct {
	msg    string
	err    error
	attrs  []slog.Attr
	kind   *Error
	parent *Error
}

// NewError creates a new sentinel error.
func NewError(msg string) *Error {
	e := &Error{msg: msg}
	e.kind = e

	return e
}

// Derive creates a new sentinel that also matches e with errors.Is.
func (e *Error) Derive(msg string) *Error {
	d := NewError(msg)
	d.parent = e.kind

	return d
}

// WrapError returns err as an [*Error], reusing it if it already is one.
func WrapError(err error) *Error {
	if e := new(Error); errors.As(err, &e) {
		return e
	}

	return &Error{err: err}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from, or one of
// that sentinel's categories.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.kind == nil {
		return false
	}

	for k := e.kind; k != nil; k = k.parent {
		if k == t.kind {
			return true
		}
	}

	return false
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err

	return &c
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	c := *e
	c.attrs = append(append(make([]slog.Attr, 0, len(e.attrs)+len(attrs)), e.attrs...), attrs...)

	return &c
}

// Attr returns the value of the first attribute named key.
func (e *Error) Attr(key string) (slog.Value, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}

	return slog.Value{}, false
}

// At returns a copy of e located at pos in source. The wrapped cause renders
// the offending line with a caret under the column.
func (e *Error) At(pos Position, source, detail string) *Error {
	return e.
		With(slog.Int("line", pos.Line), slog.Int("column", pos.Column)).
		Wrap(&SourceError{Pos: pos, Source: source, Detail: detail})
}

// SourceError describes a problem at a position in schema text.
type SourceError struct {
	Pos    Position
	Source string
	Detail string
}

func (e *SourceError) Error() string {
	var b strings.Builder

	b.WriteString("line ")
	b.WriteString(strconv.Itoa(e.Pos.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if snippet := e.Snippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	}

	return b.String()
}

// Snippet returns the offending source line prefixed with its number and
// followed by a caret marking the column. It is empty when the position lies
// outside the source.
func (e *SourceError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	num := strconv.Itoa(e.Pos.Line)
	pad := strings.Repeat(" ", len(num)+5+max(e.Pos.Column-1, 0))

	return "  " + num + " | " + lines[e.Pos.Line-1] + "\n" + pad + "^"
}
