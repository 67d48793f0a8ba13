package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/cmf/log"
)

// Program is a parsed schema: one statement per ';'-terminated segment.
type Program struct {
	Statements []Statement
	Source     string

	logger log.Logger
}

// Option configures a [Program].
type Option func(*Program)

// WithLogger sets the logger used while parsing and evaluating.
func WithLogger(logger log.Logger) Option {
	return func(p *Program) { p.logger = logger }
}

// Clone returns a deep copy of p.
func (p *Program) Clone() *Program {
	c := &Program{
		Statements: make([]Statement, len(p.Statements)),
		Source:     p.Source,
		logger:     p.logger,
	}

	for i, s := range p.Statements {
		c.Statements[i] = s.Clone()
	}

	return c
}

// Eval evaluates each statement against cb in order, stopping at the first
// error.
func (p *Program) Eval(ctx context.Context, cb Callbacks) error {
	for i, s := range p.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := s.Eval(cb); err != nil {
			return WrapError(err).With(
				slog.Int("statement", i+1),
				slog.String("text", s.String()),
			)
		}

		p.logger.TraceContext(ctx, "evaluated statement",
			slog.Int("statement", i+1),
			slog.String("text", s.String()),
		)
	}

	return nil
}

// String renders the program as schema text, one statement per line.
func (p *Program) String() string {
	var b strings.Builder

	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteString(";\n")
	}

	return b.String()
}

// ParseString lexes and parses schema text without consulting the cache.
func ParseString(ctx context.Context, src string, opts ...Option) (*Program, error) {
	prog := &Program{Source: src}

	for _, opt := range opts {
		opt(prog)
	}

	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{src: src, toks: toks, memo: make(map[int]memo)}

	start := 0

	for i := 0; i <= len(toks); i++ {
		if i < len(toks) && toks[i].Kind != KindSemicolon {
			continue
		}

		if i > start {
			stmt, err := p.statement(start, i)
			if err != nil {
				return nil, err
			}

			prog.Statements = append(prog.Statements, stmt)
		}

		start = i + 1
	}

	prog.logger.TraceContext(ctx, "parse complete",
		slog.Int("tokens", len(toks)),
		slog.Int("statements", len(prog.Statements)),
		slog.Int("memo_entries", len(p.memo)),
	)

	return prog, nil
}

// memo is a successful parse of an expression starting at some position.
type memo struct {
	stmt Statement
	next int
}

type parser struct {
	src  string
	toks []Token
	memo map[int]memo
}

// alternative tries to parse one grammar production at pos, never reading at
// or beyond end. It returns the position after the match.
type alternative func(pos, end int) (Statement, int, bool)

func (p *parser) statement(start, end int) (Statement, error) {
	stmt, next, ok := p.expr(start, end)
	if !ok {
		next = start
	}

	if !ok || next < end {
		tok := p.toks[next]

		return nil, ErrParse.
			With(slog.String("token", tok.String())).
			At(tok.Pos, p.src, "unexpected "+strconv.Quote(tok.String()))
	}

	return stmt, nil
}

// expr tries each production in order and returns the first that matches.
// Matches are cached by start position; the cache and the caller never share
// a tree.
func (p *parser) expr(pos, end int) (Statement, int, bool) {
	if pos >= end {
		return nil, pos, false
	}

	if m, ok := p.memo[pos]; ok && m.next <= end {
		return m.stmt.Clone(), m.next, true
	}

	for _, alt := range []alternative{
		p.sum,
		p.field,
		p.aspects,
		p.fit,
		p.key,
		p.helper,
		p.assign,
		p.literal,
		p.variable,
	} {
		if stmt, next, ok := alt(pos, end); ok {
			p.memo[pos] = memo{stmt: stmt.Clone(), next: next}

			return stmt, next, true
		}
	}

	return nil, pos, false
}

func (p *parser) is(pos, end int, kind Kind) bool {
	return pos < end && p.toks[pos].Kind == kind
}

func (p *parser) isWord(pos, end int, word string) bool {
	return p.is(pos, end, KindSymbol) && p.toks[pos].Text == word
}

// sum := "sum" "(" value ")"
func (p *parser) sum(pos, end int) (Statement, int, bool) {
	if !p.isWord(pos, end, "sum") || !p.is(pos+1, end, KindLParen) {
		return nil, pos, false
	}

	inner, next, ok := p.value(pos+2, end)
	if !ok || !p.is(next, end, KindRParen) {
		return nil, pos, false
	}

	return &SumAggregate{Inner: inner}, next + 1, true
}

// field := value "as" "{" string "," symbols "}" | value "as" string
func (p *parser) field(pos, end int) (Statement, int, bool) {
	src, next, ok := p.value(pos, end)
	if !ok || !p.isWord(next, end, "as") {
		return nil, pos, false
	}

	next++

	if p.is(next, end, KindString) {
		format := p.toks[next].Text

		return &FormatField{
			Source: src,
			Format: format,
			Fields: positional(format),
		}, next + 1, true
	}

	if !p.is(next, end, KindLCurly) ||
		!p.is(next+1, end, KindString) ||
		!p.is(next+2, end, KindComma) {
		return nil, pos, false
	}

	format := p.toks[next+1].Text

	fields, after, ok := p.symbols(next+3, end, true)
	if !ok || !p.is(after, end, KindRCurly) {
		return nil, pos, false
	}

	return &FormatField{Source: src, Format: format, Fields: fields}, after + 1, true
}

// aspects := "aspects" symbols [ "=" symbol ]
func (p *parser) aspects(pos, end int) (Statement, int, bool) {
	if !p.isWord(pos, end, "aspects") {
		return nil, pos, false
	}

	labels, next, ok := p.symbols(pos+1, end, true)
	if !ok || len(labels) < 2 {
		return nil, pos, false
	}

	decl := &AspectsDecl{Labels: labels}

	if p.is(next, end, KindSet) {
		if !p.is(next+1, end, KindSymbol) {
			return nil, pos, false
		}

		decl.Source = p.toks[next+1].Text
		next += 2
	}

	return decl, next, true
}

// fit := "fit" symbol "," symbol { "," symbol }
func (p *parser) fit(pos, end int) (Statement, int, bool) {
	if !p.isWord(pos, end, "fit") {
		return nil, pos, false
	}

	names, next, ok := p.symbols(pos+1, end, false)
	if !ok || len(names) < 2 {
		return nil, pos, false
	}

	fit := &Fit{Names: make([]string, len(names))}
	for i, n := range names {
		fit.Names[i] = n.Name
	}

	return fit, next, true
}

// key := "key" expr
func (p *parser) key(pos, end int) (Statement, int, bool) {
	if !p.isWord(pos, end, "key") {
		return nil, pos, false
	}

	inner, next, ok := p.expr(pos+1, end)
	if !ok {
		return nil, pos, false
	}

	return &Key{Inner: inner}, next, true
}

// helper := "helper" expr
func (p *parser) helper(pos, end int) (Statement, int, bool) {
	if !p.isWord(pos, end, "helper") {
		return nil, pos, false
	}

	inner, next, ok := p.expr(pos+1, end)
	if !ok {
		return nil, pos, false
	}

	return &Helper{Inner: inner}, next, true
}

// assign := symbol "=" expr
func (p *parser) assign(pos, end int) (Statement, int, bool) {
	if !p.is(pos, end, KindSymbol) || !p.is(pos+1, end, KindSet) {
		return nil, pos, false
	}

	value, next, ok := p.expr(pos+2, end)
	if !ok {
		return nil, pos, false
	}

	return &Assign{Name: p.toks[pos].Text, Value: value}, next, true
}

// literal := (number | string | "*") [ except ] | symbol except
func (p *parser) literal(pos, end int) (Statement, int, bool) {
	if pos >= end {
		return nil, pos, false
	}

	tok := p.toks[pos]

	switch tok.Kind {
	case KindNumber, KindString, KindMul, KindSymbol:
	default:
		return nil, pos, false
	}

	lit := &Literal{Kind: tok.Kind, Text: tok.Text, Pos: tok.Pos}

	exc, next, ok := p.exceptions(pos+1, end)
	if ok {
		lit.Exceptions = exc
	} else if tok.Kind == KindSymbol {
		return nil, pos, false
	}

	return lit, next, true
}

// except := "except" "{" string "=" string { "," string "=" string } "}"
func (p *parser) exceptions(pos, end int) ([]Exception, int, bool) {
	if !p.isWord(pos, end, "except") || !p.is(pos+1, end, KindLCurly) {
		return nil, pos, false
	}

	var exc []Exception

	next := pos + 2

	for {
		if !p.is(next, end, KindString) ||
			!p.is(next+1, end, KindSet) ||
			!p.is(next+2, end, KindString) {
			return nil, pos, false
		}

		exc = append(exc, Exception{
			Raw:       p.toks[next].Text,
			Canonical: p.toks[next+2].Text,
		})
		next += 3

		if p.is(next, end, KindRCurly) {
			return exc, next + 1, true
		}

		if !p.is(next, end, KindComma) {
			return nil, pos, false
		}

		next++
	}
}

// variable := symbol
func (p *parser) variable(pos, end int) (Statement, int, bool) {
	if !p.is(pos, end, KindSymbol) {
		return nil, pos, false
	}

	return &VariableRef{Name: p.toks[pos].Text, Pos: p.toks[pos].Pos}, pos + 1, true
}

// value := literal | variable
func (p *parser) value(pos, end int) (Statement, int, bool) {
	if stmt, next, ok := p.literal(pos, end); ok {
		return stmt, next, true
	}

	return p.variable(pos, end)
}

// symbols := symbol [ "(" number ")" ] { "," symbol [ "(" number ")" ] }
//
// A symbol without a priority takes the priority following the previous
// one, starting from 0.
func (p *parser) symbols(pos, end int, priorities bool) ([]Prioritized, int, bool) {
	var (
		list []Prioritized
		prio int
	)

	next := pos

	for {
		if !p.is(next, end, KindSymbol) {
			return nil, pos, false
		}

		item := Prioritized{Name: p.toks[next].Text, Priority: prio}
		next++

		if priorities && p.is(next, end, KindLParen) {
			if !p.is(next+1, end, KindNumber) || !p.is(next+2, end, KindRParen) {
				return nil, pos, false
			}

			n, err := strconv.ParseInt(p.toks[next+1].Text, 10, 32)
			if err != nil {
				return nil, pos, false
			}

			item.Priority = int(n)
			next += 3
		}

		prio = item.Priority + 1
		list = append(list, item)

		if !p.is(next, end, KindComma) {
			return list, next, true
		}

		next++
	}
}

// positional names the placeholders of a short-form format "0", "1", ...
func positional(format string) []Prioritized {
	var fields []Prioritized

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			continue
		}

		i++

		if format[i] == '%' {
			continue
		}

		n := len(fields)
		fields = append(fields, Prioritized{Name: strconv.Itoa(n), Priority: n})
	}

	return fields
}
