package lang

import "strconv"

// Kind identifies the lexical class of a [Token].
type Kind int

const (
	KindInvalid   Kind = iota
	KindSymbol         // letters, digits, underscore; starts with a letter or underscore
	KindNumber         // decimal digits
	KindString         // double-quoted text, quotes removed
	KindSet            // =
	KindLParen         // (
	KindRParen         // )
	KindComma          // ,
	KindSemicolon      // ;
	KindLCurly         // {
	KindRCurly         // }
	KindMul            // *
)

var kindName = [...]string{
	KindInvalid:   "invalid",
	KindSymbol:    "symbol",
	KindNumber:    "number",
	KindString:    "string",
	KindSet:       "=",
	KindLParen:    "(",
	KindRParen:    ")",
	KindComma:     ",",
	KindSemicolon: ";",
	KindLCurly:    "{",
	KindRCurly:    "}",
	KindMul:       "*",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindName) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}

	return kindName[k]
}

// Position is a location in schema text. Line and Column are 1-based;
// Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Token is a lexeme of schema text.
type Token struct {
	Kind Kind
	Text string
	Pos  Position
}

func (t Token) String() string {
	switch t.Kind {
	case KindString:
		return `"` + t.Text + `"`
	case KindSymbol, KindNumber:
		return t.Text
	default:
		return t.Kind.String()
	}
}
