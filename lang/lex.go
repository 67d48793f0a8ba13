package lang

import (
	"strconv"
	"unicode/utf8"
)

// Lex splits schema text into tokens. Whitespace and comments (from '#' to
// the end of the line) are discarded. Digits directly following a symbol
// continue that symbol, so identifiers may contain digits.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}

	for {
		l.skipWhitespaceAndComments()

		if l.eof() {
			return l.toks, nil
		}

		if err := l.next(); err != nil {
			return nil, err
		}
	}
}

type lexer struct {
	src  string
	toks []Token
	pos  int
	line int
	col  int
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos]
}

func (l *lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// advance consumes one rune and tracks line and column.
func (l *lexer) advance() {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()

		case '#':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}

		default:
			return
		}
	}
}

var punct = map[byte]Kind{
	'=': KindSet,
	'(': KindLParen,
	')': KindRParen,
	',': KindComma,
	';': KindSemicolon,
	'{': KindLCurly,
	'}': KindRCurly,
	'*': KindMul,
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (l *lexer) emit(kind Kind, text string, pos Position) {
	l.toks = append(l.toks, Token{Kind: kind, Text: text, Pos: pos})
}

func (l *lexer) next() error {
	start := l.position()
	c := l.peek()

	switch {
	case isLetter(c):
		for !l.eof() && (isLetter(l.peek()) || isDigit(l.peek())) {
			l.advance()
		}

		l.emit(KindSymbol, l.src[start.Offset:l.pos], start)

	case isDigit(c):
		for !l.eof() && isDigit(l.peek()) {
			l.advance()
		}

		l.emit(KindNumber, l.src[start.Offset:l.pos], start)

	case c == '"':
		l.advance()

		for !l.eof() && l.peek() != '"' {
			l.advance()
		}

		if l.eof() {
			return ErrUnterminatedString.At(start, l.src, "missing closing quote")
		}

		l.emit(KindString, l.src[start.Offset+1:l.pos], start)
		l.advance()

	default:
		kind, ok := punct[c]
		if !ok {
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])

			return ErrUnexpectedChar.At(start, l.src, strconv.QuoteRune(r))
		}

		l.advance()
		l.emit(kind, l.src[start.Offset:l.pos], start)
	}

	return nil
}
