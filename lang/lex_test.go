package lang

import (
	"errors"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
		texts []string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:  "assign string",
			input: `country = "Country/Region";`,
			kinds: []Kind{KindSymbol, KindSet, KindString, KindSemicolon},
			texts: []string{"country", "=", "Country/Region", ";"},
		},
		{
			name:  "symbol with digits",
			input: "x1y22 = 7",
			kinds: []Kind{KindSymbol, KindSet, KindNumber},
			texts: []string{"x1y22", "=", "7"},
		},
		{
			name:  "comment discarded",
			input: "# header\nkey a # trailing\n",
			kinds: []Kind{KindSymbol, KindSymbol},
			texts: []string{"key", "a"},
		},
		{
			name:  "punctuation",
			input: "(){},;*=",
			kinds: []Kind{
				KindLParen, KindRParen, KindLCurly, KindRCurly,
				KindComma, KindSemicolon, KindMul, KindSet,
			},
		},
		{
			name:  "format field",
			input: `d = * as { "%u-%u", a(0), b }`,
			kinds: []Kind{
				KindSymbol, KindSet, KindMul, KindSymbol, KindLCurly,
				KindString, KindComma, KindSymbol, KindLParen, KindNumber,
				KindRParen, KindComma, KindSymbol, KindRCurly,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex(%q) error: %v", tt.input, err)
			}

			if len(toks) != len(tt.kinds) {
				t.Fatalf("Lex(%q) = %d tokens, want %d", tt.input, len(toks), len(tt.kinds))
			}

			for i, tok := range toks {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d kind = %v, want %v", i, tok.Kind, tt.kinds[i])
				}

				if tt.texts != nil && tok.Text != tt.texts[i] {
					t.Errorf("token %d text = %q, want %q", i, tok.Text, tt.texts[i])
				}
			}
		})
	}
}

func TestLex_Positions(t *testing.T) {
	toks, err := Lex("a = 1;\n  bb = \"x\";")
	if err != nil {
		t.Fatalf("Lex error: %v", err)
	}

	want := []Position{
		{Offset: 0, Line: 1, Column: 1},
		{Offset: 2, Line: 1, Column: 3},
		{Offset: 4, Line: 1, Column: 5},
		{Offset: 5, Line: 1, Column: 6},
		{Offset: 9, Line: 2, Column: 3},
		{Offset: 12, Line: 2, Column: 6},
		{Offset: 14, Line: 2, Column: 8},
		{Offset: 17, Line: 2, Column: 11},
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}

	for i, tok := range toks {
		if tok.Pos != want[i] {
			t.Errorf("token %d (%s) at %+v, want %+v", i, tok, tok.Pos, want[i])
		}
	}
}

func TestLex_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   error
		line   int64
		column int64
	}{
		{"unexpected char", "a = 1;\nb = $", ErrUnexpectedChar, 2, 5},
		{"unterminated string", `a = "open`, ErrUnterminatedString, 1, 5},
		{"unicode", "a = é", ErrUnexpectedChar, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Lex(%q) error = %v, want %v", tt.input, err, tt.want)
			}

			if !errors.Is(err, ErrLex) {
				t.Errorf("error %v does not match ErrLex", err)
			}

			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("error %T is not *Error", err)
			}

			if v, ok := e.Attr("line"); !ok || v.Int64() != tt.line {
				t.Errorf("line attr = %v, want %d", v, tt.line)
			}

			if v, ok := e.Attr("column"); !ok || v.Int64() != tt.column {
				t.Errorf("column attr = %v, want %d", v, tt.column)
			}
		})
	}
}
