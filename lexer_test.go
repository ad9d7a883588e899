package forge

import "testing"

// --- helpers ---------------------------------------------------------------

func scanOK(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewLexer(src).Scan()
	if err != nil {
		t.Fatalf("unexpected lex error: %v\nsource: %q", err, src)
	}
	return toks
}

func scanErr(t *testing.T, src string) *LexError {
	t.Helper()
	_, err := NewLexer(src).Scan()
	if err == nil {
		t.Fatalf("expected a lex error\nsource: %q", src)
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T: %v", err, err)
	}
	return le
}

func wantTypes(t *testing.T, toks []Token, want ...TokenType) {
	t.Helper()
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, tt := range want {
		if toks[i].Type != tt {
			t.Fatalf("token %d: want type %d, got %d (%q)", i, tt, toks[i].Type, toks[i].Lexeme)
		}
	}
}

// --- tests -----------------------------------------------------------------

func Test_Lexer_Punctuation_And_Operators(t *testing.T) {
	toks := scanOK(t, "( ) [ ] { } , : ; | .. + - * / % ! = == != < <= > >= += -= *= /= %=")
	wantTypes(t, toks,
		LPAREN, RPAREN, LBRACK, RBRACK, LBRACE, RBRACE, COMMA, COLON,
		SEMICOLON, PIPE, DOTDOT, PLUS, MINUS, STAR, SLASH, PERCENT, BANG,
		ASSIGN, EQ, NEQ, LESS, LESS_EQ, GREATER, GREATER_EQ,
		PLUS_EQ, MINUS_EQ, STAR_EQ, SLASH_EQ, PERCENT_EQ, EOF)
}

func Test_Lexer_Keywords_And_Identifiers(t *testing.T) {
	toks := scanOK(t, "var print if else while for in and or xor input clone mirror as return break continue foo _bar9")
	wantTypes(t, toks,
		VAR, PRINT, IF, ELSE, WHILE, FOR, IN, AND, OR, XOR, INPUT,
		CLONE, MIRROR, AS, RETURN, BREAK, CONTINUE, IDENT, IDENT, EOF)
	if toks[17].Lexeme != "foo" || toks[18].Lexeme != "_bar9" {
		t.Fatalf("unexpected identifier lexemes: %q %q", toks[17].Lexeme, toks[18].Lexeme)
	}
}

func Test_Lexer_Number_Literals(t *testing.T) {
	toks := scanOK(t, "0 42 1.5 10.25")
	wantTypes(t, toks, NUMBER, NUMBER, NUMBER, NUMBER, EOF)
	if toks[2].Literal.(float64) != 1.5 {
		t.Fatalf("want 1.5, got %v", toks[2].Literal)
	}
}

func Test_Lexer_Range_Between_Numbers(t *testing.T) {
	// The dots belong to the range operator, never to a fraction.
	toks := scanOK(t, "1..4")
	wantTypes(t, toks, NUMBER, DOTDOT, NUMBER, EOF)
	if toks[0].Literal.(float64) != 1 || toks[2].Literal.(float64) != 4 {
		t.Fatalf("unexpected bounds: %v %v", toks[0].Literal, toks[2].Literal)
	}
	toks = scanOK(t, "1.5..4")
	wantTypes(t, toks, NUMBER, DOTDOT, NUMBER, EOF)
}

func Test_Lexer_String_And_Char_Literals(t *testing.T) {
	toks := scanOK(t, `"hi\n\"there\"" 'x' '\n' '\''`)
	wantTypes(t, toks, STRING, CHAR, CHAR, CHAR, EOF)
	if toks[0].Literal.(string) != "hi\n\"there\"" {
		t.Fatalf("unexpected string literal: %q", toks[0].Literal)
	}
	if toks[1].Literal.(rune) != 'x' || toks[2].Literal.(rune) != '\n' || toks[3].Literal.(rune) != '\'' {
		t.Fatalf("unexpected char literals: %v", toks[1:4])
	}
}

func Test_Lexer_Booleans_And_Null(t *testing.T) {
	toks := scanOK(t, "true false null")
	wantTypes(t, toks, BOOLEAN, BOOLEAN, NULL, EOF)
	if toks[0].Literal.(bool) != true || toks[1].Literal.(bool) != false {
		t.Fatalf("unexpected boolean literals: %v %v", toks[0].Literal, toks[1].Literal)
	}
}

func Test_Lexer_Comments_Are_Skipped(t *testing.T) {
	toks := scanOK(t, "1 # the rest is ignored ;;;\n2")
	wantTypes(t, toks, NUMBER, NUMBER, EOF)
	if toks[1].Span.Line != 2 {
		t.Fatalf("second token should be on line 2, got %d", toks[1].Span.Line)
	}
}

func Test_Lexer_Spans_Count_Runes_Not_Bytes(t *testing.T) {
	toks := scanOK(t, `"héllo" + 1`)
	wantTypes(t, toks, STRING, PLUS, NUMBER, EOF)
	// The string is 7 columns wide even though é is 2 bytes.
	if toks[1].Span.Col != 9 {
		t.Fatalf("'+' should be at column 9, got %d", toks[1].Span.Col)
	}
	if toks[1].Span.Start != 10 {
		t.Fatalf("'+' should start at byte 10, got %d", toks[1].Span.Start)
	}
}

func Test_Lexer_Span_Positions(t *testing.T) {
	toks := scanOK(t, "var x = 1;\nprint x;")
	if toks[0].Span.Line != 1 || toks[0].Span.Col != 1 {
		t.Fatalf("'var' span: %#v", toks[0].Span)
	}
	if toks[5].Type != PRINT || toks[5].Span.Line != 2 || toks[5].Span.Col != 1 {
		t.Fatalf("'print' span: %#v", toks[5].Span)
	}
}

func Test_Lexer_Unterminated_Literals_Are_Incomplete(t *testing.T) {
	le := scanErr(t, `"never closed`)
	if !le.Incomplete {
		t.Fatalf("unterminated string should be incomplete: %#v", le)
	}
	le = scanErr(t, "'x")
	if !le.Incomplete {
		t.Fatalf("unterminated char should be incomplete: %#v", le)
	}
}

func Test_Lexer_Invalid_Input(t *testing.T) {
	le := scanErr(t, "var x = 1 @ 2;")
	if le.Incomplete {
		t.Fatalf("a bad character mid-line is not incomplete: %#v", le)
	}
	if le.Line != 1 || le.Col != 11 {
		t.Fatalf("want 1:11, got %d:%d", le.Line, le.Col)
	}
	scanErr(t, "'ab'")
	scanErr(t, `"\q"`)
}

func Test_Lexer_Stray_Dot_Position(t *testing.T) {
	le := scanErr(t, "1 . 2")
	if le.Line != 1 || le.Col != 3 {
		t.Fatalf("error should point at the dot, got %d:%d", le.Line, le.Col)
	}
}
