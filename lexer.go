package forge

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN    // "("
	RPAREN    // ")"
	LBRACK    // "["
	RBRACK    // "]"
	LBRACE    // "{"
	RBRACE    // "}"
	COMMA     // ","
	COLON     // ":"
	SEMICOLON // ";"
	PIPE      // "|"
	DOTDOT    // ".."

	// Operators
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG       // "!"
	ASSIGN     // "="
	EQ         // "=="
	NEQ        // "!="
	LESS       // "<"
	LESS_EQ    // "<="
	GREATER    // ">"
	GREATER_EQ // ">="
	PLUS_EQ    // "+="
	MINUS_EQ   // "-="
	STAR_EQ    // "*="
	SLASH_EQ   // "/="
	PERCENT_EQ // "%="

	// Literals & identifiers
	IDENT
	NUMBER
	STRING
	CHAR
	BOOLEAN
	NULL

	// Keywords
	AND
	OR
	XOR
	IF
	ELSE
	WHILE
	FOR
	IN
	VAR
	PRINT
	INPUT
	RETURN
	BREAK
	CONTINUE
	CLONE
	MIRROR
	AS
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{} // parsed value for literals
	Span    Span
}

var keywords = map[string]TokenType{
	"null":     NULL,
	"true":     BOOLEAN,
	"false":    BOOLEAN,
	"and":      AND,
	"or":       OR,
	"xor":      XOR,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"var":      VAR,
	"print":    PRINT,
	"input":    INPUT,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"clone":    CLONE,
	"mirror":   MIRROR,
	"as":       AS,
}

// tokenName renders a token type the way diagnostics quote it.
func tokenName(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of input"
	case IDENT:
		return fmt.Sprintf("identifier '%s'", tok.Lexeme)
	case NUMBER:
		return fmt.Sprintf("number '%s'", tok.Lexeme)
	case STRING:
		return "string"
	case CHAR:
		return "character"
	default:
		return fmt.Sprintf("'%s'", tok.Lexeme)
	}
}

// Lexer scans a Forge source string into tokens. The cursor advances by
// bytes but col counts unicode scalars, since every downstream index into a
// string is scalar-based.
type Lexer struct {
	src    string
	start  int // start byte of current token
	cur    int // current byte
	line   int // 1-based
	col    int // 1-based, in runes
	tokens []Token

	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (rune, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.cur:])
	return r, true
}

func (l *Lexer) peekN(n int) (rune, bool) {
	idx := l.cur
	for ; n > 0 && idx < len(l.src); n-- {
		_, size := utf8.DecodeRuneInString(l.src[idx:])
		idx += size
	}
	if idx >= len(l.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.src[idx:])
	return r, true
}

func (l *Lexer) advance() (rune, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, true
}

func (l *Lexer) rewindToStart() {
	l.cur = l.start
	l.line = l.tokStartLine
	l.col = l.tokStartCol
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:    tt,
		Lexeme:  lex,
		Literal: lit,
		Span: Span{
			Line:  l.tokStartLine,
			Col:   l.tokStartCol,
			Start: l.start,
			End:   l.cur,
		},
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		case '#':
			for {
				b, ok := l.peek()
				if !ok || b == '\n' {
					break
				}
				l.advance()
			}
			l.start = l.cur
		default:
			return
		}
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
func isAlphaNum(r rune) bool { return isAlpha(r) || isDigit(r) }

func (l *Lexer) err(msg string) error {
	return &LexError{Line: l.line, Col: l.col, Pos: l.cur, Msg: msg}
}

// ----- scanners -----

func (l *Lexer) scanEscape() (rune, error) {
	esc, ok := l.advance()
	if !ok {
		return 0, l.err("unfinished escape sequence")
	}
	switch esc {
	case '"':
		return '"', nil
	case '\'':
		return '\'', nil
	case '\\':
		return '\\', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	default:
		return 0, l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
	}
}

// scanString parses a double-quoted string literal; the opening quote has
// already been consumed.
func (l *Lexer) scanString() (string, error) {
	var out []rune
	for {
		ch, ok := l.advance()
		if !ok {
			return "", l.errUnterminated("string was not terminated")
		}
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\\' {
			r, err := l.scanEscape()
			if err != nil {
				return "", err
			}
			out = append(out, r)
			continue
		}
		out = append(out, ch)
	}
}

// scanChar parses a single-quoted char literal; the opening quote has already
// been consumed.
func (l *Lexer) scanChar() (rune, error) {
	ch, ok := l.advance()
	if !ok {
		return 0, l.errUnterminated("character literal was not terminated")
	}
	if ch == '\\' {
		r, err := l.scanEscape()
		if err != nil {
			return 0, err
		}
		ch = r
	}
	term, ok := l.advance()
	if !ok {
		return 0, l.errUnterminated("character literal was not terminated")
	}
	if term != '\'' {
		return 0, l.err("character literal must contain exactly one character")
	}
	return ch, nil
}

func (l *Lexer) errUnterminated(msg string) error {
	e := l.err(msg).(*LexError)
	e.Incomplete = true
	return e
}

// scanNumber parses an integer or decimal literal. A '.' is consumed as a
// fraction only when a digit follows; '..' always belongs to the range
// operator.
func (l *Lexer) scanNumber() (interface{}, error) {
	for {
		b, ok := l.peek()
		if !ok || !isDigit(b) {
			break
		}
		l.advance()
	}
	if b, ok := l.peek(); ok && b == '.' {
		if b2, ok2 := l.peekN(1); ok2 && isDigit(b2) {
			l.advance()
			for {
				b, ok := l.peek()
				if !ok || !isDigit(b) {
					break
				}
				l.advance()
			}
		}
	}
	lex := l.src[l.start:l.cur]
	v, convErr := strconv.ParseFloat(lex, 64)
	if convErr != nil {
		return nil, l.err("invalid number literal")
	}
	return v, nil
}

func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespaceAndComments()
	l.tokStartLine = l.line
	l.tokStartCol = l.col
	l.start = l.cur

	if l.isAtEnd() {
		return l.addToken(EOF, nil), nil
	}

	ch, _ := l.advance()

	switch ch {
	case '(':
		return l.addToken(LPAREN, nil), nil
	case ')':
		return l.addToken(RPAREN, nil), nil
	case '[':
		return l.addToken(LBRACK, nil), nil
	case ']':
		return l.addToken(RBRACK, nil), nil
	case '{':
		return l.addToken(LBRACE, nil), nil
	case '}':
		return l.addToken(RBRACE, nil), nil
	case ',':
		return l.addToken(COMMA, nil), nil
	case ':':
		return l.addToken(COLON, nil), nil
	case ';':
		return l.addToken(SEMICOLON, nil), nil
	case '|':
		return l.addToken(PIPE, nil), nil
	}

	// Two-char operators and fallbacks.
	switch ch {
	case '.':
		if b, ok := l.peek(); ok && b == '.' {
			l.advance()
			return l.addToken(DOTDOT, nil), nil
		}
		l.rewindToStart()
		err := l.err("unexpected character: '.'")
		l.advance()
		return Token{}, err
	case '+':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(PLUS_EQ, nil), nil
		}
		return l.addToken(PLUS, nil), nil
	case '-':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(MINUS_EQ, nil), nil
		}
		return l.addToken(MINUS, nil), nil
	case '*':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(STAR_EQ, nil), nil
		}
		return l.addToken(STAR, nil), nil
	case '/':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(SLASH_EQ, nil), nil
		}
		return l.addToken(SLASH, nil), nil
	case '%':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(PERCENT_EQ, nil), nil
		}
		return l.addToken(PERCENT, nil), nil
	case '=':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(EQ, nil), nil
		}
		return l.addToken(ASSIGN, nil), nil
	case '!':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(NEQ, nil), nil
		}
		return l.addToken(BANG, nil), nil
	case '<':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(LESS_EQ, nil), nil
		}
		return l.addToken(LESS, nil), nil
	case '>':
		if b, ok := l.peek(); ok && b == '=' {
			l.advance()
			return l.addToken(GREATER_EQ, nil), nil
		}
		return l.addToken(GREATER, nil), nil
	}

	if ch == '"' {
		text, err := l.scanString()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(STRING, text), nil
	}

	if ch == '\'' {
		r, err := l.scanChar()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(CHAR, r), nil
	}

	if isDigit(ch) {
		l.rewindToStart()
		lit, err := l.scanNumber()
		if err != nil {
			return Token{}, err
		}
		return l.addToken(NUMBER, lit), nil
	}

	if isAlpha(ch) {
		l.rewindToStart()
		lex := l.scanIdentifier()
		if tt, ok := keywords[lex]; ok {
			switch tt {
			case NULL:
				return l.addToken(NULL, nil), nil
			case BOOLEAN:
				return l.addToken(BOOLEAN, lex == "true"), nil
			default:
				return l.addToken(tt, lex), nil
			}
		}
		return l.addToken(IDENT, lex), nil
	}

	l.rewindToStart()
	err := l.err(fmt.Sprintf("unexpected character: %q", ch))
	l.advance()
	return Token{}, err
}

// Scan tokenizes the entire source and returns tokens (EOF included). The
// first invalid character fails the scan with a *LexError carrying its
// position.
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
