package nbt

import (
	"fmt"
	"strings"
)

// Position locates a byte in textual input, 1-based.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TokenType identifies a lexical class in textual tag notation.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenSemicolon
	TokenComma
	TokenString
	TokenAtom
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenSemicolon:
		return "';'"
	case TokenComma:
		return "','"
	case TokenString:
		return "string"
	case TokenAtom:
		return "atom"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token is one lexical unit. Raw holds the decoded text for strings
// and the literal text for atoms.
type Token struct {
	Type TokenType
	Raw  string
	Pos  Position
}

// Lexer splits textual input into tokens. Atoms are maximal runs of
// the bare-identifier charset; everything else is structural or a
// quoted string.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) advance() byte {
	b := l.input[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.advance()
		default:
			return
		}
	}
}

// Next scans the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	start := l.position()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: start}, nil
	}
	switch b := l.input[l.pos]; {
	case b == '{':
		l.advance()
		return Token{Type: TokenLBrace, Raw: "{", Pos: start}, nil
	case b == '}':
		l.advance()
		return Token{Type: TokenRBrace, Raw: "}", Pos: start}, nil
	case b == '[':
		l.advance()
		return Token{Type: TokenLBracket, Raw: "[", Pos: start}, nil
	case b == ']':
		l.advance()
		return Token{Type: TokenRBracket, Raw: "]", Pos: start}, nil
	case b == ':':
		l.advance()
		return Token{Type: TokenColon, Raw: ":", Pos: start}, nil
	case b == ';':
		l.advance()
		return Token{Type: TokenSemicolon, Raw: ";", Pos: start}, nil
	case b == ',':
		l.advance()
		return Token{Type: TokenComma, Raw: ",", Pos: start}, nil
	case b == '"':
		return l.scanString(start)
	case isPlainChar(b):
		return l.scanAtom(start), nil
	default:
		return Token{}, &SyntaxError{
			Pos: start,
			Err: fmt.Errorf("%w: %q", ErrUnexpectedToken, string(b)),
		}
	}
}

func (l *Lexer) scanString(start Position) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		b := l.advance()
		switch b {
		case '"':
			return Token{Type: TokenString, Raw: sb.String(), Pos: start}, nil
		case '\\':
			if l.pos >= len(l.input) {
				return Token{}, &SyntaxError{Pos: start, Err: ErrUnterminatedString}
			}
			esc := l.advance()
			if esc != '"' && esc != '\\' {
				return Token{}, &SyntaxError{
					Pos: start,
					Err: fmt.Errorf("%w: invalid escape sequence \\%s", ErrUnexpectedToken, string(esc)),
				}
			}
			sb.WriteByte(esc)
		default:
			sb.WriteByte(b)
		}
	}
	return Token{}, &SyntaxError{Pos: start, Err: ErrUnterminatedString}
}

func (l *Lexer) scanAtom(start Position) Token {
	from := l.pos
	for l.pos < len(l.input) && isPlainChar(l.input[l.pos]) {
		l.advance()
	}
	return Token{Type: TokenAtom, Raw: l.input[from:l.pos], Pos: start}
}

// isPlainChar reports whether b may appear in a bare atom: keys that
// stay unquoted and unquoted value literals share this charset.
func isPlainChar(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '_' || b == '.' || b == '+' || b == '-':
		return true
	default:
		return false
	}
}

// isPlainIdent reports whether s can be written as a bare key.
func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isPlainChar(s[i]) {
			return false
		}
	}
	return true
}

// TokenStream adds single-token lookahead over a Lexer.
type TokenStream struct {
	lex    *Lexer
	cur    Token
	primed bool
}

// NewTokenStream creates a stream over input.
func NewTokenStream(input string) *TokenStream {
	return &TokenStream{lex: NewLexer(input)}
}

// Peek returns the next token without consuming it.
func (ts *TokenStream) Peek() (Token, error) {
	if !ts.primed {
		tok, err := ts.lex.Next()
		if err != nil {
			return Token{}, err
		}
		ts.cur = tok
		ts.primed = true
	}
	return ts.cur, nil
}

// Advance consumes and returns the next token.
func (ts *TokenStream) Advance() (Token, error) {
	tok, err := ts.Peek()
	if err != nil {
		return Token{}, err
	}
	ts.primed = false
	return tok, nil
}

// Expect consumes the next token and requires its type.
func (ts *TokenStream) Expect(tt TokenType) (Token, error) {
	tok, err := ts.Advance()
	if err != nil {
		return Token{}, err
	}
	if tok.Type != tt {
		return Token{}, &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedToken, tt, tok.Type),
		}
	}
	return tok, nil
}

// Match consumes the next token if it has the given type.
func (ts *TokenStream) Match(tt TokenType) (bool, error) {
	tok, err := ts.Peek()
	if err != nil {
		return false, err
	}
	if tok.Type != tt {
		return false, nil
	}
	ts.primed = false
	return true, nil
}
