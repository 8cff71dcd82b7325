package nbt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// snbtParser is a recursive-descent parser over a token stream. It
// accepts exactly the grammar the emitter produces: quoted string
// values, suffixed numerics, bare or quoted keys, and the three
// typed-array forms.
type snbtParser struct {
	ts       *TokenStream
	maxDepth int
	depth    int
}

func parseSNBT(input string, maxDepth int) (*Tag, error) {
	p := &snbtParser{ts: NewTokenStream(input), maxDepth: maxDepth}
	t, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	tok, err := p.ts.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenEOF {
		return nil, &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: trailing %s", ErrUnexpectedToken, tok.Type),
		}
	}
	return t, nil
}

func (p *snbtParser) enter(pos Position) error {
	p.depth++
	if p.depth > p.maxDepth {
		return &SyntaxError{
			Pos: pos,
			Err: fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, p.depth, p.maxDepth),
		}
	}
	return nil
}

func (p *snbtParser) leave() {
	p.depth--
}

func (p *snbtParser) parseValue() (*Tag, error) {
	tok, err := p.ts.Peek()
	if err != nil {
		return nil, err
	}
	switch tok.Type {
	case TokenLBrace:
		return p.parseCompound()
	case TokenLBracket:
		return p.parseListOrArray()
	case TokenString:
		p.ts.Advance()
		return String(tok.Raw), nil
	case TokenAtom:
		p.ts.Advance()
		return p.classifyAtom(tok)
	default:
		return nil, &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: expected value, got %s", ErrUnexpectedToken, tok.Type),
		}
	}
}

func (p *snbtParser) parseCompound() (*Tag, error) {
	open, err := p.ts.Expect(TokenLBrace)
	if err != nil {
		return nil, err
	}
	if err := p.enter(open.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	c := Compound()
	done, err := p.ts.Match(TokenRBrace)
	if err != nil {
		return nil, err
	}
	for !done {
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if _, err := p.ts.Expect(TokenColon); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		// Duplicate keys collapse, the last value wins.
		c.Put(key, v)

		more, err := p.ts.Match(TokenComma)
		if err != nil {
			return nil, err
		}
		if more {
			continue
		}
		if _, err := p.ts.Expect(TokenRBrace); err != nil {
			return nil, err
		}
		done = true
	}
	return c, nil
}

func (p *snbtParser) parseKey() (string, error) {
	tok, err := p.ts.Advance()
	if err != nil {
		return "", err
	}
	switch tok.Type {
	case TokenAtom, TokenString:
		return tok.Raw, nil
	default:
		return "", &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: expected key, got %s", ErrUnexpectedToken, tok.Type),
		}
	}
}

func (p *snbtParser) parseListOrArray() (*Tag, error) {
	open, err := p.ts.Expect(TokenLBracket)
	if err != nil {
		return nil, err
	}
	tok, err := p.ts.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenAtom && (tok.Raw == "B" || tok.Raw == "I" || tok.Raw == "L") {
		p.ts.Advance()
		if _, err := p.ts.Expect(TokenSemicolon); err != nil {
			return nil, err
		}
		return p.parseArray(tok.Raw[0])
	}
	return p.parseList(open)
}

func (p *snbtParser) parseList(open Token) (*Tag, error) {
	if err := p.enter(open.Pos); err != nil {
		return nil, err
	}
	defer p.leave()

	t := List(TagEnd)
	done, err := p.ts.Match(TokenRBracket)
	if err != nil {
		return nil, err
	}
	for !done {
		tok, err := p.ts.Peek()
		if err != nil {
			return nil, err
		}
		e, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := t.Append(e); err != nil {
			return nil, &SyntaxError{
				Pos: tok.Pos,
				Err: fmt.Errorf("%w: %s element in list of %s", ErrUnexpectedToken, e.ID(), t.ElemID()),
			}
		}
		more, err := p.ts.Match(TokenComma)
		if err != nil {
			return nil, err
		}
		if more {
			continue
		}
		if _, err := p.ts.Expect(TokenRBracket); err != nil {
			return nil, err
		}
		done = true
	}
	return t, nil
}

// parseArray reads the elements after "[B;", "[I;" or "[L;". Byte and
// long elements tolerate their own suffix letter on input.
func (p *snbtParser) parseArray(kind byte) (*Tag, error) {
	var (
		bytes []byte
		ints  []int32
		longs []int64
	)
	done, err := p.ts.Match(TokenRBracket)
	if err != nil {
		return nil, err
	}
	for !done {
		tok, err := p.ts.Expect(TokenAtom)
		if err != nil {
			return nil, err
		}
		raw := tok.Raw
		switch kind {
		case 'B':
			raw = trimNumberSuffix(raw, 'b', 'B')
			v, err := p.parseIntAtom(tok, raw, 8)
			if err != nil {
				return nil, err
			}
			bytes = append(bytes, byte(int8(v)))
		case 'I':
			v, err := p.parseIntAtom(tok, raw, 32)
			if err != nil {
				return nil, err
			}
			ints = append(ints, int32(v))
		case 'L':
			raw = trimNumberSuffix(raw, 'l', 'L')
			v, err := p.parseIntAtom(tok, raw, 64)
			if err != nil {
				return nil, err
			}
			longs = append(longs, v)
		}
		more, err := p.ts.Match(TokenComma)
		if err != nil {
			return nil, err
		}
		if more {
			continue
		}
		if _, err := p.ts.Expect(TokenRBracket); err != nil {
			return nil, err
		}
		done = true
	}
	switch kind {
	case 'B':
		return ByteArray(bytes), nil
	case 'I':
		return IntArray(ints), nil
	default:
		return LongArray(longs), nil
	}
}

func trimNumberSuffix(s string, lower, upper byte) string {
	if n := len(s); n > 1 && (s[n-1] == lower || s[n-1] == upper) {
		return s[:n-1]
	}
	return s
}

// classifyAtom turns a bare atom into a scalar tag. Booleans map to
// bytes; a trailing suffix letter fixes the numeric kind; unsuffixed
// numbers are ints unless they carry a fraction, exponent or
// non-finite spelling, which makes them doubles.
func (p *snbtParser) classifyAtom(tok Token) (*Tag, error) {
	raw := tok.Raw
	switch raw {
	case "true":
		return Byte(1), nil
	case "false":
		return Byte(0), nil
	}

	if len(raw) > 1 && !strings.ContainsAny(raw, "xX") {
		body := raw[:len(raw)-1]
		switch raw[len(raw)-1] {
		case 'b', 'B':
			if numericShaped(body) {
				v, err := p.parseIntAtom(tok, body, 8)
				if err != nil {
					return nil, err
				}
				return Byte(int8(v)), nil
			}
		case 's', 'S':
			if numericShaped(body) {
				v, err := p.parseIntAtom(tok, body, 16)
				if err != nil {
					return nil, err
				}
				return Short(int16(v)), nil
			}
		case 'l', 'L':
			if numericShaped(body) {
				v, err := p.parseIntAtom(tok, body, 64)
				if err != nil {
					return nil, err
				}
				return Long(v), nil
			}
		case 'f', 'F':
			if v, ok := parseFloatAtom(body, 32); ok {
				return Float(float32(v)), nil
			}
		case 'd', 'D':
			if v, ok := parseFloatAtom(body, 64); ok {
				return Double(v), nil
			}
		}
	}

	if integerShaped(raw) {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, &SyntaxError{
				Pos: tok.Pos,
				Err: fmt.Errorf("%w: %q does not fit a 32-bit int", ErrInvalidNumber, raw),
			}
		}
		return Int(int32(v)), nil
	}
	if !strings.ContainsAny(raw, "xX") {
		if v, ok := parseFloatAtom(raw, 64); ok {
			return Double(v), nil
		}
	}
	if numericShaped(raw) {
		return nil, &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: %q", ErrInvalidNumber, raw),
		}
	}
	return nil, &SyntaxError{
		Pos: tok.Pos,
		Err: fmt.Errorf("%w: %q", ErrUnexpectedToken, raw),
	}
}

func (p *snbtParser) parseIntAtom(tok Token, text string, bits int) (int64, error) {
	v, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return 0, &SyntaxError{
			Pos: tok.Pos,
			Err: fmt.Errorf("%w: %q does not fit a %d-bit int", ErrInvalidNumber, tok.Raw, bits),
		}
	}
	return v, nil
}

// parseFloatAtom accepts finite spellings plus NaN and the Inf
// family. Magnitude overflow saturates to the matching infinity.
func parseFloatAtom(text string, bits int) (float64, bool) {
	v, err := strconv.ParseFloat(text, bits)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// numericShaped reports whether s starts like a number. Used to tell
// a malformed number from a stray word when reporting errors.
func numericShaped(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '+', '-', '.':
		return len(s) > 1
	}
	return s[0] >= '0' && s[0] <= '9'
}

// integerShaped reports whether s is an optional sign and digits only.
func integerShaped(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
