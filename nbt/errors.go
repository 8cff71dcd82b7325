package nbt

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure kind the codec can produce.
// Binary and SNBT entry points wrap these with location context
// (DecodeError, SyntaxError); match with errors.Is.
var (
	ErrUnknownTypeID    = errors.New("nbt: unknown type id")
	ErrDuplicateTypeID  = errors.New("nbt: duplicate type id")
	ErrUnexpectedEndTag = errors.New("nbt: unexpected end tag")
	ErrMalformedString  = errors.New("nbt: malformed string")
	ErrNegativeLength   = errors.New("nbt: negative length")
	ErrUnexpectedEOF    = errors.New("nbt: unexpected end of stream")
	ErrNestingTooDeep   = errors.New("nbt: nesting too deep")

	ErrUnsupportedCompression = errors.New("nbt: unsupported compression")

	ErrUnexpectedToken    = errors.New("nbt: unexpected token")
	ErrUnterminatedString = errors.New("nbt: unterminated string")
	ErrInvalidNumber      = errors.New("nbt: invalid number")
)

// DecodeError wraps a binary decode or encode failure with the byte
// offset at which it occurred.
type DecodeError struct {
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SyntaxError wraps a textual parse failure with the position at
// which it occurred.
type SyntaxError struct {
	Pos Position
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at %s", e.Err, e.Pos)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
