package nbt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// DefaultMaxDepth is the container nesting ceiling applied by every
// traversal (binary read, binary write, render, parse) unless
// configured otherwise.
const DefaultMaxDepth = 512

// Reader decodes a tag tree from a big-endian byte stream. It keeps
// the byte offset for error context and stops at the first error.
type Reader struct {
	r        io.Reader
	registry *TypeRegistry
	maxDepth int

	depth  int
	offset int64
	err    error
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithReaderRegistry sets the registry used to resolve tag ids.
func WithReaderRegistry(reg *TypeRegistry) ReaderOption {
	return func(r *Reader) {
		r.registry = reg
	}
}

// WithReaderMaxDepth sets the container nesting ceiling.
func WithReaderMaxDepth(n int) ReaderOption {
	return func(r *Reader) {
		r.maxDepth = n
	}
}

// NewReader creates a reader over an uncompressed stream. Compression
// framing is handled by the entry points in this package that accept
// whole documents.
func NewReader(rd io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		r:        rd,
		registry: defaultRegistry,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Error returns the first error encountered, if any.
func (r *Reader) Error() error {
	return r.err
}

// ReadTag decodes one named tag: id, name, payload. An end id at the
// root is rejected; any other id resolves through the registry.
// Failures carry the byte offset at which decoding stopped.
func (r *Reader) ReadTag() (*Tag, error) {
	id, err := r.readTagID()
	if err != nil {
		return nil, r.fail(err)
	}
	if id == TagEnd {
		return nil, r.fail(ErrUnexpectedEndTag)
	}
	t, err := r.readNamed(id)
	if err != nil {
		return nil, r.fail(err)
	}
	return t, nil
}

// fail wraps an error with the current offset.
func (r *Reader) fail(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Offset: r.offset, Err: err}
}

// readNamed reads the name and payload for a tag whose id byte has
// already been consumed.
func (r *Reader) readNamed(id TagID) (*Tag, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	tt, err := r.registry.Resolve(id)
	if err != nil {
		return nil, err
	}
	t, err := tt.Read(r)
	if err != nil {
		return nil, err
	}
	t.name = name
	return t, nil
}

// ============================================================
// Container payloads
// ============================================================

func (r *Reader) readListPayload() (*Tag, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	elem, err := r.readTagID()
	if err != nil {
		return nil, err
	}
	count, err := r.readElemCount()
	if err != nil {
		return nil, err
	}

	list := List(elem)
	if count == 0 {
		// An empty list keeps its declared element kind, end included.
		return list, nil
	}

	tt, err := r.registry.Resolve(elem)
	if err != nil {
		return nil, err
	}
	list.listVal = make([]*Tag, 0, preallocCount(count))
	for i := 0; i < count; i++ {
		e, err := tt.Read(r)
		if err != nil {
			return nil, err
		}
		list.listVal = append(list.listVal, e)
	}
	return list, nil
}

func (r *Reader) readCompoundPayload() (*Tag, error) {
	if err := r.enter(); err != nil {
		return nil, err
	}
	defer r.leave()

	c := Compound()
	for {
		id, err := r.readTagID()
		if err != nil {
			return nil, err
		}
		if id == TagEnd {
			return c, nil
		}
		child, err := r.readNamed(id)
		if err != nil {
			return nil, err
		}
		// Put keeps the ordered-map contract even for malformed
		// streams carrying duplicate keys.
		c.Put(child.name, child)
	}
}

func (r *Reader) enter() error {
	r.depth++
	if r.depth > r.maxDepth {
		err := fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, r.depth, r.maxDepth)
		r.recordError(err)
		return err
	}
	return nil
}

func (r *Reader) leave() {
	r.depth--
}

// ============================================================
// Primitive reads (big-endian), public for extension bundles
// ============================================================

func (r *Reader) readTagID() (TagID, error) {
	var b [1]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return TagID(b[0]), nil
}

// ReadInt8 reads one signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	var b [1]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadInt16 reads a big-endian signed 16-bit value.
func (r *Reader) ReadInt16() (int16, error) {
	var b [2]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

// ReadInt32 reads a big-endian signed 32-bit value.
func (r *Reader) ReadInt32() (int32, error) {
	var b [4]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// ReadInt64 reads a big-endian signed 64-bit value.
func (r *Reader) ReadInt64() (int64, error) {
	var b [8]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// ReadFloat32 reads a big-endian IEEE-754 single.
func (r *Reader) ReadFloat32() (float32, error) {
	var b [4]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b[:])), nil
}

// ReadFloat64 reads a big-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	var b [8]byte
	if err := r.readFull(b[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
}

// ReadString reads a u16 length prefix and that many UTF-8 bytes.
// Truncated content and invalid UTF-8 both report a malformed string.
func (r *Reader) ReadString() (string, error) {
	var lb [2]byte
	if err := r.readFull(lb[:]); err != nil {
		return "", err
	}
	n := int(binary.BigEndian.Uint16(lb[:]))
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if err := r.readFull(buf); err != nil {
		if errors.Is(err, ErrUnexpectedEOF) {
			return "", fmt.Errorf("%w: string truncated", ErrMalformedString)
		}
		return "", err
	}
	if !utf8.Valid(buf) {
		err := fmt.Errorf("%w: invalid UTF-8", ErrMalformedString)
		r.recordError(err)
		return "", err
	}
	return string(buf), nil
}

// ReadBytes reads exactly n bytes. Allocation grows with the bytes
// actually read, so a hostile length cannot force a giant upfront
// allocation.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		err := fmt.Errorf("%w: %d", ErrNegativeLength, n)
		r.recordError(err)
		return nil, err
	}
	const chunk = 64 * 1024
	buf := make([]byte, 0, preallocCount(n))
	for len(buf) < n {
		step := n - len(buf)
		if step > chunk {
			step = chunk
		}
		start := len(buf)
		buf = append(buf, make([]byte, step)...)
		if err := r.readFull(buf[start:]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// readElemCount reads a signed 32-bit element count.
func (r *Reader) readElemCount() (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		err := fmt.Errorf("%w: %d", ErrNegativeLength, n)
		r.recordError(err)
		return 0, err
	}
	return int(n), nil
}

func (r *Reader) readFull(p []byte) error {
	if r.err != nil {
		return r.err
	}
	n, err := io.ReadFull(r.r, p)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrUnexpectedEOF
		} else {
			err = fmt.Errorf("nbt: read: %w", err)
		}
		r.recordError(err)
		return err
	}
	return nil
}

// recordError keeps the first error; later reads fail with it.
func (r *Reader) recordError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}
