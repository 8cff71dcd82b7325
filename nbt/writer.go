package nbt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Writer encodes a tag tree to a big-endian byte stream, mirroring
// the reader's layout byte for byte.
type Writer struct {
	w        io.Writer
	registry *TypeRegistry
	maxDepth int

	depth  int
	offset int64
	err    error
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithWriterRegistry sets the registry used to resolve tag ids.
func WithWriterRegistry(reg *TypeRegistry) WriterOption {
	return func(w *Writer) {
		w.registry = reg
	}
}

// WithWriterMaxDepth sets the container nesting ceiling.
func WithWriterMaxDepth(n int) WriterOption {
	return func(w *Writer) {
		w.maxDepth = n
	}
}

// NewWriter creates a writer producing an uncompressed stream.
func NewWriter(wr io.Writer, opts ...WriterOption) *Writer {
	w := &Writer{
		w:        wr,
		registry: defaultRegistry,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	return w.offset
}

// Error returns the first error encountered, if any.
func (w *Writer) Error() error {
	return w.err
}

// WriteTag encodes one named tag: id, name, payload. The tag's id
// must resolve before anything is written; an end tag is never a
// value and is rejected.
func (w *Writer) WriteTag(t *Tag) error {
	if t == nil {
		return fmt.Errorf("nbt: cannot write nil tag")
	}
	if t.id == TagEnd {
		return ErrUnexpectedEndTag
	}
	tt, err := w.registry.Resolve(t.id)
	if err != nil {
		return err
	}
	if err := w.writeTagID(t.id); err != nil {
		return err
	}
	if err := w.WriteString(t.name); err != nil {
		return err
	}
	return tt.Write(w, t)
}

// ============================================================
// Container payloads
// ============================================================

func (w *Writer) writeListPayload(t *Tag) error {
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()

	elems, err := t.Elems()
	if err != nil {
		return err
	}
	if len(elems) == 0 {
		// The declared element kind round-trips, end included.
		if err := w.writeTagID(t.elemID); err != nil {
			return err
		}
		return w.writeElemCount(0)
	}

	tt, err := w.registry.Resolve(t.elemID)
	if err != nil {
		return err
	}
	if err := w.writeTagID(t.elemID); err != nil {
		return err
	}
	if err := w.writeElemCount(len(elems)); err != nil {
		return err
	}
	for _, e := range elems {
		if e.id != t.elemID {
			return fmt.Errorf("nbt: list element type mismatch: list of %s, element %s", t.elemID, e.id)
		}
		if err := tt.Write(w, e); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeCompoundPayload(t *Tag) error {
	if err := w.enter(); err != nil {
		return err
	}
	defer w.leave()

	if t.id != TagCompound {
		return fmt.Errorf("nbt: expected compound, got %s", t.id)
	}
	for _, child := range t.compVal {
		if err := w.WriteTag(child); err != nil {
			return err
		}
	}
	return w.writeTagID(TagEnd)
}

func (w *Writer) enter() error {
	w.depth++
	if w.depth > w.maxDepth {
		err := fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, w.depth, w.maxDepth)
		w.recordError(err)
		return err
	}
	return nil
}

func (w *Writer) leave() {
	w.depth--
}

// ============================================================
// Primitive writes (big-endian), public for extension bundles
// ============================================================

func (w *Writer) writeTagID(id TagID) error {
	return w.writeFull([]byte{byte(id)})
}

// WriteInt8 writes one signed byte.
func (w *Writer) WriteInt8(v int8) error {
	return w.writeFull([]byte{byte(v)})
}

// WriteInt16 writes a big-endian signed 16-bit value.
func (w *Writer) WriteInt16(v int16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return w.writeFull(b[:])
}

// WriteInt32 writes a big-endian signed 32-bit value.
func (w *Writer) WriteInt32(v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return w.writeFull(b[:])
}

// WriteInt64 writes a big-endian signed 64-bit value.
func (w *Writer) WriteInt64(v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return w.writeFull(b[:])
}

// WriteFloat32 writes a big-endian IEEE-754 single.
func (w *Writer) WriteFloat32(v float32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	return w.writeFull(b[:])
}

// WriteFloat64 writes a big-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	return w.writeFull(b[:])
}

// WriteString writes a u16 length prefix and the UTF-8 bytes. Strings
// longer than 65535 bytes or not valid UTF-8 cannot go on the wire.
func (w *Writer) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		err := fmt.Errorf("%w: string length %d exceeds 65535", ErrMalformedString, len(s))
		w.recordError(err)
		return err
	}
	if !utf8.ValidString(s) {
		err := fmt.Errorf("%w: invalid UTF-8", ErrMalformedString)
		w.recordError(err)
		return err
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(len(s)))
	if err := w.writeFull(b[:]); err != nil {
		return err
	}
	return w.writeFull([]byte(s))
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(p []byte) error {
	return w.writeFull(p)
}

// writeElemCount writes a signed 32-bit element count.
func (w *Writer) writeElemCount(n int) error {
	if n > math.MaxInt32 {
		err := fmt.Errorf("nbt: element count %d overflows int32", n)
		w.recordError(err)
		return err
	}
	return w.WriteInt32(int32(n))
}

func (w *Writer) writeFull(p []byte) error {
	if w.err != nil {
		return w.err
	}
	n, err := w.w.Write(p)
	w.offset += int64(n)
	if err != nil {
		err = fmt.Errorf("nbt: write: %w", err)
		w.recordError(err)
		return err
	}
	return nil
}

// recordError keeps the first error; later writes fail with it.
func (w *Writer) recordError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}
