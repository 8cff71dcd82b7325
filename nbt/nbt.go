package nbt

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// Codec bundles the registry, depth ceiling and render options behind
// one handle. The zero-config New() covers the common case; a custom
// codec isolates extension types and tuning from everyone else.
type Codec struct {
	registry *TypeRegistry
	maxDepth int
	emitOpts EmitOptions
}

// Option configures a Codec.
type Option func(*Codec)

// WithRegistry sets the type registry the codec resolves ids against.
func WithRegistry(reg *TypeRegistry) Option {
	return func(c *Codec) {
		c.registry = reg
	}
}

// WithMaxDepth sets the container nesting ceiling for every path:
// binary read, binary write, render and parse.
func WithMaxDepth(n int) Option {
	return func(c *Codec) {
		c.maxDepth = n
	}
}

// WithEmitOptions sets the textual rendering options.
func WithEmitOptions(opts EmitOptions) Option {
	return func(c *Codec) {
		c.emitOpts = opts
	}
}

// New creates a codec. Without options it uses the built-in registry
// and the default depth ceiling.
func New(opts ...Option) *Codec {
	c := &Codec{
		registry: defaultRegistry,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default backs the package-level helpers.
var Default = New()

// Registry returns the registry this codec resolves ids against.
func (c *Codec) Registry() *TypeRegistry {
	return c.registry
}

// Write encodes root uncompressed.
func (c *Codec) Write(w io.Writer, root *Tag) error {
	return NewWriter(w,
		WithWriterRegistry(c.registry),
		WithWriterMaxDepth(c.maxDepth),
	).WriteTag(root)
}

// WriteCompressed encodes root wrapped in the given framing. The
// framing is explicit on the write side, never guessed.
func (c *Codec) WriteCompressed(w io.Writer, root *Tag, mode Compression) error {
	zw, err := newCompressionWriter(mode, w)
	if err != nil {
		return err
	}
	if err := c.Write(zw, root); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("nbt: %s flush: %w", mode, err)
	}
	return nil
}

// Read decodes one tag, sniffing the framing from the stream header.
func (c *Codec) Read(r io.Reader) (*Tag, error) {
	br := bufio.NewReader(r)
	mode, err := DetectCompression(br)
	if err != nil {
		return nil, err
	}
	zr, err := newCompressionReader(mode, br)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return NewReader(zr,
		WithReaderRegistry(c.registry),
		WithReaderMaxDepth(c.maxDepth),
	).ReadTag()
}

// WriteFile encodes root to a file with the given framing.
func (c *Codec) WriteFile(path string, root *Tag, mode Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nbt: create %s: %w", path, err)
	}
	if err := c.WriteCompressed(f, root, mode); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("nbt: close %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes one tag from a file, sniffing the framing.
func (c *Codec) ReadFile(path string) (*Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nbt: open %s: %w", path, err)
	}
	defer f.Close()
	return c.Read(f)
}

// Marshal encodes root to a byte slice, uncompressed.
func (c *Codec) Marshal(root *Tag) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalCompressed encodes root to a byte slice with the given
// framing.
func (c *Codec) MarshalCompressed(root *Tag, mode Compression) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteCompressed(&buf, root, mode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes one tag from a byte slice, sniffing the framing.
func (c *Codec) Unmarshal(data []byte) (*Tag, error) {
	return c.Read(bytes.NewReader(data))
}

// MarshalBase64 encodes root uncompressed and wraps it in standard
// base64.
func (c *Codec) MarshalBase64(root *Tag) (string, error) {
	data, err := c.Marshal(root)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// UnmarshalBase64 decodes standard base64 and then one tag from the
// result; compressed payloads are sniffed like any other stream.
func (c *Codec) UnmarshalBase64(s string) (*Tag, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("nbt: base64: %w", err)
	}
	return c.Unmarshal(data)
}

// EmitSNBT renders root in textual form using the codec's options.
func (c *Codec) EmitSNBT(root *Tag) (string, error) {
	return emitSNBT(root, c.emitOpts, c.registry, c.maxDepth)
}

// ParseSNBT parses textual form into a tree. The result is unnamed.
func (c *Codec) ParseSNBT(s string) (*Tag, error) {
	return parseSNBT(s, c.maxDepth)
}

// ============================================================
// Package-level helpers over the Default codec
// ============================================================

// Write encodes root uncompressed with the default codec.
func Write(w io.Writer, root *Tag) error {
	return Default.Write(w, root)
}

// WriteCompressed encodes root with the given framing.
func WriteCompressed(w io.Writer, root *Tag, mode Compression) error {
	return Default.WriteCompressed(w, root, mode)
}

// Read decodes one tag, sniffing the framing.
func Read(r io.Reader) (*Tag, error) {
	return Default.Read(r)
}

// WriteFile encodes root to a file with the given framing.
func WriteFile(path string, root *Tag, mode Compression) error {
	return Default.WriteFile(path, root, mode)
}

// ReadFile decodes one tag from a file.
func ReadFile(path string) (*Tag, error) {
	return Default.ReadFile(path)
}

// Marshal encodes root to a byte slice, uncompressed.
func Marshal(root *Tag) ([]byte, error) {
	return Default.Marshal(root)
}

// MarshalCompressed encodes root to a byte slice with the given
// framing.
func MarshalCompressed(root *Tag, mode Compression) ([]byte, error) {
	return Default.MarshalCompressed(root, mode)
}

// Unmarshal decodes one tag from a byte slice.
func Unmarshal(data []byte) (*Tag, error) {
	return Default.Unmarshal(data)
}

// MarshalBase64 encodes root and wraps it in standard base64.
func MarshalBase64(root *Tag) (string, error) {
	return Default.MarshalBase64(root)
}

// UnmarshalBase64 decodes standard base64 into a tag.
func UnmarshalBase64(s string) (*Tag, error) {
	return Default.UnmarshalBase64(s)
}

// EmitSNBT renders root in compact textual form.
func EmitSNBT(root *Tag) (string, error) {
	return Default.EmitSNBT(root)
}

// ParseSNBT parses textual form into a tree.
func ParseSNBT(s string) (*Tag, error) {
	return Default.ParseSNBT(s)
}
