package nbt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/Neumenon/nbt/debug"
)

// Compression selects the stream framing around a binary tag payload.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZlib
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression maps a mode name to its Compression value.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "none", "raw":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zlib", "deflate":
		return CompressionZlib, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
	}
}

// DetectCompression sniffs the framing from the first two bytes
// without consuming them. A stream too short to carry a header is
// reported as uncompressed and left for the tag reader to reject.
func DetectCompression(br *bufio.Reader) (Compression, error) {
	hdr, err := br.Peek(2)
	if err != nil {
		if len(hdr) < 2 {
			return CompressionNone, nil
		}
		return CompressionNone, fmt.Errorf("nbt: detect compression: %w", err)
	}
	c := CompressionNone
	switch {
	case hdr[0] == 0x1f && hdr[1] == 0x8b:
		c = CompressionGzip
	case hdr[0] == 0x78 && (uint16(hdr[0])<<8|uint16(hdr[1]))%31 == 0:
		c = CompressionZlib
	}
	debug.Logf("detected %s framing (header % x)", c, hdr)
	return c, nil
}

func newCompressionReader(c Compression, r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("nbt: gzip: %w", err)
		}
		return zr, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("nbt: zlib: %w", err)
		}
		return zr, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
}

func newCompressionWriter(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZlib:
		return zlib.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
