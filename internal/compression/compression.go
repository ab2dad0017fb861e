// Package compression implements the codecs of the ICS
// representation.compression key.
//
// Decoding always materialises the whole uncompressed block and checks its
// length against the size the layout demands.
package compression

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// Method is a compression method.
type Method uint8

const (
	None Method = iota
	Gzip
	RunLength
	// Compress is Unix compress (LZW). It is recognised in headers but
	// cannot be decoded.
	Compress
)

// String returns the header token of the method.
func (m Method) String() string {
	switch m {
	case None:
		return "uncompressed"
	case Gzip:
		return "gzip"
	case RunLength:
		return "runlength"
	case Compress:
		return "compress"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// ParseMethod converts a representation.compression token to a method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "uncompressed", "none":
		return None, nil
	case "gzip":
		return Gzip, nil
	case "runlength", "rle":
		return RunLength, nil
	case "compress":
		return Compress, nil
	default:
		return None, icserr.Key(icserr.ErrUnsupportedFormat, "compression", "representation.compression", "unknown method %q", s)
	}
}

// Codec is implemented by every supported compression method.
type Codec interface {
	// Method returns the method implemented.
	Method() Method

	// Decode reads one compressed block from r and returns exactly size
	// uncompressed bytes.
	Decode(r io.Reader, size int) ([]byte, error)

	// Encode compresses data to w.
	Encode(w io.Writer, data []byte) error
}

// DefaultLevel selects each codec's default compression level.
const DefaultLevel = -1

// Registry maps methods to codec constructors.
var Registry = map[Method]func(level int) (Codec, error){
	None:      func(int) (Codec, error) { return Uncompressed{}, nil },
	Gzip:      func(level int) (Codec, error) { return NewGzip(level) },
	RunLength: func(int) (Codec, error) { return RunLengthCodec{}, nil },
}

// New returns the codec for m at the given level.
func New(m Method, level int) (Codec, error) {
	constructor, ok := Registry[m]
	if !ok {
		if m == Compress {
			return nil, icserr.New(icserr.ErrUnsupportedFormat, "compression", "compress (LZW) data is not supported")
		}
		return nil, icserr.New(icserr.ErrUnsupportedFormat, "compression", "unsupported method %v", m)
	}
	return constructor(level)
}

// Decode decompresses exactly size bytes of m-compressed data from r.
func Decode(m Method, r io.Reader, size int) ([]byte, error) {
	c, err := New(m, DefaultLevel)
	if err != nil {
		return nil, err
	}
	return c.Decode(r, size)
}

// Uncompressed stores data verbatim.
type Uncompressed struct{}

func (Uncompressed) Method() Method { return None }

func (Uncompressed) Decode(r io.Reader, size int) ([]byte, error) {
	return readFull(r, size)
}

func (Uncompressed) Encode(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}

// maxPrealloc caps the buffer reserved from a declared block size before
// any data has been read.
const maxPrealloc = 64 << 20

// readFull reads exactly size bytes from r. The buffer grows with the data
// actually read.
func readFull(r io.Reader, size int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(min(size, maxPrealloc))
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		return nil, truncated(int(n), size, err)
	}
	return buf.Bytes(), nil
}

// truncated reports a block that ended after n of size bytes.
func truncated(n, size int, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return icserr.Offset(icserr.ErrCorruptData, "decompress", int64(n), "data truncated: got %d of %d bytes", n, size)
	}
	return &icserr.Error{Kind: icserr.ErrCorruptData, Op: "decompress", Offset: int64(n), Err: err}
}
