package compression

import (
	"bufio"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// GzipCodec implements gzip compression as libics writes it: a single
// gzip member holding the whole pixel block.
type GzipCodec struct {
	level int
}

// NewGzip creates a gzip codec. Level follows compress/flate; DefaultLevel
// selects the library default.
func NewGzip(level int) (*GzipCodec, error) {
	if level == DefaultLevel {
		level = gzip.DefaultCompression
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, icserr.New(icserr.ErrUnsupportedFormat, "compression", "invalid gzip level %d", level)
	}
	return &GzipCodec{level: level}, nil
}

func (c *GzipCodec) Method() Method { return Gzip }

// Level returns the compression level.
func (c *GzipCodec) Level() int { return c.level }

func (c *GzipCodec) Decode(r io.Reader, size int) ([]byte, error) {
	zr, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return nil, &icserr.Error{Kind: icserr.ErrCorruptData, Op: "decompress", Offset: 0, Msg: "gzip header", Err: err}
	}
	defer zr.Close()
	// Inline data may be followed by unrelated bytes.
	zr.Multistream(false)

	buf, err := readFull(zr, size)
	if err != nil {
		return nil, err
	}

	// Reading to EOF verifies the trailer checksum.
	var extra [1]byte
	m, err := zr.Read(extra[:])
	if m > 0 {
		return nil, icserr.Offset(icserr.ErrCorruptData, "decompress", int64(size), "more data than the layout describes")
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, &icserr.Error{Kind: icserr.ErrCorruptData, Op: "decompress", Offset: int64(size), Err: err}
	}
	if err == nil {
		// a zero-byte read without EOF; drain to confirm the stream ends here
		if n, err := io.Copy(io.Discard, zr); n > 0 || err != nil {
			return nil, icserr.Offset(icserr.ErrCorruptData, "decompress", int64(size), "more data than the layout describes")
		}
	}
	return buf, nil
}

func (c *GzipCodec) Encode(w io.Writer, data []byte) error {
	zw, err := gzip.NewWriterLevel(w, c.level)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
