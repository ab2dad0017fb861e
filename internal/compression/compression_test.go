package compression

import (
	"bytes"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

func testData() [][]byte {
	rng := rand.New(rand.NewPCG(1, 2))
	random := make([]byte, 5000)
	for i := range random {
		random[i] = byte(rng.IntN(256))
	}
	runs := bytes.Repeat([]byte{7}, 1000)
	mixed := append(append([]byte("abcabc"), bytes.Repeat([]byte{0}, 300)...), []byte("xyzzy")...)
	return [][]byte{{}, {42}, {1, 1}, {1, 2}, random, runs, mixed}
}

func TestParseMethod(t *testing.T) {
	for _, m := range []Method{None, Gzip, RunLength, Compress} {
		got, err := ParseMethod(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	got, err := ParseMethod("GZIP")
	require.NoError(t, err)
	assert.Equal(t, Gzip, got)

	_, err = ParseMethod("lz4")
	assert.ErrorIs(t, err, icserr.ErrUnsupportedFormat)
}

func TestCompressUnsupported(t *testing.T) {
	_, err := New(Compress, DefaultLevel)
	assert.ErrorIs(t, err, icserr.ErrUnsupportedFormat)

	_, err = Decode(Compress, bytes.NewReader([]byte{0x1f, 0x9d}), 10)
	assert.ErrorIs(t, err, icserr.ErrUnsupportedFormat)
}

func TestRoundTrip(t *testing.T) {
	for _, m := range []Method{None, Gzip, RunLength} {
		for _, level := range []int{DefaultLevel, 1, 9} {
			c, err := New(m, level)
			require.NoError(t, err)
			assert.Equal(t, m, c.Method())

			for _, data := range testData() {
				var buf bytes.Buffer
				require.NoError(t, c.Encode(&buf, data))

				got, err := c.Decode(bytes.NewReader(buf.Bytes()), len(data))
				require.NoError(t, err, "method %v, %d bytes", m, len(data))
				assert.Equal(t, data, got, "method %v", m)
			}
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	data := testData()[4]
	for _, m := range []Method{None, Gzip, RunLength} {
		c, err := New(m, DefaultLevel)
		require.NoError(t, err)
		var a, b bytes.Buffer
		require.NoError(t, c.Encode(&a, data))
		require.NoError(t, c.Encode(&b, data))
		assert.Equal(t, a.Bytes(), b.Bytes())
	}
}

func TestRunLengthPackets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunLengthCodec{}.Encode(&buf, []byte{5, 5, 5, 5, 1, 2, 3}))
	assert.Equal(t, []byte{0xfd, 5, 0x02, 1, 2, 3}, buf.Bytes())

	// -128 is skipped
	got, err := RunLengthCodec{}.Decode(bytes.NewReader([]byte{0x80, 0xff, 9}), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9}, got)
}

func TestRunLengthCorrupt(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		size int
	}{
		{"empty input", nil, 4},
		{"truncated literal", []byte{0x03, 1, 2}, 4},
		{"truncated run", []byte{0xfd}, 4},
		{"literal overflows", []byte{0x04, 1, 2, 3, 4, 5}, 4},
		{"run overflows", []byte{0xf0, 1}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RunLengthCodec{}.Decode(bytes.NewReader(tt.in), tt.size)
			assert.ErrorIs(t, err, icserr.ErrCorruptData)
		})
	}
}

func TestUncompressedTruncated(t *testing.T) {
	_, err := Decode(None, bytes.NewReader(make([]byte, 10)), 11)
	require.ErrorIs(t, err, icserr.ErrCorruptData)

	var e *icserr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, int64(10), e.Offset)
}

func TestDecodeHugeDeclaredSize(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 300)
	for _, m := range []Method{None, Gzip, RunLength} {
		t.Run(m.String(), func(t *testing.T) {
			c, err := New(m, DefaultLevel)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, data))

			_, err = Decode(m, bytes.NewReader(buf.Bytes()), math.MaxInt)
			require.ErrorIs(t, err, icserr.ErrCorruptData)

			var e *icserr.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, int64(len(data)), e.Offset)
		})
	}
}

func TestUncompressedIgnoresTrailingBytes(t *testing.T) {
	got, err := Decode(None, bytes.NewReader([]byte{1, 2, 3, 4}), 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got)
}

func TestGzipLengthMismatch(t *testing.T) {
	data := bytes.Repeat([]byte("pixel"), 100)
	var buf bytes.Buffer
	require.NoError(t, (&GzipCodec{level: gzip.BestSpeed}).Encode(&buf, data))

	_, err := Decode(Gzip, bytes.NewReader(buf.Bytes()), len(data)+1)
	assert.ErrorIs(t, err, icserr.ErrCorruptData)

	_, err = Decode(Gzip, bytes.NewReader(buf.Bytes()), len(data)-1)
	assert.ErrorIs(t, err, icserr.ErrCorruptData)

	_, err = Decode(Gzip, bytes.NewReader(buf.Bytes()[:buf.Len()/2]), len(data))
	assert.ErrorIs(t, err, icserr.ErrCorruptData)

	_, err = Decode(Gzip, bytes.NewReader([]byte("not gzip at all")), 3)
	assert.ErrorIs(t, err, icserr.ErrCorruptData)
}

func TestGzipTrailingBytes(t *testing.T) {
	data := []byte("inline data block")
	var buf bytes.Buffer
	require.NoError(t, (&GzipCodec{level: gzip.DefaultCompression}).Encode(&buf, data))
	buf.WriteString("trailing garbage")

	got, err := Decode(Gzip, bytes.NewReader(buf.Bytes()), len(data))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestGzipInvalidLevel(t *testing.T) {
	_, err := NewGzip(42)
	assert.ErrorIs(t, err, icserr.ErrUnsupportedFormat)
}
