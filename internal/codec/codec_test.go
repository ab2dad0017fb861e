package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/compression"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

func uint16Block(t *testing.T, order binary.ByteOrder) *Block {
	t.Helper()
	desc := layout.NewDescriptor([]int{2, 3, 4})
	f := dtype.Format{Kind: dtype.Unsigned, Bits: 16, Order: order}
	vals := make([]uint16, 24)
	for i := range vals {
		vals[i] = uint16(i*1000 + 7)
	}
	data, err := dtype.Encode(f, vals)
	require.NoError(t, err)
	b, err := NewBlock(data, f, desc)
	require.NoError(t, err)
	return b
}

func TestRoundTripAllMethods(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		b := uint16Block(t, icsbinary.NativeOrder())
		for _, m := range []compression.Method{compression.None, compression.Gzip, compression.RunLength} {
			raw, err := Encode(b, EncodeOptions{Order: order, Method: m, Level: compression.DefaultLevel})
			require.NoError(t, err)

			stored := b.Format.WithOrder(order)
			got, err := Decode(raw, b.Desc, stored, m, nil)
			require.NoError(t, err, "method %v", m)
			assert.Equal(t, b.Data, got.Data, "method %v order %s", m, icsbinary.OrderName(order))
			assert.True(t, got.Format.Equal(b.Format))
		}
	}
}

func TestEncodeIdempotent(t *testing.T) {
	b := uint16Block(t, binary.LittleEndian)
	before := bytes.Clone(b.Data)
	opts := EncodeOptions{Order: binary.BigEndian, Method: compression.Gzip, Level: 6}

	a, err := Encode(b, opts)
	require.NoError(t, err)
	c, err := Encode(b, opts)
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.Equal(t, before, b.Data, "encode must not modify the block")
}

func TestDecodeSwapsToRequestedOrder(t *testing.T) {
	desc := layout.NewDescriptor([]int{2})
	f := dtype.Format{Kind: dtype.Unsigned, Bits: 16, Order: binary.BigEndian}
	raw := []byte{0x01, 0x02, 0x03, 0x04}

	got, err := Decode(raw, desc, f, compression.None, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, got.Data)
	assert.Equal(t, binary.LittleEndian, got.Format.Order)

	got, err = Decode(raw, desc, f, compression.None, binary.BigEndian)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Data)
}

func TestDecodeComplexSwapsComponents(t *testing.T) {
	desc := layout.NewDescriptor([]int{1})
	f := dtype.Format{Kind: dtype.Complex, Bits: 64, Order: binary.BigEndian}
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	got, err := Decode(raw, desc, f, compression.None, binary.LittleEndian)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 3, 2, 1, 8, 7, 6, 5}, got.Data)
}

func TestDecodeTruncated(t *testing.T) {
	b := uint16Block(t, binary.LittleEndian)
	for _, m := range []compression.Method{compression.None, compression.Gzip, compression.RunLength} {
		raw, err := Encode(b, EncodeOptions{Method: m, Level: compression.DefaultLevel})
		require.NoError(t, err)

		got, err := Decode(raw[:len(raw)-5], b.Desc, b.Format, m, nil)
		assert.ErrorIs(t, err, icserr.ErrCorruptData, "method %v", m)
		assert.Nil(t, got)
	}
}

func TestDecodeCompressUnsupported(t *testing.T) {
	b := uint16Block(t, binary.LittleEndian)
	_, err := Decode([]byte{0x1f, 0x9d, 0x90}, b.Desc, b.Format, compression.Compress, nil)
	assert.ErrorIs(t, err, icserr.ErrUnsupportedFormat)
}

func TestNewBlockShapeMismatch(t *testing.T) {
	f := dtype.Format{Kind: dtype.Unsigned, Bits: 16, Order: binary.LittleEndian}
	_, err := NewBlock(make([]byte, 12), f, layout.NewDescriptor([]int{2, 3, 4}))
	assert.ErrorIs(t, err, icserr.ErrShapeMismatch)

	_, err = Encode(&Block{Data: make([]byte, 3), Format: f, Desc: layout.NewDescriptor([]int{2})}, EncodeOptions{})
	assert.ErrorIs(t, err, icserr.ErrShapeMismatch)
}
