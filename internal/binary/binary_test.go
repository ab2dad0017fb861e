package binary

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// bytesWriterAt implements io.WriterAt for testing
type bytesWriterAt struct {
	buf []byte
}

func (b *bytesWriterAt) WriteAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, io.ErrUnexpectedEOF
	}
	if int(off)+len(p) > len(b.buf) {
		newBuf := make([]byte, int(off)+len(p))
		copy(newBuf, b.buf)
		b.buf = newBuf
	}
	copy(b.buf[off:], p)
	return len(p), nil
}

func TestReaderRemaining(t *testing.T) {
	data := bytesReaderAt("header\ndata")
	r := NewReader(data, int64(len(data)))

	if r.Remaining() != 11 || r.Size() != 11 {
		t.Errorf("expected 11 remaining of 11, got %d of %d", r.Remaining(), r.Size())
	}
	r2 := r.At(7)
	if r2.Remaining() != 4 {
		t.Errorf("expected 4 remaining, got %d", r2.Remaining())
	}
	if r.Remaining() != 11 {
		t.Errorf("original reader moved, %d remaining", r.Remaining())
	}
	if past := r.At(20); past.Remaining() != 0 {
		t.Errorf("expected 0 remaining past the end, got %d", past.Remaining())
	}
}

func TestReaderSection(t *testing.T) {
	data := bytesReaderAt("abcdef")
	r := NewReader(data, 6).At(2)

	got, err := io.ReadAll(r.Section())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "cdef" {
		t.Errorf("expected %q, got %q", "cdef", got)
	}
}

func TestReaderSectionPastEnd(t *testing.T) {
	data := bytesReaderAt("abc")
	got, err := io.ReadAll(NewReader(data, 3).At(5).Section())
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no bytes, got %q", got)
	}
}

func TestWriterSequential(t *testing.T) {
	buf := &bytesWriterAt{}
	w := NewWriter(buf)
	if err := w.WriteBytes([]byte("head\n")); err != nil {
		t.Fatalf("WriteBytes failed: %v", err)
	}
	if err := w.WriteBytes(nil); err != nil {
		t.Fatalf("WriteBytes(nil) failed: %v", err)
	}
	if _, err := w.Write([]byte{1, 2}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	want := []byte{'h', 'e', 'a', 'd', '\n', 1, 2}
	if !bytes.Equal(buf.buf, want) {
		t.Errorf("expected %v, got %v", want, buf.buf)
	}
}

func TestSwap(t *testing.T) {
	tests := []struct {
		name string
		size int
		in   []byte
		want []byte
	}{
		{"bytes", 1, []byte{1, 2, 3}, []byte{1, 2, 3}},
		{"uint16", 2, []byte{1, 2, 3, 4}, []byte{2, 1, 4, 3}},
		{"uint32", 4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{4, 3, 2, 1, 8, 7, 6, 5}},
		{"uint64", 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{"odd size", 3, []byte{1, 2, 3, 4, 5, 6}, []byte{3, 2, 1, 6, 5, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte(nil), tt.in...)
			Swap(data, tt.size)
			if !bytes.Equal(data, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, data)
			}
			Swap(data, tt.size)
			if !bytes.Equal(data, tt.in) {
				t.Errorf("double swap should be identity, got %v", data)
			}
		})
	}
}

func TestOrderList(t *testing.T) {
	little := OrderList(binary.LittleEndian, 4)
	if want := []int{1, 2, 3, 4}; !equalInts(little, want) {
		t.Errorf("little-endian: expected %v, got %v", want, little)
	}
	big := OrderList(binary.BigEndian, 4)
	if want := []int{4, 3, 2, 1}; !equalInts(big, want) {
		t.Errorf("big-endian: expected %v, got %v", want, big)
	}

	for _, list := range [][]int{little, big, {1}} {
		order, err := ParseOrderList(list)
		if err != nil {
			t.Fatalf("ParseOrderList(%v) failed: %v", list, err)
		}
		if got := OrderList(order, len(list)); !equalInts(got, list) {
			t.Errorf("round trip of %v gave %v", list, got)
		}
	}
}

func TestParseOrderListRejectsMixed(t *testing.T) {
	for _, list := range [][]int{nil, {2, 1, 4, 3}, {1, 1}} {
		if _, err := ParseOrderList(list); err == nil {
			t.Errorf("expected error for %v", list)
		}
	}
}

func TestNativeOrder(t *testing.T) {
	if !SameOrder(NativeOrder(), binary.NativeEndian) {
		t.Errorf("NativeOrder disagrees with binary.NativeEndian")
	}
	if SameOrder(binary.LittleEndian, binary.BigEndian) {
		t.Errorf("little and big endian reported as the same order")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
