package compression

import (
	"bufio"
	"io"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// RunLengthCodec implements byte-oriented run-length coding in the PackBits
// layout. Each packet starts with a header byte h:
//
//	0 <= h <= 127     copy the next h+1 bytes literally
//	-127 <= h <= -1   repeat the next byte 1-h times
//	h == -128         no-op
type RunLengthCodec struct{}

const maxPacket = 128

func (RunLengthCodec) Method() Method { return RunLength }

func (RunLengthCodec) Decode(r io.Reader, size int) ([]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	out := make([]byte, 0, min(size, maxPrealloc))

	for len(out) < size {
		hb, err := br.ReadByte()
		if err != nil {
			return nil, truncated(len(out), size, eofToUnexpected(err))
		}
		h := int8(hb)
		switch {
		case h >= 0:
			n := int(h) + 1
			if len(out)+n > size {
				return nil, overrun(len(out), n, size)
			}
			for i := 0; i < n; i++ {
				b, err := br.ReadByte()
				if err != nil {
					return nil, truncated(len(out), size, eofToUnexpected(err))
				}
				out = append(out, b)
			}
		case h != -128:
			n := 1 - int(h)
			if len(out)+n > size {
				return nil, overrun(len(out), n, size)
			}
			b, err := br.ReadByte()
			if err != nil {
				return nil, truncated(len(out), size, eofToUnexpected(err))
			}
			for i := 0; i < n; i++ {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (RunLengthCodec) Encode(w io.Writer, data []byte) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && run < maxPacket && data[i+run] == data[i] {
			run++
		}
		if run >= 2 {
			bw.WriteByte(byte(int8(1 - run)))
			bw.WriteByte(data[i])
			i += run
			continue
		}

		// literal packet: extend until the next run of at least two bytes
		start := i
		for i < len(data) && i-start < maxPacket {
			if i+1 < len(data) && data[i+1] == data[i] {
				break
			}
			i++
		}
		if i == start {
			i++
		}
		bw.WriteByte(byte(i - start - 1))
		bw.Write(data[start:i])
	}
	return bw.Flush()
}

func eofToUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func overrun(at, n, size int) error {
	return icserr.Offset(icserr.ErrCorruptData, "decompress", int64(at), "run of %d bytes overflows a %d byte block", n, size)
}
