package ics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const redirectHeader = "\t\n" +
	"ics_version\t2.0\n" +
	"filename\tredirect\n" +
	"layout\tparameters\t3\n" +
	"layout\torder\tbits\tx\ty\n" +
	"layout\tsizes\t8\t2\t2\n" +
	"representation\tformat\tinteger\n" +
	"representation\tsign\tunsigned\n" +
	"representation\tcompression\tuncompressed\n" +
	"representation\tbyte_order\t1\n" +
	"source\tfile\tpixels.raw\n" +
	"source\toffset\t2\n" +
	"end\n"

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.ics")
	writeRamp(t, path, WithCompression(RunLength, DefaultLevel))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, ReadMode, f.Mode())
	assert.Equal(t, path, f.Path())

	v, err := f.Version()
	require.NoError(t, err)
	assert.Equal(t, V2, v)

	shape, err := f.Shape()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, shape)

	format, err := f.Format()
	require.NoError(t, err)
	assert.Equal(t, "uint16", format.String())

	// Metadata returns a copy.
	md, err := f.Metadata()
	require.NoError(t, err)
	md.SetString(KeyFormat, "real")
	again, err := f.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "integer", again.GetString(KeyFormat))
}

func TestOpenNotICS(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"text", "hello, world\n"},
		{"empty", ""},
		{"other first key", "\t\nfilename\tx\nend\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "x.ics")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			f, err := Open(path)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, ErrNotICS)
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.ics"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.ics")
	hdr := "\t\nics_version\t2.0\nlayout\tsizes\t8\t4\nrepresentation\tformat\tinteger\nend\n"
	require.NoError(t, os.WriteFile(path, []byte(hdr), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrMissingKey)

	var ierr *Error
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "representation.byte_order", ierr.Key)
}

func TestReadTruncated(t *testing.T) {
	for _, method := range []Compression{Uncompressed, Gzip, RunLength} {
		t.Run(method.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cut.ics")
			writeRamp(t, path, WithCompression(method, DefaultLevel))

			info, err := os.Stat(path)
			require.NoError(t, err)
			require.NoError(t, os.Truncate(path, info.Size()-10))

			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()

			img, err := f.ReadImage()
			assert.Nil(t, img)
			assert.ErrorIs(t, err, ErrCorruptData)
		})
	}
}

func TestReadMissingDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.ics")
	writeRamp(t, path, WithVersion(V1))
	require.NoError(t, os.Remove(filepath.Join(dir, "old.ids")))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.ReadImage()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "redirect.ics")
	require.NoError(t, os.WriteFile(path, []byte(redirectHeader), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pixels.raw"), []byte{9, 9, 1, 2, 3, 4}, 0o644))

	img, md, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, img.Data)
	assert.Equal(t, []int{2, 2}, img.Shape)
	assert.Equal(t, "pixels.raw", md.GetString("source.file"))
}

func TestReadOffsetPastEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "redirect.ics")
	require.NoError(t, os.WriteFile(path, []byte(redirectHeader), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pixels.raw"), []byte{9}, 0o644))

	_, _, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrCorruptData)
}

func TestReadROI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roi.ics")
	values := make([]uint16, 12)
	for i := range values {
		values[i] = uint16(i)
	}
	img, err := NewImageFrom([]int{4, 3}, values)
	require.NoError(t, err)
	require.NoError(t, WriteFile(path, img, nil, WithCompression(Gzip, DefaultLevel)))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	tests := []struct {
		name                   string
		offset, size, sampling []int
		shape                  []int
		want                   []uint16
	}{
		{"whole", nil, nil, nil, []int{4, 3}, values},
		{"window", []int{1, 1}, []int{2, 2}, nil, []int{2, 2}, []uint16{5, 6, 9, 10}},
		{"sampled", []int{1, 0}, []int{2, 3}, []int{1, 2}, []int{2, 2}, []uint16{1, 2, 9, 10}},
		{"to end", []int{2, 2}, nil, nil, []int{2, 1}, []uint16{10, 11}},
		{"strided", nil, nil, []int{3, 3}, []int{2, 1}, []uint16{0, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roi, err := f.ReadROI(tt.offset, tt.size, tt.sampling)
			require.NoError(t, err)
			assert.Equal(t, tt.shape, roi.Shape)
			got, err := ValuesOf[uint16](roi)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = f.ReadROI([]int{3, 0}, []int{2, 1}, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
	_, err = f.ReadROI([]int{0}, nil, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestPaths(t *testing.T) {
	tests := []struct {
		in, ics, ids string
	}{
		{"a.ics", "a.ics", "a.ids"},
		{"a.ids", "a.ics", "a.ids"},
		{"a.ICS", "a.ics", "a.ids"},
		{"dir/a", "dir/a.ics", "dir/a.ids"},
		{"a.tif", "a.tif.ics", "a.tif.ids"},
	}
	for _, tt := range tests {
		ics, ids := Paths(tt.in)
		assert.Equal(t, tt.ics, ics, tt.in)
		assert.Equal(t, tt.ids, ids, tt.in)
	}
}

func TestOpenFileInvalidMode(t *testing.T) {
	_, err := OpenFile("x.ics", Mode(7))
	assert.Error(t, err)
}

func TestReadCompressUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lzw.ics")
	hdr := "\t\nics_version\t2.0\n" +
		"layout\tsizes\t8\t4\n" +
		"representation\tformat\tinteger\n" +
		"representation\tcompression\tcompress\n" +
		"representation\tbyte_order\t1\n" +
		"end\n\x1f\x9d\x90\x01\x02"
	require.NoError(t, os.WriteFile(path, []byte(hdr), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()

	method, err := f.Compression()
	require.NoError(t, err)
	assert.Equal(t, Compress, method)

	_, err = f.ReadImage()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadOversizedLayout(t *testing.T) {
	tests := []struct {
		name  string
		sizes string
		order string
		kind  error
	}{
		{"pixel count overflow", "8\t4294967296\t4294967296", "1", ErrInconsistentLayout},
		{"byte length overflow", "64\t1073741824\t1073741824\t2", "1\t2\t3\t4\t5\t6\t7\t8", ErrInconsistentLayout},
		{"no data for a huge block", "8\t65536\t65536\t65536", "1", ErrCorruptData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "huge.ics")
			hdr := "\t\nics_version\t2.0\n" +
				"layout\tsizes\t" + tt.sizes + "\n" +
				"representation\tformat\tinteger\n" +
				"representation\tcompression\tuncompressed\n" +
				"representation\tbyte_order\t" + tt.order + "\n" +
				"end\n\x01\x02\x03"
			require.NoError(t, os.WriteFile(path, []byte(hdr), 0o644))

			img, _, err := ReadFile(path)
			assert.Nil(t, img)
			assert.ErrorIs(t, err, tt.kind)

			var ierr *Error
			if tt.kind == ErrInconsistentLayout && assert.True(t, errors.As(err, &ierr)) {
				assert.Equal(t, "layout.sizes", ierr.Key)
			}
		})
	}
}

func TestReadShortDataFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.ics")
	hdr := "\t\nics_version\t1.0\n" +
		"layout\tsizes\t8\t65536\t65536\t65536\n" +
		"representation\tformat\tinteger\n" +
		"representation\tbyte_order\t1\n" +
		"end\n"
	require.NoError(t, os.WriteFile(path, []byte(hdr), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.ids"), []byte{1, 2, 3, 4}, 0o644))

	_, _, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrCorruptData)
}

func TestReadCompressedHugeBlock(t *testing.T) {
	for _, method := range []Compression{Gzip, RunLength} {
		t.Run(method.String(), func(t *testing.T) {
			dir := t.TempDir()
			small := filepath.Join(dir, "small.ics")
			writeRamp(t, small, WithCompression(method, DefaultLevel))

			raw, err := os.ReadFile(small)
			require.NoError(t, err)
			i := strings.Index(string(raw), "\nend\n")
			require.Positive(t, i)
			data := raw[i+len("\nend\n"):]

			path := filepath.Join(dir, "huge.ics")
			hdr := "\t\nics_version\t2.0\n" +
				"layout\tsizes\t8\t65536\t65536\t65536\n" +
				"representation\tformat\tinteger\n" +
				"representation\tcompression\t" + method.String() + "\n" +
				"representation\tbyte_order\t1\n" +
				"end\n"
			require.NoError(t, os.WriteFile(path, append([]byte(hdr), data...), 0o644))

			_, _, err = ReadFile(path)
			assert.ErrorIs(t, err, ErrCorruptData)
		})
	}
}
