package ics

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/exp/mmap"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/codec"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Mode selects whether a file is read or written.
type Mode int

const (
	ReadMode Mode = iota
	WriteMode
)

func (m Mode) String() string {
	if m == WriteMode {
		return "write"
	}
	return "read"
}

// File represents an open ICS file. A File is used by one goroutine at a
// time.
type File struct {
	path    string // .ics path
	idsPath string // sibling .ids path
	mode    Mode
	opts    *options
	closed  bool

	// read state
	mapped   *mmap.ReaderAt
	md       *meta.Model
	resolved *layout.Resolved

	// write state
	out     *os.File
	written bool
}

// Paths returns the .ics header path and the sibling .ids data path for
// a file name given with an .ics, .ids or no extension.
func Paths(path string) (icsPath, idsPath string) {
	base := path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics", ".ids":
		base = path[:len(path)-4]
	}
	return base + ".ics", base + ".ids"
}

// OpenFile opens path for reading or writing.
func OpenFile(path string, mode Mode, opts ...Option) (*File, error) {
	switch mode {
	case ReadMode:
		return Open(path, opts...)
	case WriteMode:
		return Create(path, opts...)
	default:
		return nil, fmt.Errorf("invalid mode %d", mode)
	}
}

// Open opens an ICS file for reading. The header is parsed and the layout
// resolved before Open returns.
func Open(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	icsPath, idsPath := Paths(path)

	m, err := mmap.Open(icsPath)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	res, err := header.Parse(io.NewSectionReader(m, 0, int64(m.Len())))
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("reading header of %s: %w", icsPath, err)
	}
	options.logger.Debug("header parsed", "path", icsPath, "keys", res.Model.Len(),
		"history", len(res.Model.History()), "dataOffset", res.DataOffset)

	resolved, err := layout.Resolve(res.Model, res.DataOffset)
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("resolving layout of %s: %w", icsPath, err)
	}
	for _, k := range resolved.Ignored {
		options.logger.Warn("ignoring key", "path", icsPath, "key", k, "version", resolved.Version)
	}
	options.logger.Debug("layout resolved", "path", icsPath, "version", resolved.Version,
		"shape", resolved.Desc.Shape(), "format", resolved.Format.String(),
		"order", icsbinary.OrderName(resolved.Format.Order), "compression", resolved.Compression)

	return &File{
		path:     icsPath,
		idsPath:  idsPath,
		mode:     ReadMode,
		opts:     options,
		mapped:   m,
		md:       res.Model,
		resolved: resolved,
	}, nil
}

// Close releases the file's resources. Closing a writer that never wrote
// an image removes the files it created. Close is idempotent.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.mode == WriteMode {
		return f.closeWritable()
	}
	return f.mapped.Close()
}

// Path returns the .ics path.
func (f *File) Path() string {
	return f.path
}

// Mode returns the mode the file was opened in.
func (f *File) Mode() Mode {
	return f.mode
}

func (f *File) checkRead() error {
	if f.closed {
		return ErrClosed
	}
	if f.mode != ReadMode {
		return ErrWriteOnly
	}
	return nil
}

// Metadata returns a copy of the header.
func (f *File) Metadata() (*Metadata, error) {
	if err := f.checkRead(); err != nil {
		return nil, err
	}
	return &Metadata{m: f.md.Clone()}, nil
}

// Version returns the container version.
func (f *File) Version() (Version, error) {
	if err := f.checkRead(); err != nil {
		return 0, err
	}
	return f.resolved.Version, nil
}

// Shape returns the image axis sizes, first axis fastest.
func (f *File) Shape() ([]int, error) {
	if err := f.checkRead(); err != nil {
		return nil, err
	}
	return f.resolved.Desc.Shape(), nil
}

// Format returns the stored pixel format.
func (f *File) Format() (PixelFormat, error) {
	if err := f.checkRead(); err != nil {
		return PixelFormat{}, err
	}
	return f.resolved.Format, nil
}

// Compression returns the compression method of the pixel block.
func (f *File) Compression() (Compression, error) {
	if err := f.checkRead(); err != nil {
		return 0, err
	}
	return f.resolved.Compression, nil
}

// SignificantBits returns the number of meaningful bits per pixel.
func (f *File) SignificantBits() (int, error) {
	if err := f.checkRead(); err != nil {
		return 0, err
	}
	return f.resolved.SignificantBits, nil
}

// DataLength returns the uncompressed pixel block length in bytes.
func (f *File) DataLength() (int64, error) {
	if err := f.checkRead(); err != nil {
		return 0, err
	}
	return f.resolved.DataLength, nil
}

// ReadImage reads the whole image in the byte order set by WithReadOrder.
func (f *File) ReadImage() (*Image, error) {
	return f.ReadImageOrder(f.opts.readOrder)
}

// ReadImageOrder reads the whole image and returns it in order.
func (f *File) ReadImageOrder(order binary.ByteOrder) (*Image, error) {
	if err := f.checkRead(); err != nil {
		return nil, err
	}
	block, err := f.readBlock(order)
	if err != nil {
		return nil, err
	}
	return &Image{Shape: block.Desc.Shape(), Format: block.Format, Data: block.Data}, nil
}

// ReadROI reads the strided region starting at offset, spanning size
// pixels and keeping every sampling-th pixel along each axis. Nil size
// extends to the end of each axis; nil sampling keeps every pixel.
func (f *File) ReadROI(offset, size, sampling []int) (*Image, error) {
	if err := f.checkRead(); err != nil {
		return nil, err
	}
	block, err := f.readBlock(f.opts.readOrder)
	if err != nil {
		return nil, err
	}
	data, desc, err := layout.ExtractROI(block.Data, block.Desc, block.Format.ElementSize(),
		layout.ROI{Offset: offset, Size: size, Sampling: sampling})
	if err != nil {
		return nil, err
	}
	return &Image{Shape: desc.Shape(), Format: block.Format, Data: data}, nil
}

// readBlock locates the stored block, which may live in another file, and
// decodes it.
func (f *File) readBlock(order binary.ByteOrder) (*codec.Block, error) {
	r := f.resolved
	src := f.mapped
	srcPath := f.path

	switch {
	case r.Version == layout.V1:
		srcPath = f.idsPath
	case r.DataFile != "":
		srcPath = r.DataFile
		if !filepath.IsAbs(srcPath) {
			srcPath = filepath.Join(filepath.Dir(f.path), srcPath)
		}
	}
	if srcPath != f.path {
		m, err := mmap.Open(srcPath)
		if err != nil {
			return nil, fmt.Errorf("opening data file: %w", err)
		}
		defer m.Close()
		src = m
	}

	br := icsbinary.NewReader(src, int64(src.Len()))
	if r.DataOffset > br.Size() {
		return nil, icserr.Offset(icserr.ErrCorruptData, "decode", r.DataOffset,
			"data offset beyond the end of %s (%d bytes)", filepath.Base(srcPath), br.Size())
	}
	data := br.At(r.DataOffset)
	if r.Compression == Uncompressed && r.DataLength > data.Remaining() {
		return nil, icserr.Offset(icserr.ErrCorruptData, "decode", r.DataOffset,
			"truncated data block: %d of %d bytes in %s", data.Remaining(), r.DataLength, filepath.Base(srcPath))
	}

	block, err := codec.DecodeReader(data.Section(), r.Desc, r.Format, r.Compression, order)
	if err != nil {
		return nil, fmt.Errorf("reading pixels of %s: %w", f.path, err)
	}
	f.opts.logger.Debug("block decoded", "path", srcPath, "offset", r.DataOffset,
		"bytes", len(block.Data), "compression", r.Compression)
	return block, nil
}

// ReadFile reads the image and metadata of the ICS file at path.
func ReadFile(path string, opts ...Option) (*Image, *Metadata, error) {
	f, err := Open(path, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	img, err := f.ReadImage()
	if err != nil {
		return nil, nil, err
	}
	md, err := f.Metadata()
	if err != nil {
		return nil, nil, err
	}
	return img, md, nil
}
