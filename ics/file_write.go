package ics

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/codec"
	"github.com/robert-malhotra/go-ics/internal/dtype"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/layout"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Create creates an ICS file for writing. The image is written by
// WriteImage; a file closed before that is removed.
func Create(path string, opts ...Option) (*File, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	icsPath, idsPath := Paths(path)

	out, err := os.Create(icsPath)
	if err != nil {
		return nil, err
	}

	return &File{
		path:    icsPath,
		idsPath: idsPath,
		mode:    WriteMode,
		opts:    options,
		out:     out,
	}, nil
}

// WriteImage writes md and img. The image is checked against the
// layout.sizes and representation keys of md, and fully encoded, before
// any byte reaches the disk. md is not modified; a nil md writes the
// default header. A File holds one image.
func (f *File) WriteImage(img *Image, md *Metadata) error {
	if f.closed {
		return ErrClosed
	}
	if f.mode != WriteMode {
		return ErrReadOnly
	}
	if f.written {
		return ErrAlreadyWritten
	}
	if img == nil {
		return icserr.New(icserr.ErrShapeMismatch, "write", "no image")
	}

	o := f.opts
	if o.version == V1 && o.compression != Uncompressed {
		return icserr.New(icserr.ErrUnsupportedFormat, "write",
			"version %s files cannot be compressed (%s requested)", V1, o.compression)
	}

	block, err := codec.NewBlock(img.Data, img.Format, layout.NewDescriptor(img.Shape))
	if err != nil {
		return err
	}

	m := meta.New()
	if md != nil {
		m = md.model().Clone()
	}
	if err := checkImage(m, img); err != nil {
		return err
	}
	base := filepath.Base(f.path)
	m.SetString(meta.KeyFilename, strings.TrimSuffix(base, filepath.Ext(base)))

	desc, err := layout.DescriptorFrom(m, img.Shape)
	if err != nil {
		return err
	}
	block.Desc = desc

	var data bytes.Buffer
	stored, err := codec.EncodeTo(&data, block, codec.EncodeOptions{
		Order:  o.order,
		Method: o.compression,
		Level:  o.level,
	})
	if err != nil {
		return err
	}
	o.logger.Debug("block encoded", "path", f.path, "shape", img.Shape, "format", stored.String(),
		"order", icsbinary.OrderName(stored.Order), "compression", o.compression, "bytes", data.Len())

	layout.Apply(m, o.version, desc, stored, o.compression)
	var hdr bytes.Buffer
	if _, err := header.Write(&hdr, m, o.seps); err != nil {
		return err
	}

	w := icsbinary.NewWriter(f.out)
	if err := w.WriteBytes(hdr.Bytes()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if o.version == V1 {
		err = writeDataFile(f.idsPath, data.Bytes())
	} else {
		err = w.WriteBytes(data.Bytes())
	}
	if err != nil {
		return fmt.Errorf("writing pixels: %w", err)
	}

	f.written = true
	o.logger.Debug("image written", "path", f.path, "version", o.version,
		"headerBytes", hdr.Len(), "dataBytes", data.Len())
	return nil
}

// checkImage compares img with the layout and representation keys already
// present in m.
func checkImage(m *meta.Model, img *Image) error {
	if v := m.GetOr(meta.KeySizes, meta.Value{}); !v.IsZero() {
		sizes, err := v.Ints()
		if err != nil {
			return icserr.Key(icserr.ErrMalformedHeader, "write", meta.KeySizes, "%v", err)
		}
		want := append([]int{img.Format.Bits}, img.Shape...)
		if !slices.Equal(sizes, want) {
			return icserr.Key(icserr.ErrShapeMismatch, "write", meta.KeySizes,
				"header describes %v, image is %v (%d bits)", sizes[min(1, len(sizes)):], img.Shape, img.Format.Bits)
		}
	}

	if v := m.GetOr(meta.KeyFormat, meta.Value{}); !v.IsZero() {
		declared, err := dtype.Parse(v.String(), m.GetOr(meta.KeySign, meta.Value{}).String(),
			img.Format.Bits, img.Format.Order)
		if err != nil {
			return icserr.Key(icserr.ErrInconsistentLayout, "write", meta.KeyFormat, "%v", err)
		}
		if declared.Kind != img.Format.Kind {
			return icserr.Key(icserr.ErrInconsistentLayout, "write", meta.KeyFormat,
				"header describes %s pixels, image is %s", declared, img.Format)
		}
	}
	return nil
}

func writeDataFile(path string, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := icsbinary.NewWriter(out).WriteBytes(data); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

// closeWritable closes the output; a file that holds no image is removed.
func (f *File) closeWritable() error {
	if !f.written {
		cerr := f.out.Close()
		if err := os.Remove(f.path); err != nil && cerr == nil {
			cerr = err
		}
		return cerr
	}
	if err := f.out.Sync(); err != nil {
		f.out.Close()
		return err
	}
	return f.out.Close()
}

// WriteFile writes img and md to path.
func WriteFile(path string, img *Image, md *Metadata, opts ...Option) error {
	f, err := Create(path, opts...)
	if err != nil {
		return err
	}
	if err := f.WriteImage(img, md); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
