package ics

import (
	"encoding/binary"
	"io"
	"log/slog"

	icsbinary "github.com/robert-malhotra/go-ics/internal/binary"
	"github.com/robert-malhotra/go-ics/internal/compression"
	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/layout"
)

// Version is the ICS container version.
type Version = layout.Version

const (
	// V1 writes a header-only .ics file and the pixels to a sibling .ids.
	V1 = layout.V1
	// V2 writes header and pixels to a single .ics file.
	V2 = layout.V2
)

// Compression is a pixel block compression method.
type Compression = compression.Method

const (
	Uncompressed = compression.None
	Gzip         = compression.Gzip
	RunLength    = compression.RunLength
	// Compress (Unix LZW) is recognised in headers but cannot be read or
	// written.
	Compress = compression.Compress
)

// DefaultLevel selects the codec's default compression level.
const DefaultLevel = compression.DefaultLevel

// ParseCompression converts a representation.compression token.
func ParseCompression(s string) (Compression, error) {
	return compression.ParseMethod(s)
}

// ParseVersion converts an ics_version value.
func ParseVersion(s string) (Version, error) {
	return layout.ParseVersion(s)
}

// Separators are the header field and line separators.
type Separators = header.Separators

// Option configures how a file is opened or written.
type Option func(*options)

type options struct {
	version     Version
	compression Compression
	level       int
	order       binary.ByteOrder
	readOrder   binary.ByteOrder
	seps        Separators
	logger      *slog.Logger
}

func defaultOptions() *options {
	return &options{
		version:     V2,
		compression: Uncompressed,
		level:       DefaultLevel,
		order:       icsbinary.NativeOrder(),
		readOrder:   icsbinary.NativeOrder(),
		seps:        header.DefaultSeparators,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithVersion sets the container version written (default V2).
func WithVersion(v Version) Option {
	return func(o *options) {
		if v == V1 || v == V2 {
			o.version = v
		}
	}
}

// WithCompression sets the compression method and level written
// (default uncompressed). Use DefaultLevel for the codec default.
func WithCompression(method Compression, level int) Option {
	return func(o *options) {
		o.compression = method
		o.level = level
	}
}

// WithByteOrder sets the byte order pixels are stored in (default host
// order).
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.order = order
		}
	}
}

// WithReadOrder sets the byte order of images returned by reads (default
// host order).
func WithReadOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order != nil {
			o.readOrder = order
		}
	}
}

// WithSeparators sets the header separators written (default TAB and LF).
func WithSeparators(seps Separators) Option {
	return func(o *options) {
		o.seps = seps
	}
}

// WithLogger sets an optional logger for debug output. If not provided,
// no logging output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
