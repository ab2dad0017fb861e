// Package ics reads and writes ICS (Image Cytometry Standard) files.
package ics

import (
	"errors"

	"github.com/robert-malhotra/go-ics/internal/header"
	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// Error kinds. Every codec failure wraps exactly one of them; test with
// errors.Is.
var (
	ErrMalformedHeader    = icserr.ErrMalformedHeader
	ErrMissingKey         = icserr.ErrMissingKey
	ErrInconsistentLayout = icserr.ErrInconsistentLayout
	ErrCorruptData        = icserr.ErrCorruptData
	ErrShapeMismatch      = icserr.ErrShapeMismatch
	ErrUnsupportedFormat  = icserr.ErrUnsupportedFormat
)

// Common errors
var (
	ErrNotICS         = header.ErrNotICS
	ErrClosed         = errors.New("file is closed")
	ErrReadOnly       = errors.New("file is open for reading")
	ErrWriteOnly      = errors.New("file is open for writing")
	ErrAlreadyWritten = errors.New("image already written")
)

// Error carries the operation, header key-path or line and byte offset of
// a codec failure. Use errors.As to inspect it.
type Error = icserr.Error
