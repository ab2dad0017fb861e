// Package icserr defines the error kinds shared by the ICS codec packages.
//
// Every failure raised while parsing, resolving, decoding or encoding an ICS
// file wraps exactly one of the sentinel kinds below, so callers can use
// errors.Is to tell them apart regardless of which layer produced them.
package icserr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds.
var (
	ErrMalformedHeader    = errors.New("malformed header")
	ErrMissingKey         = errors.New("missing key")
	ErrInconsistentLayout = errors.New("inconsistent layout")
	ErrCorruptData        = errors.New("corrupt data")
	ErrShapeMismatch      = errors.New("shape mismatch")
	ErrUnsupportedFormat  = errors.New("unsupported format")
)

// Error carries the context of a codec failure: the operation, the header
// key-path or line, and the byte offset when known.
type Error struct {
	Kind   error  // one of the Err* kinds
	Op     string // "parse", "resolve", "decode", ...
	Key    string // header key-path, if any
	Line   int    // 1-based header line, 0 if unknown
	Offset int64  // byte offset, -1 if unknown
	Msg    string
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " (key %q)", e.Key)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an *Error of the given kind with no position information.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Key returns an *Error bound to a header key-path.
func Key(kind error, op, key, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Key: key, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Line returns an *Error bound to a header line.
func Line(kind error, line int, key, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: "parse", Key: key, Line: line, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Offset returns an *Error bound to a byte offset.
func Offset(kind error, op string, off int64, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind wrapping err.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Offset: -1, Err: err}
}
