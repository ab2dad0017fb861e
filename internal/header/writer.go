package header

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Write serializes m as an ICS header terminated by the "end" line and
// returns the number of bytes written. ics_version and filename come first,
// then every other key in model order, then the history lines.
func Write(w io.Writer, m *meta.Model, seps Separators) (int64, error) {
	if !seps.valid() {
		return 0, icserr.New(icserr.ErrMalformedHeader, "write", "invalid separators %q", []byte{seps.Field, seps.Line})
	}
	if !m.Has(meta.KeyVersion) {
		return 0, icserr.Key(icserr.ErrMissingKey, "write", meta.KeyVersion, "key not set")
	}

	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	lw := &lineWriter{bw: bw, seps: seps}

	bw.WriteByte(seps.Field)
	bw.WriteByte(seps.Line)

	keys := []string{meta.KeyVersion}
	if m.Has(meta.KeyFilename) {
		keys = append(keys, meta.KeyFilename)
	}
	for _, k := range m.Keys() {
		if k != meta.KeyVersion && k != meta.KeyFilename {
			keys = append(keys, k)
		}
	}

	for _, k := range keys {
		v := m.GetOr(k, meta.Value{})
		if v.IsZero() {
			return 0, icserr.Key(icserr.ErrMalformedHeader, "write", k, "key has no value")
		}
		if err := lw.line(false, append(keyTokens(k), v.Fields()...)...); err != nil {
			return 0, icserr.Key(icserr.ErrMalformedHeader, "write", k, "%v", err)
		}
	}

	for _, h := range m.History() {
		if h.Key == "" || h.Value == "" {
			return 0, icserr.Key(icserr.ErrMalformedHeader, "write", "history", "empty history entry")
		}
		if err := lw.line(true, "history", h.Key, h.Value); err != nil {
			return 0, icserr.Key(icserr.ErrMalformedHeader, "write", "history", "%v", err)
		}
	}
	if err := lw.line(false, "end"); err != nil {
		return 0, err
	}

	if err := bw.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// keyTokens returns the tokens a key-path is written as. Keys the category
// grammar would split the same way are written as separate fields; any
// other multi-part key keeps its dotted form.
func keyTokens(key string) []string {
	parts := meta.Split(key)
	if len(parts) == 1 {
		return parts
	}
	probe := append(slices.Clone(parts), "v")
	got, _ := KeyPath(probe)
	if len(got) == len(parts) && strings.EqualFold(meta.Join(got...), key) {
		return parts
	}
	return []string{key}
}

type lineWriter struct {
	bw   *bufio.Writer
	seps Separators
}

// line writes tokens separated by the field separator. With verbatimLast
// the last token may itself contain field separators, as history text does.
func (l *lineWriter) line(verbatimLast bool, tokens ...string) error {
	for i, t := range tokens {
		last := i == len(tokens)-1
		if strings.IndexByte(t, l.seps.Line) >= 0 || strings.ContainsRune(t, '\r') {
			return errInvalidToken(t)
		}
		if !(verbatimLast && last) && (strings.IndexByte(t, l.seps.Field) >= 0 || strings.TrimSpace(t) != t || t == "") {
			return errInvalidToken(t)
		}
		if i > 0 {
			l.bw.WriteByte(l.seps.Field)
		}
		l.bw.WriteString(t)
	}
	return l.bw.WriteByte(l.seps.Line)
}

type errInvalidToken string

func (e errInvalidToken) Error() string {
	return fmt.Sprintf("token %q contains a separator or surrounding space", string(e))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
