// Package header reads and writes the text header of ICS files.
package header

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/icserr"
	"github.com/robert-malhotra/go-ics/internal/meta"
)

const (
	// MaxKeyDepth bounds the number of parts of a key-path.
	MaxKeyDepth = 4

	// MaxHeaderSize bounds the header region, separator line to "end".
	MaxHeaderSize = 1 << 20

	commentMarker = '#'
)

// ErrNotICS is wrapped by the error returned when the input does not start
// like an ICS header.
var ErrNotICS = errors.New("not an ICS file")

// Separators are the field and line separator characters declared on the
// first line of every ICS header.
type Separators struct {
	Field byte
	Line  byte
}

// DefaultSeparators are the separators written by default: TAB and LF.
var DefaultSeparators = Separators{Field: '\t', Line: '\n'}

func (s Separators) valid() bool {
	return !isKeyChar(s.Field) && !isKeyChar(s.Line) && s.Field != s.Line
}

func isKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '.'
}

// Record is one parsed header line.
type Record struct {
	Key   string     // canonical dotted key-path; "history" for history lines
	Value meta.Value // tokens after the key-path
	Line  int        // 1-based line number
}

// IsHistory reports whether the record is a history line.
func (r Record) IsHistory() bool {
	return r.Key == "history"
}

// HistoryEntry returns the history key and text of a history line.
func (r Record) HistoryEntry() meta.HistoryEntry {
	return meta.HistoryEntry{Key: r.Value.Field(0), Value: r.Value.Field(1)}
}

// Scanner splits an ICS header into records. It reads lazily from the
// underlying reader, makes a single pass and cannot be restarted. Scanning
// stops at the "end" line; bytes after it are never read.
type Scanner struct {
	br       *bufio.Reader
	seps     Separators
	started  bool
	done     bool
	err      error
	rec      Record
	line     int
	consumed int64
	sawFirst bool
}

// NewScanner returns a scanner reading the header from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{br: bufio.NewReader(io.LimitReader(r, MaxHeaderSize+1))}
}

// Next advances to the next record. It returns false at the "end" line or
// on error; Err distinguishes the two.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if !s.started {
		s.started = true
		if err := s.readSeparators(); err != nil {
			s.err = err
			return false
		}
	}

	for {
		raw, err := s.readLine()
		if err != nil {
			s.err = err
			return false
		}
		line := strings.TrimSpace(raw)
		if line == "" || line[0] == commentMarker {
			continue
		}

		rec, err := s.parseLine(line)
		if err != nil {
			s.err = err
			return false
		}
		if !s.sawFirst {
			s.sawFirst = true
			if rec.Key != meta.KeyVersion {
				s.err = &icserr.Error{Kind: icserr.ErrMalformedHeader, Op: "parse", Line: s.line, Offset: -1,
					Msg: "first key must be ics_version", Err: ErrNotICS}
				return false
			}
		}
		if rec.Key == "end" {
			s.done = true
			return false
		}
		s.rec = rec
		return true
	}
}

// Record returns the record produced by the last call to Next.
func (s *Scanner) Record() Record {
	return s.rec
}

// Err returns the first error encountered, or nil after a clean "end".
func (s *Scanner) Err() error {
	return s.err
}

// Done reports whether the "end" line was reached.
func (s *Scanner) Done() bool {
	return s.done
}

// Separators returns the separators declared by the header.
func (s *Scanner) Separators() Separators {
	return s.seps
}

// DataOffset returns the number of header bytes consumed, including the
// "end" line. It is the offset of an inline data block once Done is true.
func (s *Scanner) DataOffset() int64 {
	return s.consumed
}

// All returns the remaining records as an iterator. A non-nil error is
// yielded once, as the last element.
func (s *Scanner) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for s.Next() {
			if !yield(s.Record(), nil) {
				return
			}
		}
		if s.err != nil {
			yield(Record{}, s.err)
		}
	}
}

func (s *Scanner) readSeparators() error {
	var buf [2]byte
	if _, err := io.ReadFull(s.br, buf[:]); err != nil {
		return &icserr.Error{Kind: icserr.ErrMalformedHeader, Op: "parse", Line: 1, Offset: -1,
			Msg: "missing separator line", Err: ErrNotICS}
	}
	s.consumed = 2
	s.line = 1
	s.seps = Separators{Field: buf[0], Line: buf[1]}
	if !s.seps.valid() {
		return &icserr.Error{Kind: icserr.ErrMalformedHeader, Op: "parse", Line: 1, Offset: -1,
			Msg: "invalid separator line", Err: ErrNotICS}
	}
	// A CR line separator followed by LF means CRLF line ends.
	if s.seps.Line == '\r' {
		if b, err := s.br.Peek(1); err == nil && b[0] == '\n' {
			s.br.ReadByte()
			s.consumed++
			s.seps.Line = '\n'
		}
	}
	return nil
}

func (s *Scanner) readLine() (string, error) {
	raw, err := s.br.ReadString(s.seps.Line)
	s.consumed += int64(len(raw))
	if s.consumed > MaxHeaderSize {
		return "", icserr.Line(icserr.ErrMalformedHeader, s.line+1, "", "header exceeds %d bytes", MaxHeaderSize)
	}
	if err != nil {
		if err == io.EOF && raw != "" {
			// last line without separator; only acceptable if it is "end"
			s.line++
			if strings.TrimSpace(raw) == "end" {
				return raw, nil
			}
		}
		return "", icserr.Line(icserr.ErrMalformedHeader, s.line+1, "", "unexpected end of header before \"end\"")
	}
	s.line++
	return strings.TrimSuffix(raw[:len(raw)-1], "\r"), nil
}

// parseLine splits a trimmed, non-empty line into key-path and value.
func (s *Scanner) parseLine(line string) (Record, error) {
	if strings.HasPrefix(strings.ToLower(line), "history") {
		if rec, ok, err := s.parseHistory(line); ok || err != nil {
			return rec, err
		}
	}

	tokens := splitTokens(line, s.seps.Field)
	parts, rest := KeyPath(tokens)
	key := meta.Join(parts...)
	if err := checkPath(parts); err != nil {
		return Record{}, icserr.Line(icserr.ErrMalformedHeader, s.line, key, "%v", err)
	}
	if len(parts) == 2 && strings.EqualFold(parts[0], "history") && len(rest) > 0 {
		return Record{Key: "history", Value: meta.Fields(parts[1], strings.Join(rest, " ")), Line: s.line}, nil
	}
	key = meta.Canonical(key)
	if len(rest) == 0 && key != "end" {
		return Record{}, icserr.Line(icserr.ErrMalformedHeader, s.line, key, "key has no value")
	}
	return Record{Key: key, Value: meta.Fields(rest...), Line: s.line}, nil
}

// parseHistory keeps the text after the history key verbatim.
func (s *Scanner) parseHistory(line string) (Record, bool, error) {
	cat, after, ok := cutField(line, s.seps.Field)
	if !ok || !strings.EqualFold(cat, "history") {
		return Record{}, false, nil
	}
	key, text, _ := cutField(after, s.seps.Field)
	if key == "" || text == "" {
		return Record{}, true, icserr.Line(icserr.ErrMalformedHeader, s.line, "history", "history line has no value")
	}
	return Record{Key: "history", Value: meta.Fields(key, text), Line: s.line}, true, nil
}

// cutField splits s at the first run of sep, trimming both halves.
func cutField(s string, sep byte) (before, after string, found bool) {
	i := strings.IndexByte(s, sep)
	if i < 0 {
		return strings.TrimSpace(s), "", false
	}
	before = strings.TrimSpace(s[:i])
	after = strings.TrimLeft(s[i:], string(sep))
	return before, strings.TrimSpace(after), true
}

func splitTokens(line string, sep byte) []string {
	raw := strings.Split(line, string(sep))
	tokens := raw[:0]
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

func checkPath(parts []string) error {
	if len(parts) > MaxKeyDepth {
		return errors.New("key-path nesting too deep")
	}
	for _, p := range parts {
		if p == "" {
			return errors.New("empty key-path component")
		}
	}
	return nil
}

// KeyPath splits the tokens of a line into key-path parts and value
// tokens, following the ICS category grammar. A first token containing
// dots is taken as a complete key-path.
func KeyPath(tokens []string) (parts, rest []string) {
	if len(tokens) == 0 {
		return nil, nil
	}
	first := tokens[0]
	if strings.Contains(first, ".") {
		return strings.Split(first, "."), tokens[1:]
	}

	cat := strings.ToLower(first)
	switch cat {
	case "sensor":
		if len(tokens) < 2 {
			return []string{cat}, nil
		}
		sub := strings.ToLower(tokens[1])
		if (sub == "s_params" || sub == "s_states") && len(tokens) >= 3 {
			return []string{cat, sub, tokens[2]}, tokens[3:]
		}
		return []string{cat, tokens[1]}, tokens[2:]
	case "source", "layout", "representation", "parameter", "document", "history":
		if len(tokens) < 2 {
			return []string{cat}, nil
		}
		return []string{cat, tokens[1]}, tokens[2:]
	default:
		return []string{first}, tokens[1:]
	}
}
