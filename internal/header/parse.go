package header

import (
	"io"

	"github.com/robert-malhotra/go-ics/internal/meta"
)

// Result is a fully parsed header.
type Result struct {
	Model      *meta.Model
	Separators Separators
	// DataOffset is the byte offset just past the "end" line.
	DataOffset int64
}

// Parse reads a complete header from r into a new model. On error no
// model is returned.
func Parse(r io.Reader) (*Result, error) {
	s := NewScanner(r)
	m := meta.New()
	for rec, err := range s.All() {
		if err != nil {
			return nil, err
		}
		if rec.IsHistory() {
			h := rec.HistoryEntry()
			m.AddHistory(h.Key, h.Value)
			continue
		}
		m.Set(rec.Key, rec.Value)
	}
	return &Result{
		Model:      m,
		Separators: s.Separators(),
		DataOffset: s.DataOffset(),
	}, nil
}
