// Package meta holds the in-memory model of an ICS header.
//
// A [Model] maps dotted key-paths ("layout.sizes", "sensor.s_params.LambdaEx")
// to [Value]s. Keys are case-insensitive and stored in canonical case; the
// order in which keys were first inserted is kept so a header read and
// written back comes out in the same order. History lines are not
// key-unique and live in a separate ordered list.
//
// The model performs no validation on insertion. Mandatory keys are
// checked by the layout resolver when the binary layout is derived, which
// lets the header parser build the model incrementally.
package meta

import (
	"iter"
	"strings"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

// HistoryEntry is one free-form history line.
type HistoryEntry struct {
	Key   string
	Value string
}

// Model is an ordered, case-insensitive key-path to value mapping plus
// the history list. The zero value is ready to use.
type Model struct {
	keys    []string         // canonical keys, insertion order
	values  map[string]Value // canonical key -> value
	history []HistoryEntry
}

// New returns an empty model.
func New() *Model {
	return &Model{}
}

// Set inserts or overwrites key. An overwritten key keeps its position.
func (m *Model) Set(key string, v Value) {
	k := Canonical(key)
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// SetString sets key to a single token.
func (m *Model) SetString(key, s string) {
	m.Set(key, String(s))
}

// SetFields sets key to a list of tokens.
func (m *Model) SetFields(key string, fs ...string) {
	m.Set(key, Fields(fs...))
}

// SetInts sets key to a list of integers.
func (m *Model) SetInts(key string, vs ...int) {
	m.Set(key, Ints(vs...))
}

// SetFloats sets key to a list of floats.
func (m *Model) SetFloats(key string, vs ...float64) {
	m.Set(key, Floats(vs...))
}

// Get returns the value of key or a MissingKeyError.
func (m *Model) Get(key string) (Value, error) {
	k := Canonical(key)
	v, ok := m.values[k]
	if !ok {
		return Value{}, icserr.Key(icserr.ErrMissingKey, "get", k, "key not set")
	}
	return v, nil
}

// GetOr returns the value of key, or def when absent.
func (m *Model) GetOr(key string, def Value) Value {
	if v, ok := m.values[Canonical(key)]; ok {
		return v
	}
	return def
}

// Has reports whether key is set.
func (m *Model) Has(key string) bool {
	_, ok := m.values[Canonical(key)]
	return ok
}

// Delete removes key. Deleting an absent key is a no-op.
func (m *Model) Delete(key string) {
	k := Canonical(key)
	if _, ok := m.values[k]; !ok {
		return
	}
	delete(m.values, k)
	for i, existing := range m.keys {
		if existing == k {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// DeletePrefix removes every key under the dotted prefix, e.g. "source".
func (m *Model) DeletePrefix(prefix string) {
	p := Canonical(prefix)
	for _, k := range m.Keys() {
		if k == p || strings.HasPrefix(strings.ToLower(k), strings.ToLower(p)+".") {
			m.Delete(k)
		}
	}
}

// Keys returns the canonical keys in insertion order.
func (m *Model) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys, history excluded.
func (m *Model) Len() int {
	return len(m.keys)
}

// All iterates over keys and values in insertion order.
func (m *Model) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// AddHistory appends a history line.
func (m *Model) AddHistory(key, value string) {
	m.history = append(m.history, HistoryEntry{Key: key, Value: value})
}

// History returns a copy of the history list in file order.
func (m *Model) History() []HistoryEntry {
	return append([]HistoryEntry(nil), m.history...)
}

// HistoryIter iterates over the history entries whose key equals key
// (case-insensitive). An empty key selects every entry.
func (m *Model) HistoryIter(key string) iter.Seq[HistoryEntry] {
	return func(yield func(HistoryEntry) bool) {
		for _, h := range m.history {
			if key != "" && !strings.EqualFold(h.Key, key) {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}

// ClearHistory removes every history entry.
func (m *Model) ClearHistory() {
	m.history = nil
}

// Clone returns a deep copy of m.
func (m *Model) Clone() *Model {
	c := &Model{
		keys:    append([]string(nil), m.keys...),
		values:  make(map[string]Value, len(m.values)),
		history: append([]HistoryEntry(nil), m.history...),
	}
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}
