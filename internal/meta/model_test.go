package meta

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-ics/internal/icserr"
)

func TestModelSetGet(t *testing.T) {
	m := New()
	m.SetInts(KeySizes, 16, 2, 3, 4)

	v, err := m.Get("layout.sizes")
	require.NoError(t, err)
	sizes, err := v.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{16, 2, 3, 4}, sizes)
}

func TestModelCaseInsensitive(t *testing.T) {
	m := New()
	m.SetString("Representation.Scil_Type", "g3d")
	m.SetString("LAYOUT.Coordinates", "video")
	m.SetString("sensor.S_PARAMS.lambdaex", "488")
	m.SetString("Document.Author", "me")

	assert.Equal(t, []string{
		KeySCILType,
		KeyCoordinates,
		"sensor.s_params.LambdaEx",
		"document.author",
	}, m.Keys())
	assert.True(t, m.Has("representation.scil_type"))
}

func TestModelPreservesInsertionOrder(t *testing.T) {
	m := New()
	m.SetString("b", "1")
	m.SetString("a", "2")
	m.SetString("c", "3")
	m.SetString("B", "4")

	assert.Equal(t, []string{"b", "a", "c"}, m.Keys())
	assert.Equal(t, "4", m.GetOr("b", Value{}).String())

	var keys []string
	for k := range m.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}

func TestModelMissingKey(t *testing.T) {
	m := New()
	_, err := m.Get(KeyByteOrder)
	require.ErrorIs(t, err, icserr.ErrMissingKey)

	def := String("1")
	assert.Equal(t, def, m.GetOr(KeyByteOrder, def))
}

func TestModelDelete(t *testing.T) {
	m := New()
	m.SetString("source.file", "x.ids")
	m.SetString("source.offset", "0")
	m.SetString("filename", "x")
	m.Delete("FILENAME")
	m.Delete("absent")
	assert.Equal(t, []string{KeySourceFile, KeySourceOffset}, m.Keys())

	m.DeletePrefix("source")
	assert.Equal(t, 0, m.Len())
}

func TestModelHistory(t *testing.T) {
	m := New()
	m.AddHistory("software", "a")
	m.AddHistory("author", "b")
	m.AddHistory("Software", "c")

	assert.Len(t, m.History(), 3)

	var values []string
	for h := range m.HistoryIter("software") {
		values = append(values, h.Value)
	}
	assert.Equal(t, []string{"a", "c"}, values)

	all := slices.Collect(m.HistoryIter(""))
	assert.Equal(t, m.History(), all)

	m.ClearHistory()
	assert.Empty(t, m.History())
}

func TestModelClone(t *testing.T) {
	m := New()
	m.SetString("a", "1")
	m.AddHistory("k", "v")

	c := m.Clone()
	c.SetString("a", "2")
	c.SetString("b", "3")
	c.AddHistory("k", "w")

	assert.Equal(t, "1", m.GetOr("a", Value{}).String())
	assert.Equal(t, 1, m.Len())
	assert.Len(t, m.History(), 1)
}

func TestValueAccessors(t *testing.T) {
	v := Fields("1.5", "2", "x")
	assert.Equal(t, 3, v.Len())
	assert.Equal(t, "x", v.Field(2))
	assert.Equal(t, "", v.Field(3))
	assert.Equal(t, "1.5 2 x", v.String())

	f, err := v.Float()
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = v.Floats()
	assert.Error(t, err)

	assert.Equal(t, "0.1 1e+21", Floats(0.1, 1e21).String())
	assert.True(t, Ints(1, 2).Equal(Fields("1", "2")))
	assert.True(t, Value{}.IsZero())
}
