package annotation

import (
	"testing"

	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(kind Kind) BoundingBox {
	return NewBox(geometry.Rect{X: 10, Y: 20, Width: 30, Height: 40}, units.Point, kind)
}

func TestStoreAddGet(t *testing.T) {
	s := NewStore()
	b := box(KindManual)
	s.Add(b)

	got, ok := s.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, b, got)
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestStoreRemove(t *testing.T) {
	s := NewStore()
	b := box(KindManual)
	s.Add(b)

	assert.True(t, s.Remove(b.ID))
	_, ok := s.Get(b.ID)
	assert.False(t, ok)

	// Removing again is an idempotent no-op.
	assert.False(t, s.Remove(b.ID))
}

func TestStoreRemoveByKind(t *testing.T) {
	s := NewStore()
	m1 := box(KindManual)
	tb := box(KindTable)
	m2 := box(KindManual)
	o := box(KindOCR)
	s.AddAll([]BoundingBox{m1, tb, m2, o})

	assert.Equal(t, 1, s.RemoveByKind(KindTable))

	all := s.All()
	require.Len(t, all, 3)
	// Remaining boxes keep their order and fields.
	assert.Equal(t, []BoundingBox{m1, m2, o}, all)

	assert.Equal(t, 0, s.RemoveByKind(KindTable), "no-op when nothing matches")
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.AddAll([]BoundingBox{box(KindManual), box(KindOCR)})
	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Clear())
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore()
	b := box(KindManual)
	s.Add(b)

	x := 99.0
	kind := KindTable
	require.True(t, s.Update(b.ID, Update{X: &x, Kind: &kind}))

	got, ok := s.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, 99.0, got.X)
	assert.Equal(t, KindTable, got.Kind)
	// Unspecified fields stay untouched.
	assert.Equal(t, b.Y, got.Y)
	assert.Equal(t, b.Width, got.Width)
	assert.Equal(t, b.ID, got.ID)

	assert.False(t, s.Update("missing", Update{X: &x}))
}

func TestStoreByKind(t *testing.T) {
	s := NewStore()
	o1 := box(KindOCR)
	o2 := box(KindOCR)
	s.AddAll([]BoundingBox{o1, box(KindManual), o2})

	got := s.ByKind(KindOCR)
	require.Len(t, got, 2)
	assert.Equal(t, o1.ID, got[0].ID)
	assert.Equal(t, o2.ID, got[1].ID)
}

func TestStoreStats(t *testing.T) {
	s := NewStore()
	s.AddAll([]BoundingBox{box(KindManual), box(KindManual), box(KindOCR), box(KindTable)})

	st := s.Stats()
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.ByKind[KindManual])
	assert.Equal(t, 1, st.ByKind[KindOCR])
	assert.Equal(t, 1, st.ByKind[KindTable])
	assert.True(t, st.HasManual)
	assert.True(t, st.HasOCR)
	assert.True(t, st.HasTable)
}

func TestStoreStatsDefaultsKindToManual(t *testing.T) {
	s := NewStore()
	untagged := box("")
	untagged.Kind = ""
	s.Add(untagged)

	st := s.Stats()
	assert.Equal(t, 1, st.ByKind[KindManual])
	assert.True(t, st.HasManual)
	assert.False(t, st.HasOCR)
}
