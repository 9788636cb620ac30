package ocr

import (
	"testing"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeComputesExtents(t *testing.T) {
	raw := &RawResult{
		Words: []RawItem{
			{Text: "hello", Confidence: 91.5, X0: 10, Y0: 20, X1: 50, Y1: 40},
		},
	}

	data := Normalize(raw, geometry.NewConverter(300))
	require.Len(t, data.Words, 1)

	w := data.Words[0]
	assert.Equal(t, "word-1", w.ID)
	assert.Equal(t, "hello", w.Text)
	assert.Equal(t, 10, w.X0)
	assert.Equal(t, 40, w.Y1)

	require.NotNil(t, w.Pt)
	// width 40px, height 20px at 300 DPI.
	assert.InDelta(t, 9.6, w.Pt.Width, 0.01)
	assert.InDelta(t, 4.8, w.Pt.Height, 0.01)
	assert.InDelta(t, 2.4, w.Pt.X, 0.01)
	require.NotNil(t, w.Px)
	assert.InDelta(t, 12.8, w.Px.Width, 0.01)
	require.NotNil(t, w.MM)
	assert.InDelta(t, 3.39, w.MM.Width, 0.01)
}

func TestNormalizeZeroAreaBoxes(t *testing.T) {
	raw := &RawResult{
		Words: []RawItem{{Text: "dot", Confidence: 80, X0: 5, Y0: 5, X1: 5, Y1: 5}},
	}

	data := Normalize(raw, geometry.NewConverter(300))
	require.Len(t, data.Words, 1)
	require.NotNil(t, data.Words[0].Pt)
	// Zero extents clamp to 1px before conversion.
	assert.InDelta(t, 0.24, data.Words[0].Pt.Width, 0.01)
	assert.InDelta(t, 0.24, data.Words[0].Pt.Height, 0.01)
}

func TestNormalizeWithoutConverter(t *testing.T) {
	raw := &RawResult{
		Words: []RawItem{{Text: "w", Confidence: 50, X0: 0, Y0: 0, X1: 10, Y1: 10}},
	}

	data := Normalize(raw, nil)
	require.Len(t, data.Words, 1)
	assert.Nil(t, data.Words[0].Pt, "no reference image means no conversion")
	assert.Nil(t, data.Words[0].Px)
	assert.Nil(t, data.Words[0].MM)
}

func TestNormalizeAllLevels(t *testing.T) {
	raw := &RawResult{
		Words:      []RawItem{{Text: "a"}, {Text: "b"}},
		Lines:      []RawItem{{Text: "a b"}},
		Paragraphs: []RawItem{{Text: "a b"}},
		Blocks:     []RawItem{{Text: "a b"}},
	}

	data := Normalize(raw, nil)
	assert.Len(t, data.Words, 2)
	assert.Len(t, data.Lines, 1)
	assert.Equal(t, "line-1", data.Lines[0].ID)
	assert.Equal(t, "paragraph-1", data.Paragraphs[0].ID)
	assert.Equal(t, "block-1", data.Blocks[0].ID)
}

func TestFilterByConfidenceThreshold(t *testing.T) {
	items := []Item{
		{ID: "word-1", Confidence: 59},
		{ID: "word-2", Confidence: 60},
		{ID: "word-3", Confidence: 100},
	}

	kept := FilterByConfidence(items, 60)
	require.Len(t, kept, 2)
	assert.Equal(t, "word-2", kept[0].ID, "confidence exactly at threshold is included")
	assert.Equal(t, "word-3", kept[1].ID)
}

func TestFilterTreatsMissingConfidenceAsZero(t *testing.T) {
	items := []Item{{ID: "word-1"}}

	assert.Empty(t, FilterByConfidence(items, 1))
	assert.Len(t, FilterByConfidence(items, 0), 1)
}

func TestToBoxes(t *testing.T) {
	raw := &RawResult{
		Words: []RawItem{
			{Text: "x", Confidence: 90, X0: 0, Y0: 0, X1: 100, Y1: 50},
		},
	}
	data := Normalize(raw, geometry.NewConverter(300))

	boxes := ToBoxes(data, LevelWord)
	require.Len(t, boxes, 1)
	assert.Equal(t, annotation.KindOCR, boxes[0].Kind)
	assert.InDelta(t, 24.0, boxes[0].Width, 0.01)

	// Unconverted data yields no boxes rather than zero-valued ones.
	assert.Empty(t, ToBoxes(Normalize(raw, nil), LevelWord))
}
