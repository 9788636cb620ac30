package export

import (
	"encoding/json"
	"testing"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/ocr"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAnnotationAllUnits(t *testing.T) {
	boxes := []annotation.BoundingBox{
		{
			ID: "box-1", X: 72, Y: 36, Width: 144, Height: 72,
			Unit: units.Point, Kind: annotation.KindManual, Row: -1, Col: -1,
		},
	}

	p := BuildAnnotation("doc.pdf", 2, 300,
		OCRSettings{Language: "eng", MinConfidence: 60},
		geometry.NewConverter(300), boxes)

	assert.Equal(t, "doc.pdf", p.Filename)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 300.0, p.DPI)
	assert.Equal(t, 1, p.Metadata.TotalBoundingBoxes)
	assert.Equal(t, "eng", p.Metadata.OCRSettings.Language)

	require.Len(t, p.BoundingBoxes, 1)
	b := p.BoundingBoxes[0]
	assert.Equal(t, 0, b.Index)
	assert.Equal(t, annotation.KindManual, b.Kind)

	// 72pt is one inch: 96 screen pixels, 25.4mm.
	assert.InDelta(t, 72.0, b.Pt.X, 0.01)
	assert.InDelta(t, 96.0, b.Px.X, 0.01)
	assert.InDelta(t, 25.4, b.MM.X, 0.01)
	assert.InDelta(t, 192.0, b.Px.Width, 0.01)
	assert.InDelta(t, 25.4, b.MM.Height, 0.01)
}

func TestBuildAnnotationNormalizesLegacyUnits(t *testing.T) {
	boxes := []annotation.BoundingBox{
		{ID: "box-1", X: 96, Y: 0, Width: 96, Height: 96, Unit: units.Pixel, Row: -1, Col: -1},
	}

	p := BuildAnnotation("doc.pdf", 1, 300, OCRSettings{}, geometry.NewConverter(300), boxes)

	require.Len(t, p.BoundingBoxes, 1)
	assert.InDelta(t, 72.0, p.BoundingBoxes[0].Pt.X, 0.01)
	assert.InDelta(t, 96.0, p.BoundingBoxes[0].Px.X, 0.01)
}

func TestBuildAnnotationDefaultsKind(t *testing.T) {
	boxes := []annotation.BoundingBox{{ID: "box-1", Unit: units.Point, Row: -1, Col: -1}}

	p := BuildAnnotation("doc.pdf", 1, 300, OCRSettings{}, geometry.NewConverter(300), boxes)
	assert.Equal(t, annotation.KindManual, p.BoundingBoxes[0].Kind)
}

func TestMarshalAnnotationShape(t *testing.T) {
	p := BuildAnnotation("doc.pdf", 1, 300, OCRSettings{Language: "eng"},
		geometry.NewConverter(300), nil)

	data, err := MarshalAnnotation(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "filename")
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "bounding_boxes")
	assert.NotEmpty(t, decoded["timestamp"])
}

func TestBuildOCRPayload(t *testing.T) {
	results := &ocr.TextData{
		Words: []ocr.Item{{ID: "word-1", Text: "hello", Confidence: 95}},
	}

	p := BuildOCR("scan.pdf", 3, 300, OCRSettings{Language: "deu", MinConfidence: 50}, results)
	assert.Equal(t, "scan.pdf", p.Filename)
	assert.Equal(t, "deu", p.OCRSettings.Language)
	require.NotNil(t, p.OCRResults)
	assert.Len(t, p.OCRResults.Words, 1)

	data, err := MarshalOCR(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"hello"`)
}

func TestBuildOCRNilResults(t *testing.T) {
	p := BuildOCR("scan.pdf", 1, 300, OCRSettings{}, nil)
	require.NotNil(t, p.OCRResults)
	assert.Empty(t, p.OCRResults.Words)
}
