package ocr

import (
	"fmt"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

// Item is one normalized recognition element. It keeps the engine's original
// corner-form raster box for traceability alongside the converted unit
// rectangles; the unit rectangles are nil when no converter was available.
type Item struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`

	X0 int `json:"x0"`
	Y0 int `json:"y0"`
	X1 int `json:"x1"`
	Y1 int `json:"y1"`

	Pt *geometry.Rect `json:"pt,omitempty"`
	Px *geometry.Rect `json:"px,omitempty"`
	MM *geometry.Rect `json:"mm,omitempty"`
}

// TextData is the normalized hierarchical OCR result.
type TextData struct {
	Words      []Item `json:"words"`
	Lines      []Item `json:"lines"`
	Paragraphs []Item `json:"paragraphs"`
	Blocks     []Item `json:"blocks"`
}

// Normalize maps a raw engine result into TextData. Extents are clamped to a
// 1px minimum because the engine occasionally emits zero-area boxes. A nil
// converter (no reference image loaded) leaves the unit rectangles nil.
func Normalize(raw *RawResult, conv *geometry.Converter) *TextData {
	if raw == nil {
		return &TextData{}
	}
	return &TextData{
		Words:      normalizeLevel(raw.Words, LevelWord, conv),
		Lines:      normalizeLevel(raw.Lines, LevelLine, conv),
		Paragraphs: normalizeLevel(raw.Paragraphs, LevelParagraph, conv),
		Blocks:     normalizeLevel(raw.Blocks, LevelBlock, conv),
	}
}

func normalizeLevel(items []RawItem, level Level, conv *geometry.Converter) []Item {
	out := make([]Item, 0, len(items))
	for i, raw := range items {
		item := Item{
			ID:         fmt.Sprintf("%s-%d", level, i+1),
			Text:       raw.Text,
			Confidence: raw.Confidence,
			X0:         raw.X0,
			Y0:         raw.Y0,
			X1:         raw.X1,
			Y1:         raw.Y1,
		}
		if item.Confidence < 0 {
			item.Confidence = 0
		}

		width := max(1, raw.X1-raw.X0)
		height := max(1, raw.Y1-raw.Y0)
		if conv != nil {
			ur := conv.RasterToPoint(geometry.Rect{
				X:      float64(raw.X0),
				Y:      float64(raw.Y0),
				Width:  float64(width),
				Height: float64(height),
			})
			item.Pt = &ur.Pt
			item.Px = &ur.Px
			item.MM = &ur.MM
		}
		out = append(out, item)
	}
	return out
}

// FilterByConfidence removes items whose confidence is strictly below the
// threshold. Confidence is on a 0-100 scale; a missing confidence reads as
// zero and is excluded by any positive threshold.
func FilterByConfidence(items []Item, minConfidence float64) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Confidence >= minConfidence {
			out = append(out, it)
		}
	}
	return out
}

// Filter applies the confidence filter to every hierarchy level.
func Filter(data *TextData, minConfidence float64) *TextData {
	if data == nil {
		return &TextData{}
	}
	return &TextData{
		Words:      FilterByConfidence(data.Words, minConfidence),
		Lines:      FilterByConfidence(data.Lines, minConfidence),
		Paragraphs: FilterByConfidence(data.Paragraphs, minConfidence),
		Blocks:     FilterByConfidence(data.Blocks, minConfidence),
	}
}

// ToBoxes converts one hierarchy level into point-space bounding boxes for
// the store. Items without converted rectangles are skipped.
func ToBoxes(data *TextData, level Level) []annotation.BoundingBox {
	if data == nil {
		return nil
	}
	var items []Item
	switch level {
	case LevelWord:
		items = data.Words
	case LevelLine:
		items = data.Lines
	case LevelParagraph:
		items = data.Paragraphs
	case LevelBlock:
		items = data.Blocks
	}

	var boxes []annotation.BoundingBox
	for _, it := range items {
		if it.Pt == nil {
			continue
		}
		boxes = append(boxes, annotation.BoundingBox{
			ID:     it.ID,
			X:      it.Pt.X,
			Y:      it.Pt.Y,
			Width:  it.Pt.Width,
			Height: it.Pt.Height,
			Unit:   units.Point,
			Kind:   annotation.KindOCR,
			Row:    -1,
			Col:    -1,
		})
	}
	return boxes
}
