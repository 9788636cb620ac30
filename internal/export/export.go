// Package export builds the JSON payloads written by the annotation and OCR
// export tools.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/ocr"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

// OCRSettings records the recognition parameters an export was produced with.
type OCRSettings struct {
	Language      string  `json:"language"`
	MinConfidence float64 `json:"min_confidence"`
}

// Metadata summarizes the annotation set.
type Metadata struct {
	OCRSettings        OCRSettings `json:"ocr_settings"`
	TotalBoundingBoxes int         `json:"total_bounding_boxes"`
}

// ExportedBox carries one bounding box in all three unit systems so consumers
// never need to convert.
type ExportedBox struct {
	ID    string          `json:"id"`
	Index int             `json:"index"`
	Kind  annotation.Kind `json:"kind"`
	Role  annotation.Role `json:"role,omitempty"`
	Row   int             `json:"row"`
	Col   int             `json:"col"`
	Pt    geometry.Rect   `json:"pt"`
	Px    geometry.Rect   `json:"px"`
	MM    geometry.Rect   `json:"mm"`
}

// AnnotationPayload is the top-level annotation export document.
type AnnotationPayload struct {
	Filename      string        `json:"filename"`
	Page          int           `json:"page"`
	DPI           float64       `json:"dpi"`
	Timestamp     string        `json:"timestamp"`
	Metadata      Metadata      `json:"metadata"`
	BoundingBoxes []ExportedBox `json:"bounding_boxes"`
}

// OCRPayload is the top-level OCR export document.
type OCRPayload struct {
	Filename    string        `json:"filename"`
	Page        int           `json:"page"`
	DPI         float64       `json:"dpi"`
	Timestamp   string        `json:"timestamp"`
	OCRSettings OCRSettings   `json:"ocr_settings"`
	OCRResults  *ocr.TextData `json:"ocr_results"`
}

// BuildAnnotation assembles the export payload from the current store
// contents. Boxes are exported in insertion order and each is expressed in all
// three unit systems, normalizing through point space first so boxes stored in
// a legacy unit export the same way as point-space boxes.
func BuildAnnotation(filename string, page int, dpi float64, settings OCRSettings, conv *geometry.Converter, boxes []annotation.BoundingBox) *AnnotationPayload {
	exported := make([]ExportedBox, 0, len(boxes))
	for i, box := range boxes {
		rect := geometry.Rect{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
		pt := conv.ToPointRect(rect, box.Unit)
		exported = append(exported, ExportedBox{
			ID:    box.ID,
			Index: i,
			Kind:  box.EffectiveKind(),
			Role:  box.Role,
			Row:   box.Row,
			Col:   box.Col,
			Pt:    convertRect(pt, units.Point),
			Px:    convertRect(pt, units.Pixel),
			MM:    convertRect(pt, units.Millimeter),
		})
	}

	return &AnnotationPayload{
		Filename:  filename,
		Page:      page,
		DPI:       dpi,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata: Metadata{
			OCRSettings:        settings,
			TotalBoundingBoxes: len(exported),
		},
		BoundingBoxes: exported,
	}
}

func convertRect(pt geometry.Rect, to units.Unit) geometry.Rect {
	return geometry.Rect{
		X:      units.Convert(pt.X, units.Point, to),
		Y:      units.Convert(pt.Y, units.Point, to),
		Width:  units.Convert(pt.Width, units.Point, to),
		Height: units.Convert(pt.Height, units.Point, to),
	}
}

// BuildOCR assembles the OCR export payload.
func BuildOCR(filename string, page int, dpi float64, settings OCRSettings, results *ocr.TextData) *OCRPayload {
	if results == nil {
		results = &ocr.TextData{}
	}
	return &OCRPayload{
		Filename:    filename,
		Page:        page,
		DPI:         dpi,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		OCRSettings: settings,
		OCRResults:  results,
	}
}

// MarshalAnnotation renders the payload as indented JSON.
func MarshalAnnotation(p *AnnotationPayload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal annotation export: %w", err)
	}
	return data, nil
}

// MarshalOCR renders the payload as indented JSON.
func MarshalOCR(p *OCRPayload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ocr export: %w", err)
	}
	return data, nil
}
