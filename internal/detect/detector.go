// Package detect finds table structure (regions, rule lines, cells) in a
// rasterized page image and emits bounding boxes in canonical point space.
// Two interchangeable strategies exist: a morphological strategy used when an
// image-processing engine is available, and a pixel-scan fallback that only
// needs raw pixel access. The fallback is a degraded approximation, not a
// drop-in equivalent.
package detect

import (
	"fmt"
	"image"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

// Mode selects which table structure to detect.
type Mode string

const (
	ModeRegions Mode = "regions"
	ModeLines   Mode = "lines"
	ModeCells   Mode = "cells"
)

// Valid reports whether m is a known detection mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeRegions, ModeLines, ModeCells:
		return true
	}
	return false
}

// Detector produces table bounding boxes from a raster image. An empty
// result with a nil error means no structure was found, which is a valid
// outcome rather than a failure.
type Detector interface {
	Detect(img image.Image, mode Mode) ([]annotation.BoundingBox, error)
	Name() string
}

// NewDetector selects a strategy from the capability status: morphological
// when the engine is ready, pixel-scan otherwise.
func NewDetector(cap *Capability, conv *geometry.Converter) Detector {
	if engine, ok := cap.Engine(); ok {
		return NewMorphological(engine, conv)
	}
	return NewPixelScan(conv)
}

// DetectError wraps a strategy failure with enough context to report which
// strategy and operation failed.
type DetectError struct {
	Strategy string
	Op       string
	Err      error
}

func (e *DetectError) Error() string {
	return fmt.Sprintf("table detection %s failed in %s: %v", e.Strategy, e.Op, e.Err)
}

func (e *DetectError) Unwrap() error {
	return e.Err
}

// Shared acceptance thresholds. The region maximum is 95% of the image in
// both strategies so a page border is never mistaken for a table.
const (
	regionMinWidth   = 100
	regionMinHeight  = 50
	regionMaxFrac    = 0.95
	regionWidthFrac  = 0.10
	regionHeightFrac = 0.05

	lineSpanFrac = 0.10
	lineMinArea  = 1000

	cellMorphMin     = 15
	cellMorphMaxFrac = 0.50
)

// tableBox wraps a raster-space rectangle into a point-space bounding box
// with the table provenance kind and the given structural role.
func tableBox(conv *geometry.Converter, r geometry.Rect, id string, role annotation.Role, row, col int) annotation.BoundingBox {
	pt := conv.RasterToPoint(r).Pt
	return annotation.BoundingBox{
		ID:     id,
		X:      pt.X,
		Y:      pt.Y,
		Width:  pt.Width,
		Height: pt.Height,
		Unit:   units.Point,
		Kind:   annotation.KindTable,
		Role:   role,
		Row:    row,
		Col:    col,
	}
}

func rectOf(r image.Rectangle) geometry.Rect {
	return geometry.Rect{
		X:      float64(r.Min.X),
		Y:      float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}
