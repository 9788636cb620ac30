// Package annotation holds the bounding-box data model and the ordered store
// all producers (manual drawing, OCR, table detection) feed into.
package annotation

import (
	"github.com/google/uuid"

	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

// Kind records how a bounding box was produced.
type Kind string

const (
	KindManual Kind = "manual"
	KindOCR    Kind = "ocr"
	KindTable  Kind = "table"
)

// Valid reports whether k is a known provenance kind.
func (k Kind) Valid() bool {
	switch k {
	case KindManual, KindOCR, KindTable:
		return true
	}
	return false
}

// Role is the structural role of a table-detected box. Carrying the role as
// an explicit field keeps consumers from having to infer it from id strings.
type Role string

const (
	RoleNone           Role = ""
	RoleRegion         Role = "region"
	RoleHorizontalLine Role = "horizontal-line"
	RoleVerticalLine   Role = "vertical-line"
	RoleCell           Role = "cell"
)

// BoundingBox is an annotated rectangle. The four scalars are expressed in
// Unit; producers convert to points before the box reaches the store. Width
// and height are never negative: drag gestures are normalized before a box
// is created.
type BoundingBox struct {
	ID     string     `json:"id"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Unit   units.Unit `json:"unit"`
	Kind   Kind       `json:"kind,omitempty"`
	Role   Role       `json:"role,omitempty"`

	// Row and Col are zero-indexed grid positions for cell-role boxes,
	// -1 otherwise.
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewBox creates a bounding box with a fresh id from a rectangle already
// expressed in the given unit.
func NewBox(r geometry.Rect, u units.Unit, kind Kind) BoundingBox {
	return BoundingBox{
		ID:     uuid.NewString(),
		X:      r.X,
		Y:      r.Y,
		Width:  r.Width,
		Height: r.Height,
		Unit:   u,
		Kind:   kind,
		Row:    -1,
		Col:    -1,
	}
}

// Rect returns the box's rectangle in its declared unit.
func (b BoundingBox) Rect() geometry.Rect {
	return geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height}
}

// EffectiveKind resolves an absent kind to manual, the statistics default.
func (b BoundingBox) EffectiveKind() Kind {
	if b.Kind == "" {
		return KindManual
	}
	return b.Kind
}
