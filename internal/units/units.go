// Package units converts scalar lengths among the three measurement units
// used for bounding boxes: CSS pixels, millimeters, and PDF points. Point is
// the canonical unit; every conversion passes through it.
package units

import "math"

// Unit identifies a physical length unit.
type Unit string

const (
	// Pixel is a CSS reference pixel (96 per inch).
	Pixel Unit = "px"
	// Millimeter is a metric millimeter.
	Millimeter Unit = "mm"
	// Point is the PDF-native unit (72 per inch). All stored bounding boxes
	// are normalized to points before persistence.
	Point Unit = "pt"
)

const (
	// PointsPerPixel reflects a 96-DPI display reference against PDF's
	// 72-DPI native resolution: 72/96 = 0.75.
	PointsPerPixel = 0.75

	// PointsPerMillimeter is the standard 1pt = 0.3527777...mm definition.
	PointsPerMillimeter = 2.834645669
)

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	switch u {
	case Pixel, Millimeter, Point:
		return true
	}
	return false
}

// String returns the unit's short name.
func (u Unit) String() string {
	return string(u)
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Convert transforms a value between units through the canonical point unit
// and rounds the result to two decimal places for display. Identity
// conversions short-circuit so repeated conversion never accumulates
// rounding drift.
func Convert(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return Round2(fromPoint(toPoint(v, from), to))
}

// ConvertExact is Convert without the display rounding, for internal
// conversion chains that round only once at the end.
func ConvertExact(v float64, from, to Unit) float64 {
	if from == to {
		return v
	}
	return fromPoint(toPoint(v, from), to)
}

func toPoint(v float64, from Unit) float64 {
	switch from {
	case Pixel:
		return v * PointsPerPixel
	case Millimeter:
		return v * PointsPerMillimeter
	default:
		return v
	}
}

func fromPoint(v float64, to Unit) float64 {
	switch to {
	case Pixel:
		return v / PointsPerPixel
	case Millimeter:
		return v / PointsPerMillimeter
	default:
		return v
	}
}
