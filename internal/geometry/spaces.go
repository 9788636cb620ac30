// Package geometry maps rectangles between the three coordinate spaces of the
// annotator: raster space (page bitmap pixels at the scan resolution), display
// space (the on-screen scaled rendering of that bitmap), and point space (the
// canonical PDF unit). All spaces use a top-left origin with y increasing
// downward; the raster is a pre-rendered bitmap, so no PDF-native Y-flip is
// involved.
package geometry

import (
	"math"

	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

const (
	// PointDPI is the resolution of PDF point space, 72 units per inch.
	PointDPI = 72.0

	// DefaultRasterDPI is the fixed scan resolution pages are rendered at.
	DefaultRasterDPI = 300.0
)

// Rect is an axis-aligned rectangle in a single coordinate space.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size holds the dimensions of an image or on-screen element.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive. A zero or negative
// dimension means the image is not loaded or the element is not measured yet.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// UnitRect carries the same rectangle expressed in all three units, each
// field rounded independently to two decimal places.
type UnitRect struct {
	Pt Rect `json:"pt"`
	Px Rect `json:"px"`
	MM Rect `json:"mm"`
}

// Converter translates rectangles between raster, display, and point space
// for a fixed scan resolution.
type Converter struct {
	rasterDPI float64
}

// NewConverter creates a converter for the given scan resolution. A
// non-positive DPI falls back to DefaultRasterDPI.
func NewConverter(rasterDPI float64) *Converter {
	if rasterDPI <= 0 {
		rasterDPI = DefaultRasterDPI
	}
	return &Converter{rasterDPI: rasterDPI}
}

// RasterDPI returns the scan resolution the converter was built for.
func (c *Converter) RasterDPI() float64 {
	return c.rasterDPI
}

// Scale is the raster-to-point divisor, rasterDPI/72.
func (c *Converter) Scale() float64 {
	return c.rasterDPI / PointDPI
}

// RasterToPoint converts a raster-space rectangle to canonical point space
// and additionally derives the pixel and millimeter equivalents.
func (c *Converter) RasterToPoint(r Rect) UnitRect {
	s := c.Scale()
	pt := Rect{X: r.X / s, Y: r.Y / s, Width: r.Width / s, Height: r.Height / s}
	return UnitRect{
		Pt: roundRect(pt),
		Px: roundRect(convertRect(pt, units.Pixel)),
		MM: roundRect(convertRect(pt, units.Millimeter)),
	}
}

// DisplayToRaster scales a display-space rectangle into raster space using
// per-axis factors rasterDims/displayDims. The boolean is false when either
// dimension set is unknown; callers must treat that as "skip this operation".
func (c *Converter) DisplayToRaster(r Rect, raster, display Size) (Rect, bool) {
	if !raster.Valid() || !display.Valid() {
		return Rect{}, false
	}
	sx := raster.Width / display.Width
	sy := raster.Height / display.Height
	return Rect{X: r.X * sx, Y: r.Y * sy, Width: r.Width * sx, Height: r.Height * sy}, true
}

// PointToDisplay composes point→raster (multiply by rasterDPI/72) with
// raster→display (multiply by displayDims/rasterDims).
func (c *Converter) PointToDisplay(r Rect, raster, display Size) (Rect, bool) {
	if !raster.Valid() || !display.Valid() {
		return Rect{}, false
	}
	s := c.Scale()
	sx := display.Width / raster.Width
	sy := display.Height / raster.Height
	return Rect{
		X:      r.X * s * sx,
		Y:      r.Y * s * sy,
		Width:  r.Width * s * sx,
		Height: r.Height * s * sy,
	}, true
}

// ToPointRect normalizes a rectangle stored in a legacy non-point unit into
// point space. This is a backward-compatibility path; producers are expected
// to store points.
func (c *Converter) ToPointRect(r Rect, u units.Unit) Rect {
	if u == units.Point || !u.Valid() {
		return r
	}
	return Rect{
		X:      units.ConvertExact(r.X, u, units.Point),
		Y:      units.ConvertExact(r.Y, u, units.Point),
		Width:  units.ConvertExact(r.Width, u, units.Point),
		Height: units.ConvertExact(r.Height, u, units.Point),
	}
}

// NormalizeRect builds a rectangle from two drag corners, taking the minimum
// corner and absolute extents so width and height are never negative.
func NormalizeRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X:      math.Min(x0, x1),
		Y:      math.Min(y0, y1),
		Width:  math.Abs(x1 - x0),
		Height: math.Abs(y1 - y0),
	}
}

func convertRect(pt Rect, to units.Unit) Rect {
	return Rect{
		X:      units.ConvertExact(pt.X, units.Point, to),
		Y:      units.ConvertExact(pt.Y, units.Point, to),
		Width:  units.ConvertExact(pt.Width, units.Point, to),
		Height: units.ConvertExact(pt.Height, units.Point, to),
	}
}

func roundRect(r Rect) Rect {
	return Rect{
		X:      units.Round2(r.X),
		Y:      units.Round2(r.Y),
		Width:  units.Round2(r.Width),
		Height: units.Round2(r.Height),
	}
}
