package detect

import (
	"image"

	"github.com/a3tai/mcp-pdf-annotator/internal/imaging"
)

// Engine is the morphological image-processing capability the primary
// detection strategy depends on. Keeping it behind an interface isolates the
// dependency in one seam so it can be substituted or stubbed.
type Engine interface {
	Grayscale(img image.Image) *image.Gray
	AdaptiveThreshold(g *image.Gray, window int, offset float64) *imaging.Binary
	Erode(b *imaging.Binary, sw, sh int) *imaging.Binary
	Dilate(b *imaging.Binary, sw, sh int) *imaging.Binary
	Open(b *imaging.Binary, sw, sh int) *imaging.Binary
	Close(b *imaging.Binary, sw, sh int) *imaging.Binary
	And(a, b *imaging.Binary) *imaging.Binary
	Or(a, b *imaging.Binary) *imaging.Binary
	ExternalContours(b *imaging.Binary) []image.Rectangle
}

// nativeEngine backs the Engine interface with the in-process imaging
// package.
type nativeEngine struct{}

// NewNativeEngine returns the built-in morphological engine.
func NewNativeEngine() Engine {
	return nativeEngine{}
}

func (nativeEngine) Grayscale(img image.Image) *image.Gray {
	return imaging.Grayscale(img)
}

func (nativeEngine) AdaptiveThreshold(g *image.Gray, window int, offset float64) *imaging.Binary {
	return imaging.AdaptiveThreshold(g, window, offset)
}

func (nativeEngine) Erode(b *imaging.Binary, sw, sh int) *imaging.Binary {
	return imaging.Erode(b, sw, sh)
}

func (nativeEngine) Dilate(b *imaging.Binary, sw, sh int) *imaging.Binary {
	return imaging.Dilate(b, sw, sh)
}

func (nativeEngine) Open(b *imaging.Binary, sw, sh int) *imaging.Binary {
	return imaging.Open(b, sw, sh)
}

func (nativeEngine) Close(b *imaging.Binary, sw, sh int) *imaging.Binary {
	return imaging.Close(b, sw, sh)
}

func (nativeEngine) And(a, b *imaging.Binary) *imaging.Binary {
	return imaging.And(a, b)
}

func (nativeEngine) Or(a, b *imaging.Binary) *imaging.Binary {
	return imaging.Or(a, b)
}

func (nativeEngine) ExternalContours(b *imaging.Binary) []image.Rectangle {
	return imaging.ExternalContours(b)
}
