// Package imaging implements the image-processing primitives the table
// detector's morphological strategy is built on: grayscale conversion,
// adaptive thresholding, rectangular-element erosion/dilation, and
// connected-component contour extraction. Everything operates on plain
// in-memory buffers; no native dependency is involved.
package imaging

import (
	"image"
	"image/color"
)

// Binary is a 1-bit image. True pixels are foreground.
type Binary struct {
	Width  int
	Height int
	Pix    []bool
}

// NewBinary creates an all-background binary image.
func NewBinary(w, h int) *Binary {
	return &Binary{Width: w, Height: h, Pix: make([]bool, w*h)}
}

// At reports whether the pixel at (x, y) is foreground. Out-of-bounds
// coordinates read as background.
func (b *Binary) At(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Pix[y*b.Width+x]
}

// Set assigns the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *Binary) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	b.Pix[y*b.Width+x] = v
}

// Count returns the number of foreground pixels.
func (b *Binary) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v {
			n++
		}
	}
	return n
}

// And intersects two same-sized masks.
func And(a, b *Binary) *Binary {
	out := NewBinary(a.Width, a.Height)
	for i := range out.Pix {
		out.Pix[i] = a.Pix[i] && b.Pix[i]
	}
	return out
}

// Or unions two same-sized masks.
func Or(a, b *Binary) *Binary {
	out := NewBinary(a.Width, a.Height)
	for i := range out.Pix {
		out.Pix[i] = a.Pix[i] || b.Pix[i]
	}
	return out
}

// Grayscale converts any image to 8-bit grayscale using the standard
// library's luminance weighting.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.SetGray(x-bounds.Min.X, y-bounds.Min.Y,
				color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return gray
}
