package imaging

import "image"

// AdaptiveThreshold binarizes a grayscale image: a pixel becomes foreground
// when it is darker than the mean of its window x window neighborhood minus
// offset. The local window compensates for uneven scan lighting that defeats
// a global threshold. The window mean is computed with an integral image so
// the pass is linear in pixel count.
func AdaptiveThreshold(g *image.Gray, window int, offset float64) *Binary {
	w := g.Bounds().Dx()
	h := g.Bounds().Dy()
	out := NewBinary(w, h)
	if w == 0 || h == 0 {
		return out
	}
	if window < 3 {
		window = 3
	}
	half := window / 2

	// integral[y][x] is the sum of all pixels above and left of (x, y),
	// exclusive, flattened into (w+1)*(h+1).
	integral := make([]uint64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(g.GrayAt(x, y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	for y := 0; y < h; y++ {
		y0 := max(0, y-half)
		y1 := min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0 := max(0, x-half)
			x1 := min(w-1, x+half)

			sum := integral[(y1+1)*(w+1)+x1+1] -
				integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] +
				integral[y0*(w+1)+x0]
			area := float64((y1 - y0 + 1) * (x1 - x0 + 1))
			mean := float64(sum) / area

			if float64(g.GrayAt(x, y).Y) < mean-offset {
				out.Set(x, y, true)
			}
		}
	}
	return out
}
