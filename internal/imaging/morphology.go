package imaging

// Morphological operations with rectangular structuring elements. Rectangular
// elements are separable, so a sw x sh operation runs as a horizontal pass
// followed by a vertical pass, each a sliding-window scan. Pixels outside the
// image are background: erosion eats into borders, dilation does not grow
// past them.

// Erode keeps a foreground pixel only when the whole sw x sh neighborhood
// around it is foreground.
func Erode(b *Binary, sw, sh int) *Binary {
	out := b
	if sw > 1 {
		out = erodeAxis(out, sw, true)
	}
	if sh > 1 {
		out = erodeAxis(out, sh, false)
	}
	if out == b {
		out = clone(b)
	}
	return out
}

// Dilate marks a pixel foreground when any pixel of the sw x sh neighborhood
// around it is foreground.
func Dilate(b *Binary, sw, sh int) *Binary {
	out := b
	if sw > 1 {
		out = dilateAxis(out, sw, true)
	}
	if sh > 1 {
		out = dilateAxis(out, sh, false)
	}
	if out == b {
		out = clone(b)
	}
	return out
}

// Open erodes then dilates, removing foreground structure smaller than the
// element.
func Open(b *Binary, sw, sh int) *Binary {
	return Dilate(Erode(b, sw, sh), sw, sh)
}

// Close dilates then erodes, bridging background gaps smaller than the
// element.
func Close(b *Binary, sw, sh int) *Binary {
	return Erode(Dilate(b, sw, sh), sw, sh)
}

func clone(b *Binary) *Binary {
	out := NewBinary(b.Width, b.Height)
	copy(out.Pix, b.Pix)
	return out
}

// erodeAxis runs a 1-D erosion of the given length along x (horizontal true)
// or y. The element anchor is its center; even lengths extend one further to
// the right/bottom.
func erodeAxis(b *Binary, size int, horizontal bool) *Binary {
	out := NewBinary(b.Width, b.Height)
	left := (size - 1) / 2
	right := size / 2

	outer, inner := b.Height, b.Width
	if !horizontal {
		outer, inner = b.Width, b.Height
	}

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			ok := true
			for k := i - left; k <= i+right; k++ {
				if k < 0 || k >= inner || !at(b, o, k, horizontal) {
					ok = false
					break
				}
			}
			if ok {
				set(out, o, i, horizontal)
			}
		}
	}
	return out
}

func dilateAxis(b *Binary, size int, horizontal bool) *Binary {
	out := NewBinary(b.Width, b.Height)
	left := (size - 1) / 2
	right := size / 2

	outer, inner := b.Height, b.Width
	if !horizontal {
		outer, inner = b.Width, b.Height
	}

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			for k := i - left; k <= i+right; k++ {
				if k >= 0 && k < inner && at(b, o, k, horizontal) {
					set(out, o, i, horizontal)
					break
				}
			}
		}
	}
	return out
}

func at(b *Binary, outer, inner int, horizontal bool) bool {
	if horizontal {
		return b.At(inner, outer)
	}
	return b.At(outer, inner)
}

func set(b *Binary, outer, inner int, horizontal bool) {
	if horizontal {
		b.Set(inner, outer, true)
	} else {
		b.Set(outer, inner, true)
	}
}
