package imaging

import (
	"image"
	"sort"
)

// ExternalContours returns the bounding rectangle of every 8-connected
// foreground component, ordered top-to-bottom then left-to-right. Interior
// holes do not produce separate rectangles, matching external-contour
// semantics.
func ExternalContours(b *Binary) []image.Rectangle {
	visited := make([]bool, len(b.Pix))
	var rects []image.Rectangle

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			idx := y*b.Width + x
			if visited[idx] || !b.Pix[idx] {
				continue
			}
			rects = append(rects, floodComponent(b, visited, x, y))
		}
	}

	sort.Slice(rects, func(i, j int) bool {
		if rects[i].Min.Y != rects[j].Min.Y {
			return rects[i].Min.Y < rects[j].Min.Y
		}
		return rects[i].Min.X < rects[j].Min.X
	})
	return rects
}

// floodComponent walks one component with an explicit stack and returns its
// bounding rectangle.
func floodComponent(b *Binary, visited []bool, sx, sy int) image.Rectangle {
	minX, minY, maxX, maxY := sx, sy, sx, sy
	stack := []image.Point{{X: sx, Y: sy}}
	visited[sy*b.Width+sx] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || ny < 0 || nx >= b.Width || ny >= b.Height {
					continue
				}
				nidx := ny*b.Width + nx
				if visited[nidx] || !b.Pix[nidx] {
					continue
				}
				visited[nidx] = true
				stack = append(stack, image.Point{X: nx, Y: ny})
			}
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
