package detect

import (
	"fmt"
	"image"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/imaging"
)

const (
	// A pixel is dark when its RGB average luminance is below this.
	darkThreshold = 128

	// A row/column becomes a line candidate when its longest contiguous
	// dark run covers at least this fraction of the dimension.
	lineRunFrac = 0.30

	lineThickness = 2

	cellMinWidth  = 20
	cellMinHeight = 15
	cellMaxFrac   = 0.90
	cellAspectMin = 0.1
	cellAspectMax = 10.0

	floodSeedStep = 20
	floodPixelCap = 10000
)

// PixelScan is the fallback strategy: direct per-row and per-column scans
// for long dark runs, with no morphology dependency. Results approximate the
// primary strategy for simple grid tables.
type PixelScan struct {
	conv *geometry.Converter
}

// NewPixelScan creates the fallback strategy.
func NewPixelScan(conv *geometry.Converter) *PixelScan {
	return &PixelScan{conv: conv}
}

// Name identifies the strategy in status output.
func (d *PixelScan) Name() string {
	return "pixel-scan"
}

// Detect runs the requested mode over the image. A nil image or an empty
// page yields an empty result, never an error.
func (d *PixelScan) Detect(img image.Image, mode Mode) ([]annotation.BoundingBox, error) {
	if img == nil {
		return nil, nil
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	if !mode.Valid() {
		return nil, &DetectError{Strategy: d.Name(), Op: "detect", Err: fmt.Errorf("unknown mode %q", mode)}
	}

	gray := imaging.Grayscale(img)

	switch mode {
	case ModeLines:
		return d.detectLineBoxes(gray, w, h), nil
	case ModeCells:
		boxes := d.detectCellBoxes(gray, w, h)
		if len(boxes) == 0 {
			// No grid found; fall back to connected-region detection.
			return d.detectRegionBoxes(gray, w, h), nil
		}
		return boxes, nil
	default:
		return d.detectRegionBoxes(gray, w, h), nil
	}
}

// lineCandidate is one detected rule: its position on the scanned axis and
// the extent of the longest dark run found there.
type lineCandidate struct {
	pos    int
	start  int
	length int
}

func dark(g *image.Gray, x, y int) bool {
	return g.GrayAt(x, y).Y < darkThreshold
}

// horizontalCandidates scans each row for its longest contiguous dark run
// and keeps rows whose run spans at least lineRunFrac of the width.
func horizontalCandidates(g *image.Gray, w, h int) []lineCandidate {
	minRun := int(float64(w) * lineRunFrac)
	var out []lineCandidate
	for y := 0; y < h; y++ {
		bestStart, bestLen, runStart, runLen := 0, 0, 0, 0
		for x := 0; x < w; x++ {
			if dark(g, x, y) {
				if runLen == 0 {
					runStart = x
				}
				runLen++
				if runLen > bestLen {
					bestStart, bestLen = runStart, runLen
				}
			} else {
				runLen = 0
			}
		}
		if bestLen >= minRun {
			out = append(out, lineCandidate{pos: y, start: bestStart, length: bestLen})
		}
	}
	return out
}

func verticalCandidates(g *image.Gray, w, h int) []lineCandidate {
	minRun := int(float64(h) * lineRunFrac)
	var out []lineCandidate
	for x := 0; x < w; x++ {
		bestStart, bestLen, runStart, runLen := 0, 0, 0, 0
		for y := 0; y < h; y++ {
			if dark(g, x, y) {
				if runLen == 0 {
					runStart = y
				}
				runLen++
				if runLen > bestLen {
					bestStart, bestLen = runStart, runLen
				}
			} else {
				runLen = 0
			}
		}
		if bestLen >= minRun {
			out = append(out, lineCandidate{pos: x, start: bestStart, length: bestLen})
		}
	}
	return out
}

// dedupe collapses clusters of near-duplicate candidates (anti-aliased rules
// detect as several adjacent rows/columns) into one: a candidate survives
// only when it is at least minGap away from the last kept one.
func dedupe(cands []lineCandidate, dim int) []lineCandidate {
	minGap := max(10, dim/100)
	var out []lineCandidate
	for _, c := range cands {
		if len(out) == 0 || c.pos-out[len(out)-1].pos >= minGap {
			out = append(out, c)
		}
	}
	return out
}

func (d *PixelScan) detectLineBoxes(g *image.Gray, w, h int) []annotation.BoundingBox {
	var boxes []annotation.BoundingBox

	for i, c := range dedupe(horizontalCandidates(g, w, h), w) {
		r := geometry.Rect{X: float64(c.start), Y: float64(c.pos), Width: float64(c.length), Height: lineThickness}
		id := fmt.Sprintf("table-hline-%d", i+1)
		boxes = append(boxes, tableBox(d.conv, r, id, annotation.RoleHorizontalLine, -1, -1))
	}
	for i, c := range dedupe(verticalCandidates(g, w, h), h) {
		r := geometry.Rect{X: float64(c.pos), Y: float64(c.start), Width: lineThickness, Height: float64(c.length)}
		id := fmt.Sprintf("table-vline-%d", i+1)
		boxes = append(boxes, tableBox(d.conv, r, id, annotation.RoleVerticalLine, -1, -1))
	}
	return boxes
}

// detectCellBoxes forms the grid of cells at every row-band x column-band
// intersection between deduplicated rules. At least two rules are required
// on both axes.
func (d *PixelScan) detectCellBoxes(g *image.Gray, w, h int) []annotation.BoundingBox {
	hs := dedupe(horizontalCandidates(g, w, h), w)
	vs := dedupe(verticalCandidates(g, w, h), h)
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	var boxes []annotation.BoundingBox
	for i := 0; i < len(hs)-1; i++ {
		for j := 0; j < len(vs)-1; j++ {
			x := vs[j].pos
			y := hs[i].pos
			cw := vs[j+1].pos - x
			ch := hs[i+1].pos - y

			if cw < cellMinWidth || ch < cellMinHeight {
				continue
			}
			if float64(cw) > float64(w)*cellMaxFrac || float64(ch) > float64(h)*cellMaxFrac {
				continue
			}
			if x < 0 || y < 0 || x+cw > w || y+ch > h {
				continue
			}
			aspect := float64(cw) / float64(ch)
			if aspect < cellAspectMin || aspect > cellAspectMax {
				continue
			}

			r := geometry.Rect{X: float64(x), Y: float64(y), Width: float64(cw), Height: float64(ch)}
			id := fmt.Sprintf("table-cell-r%dc%d", i, j)
			boxes = append(boxes, tableBox(d.conv, r, id, annotation.RoleCell, i, j))
		}
	}
	return boxes
}

// detectRegionBoxes flood-fills connected dark regions from a coarse seed
// grid. Each flood is capped to bound cost on large filled areas.
func (d *PixelScan) detectRegionBoxes(g *image.Gray, w, h int) []annotation.BoundingBox {
	visited := make([]bool, w*h)
	maxW := int(float64(w) * regionMaxFrac)
	maxH := int(float64(h) * regionMaxFrac)

	var boxes []annotation.BoundingBox
	for sy := 0; sy < h; sy += floodSeedStep {
		for sx := 0; sx < w; sx += floodSeedStep {
			if visited[sy*w+sx] || !dark(g, sx, sy) {
				continue
			}
			r := floodRegion(g, visited, sx, sy, w, h)
			if r.Dx() < regionMinWidth || r.Dy() < regionMinHeight || r.Dx() > maxW || r.Dy() > maxH {
				continue
			}
			id := fmt.Sprintf("table-region-%d", len(boxes)+1)
			boxes = append(boxes, tableBox(d.conv, rectOf(r), id, annotation.RoleRegion, -1, -1))
		}
	}
	return boxes
}

func floodRegion(g *image.Gray, visited []bool, sx, sy, w, h int) image.Rectangle {
	minX, minY, maxX, maxY := sx, sy, sx, sy
	stack := []image.Point{{X: sx, Y: sy}}
	visited[sy*w+sx] = true
	count := 0

	for len(stack) > 0 && count < floodPixelCap {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++

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

		for _, n := range [4]image.Point{{p.X + 1, p.Y}, {p.X - 1, p.Y}, {p.X, p.Y + 1}, {p.X, p.Y - 1}} {
			if n.X < 0 || n.Y < 0 || n.X >= w || n.Y >= h {
				continue
			}
			idx := n.Y*w + n.X
			if visited[idx] || !dark(g, n.X, n.Y) {
				continue
			}
			visited[idx] = true
			stack = append(stack, n)
		}
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}
