package detect

import (
	"fmt"
	"image"
	"sort"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/imaging"
)

const (
	adaptiveWindow = 15
	adaptiveOffset = 10.0

	// Structure extraction uses wide elements (image dimension / 15, at
	// least 25px) to isolate long rule lines while suppressing text runs.
	structureDivisor = 15
	structureMinSize = 25

	// Line mode uses tighter elements so shorter rules survive.
	lineDivisor = 12
	lineMinSize = 15

	gridTolerance = 10
)

// Morphological is the primary detection strategy: adaptive thresholding
// followed by directional erosion/dilation to isolate rule lines, then
// contour extraction over the combined masks.
type Morphological struct {
	engine Engine
	conv   *geometry.Converter
}

// NewMorphological creates the primary strategy on top of the given engine.
func NewMorphological(engine Engine, conv *geometry.Converter) *Morphological {
	return &Morphological{engine: engine, conv: conv}
}

// Name identifies the strategy in status output.
func (d *Morphological) Name() string {
	return "morphological"
}

// Detect runs the requested mode over the image. A nil image or an empty
// page yields an empty result, never an error.
func (d *Morphological) Detect(img image.Image, mode Mode) ([]annotation.BoundingBox, error) {
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

	bin := d.engine.AdaptiveThreshold(d.engine.Grayscale(img), adaptiveWindow, adaptiveOffset)

	switch mode {
	case ModeRegions:
		return d.detectRegions(bin, w, h), nil
	case ModeLines:
		return d.detectLines(bin, w, h), nil
	default:
		return d.detectCells(bin, w, h), nil
	}
}

// horizontalMask isolates long horizontal runs by eroding then dilating with
// a wide, 1-pixel-tall element.
func (d *Morphological) horizontalMask(bin *imaging.Binary, size int) *imaging.Binary {
	return d.engine.Dilate(d.engine.Erode(bin, size, 1), size, 1)
}

func (d *Morphological) verticalMask(bin *imaging.Binary, size int) *imaging.Binary {
	return d.engine.Dilate(d.engine.Erode(bin, 1, size), 1, size)
}

func (d *Morphological) detectRegions(bin *imaging.Binary, w, h int) []annotation.BoundingBox {
	hSize := max(structureMinSize, w/structureDivisor)
	vSize := max(structureMinSize, h/structureDivisor)

	mask := d.engine.Or(d.horizontalMask(bin, hSize), d.verticalMask(bin, vSize))
	// Bridge small gaps between rules, then drop speckle.
	mask = d.engine.Close(mask, 5, 5)
	mask = d.engine.Open(mask, 3, 3)

	minW := max(regionMinWidth, int(float64(w)*regionWidthFrac))
	minH := max(regionMinHeight, int(float64(h)*regionHeightFrac))
	maxW := int(float64(w) * regionMaxFrac)
	maxH := int(float64(h) * regionMaxFrac)

	var boxes []annotation.BoundingBox
	for _, r := range d.engine.ExternalContours(mask) {
		if r.Dx() < minW || r.Dy() < minH || r.Dx() > maxW || r.Dy() > maxH {
			continue
		}
		id := fmt.Sprintf("table-region-%d", len(boxes)+1)
		boxes = append(boxes, tableBox(d.conv, rectOf(r), id, annotation.RoleRegion, -1, -1))
	}
	return boxes
}

func (d *Morphological) detectLines(bin *imaging.Binary, w, h int) []annotation.BoundingBox {
	hSize := max(lineMinSize, w/lineDivisor)
	vSize := max(lineMinSize, h/lineDivisor)

	var boxes []annotation.BoundingBox

	hCount := 0
	for _, r := range d.engine.ExternalContours(d.horizontalMask(bin, hSize)) {
		if float64(r.Dx()) <= float64(w)*lineSpanFrac && r.Dx()*r.Dy() <= lineMinArea {
			continue
		}
		hCount++
		id := fmt.Sprintf("table-hline-%d", hCount)
		boxes = append(boxes, tableBox(d.conv, rectOf(r), id, annotation.RoleHorizontalLine, -1, -1))
	}

	vCount := 0
	for _, r := range d.engine.ExternalContours(d.verticalMask(bin, vSize)) {
		if float64(r.Dy()) <= float64(h)*lineSpanFrac && r.Dx()*r.Dy() <= lineMinArea {
			continue
		}
		vCount++
		id := fmt.Sprintf("table-vline-%d", vCount)
		boxes = append(boxes, tableBox(d.conv, rectOf(r), id, annotation.RoleVerticalLine, -1, -1))
	}

	return boxes
}

// detectCells intersects the horizontal and vertical masks: cell corners are
// where a row rule and a column rule are both locally present. A slight
// dilation closes corner gaps before contour extraction.
func (d *Morphological) detectCells(bin *imaging.Binary, w, h int) []annotation.BoundingBox {
	hSize := max(structureMinSize, w/structureDivisor)
	vSize := max(structureMinSize, h/structureDivisor)

	inter := d.engine.And(d.horizontalMask(bin, hSize), d.verticalMask(bin, vSize))
	inter = d.engine.Dilate(inter, 3, 3)

	maxW := int(float64(w) * cellMorphMaxFrac)
	maxH := int(float64(h) * cellMorphMaxFrac)

	var kept []image.Rectangle
	for _, r := range d.engine.ExternalContours(inter) {
		if r.Dx() < cellMorphMin || r.Dy() < cellMorphMin || r.Dx() > maxW || r.Dy() > maxH {
			continue
		}
		kept = append(kept, r)
	}

	rows := clusterStarts(kept, func(r image.Rectangle) int { return r.Min.Y })
	cols := clusterStarts(kept, func(r image.Rectangle) int { return r.Min.X })

	boxes := make([]annotation.BoundingBox, 0, len(kept))
	for _, r := range kept {
		row := clusterIndex(rows, r.Min.Y)
		col := clusterIndex(cols, r.Min.X)
		id := fmt.Sprintf("table-cell-r%dc%d", row, col)
		boxes = append(boxes, tableBox(d.conv, rectOf(r), id, annotation.RoleCell, row, col))
	}
	return boxes
}

// clusterStarts groups start coordinates that lie within gridTolerance of
// each other and returns one representative per cluster, sorted.
func clusterStarts(rects []image.Rectangle, key func(image.Rectangle) int) []int {
	values := make([]int, 0, len(rects))
	for _, r := range rects {
		values = append(values, key(r))
	}
	sort.Ints(values)

	var clusters []int
	for _, v := range values {
		if len(clusters) == 0 || v-clusters[len(clusters)-1] > gridTolerance {
			clusters = append(clusters, v)
		}
	}
	return clusters
}

func clusterIndex(clusters []int, v int) int {
	for i, c := range clusters {
		if v-c <= gridTolerance {
			return i
		}
	}
	return len(clusters) - 1
}
