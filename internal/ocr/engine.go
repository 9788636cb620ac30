// Package ocr adapts an external text-recognition engine's hierarchical
// output (words, lines, paragraphs, blocks) into the annotator's bounding-box
// schema, with a confidence-based filter.
package ocr

import (
	"context"
	"image"
)

// Level is one tier of the recognition hierarchy.
type Level string

const (
	LevelWord      Level = "word"
	LevelLine      Level = "line"
	LevelParagraph Level = "paragraph"
	LevelBlock     Level = "block"
)

// RawItem is one recognized element as the engine reports it: text, a 0-100
// confidence, and a corner-form box in raster pixels.
type RawItem struct {
	Text       string
	Confidence float64
	X0, Y0     int
	X1, Y1     int
}

// RawResult is the engine's full hierarchical output for one page image.
type RawResult struct {
	Words      []RawItem
	Lines      []RawItem
	Paragraphs []RawItem
	Blocks     []RawItem
}

// Engine is the opaque text-detection oracle. Recognition is an asynchronous
// external operation; the context bounds it.
type Engine interface {
	// Recognize runs OCR over a raster image in the given language.
	Recognize(ctx context.Context, img image.Image, lang string) (*RawResult, error)

	// Available reports whether the engine's runtime dependency is present.
	Available() bool
}
