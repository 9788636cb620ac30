package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine recognizes text with a locally installed Tesseract via
// gosseract. Each Recognize call uses a fresh client; gosseract clients are
// not safe for reuse across images.
type TesseractEngine struct{}

// NewTesseractEngine creates the Tesseract-backed engine.
func NewTesseractEngine() *TesseractEngine {
	return &TesseractEngine{}
}

// Available reports whether the native Tesseract library responds.
func (e *TesseractEngine) Available() bool {
	defer func() {
		// gosseract panics rather than erroring when the native library is
		// missing; treat that as unavailable.
		_ = recover()
	}()
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version() != ""
}

// Recognize runs Tesseract over the image and collects boxes at every
// hierarchy level.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image, lang string) (*RawResult, error) {
	if img == nil {
		return nil, fmt.Errorf("no image to recognize")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if lang != "" {
		if err := client.SetLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to set OCR language %q: %w", lang, err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set OCR image: %w", err)
	}

	result := &RawResult{}
	levels := []struct {
		level gosseract.PageIteratorLevel
		dst   *[]RawItem
	}{
		{gosseract.RIL_WORD, &result.Words},
		{gosseract.RIL_TEXTLINE, &result.Lines},
		{gosseract.RIL_PARA, &result.Paragraphs},
		{gosseract.RIL_BLOCK, &result.Blocks},
	}

	for _, l := range levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		boxes, err := client.GetBoundingBoxes(l.level)
		if err != nil {
			return nil, fmt.Errorf("tesseract bounding boxes failed: %w", err)
		}
		for _, b := range boxes {
			*l.dst = append(*l.dst, RawItem{
				Text:       b.Word,
				Confidence: b.Confidence,
				X0:         b.Box.Min.X,
				Y0:         b.Box.Min.Y,
				X1:         b.Box.Max.X,
				Y1:         b.Box.Max.Y,
			})
		}
	}

	return result, nil
}
