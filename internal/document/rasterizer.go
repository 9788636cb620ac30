// Package document manages the loaded PDF: validation, page navigation, and
// rasterization of the current page at the fixed scan resolution.
package document

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// Rasterizer renders PDF pages to raster images. Page numbers are 1-indexed.
type Rasterizer interface {
	PageCount(ctx context.Context, path string) (int, error)
	RenderPage(ctx context.Context, path string, page int, dpi float64) (image.Image, error)
	Close() error
}

// PdfiumRasterizer renders pages with pdfium running inside a WebAssembly
// runtime, so no native library install is needed.
type PdfiumRasterizer struct {
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPdfiumRasterizer initializes the pdfium runtime. The annotator renders
// one page at a time, so a single instance suffices.
func NewPdfiumRasterizer() (*PdfiumRasterizer, error) {
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pdfium: %w", err)
	}

	instance, err := pool.GetInstance(30 * time.Second)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	return &PdfiumRasterizer{pool: pool, instance: instance}, nil
}

// PageCount returns the number of pages in the document.
func (r *PdfiumRasterizer) PageCount(ctx context.Context, path string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{FilePath: &path})
	if err != nil {
		return 0, fmt.Errorf("failed to open document: %w", err)
	}
	defer r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	count, err := r.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{Document: doc.Document})
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count.PageCount, nil
}

// RenderPage rasterizes one page at the given DPI. The returned image is a
// copy owned by the caller; pdfium's render buffer is released before
// returning.
func (r *PdfiumRasterizer) RenderPage(ctx context.Context, path string, page int, dpi float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page number: %d", page)
	}

	doc, err := r.instance.OpenDocument(&requests.OpenDocument{FilePath: &path})
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer r.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{Document: doc.Document})

	render, err := r.instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI: int(dpi),
		Page: requests.Page{
			ByIndex: &requests.PageByIndex{
				Document: doc.Document,
				Index:    page - 1,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	defer render.Cleanup()

	src := render.Result.Image
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out, nil
}

// Close releases the pdfium runtime.
func (r *PdfiumRasterizer) Close() error {
	if r.instance != nil {
		if err := r.instance.Close(); err != nil {
			return fmt.Errorf("failed to close pdfium instance: %w", err)
		}
	}
	if r.pool != nil {
		if err := r.pool.Close(); err != nil {
			return fmt.Errorf("failed to close pdfium pool: %w", err)
		}
	}
	return nil
}
