package document

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync/atomic"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	xdraw "golang.org/x/image/draw"
)

// Info describes the loaded document and the current page. RasterWidth and
// RasterHeight are zero until the current page has been rendered.
type Info struct {
	Path         string `json:"path"`
	ContentType  string `json:"content_type"`
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	RasterWidth  int    `json:"raster_width"`
	RasterHeight int    `json:"raster_height"`
	Loaded       bool   `json:"loaded"`
}

// Service owns the loaded document state. Loading a new file replaces the
// state wholesale; page navigation updates the current page and invalidates
// the rendered raster.
type Service struct {
	maxFileSize int64
	rasterDPI   float64
	rasterizer  Rasterizer

	info       Info
	processing atomic.Bool
}

// NewService creates a document service rendering pages at the given DPI.
func NewService(maxFileSize int64, rasterDPI float64, rasterizer Rasterizer) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		rasterDPI:   rasterDPI,
		rasterizer:  rasterizer,
	}
}

// RasterDPI returns the scan resolution pages are rendered at.
func (s *Service) RasterDPI() float64 {
	return s.rasterDPI
}

// Info returns a copy of the current document state.
func (s *Service) Info() Info {
	return s.info
}

// Load validates and opens a PDF, replacing any previously loaded document.
func (s *Service) Load(ctx context.Context, path string) (*Info, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if err := s.validateFile(path, fileInfo); err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return nil, fmt.Errorf("not a readable PDF: %w", err)
	}

	totalPages, err := s.rasterizer.PageCount(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page count: %w", err)
	}
	if totalPages < 1 {
		return nil, fmt.Errorf("document has no pages")
	}

	s.info = Info{
		Path:        path,
		ContentType: ClassifyContent(path),
		CurrentPage: 1,
		TotalPages:  totalPages,
		Loaded:      true,
	}
	return &s.info, nil
}

func (s *Service) validateFile(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if fileInfo.Size() > s.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), s.maxFileSize)
	}
	return nil
}

// GoToPage moves to a 1-indexed page and invalidates the rendered raster.
func (s *Service) GoToPage(page int) error {
	if !s.info.Loaded {
		return fmt.Errorf("no document loaded")
	}
	if page < 1 || page > s.info.TotalPages {
		return fmt.Errorf("page %d out of range [1, %d]", page, s.info.TotalPages)
	}
	s.info.CurrentPage = page
	s.info.RasterWidth = 0
	s.info.RasterHeight = 0
	return nil
}

// NextPage advances one page, clamping at the last page.
func (s *Service) NextPage() error {
	if s.info.CurrentPage >= s.info.TotalPages {
		return nil
	}
	return s.GoToPage(s.info.CurrentPage + 1)
}

// PrevPage steps back one page, clamping at the first page.
func (s *Service) PrevPage() error {
	if s.info.CurrentPage <= 1 {
		return nil
	}
	return s.GoToPage(s.info.CurrentPage - 1)
}

// RenderCurrentPage rasterizes the current page at the scan resolution and
// records the raster dimensions.
func (s *Service) RenderCurrentPage(ctx context.Context) (image.Image, error) {
	if !s.info.Loaded {
		return nil, fmt.Errorf("no document loaded")
	}

	img, err := s.rasterizer.RenderPage(ctx, s.info.Path, s.info.CurrentPage, s.rasterDPI)
	if err != nil {
		return nil, err
	}

	s.info.RasterWidth = img.Bounds().Dx()
	s.info.RasterHeight = img.Bounds().Dy()
	return img, nil
}

// DisplayPreview scales a raster image down to fit within maxW x maxH while
// preserving aspect ratio, for display-space presentation. Images already
// within bounds are returned unchanged.
func DisplayPreview(img image.Image, maxW, maxH int) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= maxW && h <= maxH {
		return img
	}

	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	dstW := max(1, int(float64(w)*scale))
	dstH := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// TryBeginProcessing attempts to claim the single in-flight detection/OCR
// slot. Callers must call EndProcessing when done. A false return means
// another operation is outstanding and the request should be rejected, not
// queued.
func (s *Service) TryBeginProcessing() bool {
	return s.processing.CompareAndSwap(false, true)
}

// EndProcessing releases the processing slot.
func (s *Service) EndProcessing() {
	s.processing.Store(false)
}

// Processing reports whether a detection or OCR operation is in flight.
func (s *Service) Processing() bool {
	return s.processing.Load()
}
