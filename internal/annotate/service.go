// Package annotate is the service facade behind the MCP tools: it ties the
// document state, the bounding-box store, the table detector, and the OCR
// engine together into one operation per tool.
package annotate

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/detect"
	"github.com/a3tai/mcp-pdf-annotator/internal/document"
	"github.com/a3tai/mcp-pdf-annotator/internal/export"
	"github.com/a3tai/mcp-pdf-annotator/internal/geometry"
	"github.com/a3tai/mcp-pdf-annotator/internal/ocr"
	"github.com/a3tai/mcp-pdf-annotator/internal/units"
)

// Drag rectangles smaller than this in display pixels are accidental clicks,
// not annotations.
const minBoxDisplayPx = 5.0

// Document is the slice of the document service the annotator drives.
type Document interface {
	Load(ctx context.Context, path string) (*document.Info, error)
	GoToPage(page int) error
	RenderCurrentPage(ctx context.Context) (image.Image, error)
	Info() document.Info
	RasterDPI() float64
	TryBeginProcessing() bool
	EndProcessing()
	Processing() bool
}

// Service orchestrates annotation operations over a loaded document.
type Service struct {
	doc        Document
	store      *annotation.Store
	conv       *geometry.Converter
	capability *detect.Capability
	ocrEngine  ocr.Engine

	serverName       string
	version          string
	ocrLanguage      string
	ocrMinConfidence float64

	mu          sync.Mutex
	pageImage   image.Image
	lastOCR     *ocr.TextData
	ocrSettings export.OCRSettings
}

// NewService creates the annotation service. The OCR engine may be nil when
// the recognition dependency is not installed; OCR tools then report
// unavailability instead of failing.
func NewService(doc Document, capability *detect.Capability, ocrEngine ocr.Engine,
	serverName, version, ocrLanguage string, ocrMinConfidence float64,
) *Service {
	return &Service{
		doc:              doc,
		store:            annotation.NewStore(),
		conv:             geometry.NewConverter(doc.RasterDPI()),
		capability:       capability,
		ocrEngine:        ocrEngine,
		serverName:       serverName,
		version:          version,
		ocrLanguage:      ocrLanguage,
		ocrMinConfidence: ocrMinConfidence,
	}
}

// LoadFile opens a PDF and resets annotation state from any previous file.
func (s *Service) LoadFile(ctx context.Context, req LoadFileRequest) (*LoadFileResult, error) {
	info, err := s.doc.Load(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	s.store.Clear()
	s.mu.Lock()
	s.pageImage = nil
	s.lastOCR = nil
	s.mu.Unlock()

	return &LoadFileResult{Info: *info}, nil
}

// RenderPage rasterizes a page at the scan resolution, keeps the raster for
// detection and OCR, and writes a PNG for display.
func (s *Service) RenderPage(ctx context.Context, req RenderPageRequest) (*RenderPageResult, error) {
	if req.Page > 0 {
		if err := s.doc.GoToPage(req.Page); err != nil {
			return nil, err
		}
	}

	img, err := s.doc.RenderCurrentPage(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pageImage = img
	s.mu.Unlock()

	info := s.doc.Info()
	path, err := s.writePagePNG(img, info)
	if err != nil {
		return nil, err
	}

	return &RenderPageResult{
		Page:      info.CurrentPage,
		ImagePath: path,
		Width:     info.RasterWidth,
		Height:    info.RasterHeight,
	}, nil
}

func (s *Service) writePagePNG(img image.Image, info document.Info) (string, error) {
	base := filepath.Base(info.Path)
	name := fmt.Sprintf("%s-page-%d.png", base[:len(base)-len(filepath.Ext(base))], info.CurrentPage)
	path := filepath.Join(os.TempDir(), name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create page image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	return path, nil
}

// AddBox converts a display-space drag rectangle into a canonical point-space
// manual box. The size check runs on the raw display extents so a tiny drag
// is rejected the same way whether or not a page is rendered.
func (s *Service) AddBox(req AddBoxRequest) (*AddBoxResult, error) {
	rect := geometry.NormalizeRect(req.X0, req.Y0, req.X1, req.Y1)
	if rect.Width < minBoxDisplayPx || rect.Height < minBoxDisplayPx {
		return nil, fmt.Errorf("box too small: %.1fx%.1f display px (min %.0fx%.0f)",
			rect.Width, rect.Height, minBoxDisplayPx, minBoxDisplayPx)
	}

	info := s.doc.Info()
	raster := geometry.Size{Width: float64(info.RasterWidth), Height: float64(info.RasterHeight)}
	display := geometry.Size{Width: req.DisplayWidth, Height: req.DisplayHeight}

	rasterRect, ok := s.conv.DisplayToRaster(rect, raster, display)
	if !ok {
		return nil, fmt.Errorf("no rendered page to annotate")
	}

	box := annotation.NewBox(s.conv.RasterToPoint(rasterRect).Pt, units.Point, annotation.KindManual)
	s.store.Add(box)
	return &AddBoxResult{Box: box}, nil
}

// ListBoxes returns boxes in insertion order, optionally filtered by kind.
func (s *Service) ListBoxes(req ListBoxesRequest) (*ListBoxesResult, error) {
	var boxes []annotation.BoundingBox
	if req.Kind != "" {
		kind := annotation.Kind(req.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown box kind: %q", req.Kind)
		}
		boxes = s.store.ByKind(kind)
	} else {
		boxes = s.store.All()
	}
	return &ListBoxesResult{Boxes: boxes, Total: len(boxes)}, nil
}

// RemoveBox deletes one box by id.
func (s *Service) RemoveBox(req RemoveBoxRequest) (*RemoveBoxResult, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("box id is required")
	}
	return &RemoveBoxResult{Removed: s.store.Remove(req.ID)}, nil
}

// RemoveBoxesByKind deletes every box of one provenance kind.
func (s *Service) RemoveBoxesByKind(req RemoveBoxesByKindRequest) (*RemoveBoxesByKindResult, error) {
	kind := annotation.Kind(req.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown box kind: %q", req.Kind)
	}
	return &RemoveBoxesByKindResult{Removed: s.store.RemoveByKind(kind)}, nil
}

// ClearBoxes removes every box.
func (s *Service) ClearBoxes(req ClearBoxesRequest) (*ClearBoxesResult, error) {
	return &ClearBoxesResult{Removed: s.store.Clear()}, nil
}

// UpdateBox merges partial fields into an existing box.
func (s *Service) UpdateBox(req UpdateBoxRequest) (*UpdateBoxResult, error) {
	if req.ID == "" {
		return nil, fmt.Errorf("box id is required")
	}

	u := annotation.Update{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	if req.Kind != nil {
		kind := annotation.Kind(*req.Kind)
		if !kind.Valid() {
			return nil, fmt.Errorf("unknown box kind: %q", *req.Kind)
		}
		u.Kind = &kind
	}

	updated := s.store.Update(req.ID, u)
	result := &UpdateBoxResult{Updated: updated}
	if updated {
		result.Box, _ = s.store.Get(req.ID)
	}
	return result, nil
}

// BoxStats summarizes the store contents.
func (s *Service) BoxStats(req BoxStatsRequest) (*BoxStatsResult, error) {
	return &BoxStatsResult{Stats: s.store.Stats()}, nil
}

// DetectTables runs table-structure detection on the rendered page and
// replaces all previous table boxes with the new result. Only one detection
// or OCR operation may run at a time.
func (s *Service) DetectTables(req DetectTablesRequest) (*DetectTablesResult, error) {
	mode := detect.Mode(req.Mode)
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown detection mode: %q", req.Mode)
	}

	img := s.currentImage()
	if img == nil {
		return nil, fmt.Errorf("no rendered page; call render first")
	}

	if !s.doc.TryBeginProcessing() {
		return nil, fmt.Errorf("another detection or OCR operation is in progress")
	}
	defer s.doc.EndProcessing()

	detector := detect.NewDetector(s.capability, s.conv)
	boxes, err := detector.Detect(img, mode)
	if err != nil {
		return nil, err
	}

	s.store.RemoveByKind(annotation.KindTable)
	s.store.AddAll(boxes)

	return &DetectTablesResult{
		Strategy: detector.Name(),
		Mode:     req.Mode,
		Boxes:    boxes,
		Total:    len(boxes),
	}, nil
}

// RunOCR runs text recognition on the rendered page, filters by confidence,
// and replaces all previous OCR boxes with the recognized words. A missing
// recognition dependency is reported in the result, not as an error.
func (s *Service) RunOCR(ctx context.Context, req RunOCRRequest) (*RunOCRResult, error) {
	if s.ocrEngine == nil || !s.ocrEngine.Available() {
		return &RunOCRResult{
			Available: false,
			Message:   "text recognition engine is not installed",
		}, nil
	}

	img := s.currentImage()
	if img == nil {
		return nil, fmt.Errorf("no rendered page; call render first")
	}

	if !s.doc.TryBeginProcessing() {
		return nil, fmt.Errorf("another detection or OCR operation is in progress")
	}
	defer s.doc.EndProcessing()

	lang := req.Language
	if lang == "" {
		lang = s.ocrLanguage
	}
	minConfidence := req.MinConfidence
	if minConfidence <= 0 {
		minConfidence = s.ocrMinConfidence
	}

	raw, err := s.ocrEngine.Recognize(ctx, img, lang)
	if err != nil {
		return nil, fmt.Errorf("text recognition failed: %w", err)
	}

	data := ocr.Filter(ocr.Normalize(raw, s.conv), minConfidence)
	boxes := ocr.ToBoxes(data, ocr.LevelWord)

	s.store.RemoveByKind(annotation.KindOCR)
	s.store.AddAll(boxes)

	s.mu.Lock()
	s.lastOCR = data
	s.ocrSettings = export.OCRSettings{Language: lang, MinConfidence: minConfidence}
	s.mu.Unlock()

	return &RunOCRResult{
		Available:  true,
		Words:      len(data.Words),
		Lines:      len(data.Lines),
		Paragraphs: len(data.Paragraphs),
		Blocks:     len(data.Blocks),
		BoxesAdded: len(boxes),
	}, nil
}

// ExportAnnotations builds the annotation export JSON for the current page.
func (s *Service) ExportAnnotations(req ExportAnnotationsRequest) (*ExportResult, error) {
	info := s.doc.Info()
	if !info.Loaded {
		return nil, fmt.Errorf("no document loaded")
	}

	s.mu.Lock()
	settings := s.ocrSettings
	s.mu.Unlock()

	payload := export.BuildAnnotation(filepath.Base(info.Path), info.CurrentPage,
		s.conv.RasterDPI(), settings, s.conv, s.store.All())
	data, err := export.MarshalAnnotation(payload)
	if err != nil {
		return nil, err
	}
	return &ExportResult{JSON: string(data)}, nil
}

// ExportOCR builds the OCR export JSON from the last recognition run.
func (s *Service) ExportOCR(req ExportOCRRequest) (*ExportResult, error) {
	info := s.doc.Info()
	if !info.Loaded {
		return nil, fmt.Errorf("no document loaded")
	}

	s.mu.Lock()
	results := s.lastOCR
	settings := s.ocrSettings
	s.mu.Unlock()

	if results == nil {
		return nil, fmt.Errorf("no OCR results; run recognition first")
	}

	payload := export.BuildOCR(filepath.Base(info.Path), info.CurrentPage,
		s.conv.RasterDPI(), settings, results)
	data, err := export.MarshalOCR(payload)
	if err != nil {
		return nil, err
	}
	return &ExportResult{JSON: string(data)}, nil
}

// ServerInfo reports server status and capabilities.
func (s *Service) ServerInfo(req ServerInfoRequest) (*ServerInfoResult, error) {
	detector := detect.NewDetector(s.capability, s.conv)
	return &ServerInfoResult{
		ServerName:     s.serverName,
		Version:        s.version,
		Document:       s.doc.Info(),
		DetectStrategy: detector.Name(),
		DetectSource:   s.capability.Source(),
		OCRAvailable:   s.ocrEngine != nil && s.ocrEngine.Available(),
		Processing:     s.doc.Processing(),
		TotalBoxes:     s.store.Len(),
	}, nil
}

func (s *Service) currentImage() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageImage
}
