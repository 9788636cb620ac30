package annotate

import (
	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/document"
)

// Request Types

// LoadFileRequest asks the annotator to open a PDF for annotation.
type LoadFileRequest struct {
	Path string `json:"path"`
}

// RenderPageRequest renders one page at the scan resolution. A zero page
// renders the current page.
type RenderPageRequest struct {
	Page int `json:"page"`
}

// AddBoxRequest carries a display-space drag rectangle. X0/Y0 and X1/Y1 are
// the drag corners in display pixels; DisplayWidth/DisplayHeight are the
// dimensions of the on-screen page element the drag happened in.
type AddBoxRequest struct {
	X0            float64 `json:"x0"`
	Y0            float64 `json:"y0"`
	X1            float64 `json:"x1"`
	Y1            float64 `json:"y1"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// ListBoxesRequest lists bounding boxes, optionally restricted to one kind.
type ListBoxesRequest struct {
	Kind string `json:"kind,omitempty"`
}

// RemoveBoxRequest removes one bounding box by id.
type RemoveBoxRequest struct {
	ID string `json:"id"`
}

// RemoveBoxesByKindRequest removes every box of one provenance kind.
type RemoveBoxesByKindRequest struct {
	Kind string `json:"kind"`
}

// ClearBoxesRequest removes every bounding box.
type ClearBoxesRequest struct{}

// UpdateBoxRequest is a partial geometry/classification update. Nil fields
// are left untouched.
type UpdateBoxRequest struct {
	ID     string   `json:"id"`
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Kind   *string  `json:"kind,omitempty"`
}

// BoxStatsRequest asks for a summary of the store contents.
type BoxStatsRequest struct{}

// DetectTablesRequest runs table-structure detection on the rendered page.
// Mode is one of "regions", "lines", "cells".
type DetectTablesRequest struct {
	Mode string `json:"mode"`
}

// RunOCRRequest runs text recognition on the rendered page.
type RunOCRRequest struct {
	Language      string  `json:"language,omitempty"`
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// ExportAnnotationsRequest exports the bounding boxes as JSON.
type ExportAnnotationsRequest struct{}

// ExportOCRRequest exports the last OCR result as JSON.
type ExportOCRRequest struct{}

// ServerInfoRequest asks for server status and usage guidance.
type ServerInfoRequest struct{}

// Response Types

// LoadFileResult reports the opened document.
type LoadFileResult struct {
	Info document.Info `json:"info"`
}

// RenderPageResult reports the rendered page raster.
type RenderPageResult struct {
	Page      int    `json:"page"`
	ImagePath string `json:"image_path"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// AddBoxResult reports the stored box in canonical point space.
type AddBoxResult struct {
	Box annotation.BoundingBox `json:"box"`
}

// ListBoxesResult lists boxes in insertion order.
type ListBoxesResult struct {
	Boxes []annotation.BoundingBox `json:"boxes"`
	Total int                      `json:"total"`
}

// RemoveBoxResult reports whether the id matched a box.
type RemoveBoxResult struct {
	Removed bool `json:"removed"`
}

// RemoveBoxesByKindResult reports how many boxes were removed.
type RemoveBoxesByKindResult struct {
	Removed int `json:"removed"`
}

// ClearBoxesResult reports how many boxes were removed.
type ClearBoxesResult struct {
	Removed int `json:"removed"`
}

// UpdateBoxResult reports the updated box.
type UpdateBoxResult struct {
	Updated bool                   `json:"updated"`
	Box     annotation.BoundingBox `json:"box,omitempty"`
}

// BoxStatsResult summarizes the store.
type BoxStatsResult struct {
	Stats annotation.Stats `json:"stats"`
}

// DetectTablesResult reports the strategy used and the detected boxes.
type DetectTablesResult struct {
	Strategy string                   `json:"strategy"`
	Mode     string                   `json:"mode"`
	Boxes    []annotation.BoundingBox `json:"boxes"`
	Total    int                      `json:"total"`
}

// RunOCRResult reports recognition counts after confidence filtering.
type RunOCRResult struct {
	Available  bool   `json:"available"`
	Message    string `json:"message,omitempty"`
	Words      int    `json:"words"`
	Lines      int    `json:"lines"`
	Paragraphs int    `json:"paragraphs"`
	Blocks     int    `json:"blocks"`
	BoxesAdded int    `json:"boxes_added"`
}

// ExportResult carries an indented JSON document.
type ExportResult struct {
	JSON string `json:"json"`
}

// ServerInfoResult reports server status and capabilities.
type ServerInfoResult struct {
	ServerName     string        `json:"server_name"`
	Version        string        `json:"version"`
	Document       document.Info `json:"document"`
	DetectStrategy string        `json:"detect_strategy"`
	DetectSource   string        `json:"detect_source,omitempty"`
	OCRAvailable   bool          `json:"ocr_available"`
	Processing     bool          `json:"processing"`
	TotalBoxes     int           `json:"total_boxes"`
}
