package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/a3tai/mcp-pdf-annotator/internal/annotation"
	"github.com/a3tai/mcp-pdf-annotator/internal/detect"
	"github.com/a3tai/mcp-pdf-annotator/internal/document"
	"github.com/a3tai/mcp-pdf-annotator/internal/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDoc is an in-memory Document with a 2550x3300 raster (US Letter at
// 300 DPI).
type fakeDoc struct {
	info       document.Info
	processing bool
	renderErr  error
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{
		info: document.Info{
			Path:        "/tmp/test.pdf",
			ContentType: document.ContentTypeText,
			CurrentPage: 1,
			TotalPages:  3,
			Loaded:      true,
		},
	}
}

func (d *fakeDoc) Load(ctx context.Context, path string) (*document.Info, error) {
	d.info.Path = path
	d.info.CurrentPage = 1
	d.info.Loaded = true
	return &d.info, nil
}

func (d *fakeDoc) GoToPage(page int) error {
	if page < 1 || page > d.info.TotalPages {
		return fmt.Errorf("page %d out of range", page)
	}
	d.info.CurrentPage = page
	return nil
}

func (d *fakeDoc) RenderCurrentPage(ctx context.Context) (image.Image, error) {
	if d.renderErr != nil {
		return nil, d.renderErr
	}
	img := image.NewRGBA(image.Rect(0, 0, 2550, 3300))
	for y := 0; y < 3300; y++ {
		for x := 0; x < 2550; x++ {
			img.Set(x, y, color.White)
		}
	}
	d.info.RasterWidth = 2550
	d.info.RasterHeight = 3300
	return img, nil
}

func (d *fakeDoc) Info() document.Info { return d.info }
func (d *fakeDoc) RasterDPI() float64  { return 300 }

func (d *fakeDoc) TryBeginProcessing() bool {
	if d.processing {
		return false
	}
	d.processing = true
	return true
}

func (d *fakeDoc) EndProcessing() { d.processing = false }

func (d *fakeDoc) Processing() bool { return d.processing }

type fakeOCR struct {
	available bool
	result    *ocr.RawResult
	err       error
}

func (f *fakeOCR) Recognize(ctx context.Context, img image.Image, lang string) (*ocr.RawResult, error) {
	return f.result, f.err
}

func (f *fakeOCR) Available() bool { return f.available }

func newTestService(ocrEngine ocr.Engine) (*Service, *fakeDoc) {
	doc := newFakeDoc()
	svc := NewService(doc, detect.FailedCapability(), ocrEngine,
		"mcp-pdf-annotator", "test", "eng", 0)
	return svc, doc
}

func renderedService(t *testing.T, ocrEngine ocr.Engine) (*Service, *fakeDoc) {
	t.Helper()
	svc, doc := newTestService(ocrEngine)
	_, err := svc.RenderPage(context.Background(), RenderPageRequest{})
	require.NoError(t, err)
	return svc, doc
}

func TestAddBoxConvertsDisplayDragToPoints(t *testing.T) {
	svc, _ := renderedService(t, nil)

	// Display element shows the 2550x3300 raster at 850x1100, so display
	// coordinates scale by 3x into raster space and /(300/72) into points.
	result, err := svc.AddBox(AddBoxRequest{
		X0: 100, Y0: 200, X1: 200, Y1: 250,
		DisplayWidth: 850, DisplayHeight: 1100,
	})
	require.NoError(t, err)

	box := result.Box
	assert.Equal(t, annotation.KindManual, box.Kind)
	assert.InDelta(t, 72.0, box.X, 0.01)
	assert.InDelta(t, 144.0, box.Y, 0.01)
	assert.InDelta(t, 72.0, box.Width, 0.01)
	assert.InDelta(t, 36.0, box.Height, 0.01)
	assert.NotEmpty(t, box.ID)
}

func TestAddBoxNormalizesDragDirection(t *testing.T) {
	svc, _ := renderedService(t, nil)

	// Dragging up-left gives the same box as down-right.
	a, err := svc.AddBox(AddBoxRequest{X0: 200, Y0: 250, X1: 100, Y1: 200, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)
	b, err := svc.AddBox(AddBoxRequest{X0: 100, Y0: 200, X1: 200, Y1: 250, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)

	assert.Equal(t, a.Box.X, b.Box.X)
	assert.Equal(t, a.Box.Width, b.Box.Width)
}

func TestAddBoxRejectsTinyDragBeforeRasterCheck(t *testing.T) {
	svc, _ := newTestService(nil)

	// No page rendered; the size check still fires first.
	_, err := svc.AddBox(AddBoxRequest{X0: 0, Y0: 0, X1: 4, Y1: 4, DisplayWidth: 850, DisplayHeight: 1100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
}

func TestAddBoxRequiresRenderedPage(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.AddBox(AddBoxRequest{X0: 0, Y0: 0, X1: 50, Y1: 50, DisplayWidth: 850, DisplayHeight: 1100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rendered page")
}

func TestListRemoveUpdateRoundTrip(t *testing.T) {
	svc, _ := renderedService(t, nil)

	added, err := svc.AddBox(AddBoxRequest{X0: 10, Y0: 10, X1: 110, Y1: 110, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)

	list, err := svc.ListBoxes(ListBoxesRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	newX := 50.0
	updated, err := svc.UpdateBox(UpdateBoxRequest{ID: added.Box.ID, X: &newX})
	require.NoError(t, err)
	assert.True(t, updated.Updated)
	assert.Equal(t, 50.0, updated.Box.X)
	assert.Equal(t, added.Box.Width, updated.Box.Width, "unset fields untouched")

	removed, err := svc.RemoveBox(RemoveBoxRequest{ID: added.Box.ID})
	require.NoError(t, err)
	assert.True(t, removed.Removed)

	removed, err = svc.RemoveBox(RemoveBoxRequest{ID: added.Box.ID})
	require.NoError(t, err)
	assert.False(t, removed.Removed, "removing a missing id is a no-op")
}

func TestListBoxesRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.ListBoxes(ListBoxesRequest{Kind: "sticker"})
	assert.Error(t, err)
}

func TestDetectTablesReplacesTableBoxes(t *testing.T) {
	svc, _ := renderedService(t, nil)

	// A stale table box from an earlier run.
	svc.store.Add(annotation.BoundingBox{ID: "stale", Kind: annotation.KindTable, Row: -1, Col: -1})
	manual, err := svc.AddBox(AddBoxRequest{X0: 10, Y0: 10, X1: 110, Y1: 110, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)

	// The blank page yields no structure; the stale box is still replaced.
	result, err := svc.DetectTables(DetectTablesRequest{Mode: "regions"})
	require.NoError(t, err)
	assert.Equal(t, "pixel-scan", result.Strategy)
	assert.Empty(t, result.Boxes)

	_, ok := svc.store.Get("stale")
	assert.False(t, ok, "previous table boxes are replaced")
	_, ok = svc.store.Get(manual.Box.ID)
	assert.True(t, ok, "manual boxes survive detection")
}

func TestDetectTablesValidatesMode(t *testing.T) {
	svc, _ := renderedService(t, nil)

	_, err := svc.DetectTables(DetectTablesRequest{Mode: "diagonal"})
	assert.Error(t, err)
}

func TestDetectTablesRequiresRenderedPage(t *testing.T) {
	svc, _ := newTestService(nil)

	_, err := svc.DetectTables(DetectTablesRequest{Mode: "regions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rendered page")
}

func TestDetectTablesRejectedWhileBusy(t *testing.T) {
	svc, doc := renderedService(t, nil)
	doc.processing = true

	_, err := svc.DetectTables(DetectTablesRequest{Mode: "regions"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in progress")
	assert.True(t, doc.processing, "foreign processing flag is left alone")
}

func TestRunOCRUnavailableEngine(t *testing.T) {
	svc, _ := renderedService(t, &fakeOCR{available: false})

	result, err := svc.RunOCR(context.Background(), RunOCRRequest{})
	require.NoError(t, err, "missing engine is a status, not an error")
	assert.False(t, result.Available)
	assert.NotEmpty(t, result.Message)
}

func TestRunOCRStoresWordBoxes(t *testing.T) {
	engine := &fakeOCR{
		available: true,
		result: &ocr.RawResult{
			Words: []ocr.RawItem{
				{Text: "alpha", Confidence: 95, X0: 0, Y0: 0, X1: 100, Y1: 40},
				{Text: "noise", Confidence: 20, X0: 0, Y0: 50, X1: 30, Y1: 60},
			},
			Lines: []ocr.RawItem{{Text: "alpha noise", Confidence: 80, X0: 0, Y0: 0, X1: 100, Y1: 60}},
		},
	}
	svc, _ := renderedService(t, engine)

	result, err := svc.RunOCR(context.Background(), RunOCRRequest{MinConfidence: 50})
	require.NoError(t, err)
	assert.True(t, result.Available)
	assert.Equal(t, 1, result.Words, "low-confidence word filtered out")
	assert.Equal(t, 1, result.Lines)
	assert.Equal(t, 1, result.BoxesAdded)

	ocrBoxes := svc.store.ByKind(annotation.KindOCR)
	require.Len(t, ocrBoxes, 1)
	assert.InDelta(t, 24.0, ocrBoxes[0].Width, 0.01)

	// A second run replaces the previous OCR boxes instead of accumulating.
	_, err = svc.RunOCR(context.Background(), RunOCRRequest{MinConfidence: 50})
	require.NoError(t, err)
	assert.Len(t, svc.store.ByKind(annotation.KindOCR), 1)
}

func TestRunOCRPropagatesEngineFailure(t *testing.T) {
	svc, _ := renderedService(t, &fakeOCR{available: true, err: fmt.Errorf("tesseract crashed")})

	_, err := svc.RunOCR(context.Background(), RunOCRRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recognition failed")
}

func TestExportAnnotationsJSON(t *testing.T) {
	svc, _ := renderedService(t, nil)
	_, err := svc.AddBox(AddBoxRequest{X0: 10, Y0: 10, X1: 110, Y1: 110, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)

	result, err := svc.ExportAnnotations(ExportAnnotationsRequest{})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.JSON), &payload))
	assert.Equal(t, "test.pdf", payload["filename"])
	assert.Equal(t, 300.0, payload["dpi"])
	boxes, ok := payload["bounding_boxes"].([]any)
	require.True(t, ok)
	assert.Len(t, boxes, 1)
}

func TestExportOCRRequiresPriorRun(t *testing.T) {
	svc, _ := renderedService(t, nil)

	_, err := svc.ExportOCR(ExportOCRRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run recognition first")
}

func TestExportOCRJSON(t *testing.T) {
	engine := &fakeOCR{
		available: true,
		result: &ocr.RawResult{
			Words: []ocr.RawItem{{Text: "hello", Confidence: 90, X0: 0, Y0: 0, X1: 50, Y1: 20}},
		},
	}
	svc, _ := renderedService(t, engine)
	_, err := svc.RunOCR(context.Background(), RunOCRRequest{Language: "deu"})
	require.NoError(t, err)

	result, err := svc.ExportOCR(ExportOCRRequest{})
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.JSON), &payload))
	settings, ok := payload["ocr_settings"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "deu", settings["language"])
	assert.Contains(t, result.JSON, `"hello"`)
}

func TestServerInfo(t *testing.T) {
	svc, _ := renderedService(t, &fakeOCR{available: true})

	info, err := svc.ServerInfo(ServerInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "mcp-pdf-annotator", info.ServerName)
	assert.Equal(t, "pixel-scan", info.DetectStrategy)
	assert.True(t, info.OCRAvailable)
	assert.True(t, info.Document.Loaded)
}

func TestLoadFileResetsAnnotationState(t *testing.T) {
	svc, _ := renderedService(t, nil)
	_, err := svc.AddBox(AddBoxRequest{X0: 10, Y0: 10, X1: 110, Y1: 110, DisplayWidth: 850, DisplayHeight: 1100})
	require.NoError(t, err)

	_, err = svc.LoadFile(context.Background(), LoadFileRequest{Path: "/tmp/other.pdf"})
	require.NoError(t, err)

	assert.Zero(t, svc.store.Len(), "boxes from the previous file are dropped")
	_, err = svc.DetectTables(DetectTablesRequest{Mode: "regions"})
	assert.Error(t, err, "rendered raster from the previous file is dropped")
}
