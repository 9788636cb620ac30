package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Document Tools
	PDFLoadFileDescription = `Open a PDF document for annotation.

**When to use:** Starting any annotation session; must be called before rendering, annotating, or running detection.

**Why it's useful:** Validates the file, counts pages, and classifies the content so you know up front whether the document is born-digital text or a scan that needs OCR.

**Examples:**
• Start a session: "Load invoice-2024-001.pdf to begin marking line items"
• Check a scan: "Load scanned-contract.pdf and check whether OCR is recommended"

**Common workflows:**
1. Annotation Session: Load file → Render page → Add boxes → Export annotations
2. Scan Processing: Load file → Check content_type → Run OCR if "scanned_images"

**Best practices:** Check content_type in the response; "scanned_images" means the text layer is empty and OCR is the way to get text boxes.`

	PDFRenderPageDescription = `Render a page to an image at the scan resolution (300 DPI).

**When to use:** After loading a document, before adding boxes or running table detection or OCR on a page.

**Why it's useful:** Produces the raster that all annotation coordinates are anchored to, and writes a PNG you can display to the user.

**Examples:**
• Render the first page: "Render page 1 of report.pdf for annotation"
• Move through a document: "Render page 5 to annotate the summary table"

**Common workflows:**
1. Page Annotation: Render page → Display PNG → Drag boxes → Add boxes
2. Detection Prep: Render page → Detect tables or run OCR on the raster

**Best practices:** Re-render after changing pages; detection and OCR always run on the most recently rendered page.`

	AnnotationAddBoxDescription = `Add a manual bounding box from a display-space drag rectangle.

**When to use:** The user dragged a rectangle over the displayed page image and it should become an annotation.

**Why it's useful:** Converts on-screen pixel coordinates into resolution-independent PDF points, so annotations stay correct at any zoom level.

**Examples:**
• Mark a signature: "Add a box around the signature at display coordinates (120,540)-(310,600)"
• Tag a figure: "Box the chart the user selected on the rendered page"

**Common workflows:**
1. Manual Annotation: Render page → User drags → Add box → List boxes to confirm
2. Correction: Add box → Update box to nudge position → Export

**Best practices:** Pass the displayed element's width and height with every call; drags smaller than 5x5 display pixels are rejected as accidental clicks.`

	AnnotationListDescription = `List bounding boxes on the current page, optionally filtered by kind.

**When to use:** Reviewing what has been annotated so far, or fetching boxes of one provenance (manual, ocr, table).

**Why it's useful:** Returns boxes in the order they were added with ids usable for update and remove operations.

**Examples:**
• Review everything: "List all boxes before exporting"
• Check detection output: "List table boxes to verify the detected grid"

**Common workflows:**
1. Review: List boxes → Update or remove outliers → Export
2. Selective Cleanup: List by kind → Remove the kind wholesale → Re-run detection

**Best practices:** Kind filter accepts "manual", "ocr", or "table"; omit it to get everything.`

	AnnotationRemoveDescription = `Remove one bounding box by id.

**When to use:** A single annotation is wrong and should be deleted.

**Why it's useful:** Targets exactly one box; other annotations keep their order and ids.

**Examples:**
• Undo a mistake: "Remove box 3f8a... the user drew by accident"

**Common workflows:**
1. Cleanup: List boxes → Identify bad box → Remove by id

**Best practices:** Removing a missing id reports removed=false rather than failing; safe to retry.`

	AnnotationRemoveKindDescription = `Remove every bounding box of one provenance kind.

**When to use:** Clearing all OCR or all table boxes before a re-run, or dropping all manual boxes at once.

**Why it's useful:** One call replaces a loop of individual removals and leaves the other kinds untouched.

**Examples:**
• Reset detection: "Remove all table boxes before detecting with a different mode"
• Drop OCR noise: "Remove all ocr boxes after a low-quality recognition run"

**Common workflows:**
1. Re-detection: Remove kind "table" → Detect tables again (detection also does this implicitly)
2. Fresh OCR: Remove kind "ocr" → Run OCR with a higher confidence threshold

**Best practices:** Detection and OCR already replace their own kind; use this when you want the boxes gone without a re-run.`

	AnnotationClearDescription = `Remove every bounding box on the current page.

**When to use:** Starting the page's annotations over from scratch.

**Why it's useful:** One call resets the store regardless of how the boxes were created.

**Examples:**
• Start over: "Clear all boxes and re-annotate page 2"

**Common workflows:**
1. Restart: Clear boxes → Render page → Annotate again

**Best practices:** This is not undoable; export first if the current set might be worth keeping.`

	AnnotationUpdateDescription = `Update geometry or kind of an existing bounding box.

**When to use:** Nudging a box's position or size, or reclassifying its provenance kind.

**Why it's useful:** Partial updates leave unspecified fields untouched, so you can move a box without restating its size.

**Examples:**
• Nudge position: "Move box 3f8a... to x=72.5 keeping its size"
• Reclassify: "Mark the detected box as manual after the user adjusted it"

**Common workflows:**
1. Fine-tuning: List boxes → Update coordinates → Export
2. Curation: Detect tables → Update kinds of confirmed boxes → Remove the rest

**Best practices:** Coordinates are in PDF points; only the fields you send are changed.`

	AnnotationStatsDescription = `Summarize the bounding boxes on the current page.

**When to use:** Quick overview of how many boxes exist and of which kinds, without listing them all.

**Why it's useful:** Cheap way to drive UI state (e.g. enable "export" only when boxes exist, show whether OCR ran).

**Examples:**
• Status check: "How many boxes are on this page, and are any from OCR?"

**Common workflows:**
1. UI State: Stats → Enable/disable actions based on counts

**Best practices:** Counts group by kind; boxes added without an explicit kind count as manual.`

	TableDetectDescription = `Detect table structure on the rendered page: regions, rule lines, or cells.

**When to use:** The page contains ruled tables and you want their regions, their horizontal/vertical rule lines, or their individual cells as boxes.

**Why it's useful:** Automates the tedious part of table annotation; cells come back with row and column indices so the grid structure is preserved.

**Examples:**
• Find tables: "Detect table regions on page 3 of financial-report.pdf"
• Get the grid: "Detect cells to extract the pricing table structure"

**Common workflows:**
1. Table Annotation: Render page → Detect regions → Detect cells → Export
2. Structure Analysis: Detect lines → Inspect rule layout → Detect cells

**Best practices:** Mode is "regions", "lines", or "cells". Results replace previous table boxes. An empty result means no structure was found, not a failure. Works best on ruled tables; borderless tables are largely invisible to both strategies.`

	OCRRunDescription = `Run text recognition on the rendered page and store word boxes.

**When to use:** The page is a scan (content_type "scanned_images" or "mixed") and you need text with positions.

**Why it's useful:** Produces word/line/paragraph/block text with confidences and converts word positions into point-space boxes alongside your manual annotations.

**Examples:**
• Scanned invoice: "Run OCR on the rendered page to get all text positions"
• High-precision pass: "Run OCR with min_confidence 80 to keep only sure words"

**Common workflows:**
1. Scan Processing: Load file → Render page → Run OCR → Export OCR results
2. Mixed Annotation: Run OCR → Add manual boxes for figures → Export annotations

**Best practices:** Language defaults to "eng" (ISO 639-2 codes, e.g. "deu", "fra"). Results replace previous OCR boxes. If the recognition engine is not installed the tool reports that instead of failing.`

	AnnotationExportDescription = `Export all bounding boxes on the current page as JSON.

**When to use:** Annotation of a page is complete and the boxes should be handed to a downstream system.

**Why it's useful:** Every box is expressed in points, screen pixels, and millimeters simultaneously, so consumers never need to convert.

**Examples:**
• Hand off training data: "Export annotations of page 1 for the labeling pipeline"

**Common workflows:**
1. Labeling: Annotate page → Export annotations → Store JSON → Next page

**Best practices:** The payload records the page, DPI, and OCR settings used, so exports are self-describing.`

	OCRExportDescription = `Export the last OCR run's full hierarchical results as JSON.

**When to use:** After ocr_run, when the complete text hierarchy (words, lines, paragraphs, blocks) is needed, not just the word boxes.

**Why it's useful:** Preserves text, confidences, and coordinates in all three unit systems for downstream text processing.

**Examples:**
• Full text dump: "Export OCR results of the scanned page for indexing"

**Common workflows:**
1. Text Pipeline: Run OCR → Export OCR → Feed to search/indexing

**Best practices:** Requires a prior ocr_run on this document; the export reflects the confidence filter used in that run.`

	AnnotatorInfoDescription = `Get server status, loaded document state, and capability information.

**When to use:** Starting a session, or diagnosing why detection or OCR behaves unexpectedly.

**Why it's useful:** Reports which detection strategy is active (morphological vs pixel-scan fallback), whether OCR is available, and what document is loaded.

**Examples:**
• Session start: "Check annotator info to see whether OCR is installed"
• Debugging: "Why are table results coarse? Check which detection strategy is active"

**Common workflows:**
1. Session Startup: Info → Verify capabilities → Load file
2. Debugging: Info → Check strategy/availability → Adjust expectations

**Best practices:** Run at the start of sessions; the pixel-scan strategy is a degraded approximation, so strategy matters when judging detection quality.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"pdf_load_file":          PDFLoadFileDescription,
	"pdf_render_page":        PDFRenderPageDescription,
	"annotation_add_box":     AnnotationAddBoxDescription,
	"annotation_list":        AnnotationListDescription,
	"annotation_remove":      AnnotationRemoveDescription,
	"annotation_remove_kind": AnnotationRemoveKindDescription,
	"annotation_clear":       AnnotationClearDescription,
	"annotation_update":      AnnotationUpdateDescription,
	"annotation_stats":       AnnotationStatsDescription,
	"table_detect":           TableDetectDescription,
	"ocr_run":                OCRRunDescription,
	"annotation_export":      AnnotationExportDescription,
	"ocr_export":             OCRExportDescription,
	"annotator_info":         AnnotatorInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
