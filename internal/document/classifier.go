package document

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// Content type classifications for a loaded document.
const (
	ContentTypeText          = "text"
	ContentTypeScannedImages = "scanned_images"
	ContentTypeMixed         = "mixed"
	ContentTypeNoContent     = "no_content"
)

// Minimum embedded text length to consider a document text-bearing; below
// this a scan is assumed and OCR is worth recommending.
const minMeaningfulTextLength = 50

// maxProbeTextSize bounds how much embedded text the classifier reads.
const maxProbeTextSize = 1 * 1024 * 1024

// ClassifyContent probes a PDF's embedded text layer to decide whether its
// pages are born-digital text, scanned images, or a mix. The result drives
// the OCR recommendation in tool output; classification failures degrade to
// "no_content" rather than failing the load.
func ClassifyContent(path string) string {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return ContentTypeNoContent
	}
	defer f.Close()

	text := probeText(reader)
	hasImages := probeImages(reader)

	if len(text) < minMeaningfulTextLength {
		if hasImages {
			return ContentTypeScannedImages
		}
		return ContentTypeNoContent
	}
	if hasImages {
		return ContentTypeMixed
	}
	return ContentTypeText
}

func probeText(reader *pdf.Reader) string {
	var builder strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if builder.Len()+len(content) > maxProbeTextSize {
			builder.WriteString(content[:maxProbeTextSize-builder.Len()])
			break
		}
		builder.WriteString(content)
	}
	return strings.TrimSpace(builder.String())
}

// probeImages scans page resources for image XObjects.
func probeImages(reader *pdf.Reader) (found bool) {
	defer func() {
		// Malformed resource dictionaries can panic inside the parser;
		// report what was found so far.
		_ = recover()
	}()

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		resources := page.V.Key("Resources")
		if resources.IsNull() {
			continue
		}
		xobjects := resources.Key("XObject")
		if xobjects.IsNull() {
			continue
		}
		for _, name := range xobjects.Keys() {
			obj := xobjects.Key(name)
			if obj.Kind() == pdf.Stream && obj.Key("Subtype").Name() == "Image" {
				return true
			}
		}
	}
	return false
}
