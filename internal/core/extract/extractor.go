package extract

import (
	"bytes"
	"log"

	"code.sajari.com/docconv"

	"knowledgescout/internal/core"
)

// Placeholder content substituted for missing or failed extraction so the
// pipeline always sees well-formed text.
const (
	PlaceholderUnsupported = "Text extraction not yet implemented for this file type."
	PlaceholderFailed      = "Failed to extract text from document."
)

var _ core.DocumentExtractor = (*DocconvExtractor)(nil)

// DocconvExtractor implements core.DocumentExtractor. PDFs go through
// docconv, plain text is passed through verbatim, every other allow-listed
// type gets the unsupported placeholder. Never returns an error: extraction
// failure is converted to placeholder content.
type DocconvExtractor struct{}

func NewDocconvExtractor() *DocconvExtractor {
	return &DocconvExtractor{}
}

func (e *DocconvExtractor) ExtractText(data []byte, contentType string) string {
	switch contentType {
	case "application/pdf":
		return e.extractPDF(data)
	case "text/plain":
		return string(data)
	default:
		return PlaceholderUnsupported
	}
}

func (e *DocconvExtractor) extractPDF(data []byte) (text string) {
	// docconv can panic on malformed input; the contract here is total.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extract: panic while parsing pdf: %v", r)
			text = PlaceholderFailed
		}
	}()

	res, err := docconv.Convert(bytes.NewReader(data), "application/pdf", false)
	if err != nil || res == nil {
		log.Printf("extract: pdf extraction failed: %v", err)
		return PlaceholderFailed
	}
	return res.Body
}
