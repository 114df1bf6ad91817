package extract

import "testing"

func TestExtractTextPlainTextVerbatim(t *testing.T) {
	e := NewDocconvExtractor()
	got := e.ExtractText([]byte("Hello world"), "text/plain")
	if got != "Hello world" {
		t.Fatalf("ExtractText() = %q, want %q", got, "Hello world")
	}
}

func TestExtractTextUnsupportedTypePlaceholder(t *testing.T) {
	e := NewDocconvExtractor()
	for _, ct := range []string{
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/rtf",
	} {
		if got := e.ExtractText([]byte("irrelevant"), ct); got != PlaceholderUnsupported {
			t.Fatalf("ExtractText(%q) = %q, want unsupported placeholder", ct, got)
		}
	}
}

func TestExtractTextCorruptPDFPlaceholder(t *testing.T) {
	e := NewDocconvExtractor()
	got := e.ExtractText([]byte("definitely not a pdf"), "application/pdf")
	if got != PlaceholderFailed {
		t.Fatalf("ExtractText(corrupt pdf) = %q, want failed placeholder", got)
	}
}
