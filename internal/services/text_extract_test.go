package services

import (
	"strings"
	"testing"
)

func TestExtractTextPlain(t *testing.T) {
	got, err := ExtractText("notes.txt", "text/plain", []byte("hello   world\n\nsecond line"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if got != "hello world second line" {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextMarkdownBySniff(t *testing.T) {
	// No mime, .md extension, plain bytes.
	got, err := ExtractText("notes.md", "", []byte("# Title\nbody text"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(got, "Title") || !strings.Contains(got, "body text") {
		t.Fatalf("got %q", got)
	}
}

func TestExtractTextHTMLStripsTags(t *testing.T) {
	html := `<!DOCTYPE html><html><body><h1>Photosynthesis</h1><p>Plants&nbsp;make&amp;store energy.</p></body></html>`
	got, err := ExtractText("page.html", "text/html", []byte(html))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if strings.Contains(got, "<") {
		t.Fatalf("tags not stripped: %q", got)
	}
	if !strings.Contains(got, "Photosynthesis") || !strings.Contains(got, "make&store") {
		t.Fatalf("entities mishandled: %q", got)
	}
}

func TestExtractTextEmptyFileErrors(t *testing.T) {
	if _, err := ExtractText("notes.txt", "text/plain", nil); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestExtractTextFakePDFErrors(t *testing.T) {
	// Claims pdf but has no %PDF header.
	if _, err := ExtractText("doc.pdf", "application/pdf", []byte{0x00, 0x01, 0x02, 0x03}); err == nil {
		t.Fatalf("expected error for fake pdf")
	}
}

func TestExtractTextUnknownBinaryErrors(t *testing.T) {
	if _, err := ExtractText("blob.bin", "application/octet-stream", []byte{0x00, 0xFF, 0x00, 0xFF}); err == nil {
		t.Fatalf("expected error for unknown binary")
	}
}
