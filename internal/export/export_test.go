package export

import (
	"strings"
	"testing"
)

func TestExportText(t *testing.T) {
	svc := NewService()

	result, err := svc.Export(Document{Title: "My Great   Essay", Text: "hello world"}, FormatText)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(result.Data) != "hello world" {
		t.Errorf("data = %q", result.Data)
	}
	if result.Filename != "My_Great_Essay.txt" {
		t.Errorf("filename = %q, want My_Great_Essay.txt", result.Filename)
	}
	if result.MimeType != "text/plain; charset=utf-8" {
		t.Errorf("mime = %q", result.MimeType)
	}
}

func TestExportTextEmptyTitle(t *testing.T) {
	svc := NewService()

	result, err := svc.Export(Document{Title: "   ", Text: "x"}, FormatText)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.Filename != "Untitled_Document.txt" {
		t.Errorf("filename = %q", result.Filename)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewService()

	if _, err := svc.Export(Document{Title: "x"}, Format("docx")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRenderDocumentHTML(t *testing.T) {
	html, err := RenderDocumentHTML(Document{
		Title:  "Essay",
		Author: "Avery",
		Date:   "2026-03-09",
		Text:   "First paragraph.\n\nSecond <b>paragraph</b>.",
	})
	if err != nil {
		t.Fatalf("RenderDocumentHTML() error = %v", err)
	}
	if !strings.Contains(html, "<h1>Essay</h1>") {
		t.Error("missing title heading")
	}
	if !strings.Contains(html, "<p>First paragraph.</p>") {
		t.Error("missing first paragraph")
	}
	if strings.Contains(html, "<b>paragraph</b>") {
		t.Error("user text must be HTML-escaped")
	}
	if !strings.Contains(html, "Avery") || !strings.Contains(html, "2026-03-09") {
		t.Error("missing author or date metadata")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"My Great Essay": "My-Great-Essay",
		"weird/<>chars":  "weirdchars",
		"":               "document",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	if got := percentEncodeForDataURL("a b"); got != "a%20b" {
		t.Errorf("space encoding = %q, want a%%20b", got)
	}
	if got := percentEncodeForDataURL("a+b"); got != "a%2Bb" {
		t.Errorf("plus encoding = %q, want a%%2Bb", got)
	}
}
