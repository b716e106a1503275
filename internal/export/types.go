// Package export renders saved documents as downloadable files.
package export

import "errors"

// Format represents the export output format.
type Format string

const (
	FormatText Format = "txt"
	FormatPDF  Format = "pdf"
)

// Document is the content handed to the exporter.
type Document struct {
	Title  string
	Text   string
	Author string
	Date   string
}

// Result contains the export output.
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrUnsupportedFormat indicates the requested format is not exportable.
	ErrUnsupportedFormat = errors.New("export format unsupported")
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
