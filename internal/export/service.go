package export

import (
	"fmt"
	"regexp"
	"strings"
)

// Service renders documents into downloadable files.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Export generates an export in the requested format.
func (s *Service) Export(doc Document, format Format) (*Result, error) {
	switch format {
	case FormatText:
		return exportText(doc)
	case FormatPDF:
		html, err := RenderDocumentHTML(doc)
		if err != nil {
			return nil, fmt.Errorf("render template: %w", err)
		}
		return exportPDF(html, doc.Title)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// exportText writes the raw buffer. Filenames follow the in-editor download
// naming: whitespace runs in the title collapse to underscores.
func exportText(doc Document) (*Result, error) {
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		title = "Untitled Document"
	}
	return &Result{
		Data:     []byte(doc.Text),
		Filename: whitespaceRun.ReplaceAllString(title, "_") + ".txt",
		MimeType: "text/plain; charset=utf-8",
	}, nil
}

// sanitizeFilename creates a safe filename from a title for PDF downloads.
func sanitizeFilename(title string) string {
	result := ""
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result += string(r)
		case r == ' ':
			result += "-"
		case r == '-', r == '_':
			result += string(r)
		}
	}
	if len(result) > 50 {
		result = result[:50]
	}
	if result == "" {
		result = "document"
	}
	return result
}
