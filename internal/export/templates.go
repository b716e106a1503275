package export

import (
	"bytes"
	"html/template"
	"strings"
)

var documentTemplate = template.Must(template.New("document").Parse(documentHTML))

// TemplateData holds data for document template rendering.
type TemplateData struct {
	Title      string
	Author     string
	Date       string
	Paragraphs []string
}

// RenderDocumentHTML renders the printable HTML view of a document. The text
// is split on blank lines into paragraphs; escaping is left to html/template.
func RenderDocumentHTML(doc Document) (string, error) {
	data := TemplateData{
		Title:  doc.Title,
		Author: doc.Author,
		Date:   doc.Date,
	}
	for _, block := range strings.Split(doc.Text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		data.Paragraphs = append(data.Paragraphs, block)
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Georgia, serif; line-height: 1.6; max-width: 720px; margin: 2rem auto; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    p { white-space: pre-wrap; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div class="meta">{{if .Author}}{{.Author}}{{end}}{{if .Date}} | {{.Date}}{{end}}</div>
  {{range .Paragraphs}}<p>{{.}}</p>
  {{end}}
</body>
</html>`
