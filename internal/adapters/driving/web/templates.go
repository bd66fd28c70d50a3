package web

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// page is the data rendered by the single page template.
type page struct {
	MaxUploadMB int64
	Message     string
	Error       string
	Downloads   []download
	Warnings    []string
	Input       string
	Stripped    string
}

// download is one link to a stored artifact.
type download struct {
	Name  string
	URL   string
	Label string
}

func renderPage(w io.Writer, p page) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", p)
}
