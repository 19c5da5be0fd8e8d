package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/pbaille/jobtrack/internal/domain"
)

//go:embed templates/page.html
var templates embed.FS

var pageTmpl = template.Must(template.ParseFS(templates, "templates/page.html"))

// Page is everything the list page needs
type Page struct {
	Cards    []Card
	Stats    domain.Stats
	Query    string
	Status   domain.Status
	Statuses []domain.Status
	// Empty is true when there are no applications at all, as opposed to
	// none matching the filter.
	Empty bool
}

// Render writes the HTML page. User-supplied text is escaped.
func Render(w io.Writer, p Page) error {
	if p.Statuses == nil {
		p.Statuses = domain.Statuses
	}
	return pageTmpl.Execute(w, p)
}
