// Package templates renders the HTML surface from embedded files.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/duckbook/duckbook/backend/utils"
)

//go:embed *.html
var files embed.FS

// Renderer renders a named page inside the base layout.
type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page template against the base layout.
func New() (*Renderer, error) {
	pages := []string{
		"ducks.html",
		"duck_detail.html",
		"vocabulary.html",
		"terms.html",
		"disclaimer.html",
		"login.html",
		"register.html",
		"error.html",
	}

	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New("base.html").
			Funcs(utils.TemplateFuncs()).
			ParseFS(files, "base.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		parsed[page] = tmpl
	}

	return &Renderer{templates: parsed}, nil
}

// Render executes a page template with the given data.
func (r *Renderer) Render(page string, data interface{}) ([]byte, error) {
	tmpl, ok := r.templates[page]
	if !ok {
		return nil, fmt.Errorf("unknown template %s", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", page, err)
	}
	return buf.Bytes(), nil
}
