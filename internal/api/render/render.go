// Package render executes the site's html/template pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/thaivisachecklist/server/internal/checklist"
	"github.com/thaivisachecklist/server/internal/reporting"
)

const (
	layoutFile  = "templates/layout.html"
	partialGlob = "templates/partials/*.html"
	pageGlob    = "templates/pages/*.html"
)

// Page is the data every template receives. Data carries the page's own
// view model.
type Page struct {
	Title        string
	Description  string
	Path         string
	CanonicalURL string
	FontSize     checklist.FontSize
	CSRFField    template.HTML
	Year         int
	Data         any
}

// Renderer holds one parsed template set per page, each sharing the layout
// and partials.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"itemKey": checklist.ItemKey,
	"isoDate": func(d reporting.Date) string { return d.ISO() },
	"dict":    dict,
}

// dict builds a map from alternating keys and values so a template can
// pass several values to a nested template.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// New parses the layout, partials and pages found in fsys.
func New(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("site").Funcs(funcs).ParseFS(fsys, layoutFile, partialGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, pageGlob)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no page templates match %s", pageGlob)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = clone
	}
	return r, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// HTML renders page name into w with status. Output is buffered so a
// template error never leaves a half-written page.
func (r *Renderer) HTML(w http.ResponseWriter, status int, name string, page Page) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
