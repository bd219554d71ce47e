// Package render turns view-models into HTML pages.
//
// Pages are html/template files embedded in the binary. Each page file
// defines a "content" block that is rendered inside layout.html; the
// student form fields shared by the add and edit pages live in
// fields.html.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

// Page names, one per template file.
const (
	PageIndex          = "index"
	PageStudents       = "students"
	PageAddStudent     = "addStudent"
	PageStudentDetails = "studentDetails"
	PageEditStudent    = "editStudent"
	PageError          = "error"
)

var pages = []string{
	PageIndex,
	PageStudents,
	PageAddStudent,
	PageStudentDetails,
	PageEditStudent,
	PageError,
}

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Renderer writes a named page with the given view-model.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any) error
}

// ErrorView is the view-model of the error page.
type ErrorView struct {
	Title   string
	Message string
	// Detail is the raw error text; left empty in production.
	Detail string
}

// IndexView is the view-model of the landing page.
type IndexView struct {
	Title string
}

// Templates is the html/template backed Renderer.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"gpa": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"date": func(t time.Time) string {
		return t.Local().Format("Jan 2, 2006 15:04")
	},
}

// New parses every page together with the shared layout.
func New() (*Templates, error) {
	t := &Templates{pages: make(map[string]*template.Template, len(pages))}

	for _, page := range pages {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/fields.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("render.New: parse %s: %w", page, err)
		}
		t.pages[page] = tmpl
	}

	return t, nil
}

// Render executes the page into a buffer first, so a template failure
// never leaves a half-written response behind.
func (t *Templates) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("render: unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render: execute %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and other assets. Mount it under
// "/static/".
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The directory is embedded at build time.
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}
