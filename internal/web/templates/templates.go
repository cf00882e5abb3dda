// Package templates parses and renders the page templates embedded under web/.
package templates

import (
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/session"
	"trackhub.org/trackhub-web/internal/web/templates/helpers"
	webembed "trackhub.org/trackhub-web/web"
)

// Templates holds the parsed page templates, each combined with the layout.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"relative":    helpers.Relative,
		"badgeClass":  helpers.BadgeClass,
		"statusLabel": helpers.StatusLabel,
		"navClass":    helpers.NavClass,
		"memberSince": helpers.MemberSince,
		"photoSrc":    helpers.PhotoSrc,
	}
}

// Load parses all page templates with the layout.
func Load() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	pages := []string{
		"login.html",
		"register.html",
		"dashboard.html",
		"item.html",
		"myposts.html",
		"profile.html",
		"upload.html",
		"error.html",
	}

	ts := &Templates{templates: make(map[string]*template.Template)}
	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// PageData is the envelope every template receives.
type PageData struct {
	Title    string
	Path     string
	BasePath string
	User     *session.User
	Flash    string
	CSRF     string
	Page     any
}

// Href prefixes a site-relative target with the mount base so links keep
// working when the app is served under a path prefix.
func (d PageData) Href(target string) string {
	return custommw.JoinBase(d.BasePath, target)
}

// Render writes a page with the given data and status code.
func (ts *Templates) Render(w http.ResponseWriter, name string, status int, data PageData) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("render %s failed: %v", name, err)
	}
}
