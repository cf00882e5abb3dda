// Package ui holds the page handlers: each one fetches from the backend
// services, normalizes, and renders a full HTML page.
package ui

import (
	"errors"
	"log"
	"net/http"

	"trackhub.org/trackhub-web/internal/web/auth"
	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/posts"
	"trackhub.org/trackhub-web/internal/web/session"
	"trackhub.org/trackhub-web/internal/web/templates"
)

// Messages shown when a backend call cannot complete. The backend's own error
// text is preferred when it reports one.
const (
	msgUnreachable = "Track Hub is unreachable right now. Please try again in a moment."
	msgServerError = "Something went wrong on our side. Please try again."
	msgBadPayload  = "The server sent an unexpected response. Please try again."
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	Posts     posts.Service
	Auth      auth.Service
	Templates *templates.Templates
}

// Handlers exposes HTTP handlers for the pages.
type Handlers struct {
	posts posts.Service
	auth  auth.Service
	tmpl  *templates.Templates
}

// NewHandlers wires the handler set.
func NewHandlers(deps Dependencies) *Handlers {
	postsService := deps.Posts
	if postsService == nil {
		postsService = posts.NewStaticService()
	}
	authService := deps.Auth
	if authService == nil {
		authService = auth.NewStaticService()
	}
	if deps.Templates == nil {
		panic("templates are required")
	}
	return &Handlers{
		posts: postsService,
		auth:  authService,
		tmpl:  deps.Templates,
	}
}

// render wraps page data in the layout envelope from the request session.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, name string, status int, title string, page any) {
	path := custommw.RelativePath(r.Context())
	if path == "" {
		path = r.URL.Path
	}
	data := templates.PageData{
		Title:    title,
		Path:     path,
		BasePath: custommw.BasePathFromContext(r.Context()),
		Page:     page,
	}
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		data.User = sess.User()
		data.Flash = sess.PopFlash()
		if token, err := sess.EnsureCSRFToken(); err == nil {
			data.CSRF = token
		}
	}
	h.tmpl.Render(w, name, status, data)
}

func (h *Handlers) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, "error.html", status, "Something went wrong", struct{ Message string }{Message: message})
}

// userMessage maps a service error onto the text shown to the user, keeping
// the backend's own words when it supplied any.
func userMessage(err error) string {
	var postsErr *posts.BackendError
	if errors.As(err, &postsErr) {
		if postsErr.Message != "" {
			return postsErr.Message
		}
		return msgServerError
	}
	var authErr *auth.BackendError
	if errors.As(err, &authErr) {
		if authErr.Message != "" {
			return authErr.Message
		}
		return msgServerError
	}
	switch {
	case errors.Is(err, posts.ErrMalformedResponse):
		return msgBadPayload
	case errors.Is(err, posts.ErrNotFound):
		return "This post no longer exists."
	case errors.Is(err, auth.ErrUserNotFound):
		return "No account is registered for that email."
	default:
		return msgUnreachable
	}
}

// href prefixes a site-relative target with the mount base.
func href(r *http.Request, target string) string {
	return custommw.JoinBase(custommw.BasePathFromContext(r.Context()), target)
}

// redirect issues a base-aware redirect.
func redirect(w http.ResponseWriter, r *http.Request, target string, code int) {
	http.Redirect(w, r, href(r, target), code)
}

func requestSession(r *http.Request) *session.Session {
	sess, _ := custommw.SessionFromContext(r.Context())
	return sess
}

func logErr(context string, err error) {
	log.Printf("%s: %v", context, err)
}
