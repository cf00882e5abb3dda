package testutil

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"trackhub.org/trackhub-web/internal/web/auth"
	"trackhub.org/trackhub-web/internal/web/httpserver"
	"trackhub.org/trackhub-web/internal/web/httpserver/ui"
	"trackhub.org/trackhub-web/internal/web/posts"
	"trackhub.org/trackhub-web/internal/web/session"
	"trackhub.org/trackhub-web/internal/web/templates"
)

// Options collects the overridable pieces of a test server.
type Options struct {
	Posts    posts.Service
	Auth     auth.Service
	BasePath string
}

// ServerOption customises the test server configuration.
type ServerOption func(*Options)

// WithPostsService wires a custom posts service implementation.
func WithPostsService(service posts.Service) ServerOption {
	return func(o *Options) {
		o.Posts = service
	}
}

// WithAuthService wires a custom auth service implementation.
func WithAuthService(service auth.Service) ServerOption {
	return func(o *Options) {
		o.Auth = service
	}
}

// WithBasePath mounts the app under a path prefix.
func WithBasePath(base string) ServerOption {
	return func(o *Options) {
		o.BasePath = base
	}
}

// NewServer constructs an httptest server running the full HTTP stack with
// static service doubles by default.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	options := Options{
		Posts: posts.NewStaticService(),
		Auth:  auth.NewStaticService(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	tmpl, err := templates.Load()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}

	sessions, err := session.NewManager(session.Config{
		HashKey: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Posts:     options.Posts,
		Auth:      options.Auth,
		Templates: tmpl,
	})

	router := httpserver.NewRouter(httpserver.Config{
		Address:  ":0",
		BasePath: options.BasePath,
		Sessions: sessions,
		Handlers: handlers,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

// NewClient returns an HTTP client with a cookie jar so sessions persist
// across requests.
func NewClient(t testing.TB) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}
