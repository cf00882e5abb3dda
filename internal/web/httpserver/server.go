// Package httpserver assembles the router, middleware stack, and page routes.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommw "trackhub.org/trackhub-web/internal/web/httpserver/middleware"
	"trackhub.org/trackhub-web/internal/web/httpserver/ui"
	"trackhub.org/trackhub-web/web"
)

// Config holds runtime options for the HTTP server.
type Config struct {
	Address   string
	BasePath  string
	Sessions  custommw.SessionStore
	Handlers  *ui.Handlers
	LoginPath string
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the full route tree, mounted under cfg.BasePath. Split out
// from New so tests can mount it on httptest servers.
func NewRouter(cfg Config) chi.Router {
	if cfg.Sessions == nil {
		panic("session store is required")
	}
	if cfg.Handlers == nil {
		panic("ui handlers are required")
	}
	base := custommw.NormalizeBasePath(cfg.BasePath)
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	loginPath = custommw.JoinBase(base, loginPath)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(custommw.RequestInfoMiddleware(base))

	pages := func(r chi.Router) {
		r.Handle("/static/*", http.StripPrefix(custommw.JoinBase(base, "/static/"), http.FileServer(http.FS(web.StaticFS()))))

		h := cfg.Handlers

		r.Group(func(r chi.Router) {
			r.Use(custommw.Session(cfg.Sessions))
			r.Use(custommw.NoStore)
			r.Use(custommw.CSRF())

			// Public pages.
			r.Get("/", h.Dashboard)
			r.Get("/items/{id}", h.Item)
			r.Get("/item", h.Item) // legacy link shapes: ?id= and #id=

			r.Post("/items/{id}/contact/initiate", h.ContactInitiate)
			r.Post("/items/{id}/contact/verify", h.ContactVerify)
			r.Post("/items/{id}/contact/reset", h.ContactReset)
			r.Post("/items/{id}/claim", h.Claim)

			// Account pages.
			r.Get("/login", h.Login)
			r.Post("/login", h.LoginSubmit)
			r.Post("/login/send-otp", h.LoginSendOTP)
			r.Post("/login/verify-otp", h.LoginVerifyOTP)
			r.Get("/register", h.Register)
			r.Post("/register", h.RegisterSubmit)
			r.Post("/register/send-otp", h.RegisterSendOTP)
			r.Post("/register/verify-otp", h.RegisterVerifyOTP)
			r.Post("/logout", h.Logout)

			// Pages that need a signed-in user.
			r.Group(func(pr chi.Router) {
				pr.Use(custommw.RequireUser(loginPath))

				pr.Get("/my-posts", h.MyPosts)
				pr.Post("/my-posts/{id}/delete", h.DeletePost)
				pr.Get("/my-posts/{id}/edit", h.EditPost)
				pr.Post("/my-posts/{id}/edit", h.EditPostSubmit)
				pr.Get("/upload", h.Upload)
				pr.Post("/upload", h.UploadSubmit)
				pr.Get("/profile", h.Profile)
			})
		})
	}

	if base == "/" {
		pages(router)
	} else {
		router.Route(base, pages)
	}

	return router
}
