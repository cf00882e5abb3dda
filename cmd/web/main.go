package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trackhub.org/trackhub-web/internal/web/auth"
	"trackhub.org/trackhub-web/internal/web/config"
	"trackhub.org/trackhub-web/internal/web/httpserver"
	"trackhub.org/trackhub-web/internal/web/httpserver/ui"
	"trackhub.org/trackhub-web/internal/web/posts"
	"trackhub.org/trackhub-web/internal/web/session"
	"trackhub.org/trackhub-web/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client := &http.Client{Timeout: cfg.BackendTimeout}

	postsService, err := posts.NewHTTPService(cfg.BackendBaseURL, client)
	if err != nil {
		log.Fatalf("posts service: %v", err)
	}
	authService, err := auth.NewHTTPService(cfg.BackendBaseURL, client)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:      cfg.SessionHashKey,
		BlockKey:     cfg.SessionBlockKey,
		CookieSecure: cfg.CookieSecure,
		Lifetime:     cfg.SessionLifetime,
	})
	if err != nil {
		log.Fatalf("session manager: %v", err)
	}

	tmpl, err := templates.Load()
	if err != nil {
		log.Fatalf("load templates: %v", err)
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Posts:     postsService,
		Auth:      authService,
		Templates: tmpl,
	})

	srv := httpserver.New(httpserver.Config{
		Address:  cfg.Address,
		BasePath: cfg.BasePath,
		Sessions: sessions,
		Handlers: handlers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	log.Printf("web server listening on %s (backend %s)", cfg.Address, cfg.BackendBaseURL)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		cancel()
		stop()
		os.Exit(1)
	}
}
