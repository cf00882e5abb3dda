package middleware

import (
	"context"
	"log"
	"net/http"
	"net/url"

	appsession "trackhub.org/trackhub-web/internal/web/session"
)

type authContextKey string

const userContextKey authContextKey = "auth.user"

// RequireUser gates a route group on a signed-in session user, redirecting
// anonymous visitors to the login page with the original path preserved.
func RequireUser(loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = "/login"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || sess.User() == nil {
				log.Printf("auth required: path=%s", r.URL.Path)
				redirectToLogin(w, r, loginPath)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, sess.User())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext retrieves the signed-in user if present.
func UserFromContext(ctx context.Context) (*appsession.User, bool) {
	user, ok := ctx.Value(userContextKey).(*appsession.User)
	return user, ok && user != nil
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := loginPath
	if r.Method == http.MethodGet && r.URL.Path != "" && r.URL.Path != loginPath {
		if u, err := url.Parse(loginPath); err == nil {
			q := u.Query()
			q.Set("next", r.URL.RequestURI())
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}
