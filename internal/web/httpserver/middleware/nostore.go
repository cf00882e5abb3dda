package middleware

import "net/http"

// NoStore marks responses as uncacheable so shared machines never replay
// pages rendered for a signed-in user.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
