package middleware

import (
	"crypto/subtle"
	"net/http"
)

// CSRFFieldName is the hidden form field carrying the session token.
const CSRFFieldName = "csrf_token"

// CSRF enforces that every state-changing form post carries the token issued
// with the session. Safe methods only make sure a token exists so templates
// can embed it.
func CSRF() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			token, err := sess.EnsureCSRFToken()
			if err != nil {
				http.Error(w, "csrf token error", http.StatusInternalServerError)
				return
			}

			if isUnsafeMethod(r.Method) {
				submitted := r.FormValue(CSRFFieldName)
				if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
					http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	default:
		return true
	}
}
