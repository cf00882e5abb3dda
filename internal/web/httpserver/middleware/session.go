package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	appsession "trackhub.org/trackhub-web/internal/web/session"
)

type sessionContextKey string

const requestSessionKey sessionContextKey = "web.session"

// SessionStore abstracts the session manager for middleware integration.
type SessionStore interface {
	Load(*http.Request) (*appsession.Session, error)
	New() *appsession.Session
	Save(http.ResponseWriter, *appsession.Session) error
	Destroy(http.ResponseWriter)
}

// Session attaches the decoded session to the request context and persists
// changes back to the client cookie. The cookie has to be encoded before the
// handler commits the response, so the writer is wrapped and the save runs on
// the first WriteHeader or Write.
func Session(store SessionStore) func(http.Handler) http.Handler {
	if store == nil {
		panic("session store is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if errors.Is(err, appsession.ErrExpired) {
				log.Printf("session expired: resetting")
				sess = store.New()
			} else if err != nil || sess == nil {
				if err != nil {
					log.Printf("session load failed: %v", err)
				}
				sess = store.New()
			}

			ctx := context.WithValue(r.Context(), requestSessionKey, sess)
			sw := &savingWriter{ResponseWriter: w, store: store, sess: sess}

			next.ServeHTTP(sw, r.WithContext(ctx))

			// Handlers that return without writing still get their
			// session persisted here.
			sw.persist()
		})
	}
}

// savingWriter defers the session save until the response is about to be
// committed, so handlers can keep mutating the session right up to their
// render or redirect call.
type savingWriter struct {
	http.ResponseWriter
	store SessionStore
	sess  *appsession.Session
	saved bool
}

func (sw *savingWriter) persist() {
	if sw.saved {
		return
	}
	sw.saved = true
	if err := sw.store.Save(sw.ResponseWriter, sw.sess); err != nil {
		log.Printf("session save failed: %v", err)
	}
}

func (sw *savingWriter) WriteHeader(status int) {
	sw.persist()
	sw.ResponseWriter.WriteHeader(status)
}

func (sw *savingWriter) Write(p []byte) (int, error) {
	sw.persist()
	return sw.ResponseWriter.Write(p)
}

// SessionFromContext retrieves the session attached to this request.
func SessionFromContext(ctx context.Context) (*appsession.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(requestSessionKey).(*appsession.Session)
	return sess, ok && sess != nil
}
