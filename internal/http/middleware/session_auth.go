package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/pediclinic/portal/internal/session"
)

type contextKey string

const sessionKey contextKey = "portalSession"

// Sessions resolves the signed session cookie on every request. A valid
// cookie puts the session on the context; an invalid or revoked one
// clears the cookie so the browser stops presenting it. The request
// continues either way, route gates decide what anonymous means.
func Sessions(codec *session.CookieCodec, store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := codec.Read(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Load(r.Context(), sessionID)
			if err == nil {
				sess, err = store.Revalidate(r.Context(), sess)
			}
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					codec.Clear(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession puts a session on the context the way Sessions does. The
// push route resolver and handler tests use it.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the authenticated session if present.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}

// SessionFromRequest is SessionFromContext for handlers holding a request.
func SessionFromRequest(r *http.Request) (*session.Session, bool) {
	return SessionFromContext(r.Context())
}
