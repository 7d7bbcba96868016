package session

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey struct{}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// IDFromContext returns the session id put there by Middleware.
func IDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// WithID returns a context carrying the session id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware attaches a session id to every request. A missing, tampered or
// expired cookie starts a new session and sets a fresh cookie.
func Middleware(tm *TokenMaker, opts Options, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(opts.CookieName); err == nil {
				if id, err := tm.Parse(c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
					return
				}
			}

			id := uuid.NewString()
			tok, err := tm.New(id, opts.TTL)
			if err != nil {
				log.Error("issue session token", zap.Error(err))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.CookieName,
				Value:    tok,
				Path:     "/",
				MaxAge:   int(opts.TTL.Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
		})
	}
}

// LogField exposes the session id to the access log.
func LogField(r *http.Request) zap.Field {
	id, _ := IDFromContext(r.Context())
	return zap.String("session_id", id)
}
