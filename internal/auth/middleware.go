package auth

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type ctxKey int

const loggedInKey ctxKey = iota

// WithLoggedIn marks ctx as belonging to an authenticated admin.
func WithLoggedIn(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggedInKey, true)
}

// IsLoggedIn reports whether the request context carries an admin session.
func IsLoggedIn(ctx context.Context) bool {
	v, _ := ctx.Value(loggedInKey).(bool)
	return v
}

// Session marks requests carrying a valid session token as logged in. It
// never rejects a request.
func (s *Sessions) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.Valid(TokenFromHeader(r.Header.Get("Authorization")))
		if err != nil {
			logrus.WithError(err).Warn("auth: session lookup failed")
		}
		if ok {
			r = r.WithContext(WithLoggedIn(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests that Session did not mark as logged in.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsLoggedIn(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"not logged in"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
