// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/atinyakov/creatorhub/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth is a middleware that requires a valid
// "Authorization: Bearer <token>" header.
//
// On success the resolved user is stored in the request context and can be
// read downstream with UserFromContext. Missing or rejected tokens get a 401
// with a JSON detail body.
func BearerAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}
			user, err := auth.Authenticate(r.Context(), token)
			if err != nil || user == nil {
				unauthorized(w, "Could not validate credentials")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// UserFromContext returns the authenticated user, or nil outside BearerAuth.
func UserFromContext(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey).(*models.User); ok {
		return u
	}
	return nil
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
