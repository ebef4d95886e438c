// Package http provides the HTTP handlers of the development backend.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/atinyakov/creatorhub/internal/middleware"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the authentication operations
// required by the HTTP handlers.
type AuthService interface {
	// Register creates an account and returns an access token.
	Register(ctx context.Context, reg models.Registration) (string, error)
	// Login verifies credentials and returns an access token.
	Login(ctx context.Context, cred models.Credentials) (string, error)
}

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	AuthService AuthService
	Log         *zap.Logger
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Registration
	if !decode(w, r, &req) {
		return
	}
	token, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if !decode(w, r, &req) {
		return
	}
	token, err := h.AuthService.Login(r.Context(), req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFromContext(r.Context()))
}
