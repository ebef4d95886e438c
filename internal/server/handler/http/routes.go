package http

import (
	"net/http"

	"github.com/atinyakov/creatorhub/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler that serves the CreatorHub API
// under /api.
//
// Routes:
//
//	GET  /api/                          → Root
//	GET  /api/health                    → Health
//	POST /api/auth/register             → authHandler.Register
//	POST /api/auth/login                → authHandler.Login
//	GET  /api/auth/me                   → authHandler.Me (bearer)
//	GET  /api/services                  → serviceHandler.Search
//	GET  /api/services/{id}             → serviceHandler.Get
//	POST /api/services                  → serviceHandler.Create (bearer)
//	GET  /api/creators/{creator_id}/services → creatorHandler.Services
//	*    /api/creators/profile          → creatorHandler (bearer)
//
// Middleware chain, in order: request id, request logging, panic recovery,
// JSON content-type enforcement.
func NewRouter(
	auth middleware.Authenticator,
	authHandler *AuthHandler,
	creatorHandler *CreatorHandler,
	serviceHandler *ServiceHandler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	// Requests with a body must be JSON
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/", Root)
		r.Get("/health", Health)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Get("/services", serviceHandler.Search)
		r.Get("/services/{id}", serviceHandler.Get)
		r.Get("/creators/{creator_id}/services", creatorHandler.Services)

		// Protected group: requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(auth))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/services", serviceHandler.Create)
			r.Post("/creators/profile", creatorHandler.CreateProfile)
			r.Get("/creators/profile", creatorHandler.Profile)
			r.Put("/creators/profile", creatorHandler.UpdateProfile)
		})
	})

	return r
}
