package guard

import (
	"fmt"
	"net/http"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/go-chi/chi/v5"
)

// Client route paths.
const (
	PathHome           = "/"
	PathServices       = "/services"
	PathService        = "/services/{id}"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathDashboard      = "/dashboard"
	PathCreateService  = "/create-service"
	PathCreatorProfile = "/creator/profile"
	PathMyServices     = "/my-services"
)

// Route binds a path pattern to its requirement.
type Route struct {
	Pattern     string
	Requirement Requirement
}

// DefaultRoutes is the client's route table.
func DefaultRoutes() []Route {
	creator := RequireRole(models.RoleCreator)
	return []Route{
		{PathHome, Public},
		{PathServices, Public},
		{PathService, Public},
		{PathLogin, Public},
		{PathRegister, Public},
		{PathDashboard, Authenticated},
		{PathCreateService, creator},
		{PathCreatorProfile, creator},
		{PathMyServices, creator},
	}
}

// Router resolves client paths against the route table using chi's
// routing tree, so patterns like /services/{id} behave as on the server.
type Router struct {
	mux  *chi.Mux
	reqs map[string]Requirement
}

// NewRouter builds a Router. Duplicate patterns are an error.
func NewRouter(routes []Route) (*Router, error) {
	r := &Router{mux: chi.NewRouter(), reqs: make(map[string]Requirement, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, rt := range routes {
		if _, dup := r.reqs[rt.Pattern]; dup {
			return nil, fmt.Errorf("duplicate route %q", rt.Pattern)
		}
		r.reqs[rt.Pattern] = rt.Requirement
		r.mux.Get(rt.Pattern, noop)
	}
	return r, nil
}

// Match is a resolved navigation.
type Match struct {
	Pattern  string
	Params   map[string]string
	Decision Decision
}

// Param returns a URL parameter of the matched route.
func (m Match) Param(key string) string { return m.Params[key] }

// Navigate resolves path and evaluates the guard against st. The decision
// is recomputed on every call. Unknown paths return apperr.ErrNotFound.
func (r *Router) Navigate(st session.State, path string) (Match, error) {
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		return Match{}, fmt.Errorf("route %q: %w", path, apperr.ErrNotFound)
	}

	pattern := rctx.RoutePattern()
	req, ok := r.reqs[pattern]
	if !ok {
		return Match{}, fmt.Errorf("route %q: %w", path, apperr.ErrNotFound)
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return Match{Pattern: pattern, Params: params, Decision: Evaluate(st, req)}, nil
}

// Requirement returns the requirement declared for pattern.
func (r *Router) Requirement(pattern string) (Requirement, bool) {
	req, ok := r.reqs[pattern]
	return req, ok
}
