package http

import (
	"context"
	"net/http"

	"github.com/atinyakov/creatorhub/internal/middleware"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService defines the profile and listing operations
// required by the HTTP handlers.
type CatalogService interface {
	CreateProfile(ctx context.Context, u *models.User, in models.CreatorProfileInput) (*models.CreatorProfile, error)
	Profile(ctx context.Context, u *models.User) (*models.CreatorProfile, error)
	UpdateProfile(ctx context.Context, u *models.User, in models.CreatorProfileUpdate) (*models.CreatorProfile, error)
	CreateListing(ctx context.Context, u *models.User, req models.CreateListingRequest) (*models.Listing, error)
	Listing(ctx context.Context, id string) (*models.Listing, error)
	Search(ctx context.Context, f models.Filter) ([]models.Listing, error)
	CreatorListings(ctx context.Context, creatorID string) ([]models.Listing, error)
}

// CreatorHandler serves the creator profile endpoints.
type CreatorHandler struct {
	Catalog CatalogService
	Log     *zap.Logger
}

// CreateProfile handles POST /creators/profile.
func (h *CreatorHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.CreatorProfileInput
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Catalog.CreateProfile(r.Context(), middleware.UserFromContext(r.Context()), in)
	if err != nil {
		fail(w, h.Log, err, "Only creators can create profiles")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Profile handles GET /creators/profile.
func (h *CreatorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Profile(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		fail(w, h.Log, err, "Only creators have profiles")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateProfile handles PUT /creators/profile.
func (h *CreatorHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.CreatorProfileUpdate
	if !decode(w, r, &in) {
		return
	}
	p, err := h.Catalog.UpdateProfile(r.Context(), middleware.UserFromContext(r.Context()), in)
	if err != nil {
		fail(w, h.Log, err, "Only creators can update profiles")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Services handles GET /creators/{creator_id}/services.
func (h *CreatorHandler) Services(w http.ResponseWriter, r *http.Request) {
	ls, err := h.Catalog.CreatorListings(r.Context(), chi.URLParam(r, "creator_id"))
	if err != nil {
		fail(w, h.Log, err, "")
		return
	}
	writeJSON(w, http.StatusOK, ls)
}
