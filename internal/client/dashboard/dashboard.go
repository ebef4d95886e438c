// Package dashboard assembles the role-specific dashboard and manages the
// creator profile.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/models"
	"golang.org/x/sync/errgroup"
)

// BuyerFeedSize is how many listings a buyer's dashboard shows.
const BuyerFeedSize = 6

// Backend is the part of the API the dashboard reads and writes.
type Backend interface {
	CreatorProfile(ctx context.Context) (*models.CreatorProfile, error)
	CreateCreatorProfile(ctx context.Context, in models.CreatorProfileInput) (*models.CreatorProfile, error)
	UpdateCreatorProfile(ctx context.Context, in models.CreatorProfileUpdate) (*models.CreatorProfile, error)
	CreatorServices(ctx context.Context, creatorID string) ([]models.Listing, error)
	SearchServices(ctx context.Context, f models.Filter) ([]models.Listing, error)
}

// View is the dashboard content for one identity.
type View struct {
	Identity *models.Identity
	// Profile is nil when the creator has not created one yet.
	Profile  *models.CreatorProfile
	Services []models.Listing
	Featured []models.Listing
}

// HasProfile reports whether a creator profile exists.
func (v *View) HasProfile() bool { return v.Profile != nil }

// Service builds dashboards.
type Service struct {
	api Backend
}

// New returns a dashboard Service.
func New(api Backend) *Service {
	return &Service{api: api}
}

// Load builds the dashboard for identity. For creators a missing profile
// is a normal state, not an error.
func (s *Service) Load(ctx context.Context, identity *models.Identity) (*View, error) {
	if identity == nil {
		return nil, fmt.Errorf("dashboard: %w", apperr.ErrUnauthorized)
	}
	view := &View{Identity: identity}

	if !identity.IsCreator() {
		featured, err := s.api.SearchServices(ctx, models.Filter{Limit: BuyerFeedSize})
		if err != nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		view.Featured = featured
		return view, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.Profile(gctx, identity)
		if err != nil {
			return err
		}
		view.Profile = p
		return nil
	})
	g.Go(func() error {
		services, err := s.api.CreatorServices(gctx, identity.ID)
		if err != nil {
			return err
		}
		view.Services = services
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return view, nil
}

// Profile returns the creator's profile, or nil with no error when the
// creator has none yet.
func (s *Service) Profile(ctx context.Context, identity *models.Identity) (*models.CreatorProfile, error) {
	if err := requireCreator(identity); err != nil {
		return nil, err
	}
	p, err := s.api.CreatorProfile(ctx)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// CreateProfile creates the creator's profile.
func (s *Service) CreateProfile(ctx context.Context, identity *models.Identity, in models.CreatorProfileInput) (*models.CreatorProfile, error) {
	if err := requireCreator(identity); err != nil {
		return nil, err
	}
	in.Bio = strings.TrimSpace(in.Bio)
	if in.ExperienceLevel == "" {
		in.ExperienceLevel = models.ExperienceBeginner
	}
	v := apperr.NewValidationError()
	if in.Bio == "" {
		v.Add("bio", "is required")
	}
	if !in.ExperienceLevel.Valid() {
		v.Add("experience_level", "must be beginner, intermediate or expert")
	}
	if !v.Empty() {
		return nil, v
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}
	if in.PortfolioItems == nil {
		in.PortfolioItems = []string{}
	}
	return s.api.CreateCreatorProfile(ctx, in)
}

// UpdateProfile changes the non-nil fields of in.
func (s *Service) UpdateProfile(ctx context.Context, identity *models.Identity, in models.CreatorProfileUpdate) (*models.CreatorProfile, error) {
	if err := requireCreator(identity); err != nil {
		return nil, err
	}
	if in.ExperienceLevel != nil && !in.ExperienceLevel.Valid() {
		v := apperr.NewValidationError()
		v.Add("experience_level", "must be beginner, intermediate or expert")
		return nil, v
	}
	return s.api.UpdateCreatorProfile(ctx, in)
}

func requireCreator(identity *models.Identity) error {
	if identity == nil {
		return fmt.Errorf("creator profile: %w", apperr.ErrUnauthorized)
	}
	if !identity.IsCreator() {
		return fmt.Errorf("creator profile: %w", apperr.ErrForbidden)
	}
	return nil
}
