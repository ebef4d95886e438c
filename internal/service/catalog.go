package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/repository"
	"github.com/google/uuid"
)

var (
	// ErrNotCreator is returned when a buyer calls a creator-only operation.
	ErrNotCreator = errors.New("only creators can do this")
	// ErrProfileNotFound is returned when the creator has no profile.
	ErrProfileNotFound = errors.New("creator profile not found")
	// ErrProfileExists is returned when creating a second profile.
	ErrProfileExists = repository.ErrProfileExists
	// ErrListingNotFound is returned for an unknown listing id.
	ErrListingNotFound = errors.New("service not found")
)

// CatalogRepository defines the persistence operations required by the
// catalog service. Lookups return (nil, nil) when nothing matches.
type CatalogRepository interface {
	CreateProfile(ctx context.Context, p models.CreatorProfile) error
	ProfileByUser(ctx context.Context, userID string) (*models.CreatorProfile, error)
	UpdateProfile(ctx context.Context, userID string, fn func(*models.CreatorProfile)) (*models.CreatorProfile, error)
	CreateListing(ctx context.Context, l models.Listing) error
	Listing(ctx context.Context, id string) (*models.Listing, error)
	Search(ctx context.Context, f models.Filter) ([]models.Listing, error)
	ListingsByCreator(ctx context.Context, creatorID string) ([]models.Listing, error)
}

// ProfileMarker records that an account has completed its profile.
type ProfileMarker interface {
	SetProfileCompleted(ctx context.Context, userID string) error
}

// CatalogService implements creator profiles and listings.
type CatalogService struct {
	repo     CatalogRepository
	accounts ProfileMarker
	now      func() time.Time
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo CatalogRepository, accounts ProfileMarker) *CatalogService {
	return &CatalogService{repo: repo, accounts: accounts, now: time.Now}
}

// CreateProfile creates the creator profile of u.
func (s *CatalogService) CreateProfile(ctx context.Context, u *models.User, in models.CreatorProfileInput) (*models.CreatorProfile, error) {
	if u.UserType != models.RoleCreator {
		return nil, ErrNotCreator
	}
	level := in.ExperienceLevel
	if level == "" {
		level = models.ExperienceBeginner
	}
	if !level.Valid() {
		return nil, &InputError{Field: "experience_level", Reason: "must be beginner, intermediate or expert"}
	}

	now := s.now().UTC()
	p := models.CreatorProfile{
		ID:              uuid.NewString(),
		UserID:          u.ID,
		Bio:             in.Bio,
		Skills:          nonNil(in.Skills),
		ExperienceLevel: level,
		PortfolioItems:  nonNil(in.PortfolioItems),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	if err := s.accounts.SetProfileCompleted(ctx, u.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profile returns the creator profile of u.
func (s *CatalogService) Profile(ctx context.Context, u *models.User) (*models.CreatorProfile, error) {
	if u.UserType != models.RoleCreator {
		return nil, ErrNotCreator
	}
	p, err := s.repo.ProfileByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// UpdateProfile applies the non-nil fields of in to u's profile.
func (s *CatalogService) UpdateProfile(ctx context.Context, u *models.User, in models.CreatorProfileUpdate) (*models.CreatorProfile, error) {
	if u.UserType != models.RoleCreator {
		return nil, ErrNotCreator
	}
	if in.ExperienceLevel != nil && !in.ExperienceLevel.Valid() {
		return nil, &InputError{Field: "experience_level", Reason: "must be beginner, intermediate or expert"}
	}
	p, err := s.repo.UpdateProfile(ctx, u.ID, func(p *models.CreatorProfile) {
		if in.Bio != nil {
			p.Bio = *in.Bio
		}
		if in.Skills != nil {
			p.Skills = in.Skills
		}
		if in.ExperienceLevel != nil {
			p.ExperienceLevel = *in.ExperienceLevel
		}
		if in.PortfolioItems != nil {
			p.PortfolioItems = in.PortfolioItems
		}
		p.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// CreateListing publishes a listing owned by u.
func (s *CatalogService) CreateListing(ctx context.Context, u *models.User, req models.CreateListingRequest) (*models.Listing, error) {
	if u.UserType != models.RoleCreator {
		return nil, ErrNotCreator
	}
	if err := validateListing(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	l := models.Listing{
		ID:                uuid.NewString(),
		CreatorID:         u.ID,
		Title:             strings.TrimSpace(req.Title),
		Description:       strings.TrimSpace(req.Description),
		Category:          req.Category,
		Tags:              nonNil(req.Tags),
		BasePrice:         req.BasePrice,
		DeliveryTimeDays:  req.DeliveryTimeDays,
		RevisionsIncluded: req.RevisionsIncluded,
		Images:            nonNil(req.Images),
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateListing(ctx, l); err != nil {
		return nil, err
	}
	return &l, nil
}

func validateListing(req models.CreateListingRequest) error {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return &InputError{Field: "title", Reason: "field required"}
	case strings.TrimSpace(req.Description) == "":
		return &InputError{Field: "description", Reason: "field required"}
	case !req.Category.Valid():
		return &InputError{Field: "category", Reason: "unknown category"}
	case req.BasePrice <= 0 || math.IsInf(req.BasePrice, 0) || math.IsNaN(req.BasePrice):
		return &InputError{Field: "base_price", Reason: "must be greater than 0"}
	case req.DeliveryTimeDays < 1:
		return &InputError{Field: "delivery_time_days", Reason: "must be at least 1"}
	case req.RevisionsIncluded < 0:
		return &InputError{Field: "revisions_included", Reason: "must not be negative"}
	}
	return nil
}

// Listing returns one listing by id.
func (s *CatalogService) Listing(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.repo.Listing(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrListingNotFound
	}
	return l, nil
}

// Search returns active listings matching f.
func (s *CatalogService) Search(ctx context.Context, f models.Filter) ([]models.Listing, error) {
	return s.repo.Search(ctx, f)
}

// CreatorListings returns the active listings of creatorID.
func (s *CatalogService) CreatorListings(ctx context.Context, creatorID string) ([]models.Listing, error) {
	return s.repo.ListingsByCreator(ctx, creatorID)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
