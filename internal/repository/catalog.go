package repository

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/atinyakov/creatorhub/internal/models"
)

// ErrProfileExists is returned when a creator already has a profile.
var ErrProfileExists = errors.New("creator profile already exists")

// MemoryCatalogRepository stores creator profiles and listings. Listings
// keep their insertion order.
type MemoryCatalogRepository struct {
	mu       sync.RWMutex
	profiles map[string]models.CreatorProfile // by user id
	listings []models.Listing
	index    map[string]int
}

// NewMemoryCatalogRepository returns an empty repository.
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		profiles: make(map[string]models.CreatorProfile),
		index:    make(map[string]int),
	}
}

// CreateProfile stores p for p.UserID.
func (r *MemoryCatalogRepository) CreateProfile(ctx context.Context, p models.CreatorProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[p.UserID]; exists {
		return ErrProfileExists
	}
	r.profiles[p.UserID] = p
	return nil
}

// ProfileByUser returns the profile of userID, or (nil, nil) if none exists.
func (r *MemoryCatalogRepository) ProfileByUser(ctx context.Context, userID string) (*models.CreatorProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// UpdateProfile applies fn to the stored profile of userID. It returns
// (nil, nil) when there is no profile.
func (r *MemoryCatalogRepository) UpdateProfile(ctx context.Context, userID string, fn func(*models.CreatorProfile)) (*models.CreatorProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	fn(&p)
	r.profiles[userID] = p
	return &p, nil
}

// CreateListing appends l.
func (r *MemoryCatalogRepository) CreateListing(ctx context.Context, l models.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.index[l.ID] = len(r.listings)
	r.listings = append(r.listings, l)
	return nil
}

// Listing returns the listing with id, or (nil, nil) if none exists.
func (r *MemoryCatalogRepository) Listing(ctx context.Context, id string) (*models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, nil
	}
	l := r.listings[i]
	return &l, nil
}

// Search returns active listings matching f in insertion order. The text
// term matches title, description and tags case-insensitively.
func (r *MemoryCatalogRepository) Search(ctx context.Context, f models.Filter) ([]models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f = f.Normalized()
	limit := f.Limit
	if limit <= 0 {
		limit = models.DefaultLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Listing{}
	skipped := 0
	for _, l := range r.listings {
		if !matches(l, f) {
			continue
		}
		if skipped < f.Skip {
			skipped++
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func matches(l models.Listing, f models.Filter) bool {
	if !l.IsActive {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && l.BasePrice < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.BasePrice > *f.MaxPrice {
		return false
	}
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(f.Search)
	if strings.Contains(strings.ToLower(l.Title), term) || strings.Contains(strings.ToLower(l.Description), term) {
		return true
	}
	return slices.ContainsFunc(l.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), term)
	})
}

// ListingsByCreator returns the active listings of creatorID.
func (r *MemoryCatalogRepository) ListingsByCreator(ctx context.Context, creatorID string) ([]models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Listing{}
	for _, l := range r.listings {
		if l.CreatorID == creatorID && l.IsActive {
			out = append(out, l)
		}
	}
	return out, nil
}
