package dashboard

import (
	"context"
	"fmt"
	"testing"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBackend struct {
	CreatorProfileFunc       func(ctx context.Context) (*models.CreatorProfile, error)
	CreateCreatorProfileFunc func(ctx context.Context, in models.CreatorProfileInput) (*models.CreatorProfile, error)
	UpdateCreatorProfileFunc func(ctx context.Context, in models.CreatorProfileUpdate) (*models.CreatorProfile, error)
	CreatorServicesFunc      func(ctx context.Context, creatorID string) ([]models.Listing, error)
	SearchServicesFunc       func(ctx context.Context, f models.Filter) ([]models.Listing, error)
}

func (m *mockBackend) CreatorProfile(ctx context.Context) (*models.CreatorProfile, error) {
	return m.CreatorProfileFunc(ctx)
}

func (m *mockBackend) CreateCreatorProfile(ctx context.Context, in models.CreatorProfileInput) (*models.CreatorProfile, error) {
	return m.CreateCreatorProfileFunc(ctx, in)
}

func (m *mockBackend) UpdateCreatorProfile(ctx context.Context, in models.CreatorProfileUpdate) (*models.CreatorProfile, error) {
	return m.UpdateCreatorProfileFunc(ctx, in)
}

func (m *mockBackend) CreatorServices(ctx context.Context, creatorID string) ([]models.Listing, error) {
	return m.CreatorServicesFunc(ctx, creatorID)
}

func (m *mockBackend) SearchServices(ctx context.Context, f models.Filter) ([]models.Listing, error) {
	return m.SearchServicesFunc(ctx, f)
}

var (
	creator = &models.Identity{ID: "c-1", Role: models.RoleCreator, Token: "t"}
	buyer   = &models.Identity{ID: "b-1", Role: models.RoleBuyer, Token: "t"}
)

func notFound() error {
	return fmt.Errorf("creator profile: %w", &apperr.APIError{Status: 404, Message: "Creator profile not found", Kind: apperr.ErrNotFound})
}

func TestLoad_CreatorWithoutProfile(t *testing.T) {
	api := &mockBackend{
		CreatorProfileFunc: func(context.Context) (*models.CreatorProfile, error) { return nil, notFound() },
		CreatorServicesFunc: func(_ context.Context, id string) ([]models.Listing, error) {
			assert.Equal(t, "c-1", id)
			return []models.Listing{{ID: "s-1"}}, nil
		},
	}

	view, err := New(api).Load(context.Background(), creator)
	require.NoError(t, err)
	assert.False(t, view.HasProfile())
	assert.Len(t, view.Services, 1)
}

func TestLoad_CreatorProfileFailure(t *testing.T) {
	api := &mockBackend{
		CreatorProfileFunc: func(context.Context) (*models.CreatorProfile, error) {
			return nil, fmt.Errorf("%w: reset by peer", apperr.ErrNetwork)
		},
		CreatorServicesFunc: func(context.Context, string) ([]models.Listing, error) { return nil, nil },
	}

	_, err := New(api).Load(context.Background(), creator)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestLoad_Buyer(t *testing.T) {
	api := &mockBackend{SearchServicesFunc: func(_ context.Context, f models.Filter) ([]models.Listing, error) {
		assert.Equal(t, BuyerFeedSize, f.Limit)
		return []models.Listing{{ID: "s-1"}, {ID: "s-2"}}, nil
	}}

	view, err := New(api).Load(context.Background(), buyer)
	require.NoError(t, err)
	assert.Len(t, view.Featured, 2)
	assert.Nil(t, view.Profile)

	_, err = New(api).Load(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCreateProfile(t *testing.T) {
	api := &mockBackend{CreateCreatorProfileFunc: func(_ context.Context, in models.CreatorProfileInput) (*models.CreatorProfile, error) {
		return &models.CreatorProfile{ID: "p-1", UserID: "c-1", Bio: in.Bio, ExperienceLevel: in.ExperienceLevel, Skills: in.Skills}, nil
	}}
	svc := New(api)
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, buyer, models.CreatorProfileInput{Bio: "x"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.CreateProfile(ctx, creator, models.CreatorProfileInput{Bio: " ", ExperienceLevel: "guru"})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)

	p, err := svc.CreateProfile(ctx, creator, models.CreatorProfileInput{Bio: " Illustrator "})
	require.NoError(t, err)
	assert.Equal(t, "Illustrator", p.Bio)
	assert.Equal(t, models.ExperienceBeginner, p.ExperienceLevel)
	assert.NotNil(t, p.Skills)
}

func TestUpdateProfile(t *testing.T) {
	api := &mockBackend{UpdateCreatorProfileFunc: func(_ context.Context, in models.CreatorProfileUpdate) (*models.CreatorProfile, error) {
		return &models.CreatorProfile{Bio: *in.Bio}, nil
	}}
	svc := New(api)

	bad := models.ExperienceLevel("guru")
	_, err := svc.UpdateProfile(context.Background(), creator, models.CreatorProfileUpdate{ExperienceLevel: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bio := "New bio"
	p, err := svc.UpdateProfile(context.Background(), creator, models.CreatorProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "New bio", p.Bio)
}
