package guard

import (
	"context"
	"testing"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/session"
	"github.com/atinyakov/creatorhub/internal/client/storage"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	buyer   = &models.Identity{ID: "b", Role: models.RoleBuyer, Token: "t"}
	creator = &models.Identity{ID: "c", Role: models.RoleCreator, Token: "t"}
)

func TestEvaluate(t *testing.T) {
	loading := session.State{Status: session.Unknown}
	out := session.State{Status: session.SignedOut}
	asBuyer := session.State{Status: session.SignedIn, Identity: buyer}
	asCreator := session.State{Status: session.SignedIn, Identity: creator}

	tests := []struct {
		name  string
		state session.State
		req   Requirement
		want  Outcome
	}{
		{"loading public", loading, Public, Pending},
		{"loading gated", loading, RequireRole(models.RoleCreator), Pending},
		{"signed out public", out, Public, Allow},
		{"signed out authenticated", out, Authenticated, RedirectLogin},
		{"signed out creator route", out, RequireRole(models.RoleCreator), RedirectLogin},
		{"buyer on creator route", asBuyer, RequireRole(models.RoleCreator), RedirectDashboard},
		{"buyer authenticated", asBuyer, Authenticated, Allow},
		{"creator on creator route", asCreator, RequireRole(models.RoleCreator), Allow},
		{"creator on buyer route", asCreator, RequireRole(models.RoleBuyer), RedirectDashboard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.state, tt.req)
			assert.Equal(t, tt.want, d.Outcome)
			switch d.Outcome {
			case RedirectLogin:
				assert.Equal(t, PathLogin, d.Target)
			case RedirectDashboard:
				assert.Equal(t, PathDashboard, d.Target)
			case Allow:
				assert.Same(t, tt.state.Identity, d.Identity)
				assert.NoError(t, d.Err())
			}
		})
	}
}

func TestRouter_Navigate(t *testing.T) {
	r, err := NewRouter(DefaultRoutes())
	require.NoError(t, err)

	st := session.State{Status: session.SignedOut}

	m, err := r.Navigate(st, "/services/42")
	require.NoError(t, err)
	assert.Equal(t, PathService, m.Pattern)
	assert.Equal(t, "42", m.Param("id"))
	assert.Equal(t, Allow, m.Decision.Outcome)

	m, err = r.Navigate(st, "/my-services")
	require.NoError(t, err)
	assert.Equal(t, RedirectLogin, m.Decision.Outcome)

	var redirect *RedirectError
	assert.ErrorAs(t, m.Decision.Err(), &redirect)

	_, err = r.Navigate(st, "/admin")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNewRouter_Duplicate(t *testing.T) {
	_, err := NewRouter([]Route{{"/x", Public}, {"/x", Authenticated}})
	assert.ErrorContains(t, err, "duplicate route")
}

type fakeAuth struct{}

func (fakeAuth) Login(context.Context, models.Credentials) (*models.TokenResponse, error) {
	return &models.TokenResponse{AccessToken: "tok"}, nil
}

func (fakeAuth) Register(context.Context, models.Registration) (*models.TokenResponse, error) {
	return nil, apperr.ErrRejected
}

func (fakeAuth) Me(context.Context, string) (*models.User, error) {
	return &models.User{ID: "c-1", UserType: models.RoleCreator}, nil
}

func TestScenario_CreatorRouteAfterLogin(t *testing.T) {
	ctx := context.Background()
	r, err := NewRouter(DefaultRoutes())
	require.NoError(t, err)
	store := session.New(fakeAuth{}, &storage.MemoryTokenStore{})

	m, err := r.Navigate(store.State(), PathCreateService)
	require.NoError(t, err)
	assert.Equal(t, Pending, m.Decision.Outcome, "nothing decided while restoring")

	store.Restore(ctx)
	m, _ = r.Navigate(store.State(), PathCreateService)
	assert.Equal(t, RedirectLogin, m.Decision.Outcome)

	_, err = store.Login(ctx, models.Credentials{Email: "c@x", Password: "pw"})
	require.NoError(t, err)

	m, _ = r.Navigate(store.State(), PathCreateService)
	assert.Equal(t, Allow, m.Decision.Outcome)
	assert.Equal(t, "c-1", m.Decision.Identity.ID)
}
