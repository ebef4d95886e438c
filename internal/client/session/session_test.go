package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/storage"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAuthAPI struct {
	LoginFunc    func(ctx context.Context, cred models.Credentials) (*models.TokenResponse, error)
	RegisterFunc func(ctx context.Context, reg models.Registration) (*models.TokenResponse, error)
	MeFunc       func(ctx context.Context, token string) (*models.User, error)

	mu      sync.Mutex
	meCalls int
}

func (m *mockAuthAPI) Login(ctx context.Context, cred models.Credentials) (*models.TokenResponse, error) {
	return m.LoginFunc(ctx, cred)
}

func (m *mockAuthAPI) Register(ctx context.Context, reg models.Registration) (*models.TokenResponse, error) {
	return m.RegisterFunc(ctx, reg)
}

func (m *mockAuthAPI) Me(ctx context.Context, token string) (*models.User, error) {
	m.mu.Lock()
	m.meCalls++
	m.mu.Unlock()
	return m.MeFunc(ctx, token)
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "maker@example.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test"))
	require.NoError(t, err)
	return tok
}

func creatorUser() *models.User {
	return &models.User{ID: "u-1", Email: "maker@example.com", Username: "maker", FullName: "Maker", UserType: models.RoleCreator}
}

func TestRestore_NoPersistedToken(t *testing.T) {
	api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) {
		t.Fatal("Me must not be called without a token")
		return nil, nil
	}}
	s := New(api, &storage.MemoryTokenStore{})

	require.True(t, s.State().Loading())
	st := s.Restore(context.Background())

	assert.Equal(t, SignedOut, st.Status)
	assert.False(t, st.Loading())
	assert.Nil(t, st.Identity)
}

func TestRestore_ValidToken(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	tok := signToken(t, time.Now().Add(time.Hour))
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: tok}))

	api := &mockAuthAPI{MeFunc: func(_ context.Context, token string) (*models.User, error) {
		assert.Equal(t, tok, token)
		return creatorUser(), nil
	}}
	s := New(api, tokens)

	st := s.Restore(ctx)
	require.Equal(t, SignedIn, st.Status)
	assert.Equal(t, models.RoleCreator, st.Identity.Role)
	assert.Equal(t, tok, s.Token())
	assert.Equal(t, "Maker", st.Identity.DisplayName)
}

func TestRestore_LoadingFlipsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: "opaque"}))
	api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) { return creatorUser(), nil }}
	s := New(api, tokens)

	var transitions []State
	s.Subscribe(func(st State) { transitions = append(transitions, st) })

	s.Restore(ctx)
	s.Restore(ctx)

	require.Len(t, transitions, 1)
	assert.Equal(t, SignedIn, transitions[0].Status)
	assert.Equal(t, 1, api.meCalls)
}

func TestRestore_ExpiredTokenSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: signToken(t, time.Now().Add(-time.Minute))}))

	api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) {
		t.Fatal("expired token must not reach the backend")
		return nil, nil
	}}
	s := New(api, tokens)

	assert.Equal(t, SignedOut, s.Restore(ctx).Status)
	got, _ := tokens.Load(ctx)
	assert.Nil(t, got, "expired token is discarded")
}

func TestRestore_Failures(t *testing.T) {
	tests := []struct {
		name      string
		meErr     error
		keepToken bool
	}{
		{
			name:      "unauthorized clears the token",
			meErr:     fmt.Errorf("who am i: %w", &apperr.APIError{Status: 401, Kind: apperr.ErrUnauthorized}),
			keepToken: false,
		},
		{
			name:      "network failure keeps the token",
			meErr:     fmt.Errorf("%w: connection refused", apperr.ErrNetwork),
			keepToken: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tokens := &storage.MemoryTokenStore{}
			require.NoError(t, tokens.Save(ctx, storage.Session{Token: "opaque"}))
			api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) { return nil, tt.meErr }}

			st := New(api, tokens).Restore(ctx)
			assert.Equal(t, SignedOut, st.Status)

			got, _ := tokens.Load(ctx)
			assert.Equal(t, tt.keepToken, got != nil)
		})
	}
}

func TestRestore_AccountWithoutRoleStaysSignedOut(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: signToken(t, time.Now().Add(time.Hour))}))

	api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) {
		u := creatorUser()
		u.UserType = ""
		return u, nil
	}}
	s := New(api, tokens)

	st := s.Restore(ctx)
	assert.Equal(t, SignedOut, st.Status)
	assert.Nil(t, st.Identity)
	assert.Empty(t, s.Token())
}

func TestRestore_RejectedTokenDoesNotEraseNewLogin(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: "stale"}))
	fresh := signToken(t, time.Now().Add(time.Hour))

	meStarted := make(chan struct{})
	releaseMe := make(chan struct{})
	api := &mockAuthAPI{
		LoginFunc: func(context.Context, models.Credentials) (*models.TokenResponse, error) {
			return &models.TokenResponse{AccessToken: fresh, TokenType: "bearer"}, nil
		},
		MeFunc: func(_ context.Context, token string) (*models.User, error) {
			if token == "stale" {
				close(meStarted)
				<-releaseMe
				return nil, &apperr.APIError{Status: 401, Kind: apperr.ErrUnauthorized}
			}
			return creatorUser(), nil
		},
	}
	s := New(api, tokens)

	restored := make(chan State)
	go func() { restored <- s.Restore(ctx) }()
	<-meStarted

	_, err := s.Login(ctx, models.Credentials{Email: "maker@example.com", Password: "pw"})
	require.NoError(t, err)
	close(releaseMe)

	assert.Equal(t, SignedIn, (<-restored).Status)
	persisted, err := tokens.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted, "the token saved by login must survive")
	assert.Equal(t, fresh, persisted.Token)
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	exp := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	tok := signToken(t, exp)

	api := &mockAuthAPI{
		LoginFunc: func(_ context.Context, cred models.Credentials) (*models.TokenResponse, error) {
			assert.Equal(t, "maker@example.com", cred.Email)
			return &models.TokenResponse{AccessToken: tok, TokenType: "bearer"}, nil
		},
		MeFunc: func(context.Context, string) (*models.User, error) { return creatorUser(), nil },
	}
	s := New(api, tokens)

	id, err := s.Login(ctx, models.Credentials{Email: "maker@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, id.Role)
	assert.Equal(t, SignedIn, s.State().Status)

	persisted, _ := tokens.Load(ctx)
	require.NotNil(t, persisted)
	assert.Equal(t, tok, persisted.Token)
	assert.True(t, exp.Equal(persisted.ExpiresAt))

	// A restore after login does not override the signed-in state.
	assert.Equal(t, SignedIn, s.Restore(ctx).Status)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{
			name:    "invalid credentials",
			err:     &apperr.APIError{Status: 401, Message: "Incorrect email or password", Kind: apperr.ErrInvalidCredentials},
			wantErr: apperr.ErrInvalidCredentials,
		},
		{name: "network", err: fmt.Errorf("%w: timeout", apperr.ErrNetwork), wantErr: apperr.ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &storage.MemoryTokenStore{}
			api := &mockAuthAPI{LoginFunc: func(context.Context, models.Credentials) (*models.TokenResponse, error) {
				return nil, tt.err
			}}
			s := New(api, tokens)
			s.Restore(context.Background())

			id, err := s.Login(context.Background(), models.Credentials{Email: "a", Password: "b"})
			assert.Nil(t, id)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, s.Identity())
			assert.Equal(t, SignedOut, s.State().Status)
		})
	}
}

func TestRegister(t *testing.T) {
	api := &mockAuthAPI{
		RegisterFunc: func(_ context.Context, reg models.Registration) (*models.TokenResponse, error) {
			assert.Equal(t, models.RoleBuyer, reg.UserType)
			return &models.TokenResponse{AccessToken: "tok"}, nil
		},
		MeFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: "b-1", UserType: models.RoleBuyer, Username: "buyer"}, nil
		},
	}
	s := New(api, &storage.MemoryTokenStore{})

	_, err := s.Register(context.Background(), models.Registration{Email: "x", UserType: "admin"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	id, err := s.Register(context.Background(), models.Registration{Email: "b@x", UserType: models.RoleBuyer})
	require.NoError(t, err)
	assert.Equal(t, "buyer", id.DisplayName)
}

type failingStore struct{ storage.MemoryTokenStore }

func (f *failingStore) Clear(context.Context) error { return errors.New("read-only filesystem") }

func TestLogout_IdempotentAndNeverFails(t *testing.T) {
	ctx := context.Background()
	api := &mockAuthAPI{
		LoginFunc: func(context.Context, models.Credentials) (*models.TokenResponse, error) {
			return &models.TokenResponse{AccessToken: "tok"}, nil
		},
		MeFunc: func(context.Context, string) (*models.User, error) { return creatorUser(), nil },
	}
	s := New(api, &failingStore{})
	s.Restore(ctx)

	var notified int
	s.Subscribe(func(State) { notified++ })

	s.Logout(ctx)
	assert.Equal(t, 0, notified, "already signed out: state unchanged")

	_, err := s.Login(ctx, models.Credentials{})
	require.NoError(t, err)
	s.Logout(ctx)
	s.Logout(ctx)

	assert.Equal(t, 2, notified)
	assert.Equal(t, SignedOut, s.State().Status)
	assert.Empty(t, s.Token())
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	tokens := &storage.MemoryTokenStore{}
	require.NoError(t, tokens.Save(ctx, storage.Session{Token: "opaque"}))
	api := &mockAuthAPI{MeFunc: func(context.Context, string) (*models.User, error) { return creatorUser(), nil }}
	s := New(api, tokens)
	s.Restore(ctx)

	s.Invalidate(ctx)

	assert.Equal(t, SignedOut, s.State().Status)
	got, _ := tokens.Load(ctx)
	assert.Nil(t, got)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok := TokenExpiry(signToken(t, exp))
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	_, ok = TokenExpiry("not-a-jwt")
	assert.False(t, ok)
}
