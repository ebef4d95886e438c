package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepo struct {
	CreateUserFunc  func(ctx context.Context, acc models.Account) error
	UserByEmailFunc func(ctx context.Context, email string) (*models.Account, error)
}

func (m *mockAuthRepo) CreateUser(ctx context.Context, acc models.Account) error {
	return m.CreateUserFunc(ctx, acc)
}

func (m *mockAuthRepo) UserByEmail(ctx context.Context, email string) (*models.Account, error) {
	return m.UserByEmailFunc(ctx, email)
}

func newTestAuth(repo AuthRepository) *AuthService {
	s := NewAuthService(repo, "test-secret", 30*time.Minute)
	s.cost = bcrypt.MinCost
	return s
}

func validRegistration() models.Registration {
	return models.Registration{Email: "maker@example.com", Username: "maker", FullName: "Maker", Password: "pw", UserType: models.RoleCreator}
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestAuth(repository.NewMemoryAuthRepository())
	ctx := context.Background()

	tok, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, u.UserType)
	assert.True(t, u.IsActive)

	_, err = svc.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)

	dup := validRegistration()
	dup.Email = "other@example.com"
	_, err = svc.Register(ctx, dup)
	assert.ErrorIs(t, err, ErrUsernameTaken)

	tok, err = svc.Login(ctx, models.Credentials{Email: "maker@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, tok)

	_, err = svc.Login(ctx, models.Credentials{Email: "maker@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.Credentials{Email: "ghost@example.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_InputErrors(t *testing.T) {
	svc := newTestAuth(&mockAuthRepo{CreateUserFunc: func(context.Context, models.Account) error {
		t.Fatal("invalid input must not be stored")
		return nil
	}})

	tests := []struct {
		field  string
		mutate func(*models.Registration)
	}{
		{"email", func(r *models.Registration) { r.Email = "not-an-email" }},
		{"username", func(r *models.Registration) { r.Username = " " }},
		{"password", func(r *models.Registration) { r.Password = "" }},
		{"user_type", func(r *models.Registration) { r.UserType = "admin" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			reg := validRegistration()
			tt.mutate(&reg)
			_, err := svc.Register(context.Background(), reg)
			var inErr *InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, tt.field, inErr.Field)
		})
	}
}

func TestLogin_RepoError(t *testing.T) {
	wantErr := errors.New("db error")
	svc := newTestAuth(&mockAuthRepo{UserByEmailFunc: func(context.Context, string) (*models.Account, error) {
		return nil, wantErr
	}})

	_, err := svc.Login(context.Background(), models.Credentials{Email: "a@b.c", Password: "x"})
	assert.ErrorIs(t, err, wantErr)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	repo := repository.NewMemoryAuthRepository()
	svc := newTestAuth(repo)
	ctx := context.Background()
	tok, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := newTestAuth(repo)
		later.now = func() time.Time { return time.Now().Add(time.Hour) }
		_, err := later.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(repo, "other-secret", time.Minute)
		_, err := other.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "maker@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.Authenticate(ctx, none)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown account", func(t *testing.T) {
		empty := newTestAuth(repository.NewMemoryAuthRepository())
		_, err := empty.Authenticate(ctx, tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
