// Package service provides the business logic of the development backend:
// account authentication and the listing catalog, delegating persistence
// to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/atinyakov/creatorhub/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = repository.ErrEmailTaken
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = repository.ErrUsernameTaken
	// ErrInvalidToken is returned for malformed, expired or unknown tokens.
	ErrInvalidToken = errors.New("could not validate credentials")
)

// InputError is a rejected request field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string { return e.Field + ": " + e.Reason }

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new account; duplicate emails fail with ErrEmailTaken.
	CreateUser(ctx context.Context, acc models.Account) error
	// UserByEmail returns (nil, nil) when no account has the email.
	UserByEmail(ctx context.Context, email string) (*models.Account, error)
}

// Claims is the access token payload. Subject holds the account email.
type Claims struct {
	UserID string      `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService implements registration, login and token verification.
type AuthService struct {
	repo   AuthRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	cost   int
}

// NewAuthService constructs an AuthService signing HS256 tokens with secret.
func NewAuthService(repo AuthRepository, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		cost:   bcrypt.DefaultCost,
	}
}

// Register creates an account and returns its first access token.
func (s *AuthService) Register(ctx context.Context, reg models.Registration) (string, error) {
	if _, err := mail.ParseAddress(reg.Email); err != nil {
		return "", &InputError{Field: "email", Reason: "value is not a valid email address"}
	}
	if strings.TrimSpace(reg.Username) == "" {
		return "", &InputError{Field: "username", Reason: "field required"}
	}
	if reg.Password == "" {
		return "", &InputError{Field: "password", Reason: "field required"}
	}
	if !reg.UserType.Valid() {
		return "", &InputError{Field: "user_type", Reason: "must be buyer or creator"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	acc := models.Account{
		User: models.User{
			ID:        uuid.NewString(),
			Email:     strings.TrimSpace(reg.Email),
			Username:  strings.TrimSpace(reg.Username),
			FullName:  strings.TrimSpace(reg.FullName),
			UserType:  reg.UserType,
			CreatedAt: s.now().UTC(),
			IsActive:  true,
		},
		PasswordHash: hash,
	}
	if err := s.repo.CreateUser(ctx, acc); err != nil {
		return "", err
	}
	return s.issue(acc.User)
}

// Login verifies credentials and returns an access token.
func (s *AuthService) Login(ctx context.Context, cred models.Credentials) (string, error) {
	acc, err := s.repo.UserByEmail(ctx, cred.Email)
	if err != nil {
		return "", err
	}
	if acc == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(cred.Password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issue(acc.User)
}

// Authenticate resolves a bearer token to its account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	acc, err := s.repo.UserByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.IsActive {
		return nil, ErrInvalidToken
	}
	return &acc.User, nil
}

func (s *AuthService) issue(u models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
