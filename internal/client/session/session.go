// Package session holds the client's authentication state: who is signed
// in, with which role and token, and whether that is known yet.
//
// Store is the only owner of the Identity. Consumers read snapshots via
// State or Subscribe and mutate only through Restore, Login, Register,
// Logout and Invalidate.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/client/async"
	"github.com/atinyakov/creatorhub/internal/client/storage"
	"github.com/atinyakov/creatorhub/internal/logger"
	"github.com/atinyakov/creatorhub/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Status is the coarse session state.
type Status int

const (
	// Unknown is the initial state, before Restore finishes.
	Unknown Status = iota
	SignedOut
	SignedIn
)

func (s Status) String() string {
	switch s {
	case SignedOut:
		return "signed out"
	case SignedIn:
		return "signed in"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of the session.
type State struct {
	Status   Status
	Identity *models.Identity
}

// Loading reports whether the session is still being restored.
func (s State) Loading() bool { return s.Status == Unknown }

// AuthAPI is the part of the backend the store talks to.
type AuthAPI interface {
	Login(ctx context.Context, cred models.Credentials) (*models.TokenResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.TokenResponse, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// Store is the session store.
type Store struct {
	api    AuthAPI
	tokens storage.TokenStore
	state  *async.Value[State]
	log    *zap.Logger
	now    func() time.Time

	// persistMu ties a change of the persisted token to the state change
	// that goes with it.
	persistMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = logger.OrNop(log) }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store in the Unknown state.
func New(api AuthAPI, tokens storage.TokenStore, opts ...Option) *Store {
	s := &Store{
		api:    api,
		tokens: tokens,
		state:  async.NewValue(State{Status: Unknown}),
		log:    zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Store) State() State { return s.state.Get() }

// Identity returns the signed-in identity or nil.
func (s *Store) Identity() *models.Identity { return s.state.Get().Identity }

// Token returns the current bearer token, or "" when signed out.
func (s *Store) Token() string {
	if id := s.Identity(); id != nil {
		return id.Token
	}
	return ""
}

// Subscribe calls fn with every new snapshot until cancel is called.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	return s.state.Subscribe(fn)
}

// Restore recovers a persisted session. It never fails: any problem ends
// in SignedOut. Only the first call out of Unknown has an effect; later
// calls return the current state.
func (s *Store) Restore(ctx context.Context) State {
	if st := s.State(); !st.Loading() {
		return st
	}
	return s.settle(s.restore(ctx))
}

func (s *Store) restore(ctx context.Context) State {
	signedOut := State{Status: SignedOut}

	sess, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn("failed to load persisted session", zap.Error(err))
		return signedOut
	}
	if sess == nil {
		return signedOut
	}

	if exp, ok := TokenExpiry(sess.Token); (ok && !s.now().Before(exp)) || sess.Expired(s.now()) {
		s.log.Info("persisted session expired")
		s.dropRestored(ctx)
		return signedOut
	}

	user, err := s.api.Me(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, apperr.ErrUnauthorized) {
			s.log.Info("persisted session rejected", zap.Error(err))
			s.dropRestored(ctx)
		} else {
			// Keep the token for the next start; the backend may be back by then.
			s.log.Warn("could not verify persisted session", zap.Error(err))
		}
		return signedOut
	}
	if !user.UserType.Valid() {
		s.log.Warn("persisted session has no valid role", zap.String("user_id", user.ID), zap.String("role", string(user.UserType)))
		return signedOut
	}
	return signedIn(*user, sess.Token)
}

// dropRestored clears the token Restore found unless a sign-in finished in
// the meantime and saved its own.
func (s *Store) dropRestored(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if !s.State().Loading() {
		return
	}
	s.clearTokens(ctx)
}

// settle publishes next only if the store is still Unknown, so a Login
// that finished during Restore is not overwritten.
func (s *Store) settle(next State) State {
	return s.state.Update(func(cur State) (State, bool) {
		if !cur.Loading() {
			return cur, false
		}
		return next, true
	})
}

// Login exchanges credentials for a session. On failure the identity is
// left unset and the error is classified (apperr.ErrInvalidCredentials,
// apperr.ErrNetwork, ...).
func (s *Store) Login(ctx context.Context, cred models.Credentials) (*models.Identity, error) {
	tok, err := s.api.Login(ctx, cred)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, tok.AccessToken)
}

// Register creates an account and signs it in.
func (s *Store) Register(ctx context.Context, reg models.Registration) (*models.Identity, error) {
	if !reg.UserType.Valid() {
		v := apperr.NewValidationError()
		v.Add("user_type", "must be buyer or creator")
		return nil, v
	}
	tok, err := s.api.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, tok.AccessToken)
}

func (s *Store) establish(ctx context.Context, token string) (*models.Identity, error) {
	user, err := s.api.Me(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !user.UserType.Valid() {
		return nil, fmt.Errorf("load account: %w: unknown role %q", apperr.ErrServer, user.UserType)
	}

	sess := storage.Session{Token: token, Email: user.Email, SavedAt: s.now()}
	if exp, ok := TokenExpiry(token); ok {
		sess.ExpiresAt = exp
	}
	next := signedIn(*user, token)
	s.persistMu.Lock()
	if err := s.tokens.Save(ctx, sess); err != nil {
		s.log.Warn("failed to persist session", zap.Error(err))
	}
	s.state.Set(next)
	s.persistMu.Unlock()
	s.log.Info("signed in", zap.String("user_id", user.ID), zap.String("role", string(user.UserType)))
	return next.Identity, nil
}

// Logout clears the identity and the persisted token. It never fails and
// is a no-op when already signed out.
func (s *Store) Logout(ctx context.Context) {
	s.signOut(ctx, "logout")
}

// Invalidate signs out after the backend rejected the current token.
func (s *Store) Invalidate(ctx context.Context) {
	s.signOut(ctx, "credentials invalidated")
}

func (s *Store) signOut(ctx context.Context, reason string) {
	s.persistMu.Lock()
	s.clearTokens(ctx)
	s.state.Update(func(cur State) (State, bool) {
		if cur.Status == SignedOut {
			return cur, false
		}
		return State{Status: SignedOut}, true
	})
	s.persistMu.Unlock()
	s.log.Debug("signed out", zap.String("reason", reason))
}

func (s *Store) clearTokens(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log.Warn("failed to clear persisted session", zap.Error(err))
	}
}

func signedIn(u models.User, token string) State {
	return State{Status: SignedIn, Identity: models.NewIdentity(u, token)}
}

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature. ok is false when token is not a JWT or carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
