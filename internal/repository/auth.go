// Package repository provides the in-memory persistence used by the
// development backend.
package repository

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/atinyakov/creatorhub/internal/models"
)

var (
	// ErrEmailTaken is returned when an account with the same email exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when an account with the same username exists.
	ErrUsernameTaken = errors.New("username already taken")
)

// MemoryAuthRepository stores accounts keyed by id, with email and
// username indexes.
type MemoryAuthRepository struct {
	mu         sync.RWMutex
	byID       map[string]models.Account
	byEmail    map[string]string
	byUsername map[string]string
}

// NewMemoryAuthRepository returns an empty repository.
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{
		byID:       make(map[string]models.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser stores acc. Emails are unique case-insensitively, usernames
// exactly.
func (r *MemoryAuthRepository) CreateUser(ctx context.Context, acc models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(acc.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrEmailTaken
	}
	if acc.Username != "" {
		if _, exists := r.byUsername[acc.Username]; exists {
			return ErrUsernameTaken
		}
		r.byUsername[acc.Username] = acc.ID
	}
	r.byID[acc.ID] = acc
	r.byEmail[key] = acc.ID
	return nil
}

// UserByEmail returns the account for email, or (nil, nil) if there is none.
func (r *MemoryAuthRepository) UserByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, nil
	}
	acc := r.byID[id]
	return &acc, nil
}

// UserByID returns the account with id, or (nil, nil) if there is none.
func (r *MemoryAuthRepository) UserByID(ctx context.Context, id string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

// SetProfileCompleted flags the account once its creator profile exists.
func (r *MemoryAuthRepository) SetProfileCompleted(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[id]
	if !ok {
		return nil
	}
	acc.ProfileCompleted = true
	r.byID[id] = acc
	return nil
}
