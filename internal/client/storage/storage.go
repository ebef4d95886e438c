// Package storage persists the client's session token between runs.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Session is the persisted credential.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
	// ExpiresAt is zero when the token's expiry is unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Expired reports whether the session is known to have expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// TokenStore loads, saves and clears the persisted session. Load returns
// (nil, nil) when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// FileTokenStore keeps the session in a JSON file readable only by the owner.
type FileTokenStore struct {
	path string
	mu   sync.Mutex
}

// NewFileTokenStore returns a store writing to path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (s *FileTokenStore) Load(_ context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	var sess Session
	if err := json.NewDecoder(f).Decode(&sess); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

func (s *FileTokenStore) Save(_ context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(sess); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode session file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *FileTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryTokenStore keeps the session in memory only.
type MemoryTokenStore struct {
	mu   sync.Mutex
	sess *Session
}

func (m *MemoryTokenStore) Load(context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess == nil {
		return nil, nil
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemoryTokenStore) Save(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = &s
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}
