package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteTokenStore keeps the session in the single-row sessions table.
type SQLiteTokenStore struct {
	db *sql.DB
}

// NewSQLiteTokenStore returns a store over a migrated database.
func NewSQLiteTokenStore(db *sql.DB) *SQLiteTokenStore {
	return &SQLiteTokenStore{db: db}
}

func (r *SQLiteTokenStore) Load(ctx context.Context) (*Session, error) {
	var (
		sess      Session
		savedAt   int64
		expiresAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT token, email, saved_at, expires_at FROM sessions WHERE id = 1`,
	).Scan(&sess.Token, &sess.Email, &savedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.SavedAt = time.Unix(savedAt, 0)
	if expiresAt.Valid {
		sess.ExpiresAt = time.Unix(expiresAt.Int64, 0)
	}
	return &sess, nil
}

func (r *SQLiteTokenStore) Save(ctx context.Context, s Session) error {
	var expiresAt sql.NullInt64
	if !s.ExpiresAt.IsZero() {
		expiresAt = sql.NullInt64{Int64: s.ExpiresAt.Unix(), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, token, email, saved_at, expires_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			saved_at = excluded.saved_at,
			expires_at = excluded.expires_at
	`, s.Token, s.Email, s.SavedAt.Unix(), expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteTokenStore) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
