package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/creatorhub/internal/models"
)

func account(id, email string) models.Account {
	return models.Account{User: models.User{ID: id, Email: email, UserType: models.RoleBuyer}, PasswordHash: []byte("hash")}
}

func TestCreateUser_UniqueEmail(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()

	if err := repo.CreateUser(ctx, account("u1", "Alice@Example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := repo.CreateUser(ctx, account("u2", " alice@example.com")); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUser_UniqueUsername(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()

	first := account("u1", "one@example.com")
	first.Username = "maker"
	if err := repo.CreateUser(ctx, first); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	second := account("u2", "two@example.com")
	second.Username = "maker"
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	acc, err := repo.UserByEmail(ctx, "two@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if acc != nil {
		t.Errorf("rejected account must not be indexed, got %+v", acc)
	}
}

func TestUserLookups(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx := context.Background()
	if err := repo.CreateUser(ctx, account("u1", "bob@example.com")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	acc, err := repo.UserByEmail(ctx, "BOB@example.com")
	if err != nil || acc == nil || acc.ID != "u1" {
		t.Fatalf("UserByEmail = %+v, %v; want u1", acc, err)
	}

	acc, err = repo.UserByEmail(ctx, "nobody@example.com")
	if err != nil || acc != nil {
		t.Errorf("UserByEmail(unknown) = %+v, %v; want nil, nil", acc, err)
	}

	acc, err = repo.UserByID(ctx, "u1")
	if err != nil || acc == nil {
		t.Fatalf("UserByID = %+v, %v", acc, err)
	}
	if acc.ProfileCompleted {
		t.Error("new account must not have a completed profile")
	}

	if err := repo.SetProfileCompleted(ctx, "u1"); err != nil {
		t.Fatalf("SetProfileCompleted: %v", err)
	}
	if acc, _ = repo.UserByID(ctx, "u1"); !acc.ProfileCompleted {
		t.Error("profile should be marked completed")
	}

	acc, err = repo.UserByID(ctx, "missing")
	if err != nil || acc != nil {
		t.Errorf("UserByID(missing) = %+v, %v; want nil, nil", acc, err)
	}
}

func TestCancelledContext(t *testing.T) {
	repo := NewMemoryAuthRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.CreateUser(ctx, account("u1", "a@b.c")); !errors.Is(err, context.Canceled) {
		t.Errorf("CreateUser: expected context.Canceled, got %v", err)
	}
	if _, err := repo.UserByEmail(ctx, "a@b.c"); !errors.Is(err, context.Canceled) {
		t.Errorf("UserByEmail: expected context.Canceled, got %v", err)
	}
}
