package services

import (
	"context"
	"errors"
	"testing"

	"github.com/innometrics/innometrics-backend/internal/model"
)

func TestRegisterHashesPasswordAndLowercasesEmail(t *testing.T) {
	fs := newFakeStore()
	svc := NewUserService(fs)

	u, err := svc.Register(context.Background(), "Alice@Example.COM", "s3cret", "Alice", "Smith")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", u.Email)
	}
	if u.PasswordHash == "s3cret" || u.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	fs := newFakeStore()
	svc := NewUserService(fs)

	if _, err := svc.Register(context.Background(), "a@example.com", "pw", "A", "B"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	// Same address with different casing still collides.
	if _, err := svc.Register(context.Background(), "A@Example.com", "pw", "A", "B"); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	fs := newFakeStore()
	svc := NewUserService(fs)

	if _, err := svc.Register(context.Background(), "a@example.com", "pw", "A", "B"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	u, err := svc.Authenticate(context.Background(), "A@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.Email != "a@example.com" {
		t.Fatalf("unexpected user: %q", u.Email)
	}

	if _, err := svc.Authenticate(context.Background(), "a@example.com", "wrong"); !errors.Is(err, model.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "pw"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	fs := newFakeStore()
	svc := NewUserService(fs)

	u, err := svc.Register(context.Background(), "a@example.com", "pw", "A", "B")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), u.UserID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), u.UserID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}
