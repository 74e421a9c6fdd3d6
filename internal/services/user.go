package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// UserService handles registration, authentication and deletion.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService { return &UserService{store: s} }

// Register creates a user with a bcrypt-hashed password. Emails are
// stored lowercase; uniqueness is case-insensitive.
func (s *UserService) Register(ctx context.Context, email, password, name, surname string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Email:        strings.ToLower(email),
		Name:         name,
		Surname:      surname,
		PasswordHash: string(hash),
	}
	return s.store.Users().Create(ctx, u)
}

// Authenticate verifies credentials and returns the user. A wrong
// password yields model.ErrUnauthenticated; an unknown email yields
// model.ErrNotFound, matching the API's 404-vs-401 distinction.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.Users().GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, model.ErrUnauthenticated
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

// DeleteUser removes the user row only; owned activity records are kept.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	return s.store.Users().Delete(ctx, userID)
}
