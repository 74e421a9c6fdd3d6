package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/innometrics/innometrics-backend/internal/model"
	"github.com/innometrics/innometrics-backend/internal/store"
)

// Resolver maps a bearer token to an existing user. A validly signed,
// unexpired token whose subject does not match any user still yields
// model.ErrUnauthenticated.
type Resolver struct {
	users store.Users
	cfg   Config
}

func NewResolver(users store.Users, cfg Config) *Resolver {
	return &Resolver{users: users, cfg: cfg}
}

// Resolve is read-only and never panics; every failure mode collapses to
// model.ErrUnauthenticated.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.User, error) {
	userID, err := Parse(token, r.cfg)
	if err != nil {
		return nil, err
	}
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", model.ErrUnauthenticated)
		}
		return nil, err
	}
	return u, nil
}
