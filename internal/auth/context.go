package auth

import (
	"context"

	"github.com/innometrics/innometrics-backend/internal/model"
)

type contextKey string

const userKey contextKey = "innometrics-auth-user"

// WithUser stores the resolved user on the context.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom retrieves the user stored by WithUser.
func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok
}
