package store

import (
	"context"

	"github.com/innometrics/innometrics-backend/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
type Store interface {
	Users() Users
	Activities() Activities
	Projects() Projects
}

type Users interface {
	// Create returns model.ErrConflict when the email is already taken.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Delete(ctx context.Context, userID string) error
}

type Activities interface {
	// Insert persists one record atomically and assigns its identifier.
	Insert(ctx context.Context, a *model.Activity) (*model.Activity, error)
	// Delete returns model.ErrNotFound when no row matched; any other
	// error is an infrastructure failure.
	Delete(ctx context.Context, activityID string) error
	// Find returns records owned by any of req.OwnerIDs. Unrecognized
	// filter keys are rejected with model.ErrValidation.
	Find(ctx context.Context, req model.FindActivitiesRequest) ([]*model.Activity, error)
}

type Projects interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	GetByID(ctx context.Context, projectID string) (*model.Project, error)
	// List returns projects the user manages or is a member of.
	List(ctx context.Context, userID string) ([]*model.Project, error)
	// AddMember returns model.ErrConflict when the user is already a member.
	AddMember(ctx context.Context, m *model.ProjectMember) error
	MemberIDs(ctx context.Context, projectID string) ([]string, error)
}

// HealthPinger is implemented by stores that can report connectivity.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}
