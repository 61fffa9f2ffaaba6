package service

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// UserRepository is the credential store. Create must enforce email
// uniqueness itself and report user.ErrEmailTaken.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash, name string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateName(ctx context.Context, id, name string) (user.User, error)
}

// TaskRepository has no method that reads or writes a task without an owner.
// Update and delete match id and owner in one statement.
type TaskRepository interface {
	ListByOwner(ctx context.Context, ownerID string, filter task.ListTasksFilter) ([]task.Task, error)
	Create(ctx context.Context, ownerID, title string) (task.Task, error)
	UpdateByOwnerAndID(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error)
	DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	// Burn spends the same time as Verify without a real digest.
	Burn(plain string)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// ProfileCache is best effort: errors are logged by the caller and treated as a miss.
type ProfileCache interface {
	GetProfile(ctx context.Context, userID string) (user.Profile, bool, error)
	SetProfile(ctx context.Context, p user.Profile) error
	DeleteProfile(ctx context.Context, userID string) error
}

// AuthRecorder receives auth outcomes for metrics.
type AuthRecorder interface {
	AuthEvent(event, result string)
}
