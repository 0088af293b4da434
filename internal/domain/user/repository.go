package user

import "context"

// Repository is the read-only directory store view the engine consumes.
type Repository interface {
	// GetByID retrieves a user by storage ID, or ErrUserNotFound.
	GetByID(ctx context.Context, id string) (User, error)

	// GetByLogicalID retrieves a user by their logical identifier, or
	// ErrUserNotFound.
	GetByLogicalID(ctx context.Context, userID string) (User, error)

	// List returns all directory entries.
	List(ctx context.Context) ([]User, error)
}
