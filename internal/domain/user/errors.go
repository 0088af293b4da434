package user

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidToken             = errors.New("invalid or missing access token")
	ErrAdminAccessRequired      = errors.New("admin access required")
	ErrSupervisorAccessRequired = errors.New("supervisor access required")
)
