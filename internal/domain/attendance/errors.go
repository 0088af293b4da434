package attendance

import "errors"

// Attendance domain errors.
//
// ErrAlreadyCheckedIn is a state conflict: a benign per-department outcome,
// not a request failure. The evidence errors carry the specific check that
// rejected the request so callers never have to guess.
var (
	// State conflict
	ErrAlreadyCheckedIn = errors.New("already checked in for this department today")

	// Missing evidence
	ErrLocationRequired = errors.New("location is required to check in")
	ErrCodeRequired     = errors.New("verification code is required to check in")

	// Rejected evidence
	ErrUnauthorizedNetwork  = errors.New("unauthorized network")
	ErrOutsideGeofence      = errors.New("too far from any office location")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired verification code")

	// General
	ErrRecordNotFound = errors.New("attendance record not found")
	ErrNoDepartments  = errors.New("user has no department memberships")
)
