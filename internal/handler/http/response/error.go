package response

import (
	"errors"
	"net/http"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/domain/user"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance state conflict
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in for this department today")

	// Missing evidence
	case errors.Is(err, attendance.ErrLocationRequired):
		BadRequest(w, "Location is required to check in", nil)
	case errors.Is(err, attendance.ErrCodeRequired):
		BadRequest(w, "Verification code is required to check in", nil)
	case errors.Is(err, attendance.ErrNoDepartments):
		BadRequest(w, "User has no matching department", nil)

	// Rejected evidence
	case errors.Is(err, attendance.ErrUnauthorizedNetwork):
		Forbidden(w, "Unauthorized network")
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Forbidden(w, "Too far from any office location")
	case errors.Is(err, attendance.ErrInvalidOrExpiredCode):
		Forbidden(w, "Invalid or expired verification code")

	// Lookups
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, policy.ErrTeamPolicyNotFound):
		NotFound(w, "Team policy not found")
	case errors.Is(err, policy.ErrTokenNotFound):
		NotFound(w, "No active verification token")

	// Policy conflicts
	case errors.Is(err, policy.ErrTeamNameTaken):
		Conflict(w, "Team name already in use")

	// Access control
	case errors.Is(err, user.ErrInvalidToken):
		Unauthorized(w, "Invalid or missing access token")
	case errors.Is(err, user.ErrAdminAccessRequired):
		Forbidden(w, "Admin access required")
	case errors.Is(err, user.ErrSupervisorAccessRequired):
		Forbidden(w, "Supervisor access required")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
