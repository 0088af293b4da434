package policy

import "errors"

// Policy domain errors
var (
	ErrTeamPolicyNotFound = errors.New("team policy not found")
	ErrTokenNotFound      = errors.New("verification token not found")
	ErrTeamNameTaken      = errors.New("a team with the new name already exists")
	ErrInvalidSchedule    = errors.New("schedule start time must be before end time")
)
