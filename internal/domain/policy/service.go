package policy

import (
	"context"
	"time"
)

// Resolver cascades configuration across scopes: user, team, global.
type Resolver interface {
	// ResolveBundle computes the effective policy for one department. Each
	// dimension (network, geofence, token, schedule) falls back to global
	// independently.
	ResolveBundle(ctx context.Context, department string) (Bundle, error)

	// ResolveDaySchedule returns the effective schedule for a user in a
	// department on a date, or nil when no schedule constraint applies.
	// Precedence: global date exception, user weekly, team weekly (if the
	// team opted in), global weekly.
	ResolveDaySchedule(ctx context.Context, userID, department string, date time.Time) (*DaySchedule, error)
}

// MatchResult is the outcome of the additive cross-scope token check.
type MatchResult struct {
	Valid bool
	// Scope is the token scope that accepted the code, when Valid.
	Scope string
}

// TokenManager owns the rotating verification codes at global and team scope.
type TokenManager interface {
	// Rotate generates and stores a fresh code. An empty department rotates
	// the global token; otherwise the team token for that department.
	Rotate(ctx context.Context, department string) (VerificationToken, error)

	// Validate checks a candidate code against one scope at an instant.
	// Expired tokens encountered here are evicted opportunistically.
	Validate(ctx context.Context, scope, code string, now time.Time) (bool, error)

	// CheckAdditive applies the cross-scope acceptance rule used at
	// check-in: team token of the targeted department (when that team has
	// opted in), then the global token, then — only when no department was
	// targeted — any team token of a department the user belongs to.
	CheckAdditive(ctx context.Context, code, targetDepartment string, userDepartments []string, now time.Time) (MatchResult, error)

	// Sweep drops all expired tokens and returns how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// Service manages the stored policy documents.
type Service interface {
	// GetSettings returns the global settings, lazily evicting any expired
	// tokens encountered on the way.
	GetSettings(ctx context.Context) (Settings, error)

	// UpdateSettings validates and replaces the global settings document.
	UpdateSettings(ctx context.Context, s Settings) (Settings, error)

	// GetTeamPolicy returns one team's override document.
	GetTeamPolicy(ctx context.Context, department string) (TeamPolicy, error)

	// UpdateTeamPolicy validates and upserts a team override document.
	UpdateTeamPolicy(ctx context.Context, tp TeamPolicy) (TeamPolicy, error)

	// RenameTeam migrates all scope-keyed policy state to a new team name.
	RenameTeam(ctx context.Context, oldName, newName string) error
}
