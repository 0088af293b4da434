package policy

import (
	"context"
)

// Repository is the policy store: the global settings document, per-team
// overrides and the rotating verification tokens.
type Repository interface {
	// GetSettings returns the global settings document, creating the default
	// one if none exists yet.
	GetSettings(ctx context.Context) (Settings, error)

	// SaveSettings replaces the global settings document.
	SaveSettings(ctx context.Context, s Settings) (Settings, error)

	// GetTeamPolicy returns the override document for a department, or
	// ErrTeamPolicyNotFound.
	GetTeamPolicy(ctx context.Context, department string) (TeamPolicy, error)

	// SaveTeamPolicy upserts a team override document.
	SaveTeamPolicy(ctx context.Context, tp TeamPolicy) (TeamPolicy, error)

	// ListTeamPolicies returns all team override documents.
	ListTeamPolicies(ctx context.Context) ([]TeamPolicy, error)

	// GetToken returns the token at the given scope, or ErrTokenNotFound.
	GetToken(ctx context.Context, scope string) (VerificationToken, error)

	// SetToken stores a token at its scope, superseding any prior one.
	SetToken(ctx context.Context, token VerificationToken) error

	// ClearToken removes the token at a scope. Clearing an absent scope is
	// not an error.
	ClearToken(ctx context.Context, scope string) error

	// ListTokens returns every stored token across all scopes.
	ListTokens(ctx context.Context) ([]VerificationToken, error)

	// RenameTeam moves all scope-keyed entries (override document, team
	// token) from one department name to another in a single transaction.
	RenameTeam(ctx context.Context, oldName, newName string) error
}
