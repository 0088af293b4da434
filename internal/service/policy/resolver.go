package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/domain/user"
)

type ResolverImpl struct {
	policyRepo policy.Repository
	userRepo   user.Repository
}

func NewResolver(policyRepo policy.Repository, userRepo user.Repository) *ResolverImpl {
	return &ResolverImpl{
		policyRepo: policyRepo,
		userRepo:   userRepo,
	}
}

// ResolveBundle implements policy.Resolver. Each dimension falls back to
// global independently: a team may override its geofence but not its network
// allow-list. A team override applies only when its opt-in flag is set AND the
// payload is non-empty, so a stale payload behind a toggled-off flag never
// leaks through.
func (r *ResolverImpl) ResolveBundle(ctx context.Context, department string) (policy.Bundle, error) {
	settings, err := r.policyRepo.GetSettings(ctx)
	if err != nil {
		return policy.Bundle{}, fmt.Errorf("failed to load global settings: %w", err)
	}

	var team policy.TeamPolicy
	if department != "" {
		team, err = r.policyRepo.GetTeamPolicy(ctx, department)
		if err != nil && !errors.Is(err, policy.ErrTeamPolicyNotFound) {
			return policy.Bundle{}, fmt.Errorf("failed to load team policy for %q: %w", department, err)
		}
	}

	bundle := policy.Bundle{
		RequireNetwork:     settings.RequireNetwork,
		RequireGeofence:    settings.RequireGeofence,
		RequireToken:       settings.RequireToken,
		AllowedIPs:         settings.AllowedIPs,
		OfficeLocations:    settings.OfficeLocations,
		GracePeriodMinutes: settings.GracePeriodMinutes,
	}

	if team.UseCustomIPs && len(team.AllowedIPs) > 0 {
		bundle.AllowedIPs = team.AllowedIPs
	}
	if team.UseCustomOffices && len(team.OfficeLocations) > 0 {
		bundle.OfficeLocations = team.OfficeLocations
	}

	return bundle, nil
}

// ResolveDaySchedule implements policy.Resolver. Precedence: a global date
// exception wins outright; then the user's own weekly entry, the team's weekly
// entry when the team opted into custom scheduling, and finally the global
// weekly entry. No match means no schedule constraint.
func (r *ResolverImpl) ResolveDaySchedule(ctx context.Context, userID, department string, date time.Time) (*policy.DaySchedule, error) {
	settings, err := r.policyRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load global settings: %w", err)
	}

	dateKey := date.Format("2006-01-02")
	if ds, ok := settings.Exceptions[dateKey]; ok {
		return &ds, nil
	}

	weekday := date.Weekday().String()

	u, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", userID, err)
	}
	if ds, ok := u.CustomSchedule[weekday]; ok {
		return &ds, nil
	}

	if department != "" {
		team, err := r.policyRepo.GetTeamPolicy(ctx, department)
		if err != nil && !errors.Is(err, policy.ErrTeamPolicyNotFound) {
			return nil, fmt.Errorf("failed to load team policy for %q: %w", department, err)
		}
		if err == nil && team.UseCustomSchedule {
			if ds, ok := team.WeeklySchedule[weekday]; ok {
				return &ds, nil
			}
		}
	}

	if ds, ok := settings.WeeklySchedule[weekday]; ok {
		return &ds, nil
	}

	return nil, nil
}
