package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

// Publisher is the notification channel: fire-and-forget broadcast.
type Publisher interface {
	Publish(topic string, data interface{})
}

type ServiceImpl struct {
	policyRepo policy.Repository
	publisher  Publisher
	now        func() time.Time
}

func NewPolicyService(policyRepo policy.Repository, publisher Publisher) *ServiceImpl {
	return &ServiceImpl{
		policyRepo: policyRepo,
		publisher:  publisher,
		now:        time.Now,
	}
}

// WithClock overrides the eviction clock. Test hook.
func (s *ServiceImpl) WithClock(now func() time.Time) *ServiceImpl {
	s.now = now
	return s
}

// GetSettings implements policy.Service. Expired tokens encountered on the
// way out are evicted opportunistically, mirroring the periodic sweep.
func (s *ServiceImpl) GetSettings(ctx context.Context) (policy.Settings, error) {
	settings, err := s.policyRepo.GetSettings(ctx)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	tokens, err := s.policyRepo.ListTokens(ctx)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to list tokens: %w", err)
	}
	now := s.now()
	for _, t := range tokens {
		if t.Expired(now) {
			if err := s.policyRepo.ClearToken(ctx, t.Scope); err != nil {
				slog.Error("failed to evict expired token", "scope", t.Scope, "error", err)
			}
		}
	}

	return settings, nil
}

// UpdateSettings implements policy.Service.
func (s *ServiceImpl) UpdateSettings(ctx context.Context, in policy.Settings) (policy.Settings, error) {
	if err := validateSchedules(in.WeeklySchedule, in.Exceptions); err != nil {
		return policy.Settings{}, err
	}

	saved, err := s.policyRepo.SaveSettings(ctx, in)
	if err != nil {
		return policy.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.publisher.Publish("settings_updated", saved)
	return saved, nil
}

// GetTeamPolicy implements policy.Service.
func (s *ServiceImpl) GetTeamPolicy(ctx context.Context, department string) (policy.TeamPolicy, error) {
	return s.policyRepo.GetTeamPolicy(ctx, department)
}

// UpdateTeamPolicy implements policy.Service.
func (s *ServiceImpl) UpdateTeamPolicy(ctx context.Context, tp policy.TeamPolicy) (policy.TeamPolicy, error) {
	if validator.IsEmpty(tp.Department) {
		return policy.TeamPolicy{}, validator.ValidationErrors{{
			Field:   "department",
			Message: "department is required",
		}}
	}
	if err := validateSchedules(tp.WeeklySchedule, nil); err != nil {
		return policy.TeamPolicy{}, err
	}

	saved, err := s.policyRepo.SaveTeamPolicy(ctx, tp)
	if err != nil {
		return policy.TeamPolicy{}, fmt.Errorf("failed to save team policy: %w", err)
	}

	s.publisher.Publish("settings_updated", map[string]interface{}{
		"department": saved.Department,
	})
	return saved, nil
}

// RenameTeam implements policy.Service. Scope keys are first-class: the
// override document and the team token move to the new name in one
// transaction instead of being rewritten piecemeal.
func (s *ServiceImpl) RenameTeam(ctx context.Context, oldName, newName string) error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(oldName) {
		errs = append(errs, validator.ValidationError{Field: "old_name", Message: "old_name is required"})
	}
	if validator.IsEmpty(newName) {
		errs = append(errs, validator.ValidationError{Field: "new_name", Message: "new_name is required"})
	}
	if len(errs) > 0 {
		return errs
	}

	if err := s.policyRepo.RenameTeam(ctx, oldName, newName); err != nil {
		return fmt.Errorf("failed to rename team %q to %q: %w", oldName, newName, err)
	}

	s.publisher.Publish("settings_updated", map[string]interface{}{
		"renamed_from": oldName,
		"renamed_to":   newName,
	})
	return nil
}

// validateSchedules rejects enabled day entries whose start is not strictly
// before their end.
func validateSchedules(weekly map[string]policy.DaySchedule, exceptions map[string]policy.DaySchedule) error {
	var errs validator.ValidationErrors

	check := func(key string, ds policy.DaySchedule) {
		if !ds.Enabled {
			return
		}
		if !validator.IsValidClock(ds.StartTime) || !validator.IsValidClock(ds.EndTime) {
			errs = append(errs, validator.ValidationError{
				Field:   key,
				Message: "times must be HH:MM",
			})
			return
		}
		if !validator.ClockBefore(ds.StartTime, ds.EndTime) {
			errs = append(errs, validator.ValidationError{
				Field:   key,
				Message: policy.ErrInvalidSchedule.Error(),
			})
		}
	}

	for day, ds := range weekly {
		check("weekly_schedule."+day, ds)
	}
	for date, ds := range exceptions {
		if _, ok := validator.IsValidDate(date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "exceptions." + date,
				Message: "exception dates must be YYYY-MM-DD",
			})
			continue
		}
		check("exceptions."+date, ds)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
