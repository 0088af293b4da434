package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	topics []string
}

func (p *recordingPublisher) Publish(topic string, data interface{}) {
	p.topics = append(p.topics, topic)
}

func TestGetSettingsEvictsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	repo.tokens[policy.TokenScopeGlobal] = policy.VerificationToken{
		Scope:     policy.TokenScopeGlobal,
		Code:      "STALE",
		IssuedAt:  now.Add(-time.Minute),
		TTLMillis: 10_000,
	}
	repo.tokens["Ops"] = policy.VerificationToken{
		Scope:     "Ops",
		Code:      "FRESH",
		IssuedAt:  now.Add(-time.Second),
		TTLMillis: 10_000,
	}

	svc := NewPolicyService(repo, &recordingPublisher{})
	svc.WithClock(func() time.Time { return now })

	_, err := svc.GetSettings(ctx)
	require.NoError(t, err)

	_, err = repo.GetToken(ctx, policy.TokenScopeGlobal)
	assert.ErrorIs(t, err, policy.ErrTokenNotFound, "stale token evicted")
	_, err = repo.GetToken(ctx, "Ops")
	assert.NoError(t, err, "live token untouched")
}

func TestUpdateSettingsValidatesSchedule(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	pub := &recordingPublisher{}
	svc := NewPolicyService(repo, pub)

	bad := policy.DefaultSettings()
	bad.WeeklySchedule["Monday"] = policy.DaySchedule{Enabled: true, StartTime: "18:00", EndTime: "09:00"}

	_, err := svc.UpdateSettings(ctx, bad)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "weekly_schedule.Monday")
	assert.Empty(t, pub.topics, "nothing broadcast on rejection")
}

func TestUpdateSettingsRejectsBadExceptionKey(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(newFakePolicyRepo(), &recordingPublisher{})

	bad := policy.DefaultSettings()
	bad.Exceptions = map[string]policy.DaySchedule{
		"31-08-2026": {Enabled: false},
	}

	_, err := svc.UpdateSettings(ctx, bad)
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Contains(t, verrs.ToMap(), "exceptions.31-08-2026")
}

func TestUpdateSettingsBroadcasts(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	pub := &recordingPublisher{}
	svc := NewPolicyService(repo, pub)

	s := policy.DefaultSettings()
	s.GracePeriodMinutes = 30

	saved, err := svc.UpdateSettings(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 30, saved.GracePeriodMinutes)
	assert.Equal(t, []string{"settings_updated"}, pub.topics)

	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30, got.GracePeriodMinutes)
}

func TestUpdateTeamPolicyRequiresDepartment(t *testing.T) {
	ctx := context.Background()
	svc := NewPolicyService(newFakePolicyRepo(), &recordingPublisher{})

	_, err := svc.UpdateTeamPolicy(ctx, policy.TeamPolicy{UseCustomIPs: true})
	assert.Error(t, err)
}

func TestRenameTeamMovesPolicyAndToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.teams["Ops"] = policy.TeamPolicy{Department: "Ops", UseCustomToken: true}
	repo.tokens["Ops"] = policy.VerificationToken{Scope: "Ops", Code: "ABC", IssuedAt: time.Now(), TTLMillis: 10_000}

	pub := &recordingPublisher{}
	svc := NewPolicyService(repo, pub)

	err := svc.RenameTeam(ctx, "Ops", "Operations")
	require.NoError(t, err)

	_, err = repo.GetTeamPolicy(ctx, "Ops")
	assert.ErrorIs(t, err, policy.ErrTeamPolicyNotFound)
	tp, err := repo.GetTeamPolicy(ctx, "Operations")
	require.NoError(t, err)
	assert.True(t, tp.UseCustomToken)

	tok, err := repo.GetToken(ctx, "Operations")
	require.NoError(t, err)
	assert.Equal(t, "ABC", tok.Code)

	assert.Contains(t, pub.topics, "settings_updated")
}

func TestRenameTeamCollision(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.teams["Ops"] = policy.TeamPolicy{Department: "Ops"}
	repo.teams["Operations"] = policy.TeamPolicy{Department: "Operations"}

	svc := NewPolicyService(repo, &recordingPublisher{})
	err := svc.RenameTeam(ctx, "Ops", "Operations")
	assert.True(t, errors.Is(err, policy.ErrTeamNameTaken))
}
