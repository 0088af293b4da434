package policy

import (
	"context"
	"testing"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePolicyRepo struct {
	settings policy.Settings
	teams    map[string]policy.TeamPolicy
	tokens   map[string]policy.VerificationToken
}

func newFakePolicyRepo() *fakePolicyRepo {
	return &fakePolicyRepo{
		settings: policy.DefaultSettings(),
		teams:    make(map[string]policy.TeamPolicy),
		tokens:   make(map[string]policy.VerificationToken),
	}
}

func (f *fakePolicyRepo) GetSettings(ctx context.Context) (policy.Settings, error) {
	return f.settings, nil
}

func (f *fakePolicyRepo) SaveSettings(ctx context.Context, s policy.Settings) (policy.Settings, error) {
	f.settings = s
	return s, nil
}

func (f *fakePolicyRepo) GetTeamPolicy(ctx context.Context, department string) (policy.TeamPolicy, error) {
	tp, ok := f.teams[department]
	if !ok {
		return policy.TeamPolicy{}, policy.ErrTeamPolicyNotFound
	}
	return tp, nil
}

func (f *fakePolicyRepo) SaveTeamPolicy(ctx context.Context, tp policy.TeamPolicy) (policy.TeamPolicy, error) {
	f.teams[tp.Department] = tp
	return tp, nil
}

func (f *fakePolicyRepo) ListTeamPolicies(ctx context.Context) ([]policy.TeamPolicy, error) {
	var out []policy.TeamPolicy
	for _, tp := range f.teams {
		out = append(out, tp)
	}
	return out, nil
}

func (f *fakePolicyRepo) GetToken(ctx context.Context, scope string) (policy.VerificationToken, error) {
	t, ok := f.tokens[scope]
	if !ok {
		return policy.VerificationToken{}, policy.ErrTokenNotFound
	}
	return t, nil
}

func (f *fakePolicyRepo) SetToken(ctx context.Context, token policy.VerificationToken) error {
	f.tokens[token.Scope] = token
	return nil
}

func (f *fakePolicyRepo) ClearToken(ctx context.Context, scope string) error {
	delete(f.tokens, scope)
	return nil
}

func (f *fakePolicyRepo) ListTokens(ctx context.Context) ([]policy.VerificationToken, error) {
	var out []policy.VerificationToken
	for _, t := range f.tokens {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakePolicyRepo) RenameTeam(ctx context.Context, oldName, newName string) error {
	if _, ok := f.teams[newName]; ok {
		return policy.ErrTeamNameTaken
	}
	if tp, ok := f.teams[oldName]; ok {
		tp.Department = newName
		f.teams[newName] = tp
		delete(f.teams, oldName)
	}
	if t, ok := f.tokens[oldName]; ok {
		t.Scope = newName
		f.tokens[newName] = t
		delete(f.tokens, oldName)
	}
	return nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func newFakeUserRepo(users ...user.User) *fakeUserRepo {
	f := &fakeUserRepo{users: make(map[string]user.User)}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByLogicalID(ctx context.Context, userID string) (user.User, error) {
	for _, u := range f.users {
		if u.UserID == userID {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

// Monday 2026-08-31.
var testDate = time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

func TestResolveBundlePerDimensionOverride(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.settings.RequireNetwork = true
	repo.settings.RequireGeofence = true
	repo.settings.AllowedIPs = []string{"10.0.0.1"}
	repo.settings.OfficeLocations = []policy.OfficeLocation{{Name: "HQ", Latitude: 1, Longitude: 1, RadiusMeters: 100}}

	// Ops overrides only the geofence dimension.
	_, err := repo.SaveTeamPolicy(ctx, policy.TeamPolicy{
		Department:       "Ops",
		UseCustomOffices: true,
		OfficeLocations:  []policy.OfficeLocation{{Name: "Warehouse", Latitude: 2, Longitude: 2, RadiusMeters: 50}},
	})
	require.NoError(t, err)

	r := NewResolver(repo, newFakeUserRepo())
	bundle, err := r.ResolveBundle(ctx, "Ops")
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.1"}, bundle.AllowedIPs, "network stays global")
	require.Len(t, bundle.OfficeLocations, 1)
	assert.Equal(t, "Warehouse", bundle.OfficeLocations[0].Name, "geofence comes from the team")
	assert.True(t, bundle.RequireNetwork)
	assert.True(t, bundle.RequireGeofence)
}

func TestResolveBundleDisabledFlagIgnoresStalePayload(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.settings.AllowedIPs = []string{"10.0.0.1"}

	// Payload present but flag off: must defer to global.
	_, err := repo.SaveTeamPolicy(ctx, policy.TeamPolicy{
		Department:   "Ops",
		UseCustomIPs: false,
		AllowedIPs:   []string{"192.168.9.9"},
	})
	require.NoError(t, err)

	r := NewResolver(repo, newFakeUserRepo())
	bundle, err := r.ResolveBundle(ctx, "Ops")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, bundle.AllowedIPs)
}

func TestResolveBundleEnabledFlagEmptyPayloadFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.settings.AllowedIPs = []string{"10.0.0.1"}

	_, err := repo.SaveTeamPolicy(ctx, policy.TeamPolicy{
		Department:   "Ops",
		UseCustomIPs: true, // opted in, but nothing configured
	})
	require.NoError(t, err)

	r := NewResolver(repo, newFakeUserRepo())
	bundle, err := r.ResolveBundle(ctx, "Ops")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1"}, bundle.AllowedIPs)
}

func TestResolveBundleUnknownTeam(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.settings.GracePeriodMinutes = 20

	r := NewResolver(repo, newFakeUserRepo())
	bundle, err := r.ResolveBundle(ctx, "Nonexistent")
	require.NoError(t, err)
	assert.Equal(t, 20, bundle.GracePeriodMinutes)
}

func TestResolveDaySchedulePrecedence(t *testing.T) {
	ctx := context.Background()

	exception := policy.DaySchedule{Enabled: false}
	userSched := policy.DaySchedule{Enabled: true, StartTime: "10:00", EndTime: "18:00"}
	teamSched := policy.DaySchedule{Enabled: true, StartTime: "08:00", EndTime: "16:00"}
	globalSched := policy.DaySchedule{Enabled: true, StartTime: "09:00", EndTime: "17:00"}

	build := func(withException, withUser, withTeam bool) (*ResolverImpl, string) {
		repo := newFakePolicyRepo()
		repo.settings.WeeklySchedule = map[string]policy.DaySchedule{"Monday": globalSched}
		if withException {
			repo.settings.Exceptions = map[string]policy.DaySchedule{"2026-08-31": exception}
		}

		u := user.User{ID: "u1", UserID: "badge-1", Name: "U", Departments: []string{"Ops"}}
		if withUser {
			u.CustomSchedule = map[string]policy.DaySchedule{"Monday": userSched}
		}
		if withTeam {
			repo.teams["Ops"] = policy.TeamPolicy{
				Department:        "Ops",
				UseCustomSchedule: true,
				WeeklySchedule:    map[string]policy.DaySchedule{"Monday": teamSched},
			}
		}
		return NewResolver(repo, newFakeUserRepo(u)), "u1"
	}

	// All four tiers defined: the exception wins.
	r, uid := build(true, true, true)
	got, err := r.ResolveDaySchedule(ctx, uid, "Ops", testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, exception, *got)

	// No exception: the user's own schedule wins.
	r, uid = build(false, true, true)
	got, err = r.ResolveDaySchedule(ctx, uid, "Ops", testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userSched, *got)

	// No user override: the team schedule wins.
	r, uid = build(false, false, true)
	got, err = r.ResolveDaySchedule(ctx, uid, "Ops", testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, teamSched, *got)

	// Nothing else: global weekly.
	r, uid = build(false, false, false)
	got, err = r.ResolveDaySchedule(ctx, uid, "Ops", testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, globalSched, *got)
}

func TestResolveDayScheduleTeamNotOptedIn(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	globalSched := policy.DaySchedule{Enabled: true, StartTime: "09:00", EndTime: "17:00"}
	repo.settings.WeeklySchedule = map[string]policy.DaySchedule{"Monday": globalSched}
	repo.teams["Ops"] = policy.TeamPolicy{
		Department:        "Ops",
		UseCustomSchedule: false, // schedule present but flag off
		WeeklySchedule:    map[string]policy.DaySchedule{"Monday": {Enabled: true, StartTime: "06:00", EndTime: "14:00"}},
	}

	u := user.User{ID: "u1", UserID: "badge-1", Name: "U"}
	r := NewResolver(repo, newFakeUserRepo(u))

	got, err := r.ResolveDaySchedule(ctx, "u1", "Ops", testDate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, globalSched, *got)
}

func TestResolveDayScheduleNoMatch(t *testing.T) {
	ctx := context.Background()
	repo := newFakePolicyRepo()
	repo.settings.WeeklySchedule = map[string]policy.DaySchedule{}

	u := user.User{ID: "u1", UserID: "badge-1", Name: "U"}
	r := NewResolver(repo, newFakeUserRepo(u))

	got, err := r.ResolveDaySchedule(ctx, "u1", "Ops", testDate)
	require.NoError(t, err)
	assert.Nil(t, got, "absence of any tier means no schedule constraint")
}
