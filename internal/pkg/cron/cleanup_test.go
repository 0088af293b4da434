package cron

import (
	"context"
	"testing"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

var sweepClock = time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)

type fakeSweeper struct {
	calls   int
	sawNow  time.Time
	dropped int
}

func (f *fakeSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	f.sawNow = now
	return f.dropped, nil
}

type fakeSettingsRepo struct {
	policy.Repository
	settings policy.Settings
}

func (f *fakeSettingsRepo) GetSettings(ctx context.Context) (policy.Settings, error) {
	return f.settings, nil
}

type fakeRecordStore struct {
	attendance.Repository
	deleteCalls int
	sawCutoff   time.Time
}

func (f *fakeRecordStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.deleteCalls++
	f.sawCutoff = cutoff
	return 3, nil
}

func TestPurgeOldRecordsUsesRetentionWindow(t *testing.T) {
	store := &fakeRecordStore{}
	jobs := NewCleanupJobs(&fakeSweeper{}, &fakeSettingsRepo{settings: policy.Settings{DataRetentionDays: 30}}, store)

	if err := jobs.PurgeOldRecords(context.Background(), sweepClock); err != nil {
		t.Fatalf("PurgeOldRecords: %v", err)
	}
	if store.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", store.deleteCalls)
	}
	want := sweepClock.AddDate(0, 0, -30)
	if !store.sawCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.sawCutoff, want)
	}
}

func TestPurgeOldRecordsDisabledByZeroRetention(t *testing.T) {
	store := &fakeRecordStore{}
	jobs := NewCleanupJobs(&fakeSweeper{}, &fakeSettingsRepo{settings: policy.Settings{DataRetentionDays: 0}}, store)

	if err := jobs.PurgeOldRecords(context.Background(), sweepClock); err != nil {
		t.Fatalf("PurgeOldRecords: %v", err)
	}
	if store.deleteCalls != 0 {
		t.Errorf("expected no delete call with retention disabled, got %d", store.deleteCalls)
	}
}

func TestRunOnceDrivesJobsWithInjectedClock(t *testing.T) {
	sweeper := &fakeSweeper{dropped: 2}
	store := &fakeRecordStore{}
	jobs := NewCleanupJobs(sweeper, &fakeSettingsRepo{settings: policy.Settings{DataRetentionDays: 7}}, store)

	s := NewScheduler().WithClock(func() time.Time { return sweepClock })
	jobs.RegisterJobs(s, time.Minute, time.Hour)
	s.RunOnce(context.Background())

	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if !sweeper.sawNow.Equal(sweepClock) {
		t.Errorf("sweep now = %v, want %v", sweeper.sawNow, sweepClock)
	}
	if store.deleteCalls != 1 {
		t.Fatalf("expected one purge, got %d", store.deleteCalls)
	}
	if want := sweepClock.AddDate(0, 0, -7); !store.sawCutoff.Equal(want) {
		t.Errorf("cutoff = %v, want %v", store.sawCutoff, want)
	}
}
