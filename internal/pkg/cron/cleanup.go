package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

// TokenSweeper drops expired verification tokens. Best-effort hygiene: token
// validity is always re-checked at use time, so a missed sweep is harmless.
type TokenSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// CleanupJobs bundles the background sweeps: expired verification tokens and
// attendance records past the retention window.
type CleanupJobs struct {
	tokenSweeper   TokenSweeper
	policyRepo     policy.Repository
	attendanceRepo attendance.Repository
}

func NewCleanupJobs(
	tokenSweeper TokenSweeper,
	policyRepo policy.Repository,
	attendanceRepo attendance.Repository,
) *CleanupJobs {
	return &CleanupJobs{
		tokenSweeper:   tokenSweeper,
		policyRepo:     policyRepo,
		attendanceRepo: attendanceRepo,
	}
}

func (j *CleanupJobs) RegisterJobs(scheduler *Scheduler, tokenInterval, retentionInterval time.Duration) {
	scheduler.AddJob("sweep_expired_tokens", tokenInterval, j.SweepExpiredTokens)
	scheduler.AddJob("purge_old_records", retentionInterval, j.PurgeOldRecords)
}

// SweepExpiredTokens drops verification tokens past their TTL.
func (j *CleanupJobs) SweepExpiredTokens(ctx context.Context, now time.Time) error {
	dropped, err := j.tokenSweeper.Sweep(ctx, now)
	if err != nil {
		return err
	}
	if dropped > 0 {
		slog.Info("Cron: dropped expired verification tokens", "count", dropped)
	}
	return nil
}

// PurgeOldRecords deletes attendance records older than the configured
// retention window. A retention of zero or less disables the purge.
func (j *CleanupJobs) PurgeOldRecords(ctx context.Context, now time.Time) error {
	settings, err := j.policyRepo.GetSettings(ctx)
	if err != nil {
		return err
	}
	if settings.DataRetentionDays <= 0 {
		return nil
	}

	cutoff := now.AddDate(0, 0, -settings.DataRetentionDays)
	deleted, err := j.attendanceRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Info("Cron: purged old attendance records", "count", deleted, "retention_days", settings.DataRetentionDays)
	}
	return nil
}
