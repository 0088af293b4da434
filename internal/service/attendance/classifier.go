package attendance

import (
	"fmt"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

// ClassifyStatus decides PRESENT vs LATE for a check-in at the given instant.
// With no schedule, or a disabled day, lateness is undefined and the check-in
// counts as PRESENT. Arriving within the grace window after the scheduled
// start still counts as PRESENT.
func ClassifyStatus(now time.Time, sched *policy.DaySchedule, graceMinutes int) attendance.Status {
	if sched == nil || !sched.Enabled {
		return attendance.StatusPresent
	}

	start, err := scheduleInstant(now, sched.StartTime)
	if err != nil {
		return attendance.StatusPresent
	}

	deadline := start.Add(time.Duration(graceMinutes) * time.Minute)
	if now.After(deadline) {
		return attendance.StatusLate
	}
	return attendance.StatusPresent
}

// scheduleInstant anchors an HH:MM wall-clock string to the date and location
// of the reference instant.
func scheduleInstant(ref time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule time %q: %w", clock, err)
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), 0, 0, ref.Location()), nil
}
