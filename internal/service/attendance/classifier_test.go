package attendance

import (
	"testing"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

func at(hour, min, sec int) time.Time {
	return time.Date(2026, 8, 31, hour, min, sec, 0, time.UTC)
}

func TestClassifyStatus(t *testing.T) {
	workday := &policy.DaySchedule{Enabled: true, StartTime: "09:00", EndTime: "17:00"}

	tests := []struct {
		name  string
		now   time.Time
		sched *policy.DaySchedule
		grace int
		want  attendance.Status
	}{
		{"no schedule", at(11, 0, 0), nil, 15, attendance.StatusPresent},
		{"day disabled", at(11, 0, 0), &policy.DaySchedule{Enabled: false}, 15, attendance.StatusPresent},
		{"early arrival", at(8, 30, 0), workday, 15, attendance.StatusPresent},
		{"on the dot", at(9, 0, 0), workday, 15, attendance.StatusPresent},
		{"inside grace", at(9, 14, 59), workday, 15, attendance.StatusPresent},
		{"grace boundary", at(9, 15, 0), workday, 15, attendance.StatusPresent},
		{"just past grace", at(9, 15, 1), workday, 15, attendance.StatusLate},
		{"well past grace", at(10, 0, 0), workday, 15, attendance.StatusLate},
		{"zero grace on time", at(9, 0, 0), workday, 0, attendance.StatusPresent},
		{"zero grace one second late", at(9, 0, 1), workday, 0, attendance.StatusLate},
		{"unparseable start", at(11, 0, 0), &policy.DaySchedule{Enabled: true, StartTime: "9am"}, 15, attendance.StatusPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.now, tt.sched, tt.grace); got != tt.want {
				t.Errorf("ClassifyStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
