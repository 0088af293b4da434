package user

import (
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/policy"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleMember     Role = "MEMBER"
)

// User is a directory entry. UserID is the logical identifier members know
// (badge number, login name); ID is the storage key.
type User struct {
	ID          string
	UserID      string
	Name        string
	Role        Role
	Departments []string
	// CustomSchedule is a per-user weekly override, keyed by weekday name.
	// Nil when the user follows team or global scheduling.
	CustomSchedule map[string]policy.DaySchedule
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MemberOf reports whether the user belongs to the department.
func (u User) MemberOf(department string) bool {
	for _, d := range u.Departments {
		if d == department {
			return true
		}
	}
	return false
}
