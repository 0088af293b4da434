package attendance

import (
	"time"
)

type Status string

const (
	StatusPresent    Status = "PRESENT"
	StatusLate       Status = "LATE"
	StatusAbsent     Status = "ABSENT"
	StatusCheckedOut Status = "CHECKED_OUT"
)

type Method string

const (
	MethodNetwork  Method = "NETWORK"
	MethodGeofence Method = "GEOFENCE"
	MethodToken    Method = "TOKEN"
	MethodManual   Method = "MANUAL"
)

// Record is one attendance event for a (user, department, day). A record with
// no CheckOutAt is open; at most one open record exists per triple at any time.
type Record struct {
	ID         string
	UserID     string
	UserName   string // snapshot taken at creation
	Department string
	Date       string // YYYY-MM-DD, the working day in local time
	CheckInAt  time.Time
	CheckOutAt *time.Time
	Status     Status
	Method     Method
	Note       *string
	Latitude   *float64
	Longitude  *float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Open reports whether the record has no checkout time yet.
func (r Record) Open() bool {
	return r.CheckOutAt == nil
}
