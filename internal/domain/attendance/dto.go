package attendance

import (
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
)

type MarkType string

const (
	MarkIn  MarkType = "IN"
	MarkOut MarkType = "OUT"
)

// GeoPoint is the caller-supplied location evidence.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// MarkRequest is a check-in or check-out attempt. Evidence (location, code,
// caller IP) is supplied synchronously by the caller; the engine never fetches
// it. An empty Department means "every department the user belongs to".
type MarkRequest struct {
	UserID     string    `json:"user_id"`
	Type       MarkType  `json:"type"`
	Method     Method    `json:"method"`
	Department string    `json:"department,omitempty"`
	Location   *GeoPoint `json:"location,omitempty"`
	Code       string    `json:"code,omitempty"`
	CallerIP   string    `json:"-"`
}

func (r *MarkRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if r.Type != MarkIn && r.Type != MarkOut {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be IN or OUT",
		})
	}

	switch r.Method {
	case MethodNetwork, MethodGeofence, MethodToken, MethodManual:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "method",
			Message: "method must be NETWORK, GEOFENCE, TOKEN or MANUAL",
		})
	}

	if r.Location != nil {
		if r.Location.Latitude < -90 || r.Location.Latitude > 90 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lat",
				Message: "latitude must be between -90 and 90",
			})
		}
		if r.Location.Longitude < -180 || r.Location.Longitude > 180 {
			errs = append(errs, validator.ValidationError{
				Field:   "location.lng",
				Message: "longitude must be between -180 and 180",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// OutcomeKind tells what happened for one department during a mark request.
type OutcomeKind string

const (
	OutcomeCreated    OutcomeKind = "CREATED"
	OutcomeClosed     OutcomeKind = "CLOSED"
	OutcomeAlreadyIn  OutcomeKind = "ALREADY_CHECKED_IN"
	OutcomeNotOpen    OutcomeKind = "NOTHING_TO_CHECK_OUT"
)

// DepartmentOutcome is the per-department result of a multi-department mark.
// Partial success across departments is a normal outcome, not a failure.
type DepartmentOutcome struct {
	Department string      `json:"department"`
	Kind       OutcomeKind `json:"kind"`
	Record     *Record     `json:"record,omitempty"`
}

// MarkResponse collects the outcome of a mark request across departments.
type MarkResponse struct {
	Outcomes []DepartmentOutcome `json:"outcomes"`
}

// Changed reports whether any department produced a new or updated record.
func (r MarkResponse) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeCreated || o.Kind == OutcomeClosed {
			return true
		}
	}
	return false
}

// ChangedRecords returns the records created or closed by the request.
func (r MarkResponse) ChangedRecords() []Record {
	var out []Record
	for _, o := range r.Outcomes {
		if (o.Kind == OutcomeCreated || o.Kind == OutcomeClosed) && o.Record != nil {
			out = append(out, *o.Record)
		}
	}
	return out
}

// ManualRecordRequest is an administrative record creation that bypasses
// eligibility checks entirely. An empty Department falls back to the user's
// first membership, or "Unassigned".
type ManualRecordRequest struct {
	UserID      string  `json:"user_id"`
	Department  string  `json:"department,omitempty"`
	Date        string  `json:"date"`
	CheckInAt   string  `json:"check_in_at"`            // RFC3339
	CheckOutAt  *string `json:"check_out_at,omitempty"` // RFC3339
	Status      Status  `json:"status"`
	Method      Method  `json:"method,omitempty"`
	Note        *string `json:"note,omitempty"`
}

func (r *ManualRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD",
		})
	}

	if _, ok := validator.IsValidDateTime(r.CheckInAt); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_at",
			Message: "check_in_at must be an RFC3339 timestamp",
		})
	}

	if r.CheckOutAt != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckOutAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_at",
				Message: "check_out_at must be an RFC3339 timestamp",
			})
		}
	}

	switch r.Status {
	case StatusPresent, StatusLate, StatusAbsent, StatusCheckedOut:
	default:
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be PRESENT, LATE, ABSENT or CHECKED_OUT",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateRecordRequest is an administrative partial update.
type UpdateRecordRequest struct {
	ID         string  `json:"-"`
	Date       *string `json:"date,omitempty"`
	CheckInAt  *string `json:"check_in_at,omitempty"`
	CheckOutAt *string `json:"check_out_at,omitempty"`
	Status     *Status `json:"status,omitempty"`
	Method     *Method `json:"method,omitempty"`
	Note       *string `json:"note,omitempty"`
}

func (r *UpdateRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "record id is required",
		})
	}

	if r.Date != nil {
		if _, ok := validator.IsValidDate(*r.Date); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be YYYY-MM-DD",
			})
		}
	}

	if r.CheckInAt != nil {
		if _, ok := validator.IsValidDateTime(*r.CheckInAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_at",
				Message: "check_in_at must be an RFC3339 timestamp",
			})
		}
	}

	if r.CheckOutAt != nil && *r.CheckOutAt != "" {
		if _, ok := validator.IsValidDateTime(*r.CheckOutAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_at",
				Message: "check_out_at must be an RFC3339 timestamp or empty to clear",
			})
		}
	}

	if r.Status != nil {
		switch *r.Status {
		case StatusPresent, StatusLate, StatusAbsent, StatusCheckedOut:
		default:
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be PRESENT, LATE, ABSENT or CHECKED_OUT",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// RecordFilter narrows record listings.
type RecordFilter struct {
	UserID     *string
	Department *string
	Date       *string
	Limit      int
}
