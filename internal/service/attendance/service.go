package attendance

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/domain/policy"
	"github.com/attendly/attendance-backend-go/internal/domain/user"
	"github.com/attendly/attendance-backend-go/internal/pkg/utils"
	"github.com/attendly/attendance-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
)

// Publisher is the notification channel: fire-and-forget broadcast.
type Publisher interface {
	Publish(topic string, data interface{})
}

type ServiceImpl struct {
	attendanceRepo attendance.Repository
	userRepo       user.Repository
	resolver       policy.Resolver
	tokens         policy.TokenManager
	publisher      Publisher
	now            func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.Repository,
	userRepo user.Repository,
	resolver policy.Resolver,
	tokens policy.TokenManager,
	publisher Publisher,
) *ServiceImpl {
	return &ServiceImpl{
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
		resolver:       resolver,
		tokens:         tokens,
		publisher:      publisher,
		now:            time.Now,
	}
}

// WithClock overrides the wall clock. Test hook.
func (s *ServiceImpl) WithClock(now func() time.Time) *ServiceImpl {
	s.now = now
	return s
}

// Mark implements attendance.Service. Eligibility is evaluated per department
// because teams may override their own policy dimensions; a rejected check
// aborts the whole request, while per-department state conflicts are reported
// as outcomes and the remaining departments still proceed.
func (s *ServiceImpl) Mark(ctx context.Context, req attendance.MarkRequest) (attendance.MarkResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.MarkResponse{}, err
	}

	u, err := s.userRepo.GetByLogicalID(ctx, req.UserID)
	if err != nil {
		return attendance.MarkResponse{}, fmt.Errorf("failed to load user %q: %w", req.UserID, err)
	}

	var departments []string
	if req.Department != "" {
		if !u.MemberOf(req.Department) {
			return attendance.MarkResponse{}, fmt.Errorf("user %q is not in department %q: %w", req.UserID, req.Department, attendance.ErrNoDepartments)
		}
		departments = []string{req.Department}
	} else {
		departments = u.Departments
	}
	if len(departments) == 0 {
		return attendance.MarkResponse{}, attendance.ErrNoDepartments
	}

	now := s.now()
	date := now.Format("2006-01-02")

	resp := attendance.MarkResponse{
		Outcomes: make([]attendance.DepartmentOutcome, 0, len(departments)),
	}

	for _, dep := range departments {
		bundle, err := s.resolver.ResolveBundle(ctx, dep)
		if err != nil {
			return attendance.MarkResponse{}, err
		}

		if err := s.authorize(ctx, req, u, dep, bundle, now); err != nil {
			return attendance.MarkResponse{}, err
		}

		var outcome attendance.DepartmentOutcome
		switch req.Type {
		case attendance.MarkIn:
			outcome, err = s.checkIn(ctx, u, dep, req, bundle, now, date)
		case attendance.MarkOut:
			outcome, err = s.checkOut(ctx, u, dep, now, date)
		}
		if err != nil {
			return attendance.MarkResponse{}, err
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}

	if resp.Changed() {
		s.publisher.Publish("records_updated", resp.ChangedRecords())
	}
	return resp, nil
}

// authorize runs the enabled eligibility checks against the request's
// evidence. A check whose configuration is empty fails open: the gap is
// logged loudly and the check passes, so a half-configured policy locks
// nobody out. The token check applies to check-in only.
func (s *ServiceImpl) authorize(ctx context.Context, req attendance.MarkRequest, u user.User, department string, bundle policy.Bundle, now time.Time) error {
	if bundle.RequireNetwork {
		if len(bundle.AllowedIPs) == 0 {
			slog.Warn("network check enabled but allow-list is empty, allowing request",
				"department", department, "user_id", req.UserID)
		} else if !utils.IsAllowedIP(req.CallerIP, bundle.AllowedIPs) {
			return attendance.ErrUnauthorizedNetwork
		}
	}

	if bundle.RequireGeofence {
		if len(bundle.OfficeLocations) == 0 {
			slog.Warn("geofence check enabled but no office locations configured, allowing request",
				"department", department, "user_id", req.UserID)
		} else if req.Location == nil {
			return attendance.ErrLocationRequired
		} else if !utils.WithinAnyOffice(req.Location.Latitude, req.Location.Longitude, bundle.OfficeLocations) {
			return attendance.ErrOutsideGeofence
		}
	}

	if req.Type == attendance.MarkIn && bundle.RequireToken {
		if req.Code == "" {
			return attendance.ErrCodeRequired
		}
		match, err := s.tokens.CheckAdditive(ctx, req.Code, req.Department, u.Departments, now)
		if err != nil {
			return fmt.Errorf("token check failed: %w", err)
		}
		if !match.Valid {
			return attendance.ErrInvalidOrExpiredCode
		}
	}

	return nil
}

func (s *ServiceImpl) checkIn(ctx context.Context, u user.User, department string, req attendance.MarkRequest, bundle policy.Bundle, now time.Time, date string) (attendance.DepartmentOutcome, error) {
	sched, err := s.resolver.ResolveDaySchedule(ctx, u.ID, department, now)
	if err != nil {
		return attendance.DepartmentOutcome{}, err
	}

	rec := attendance.Record{
		ID:         uuid.NewString(),
		UserID:     u.UserID,
		UserName:   u.Name,
		Department: department,
		Date:       date,
		CheckInAt:  now,
		Status:     ClassifyStatus(now, sched, bundle.GracePeriodMinutes),
		Method:     req.Method,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Location != nil {
		lat, lng := req.Location.Latitude, req.Location.Longitude
		rec.Latitude = &lat
		rec.Longitude = &lng
	}

	created, err := s.attendanceRepo.InsertOpen(ctx, rec)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.DepartmentOutcome{
				Department: department,
				Kind:       attendance.OutcomeAlreadyIn,
			}, nil
		}
		return attendance.DepartmentOutcome{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return attendance.DepartmentOutcome{
		Department: department,
		Kind:       attendance.OutcomeCreated,
		Record:     &created,
	}, nil
}

func (s *ServiceImpl) checkOut(ctx context.Context, u user.User, department string, now time.Time, date string) (attendance.DepartmentOutcome, error) {
	open, err := s.attendanceRepo.FindOpen(ctx, u.UserID, department, date)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return attendance.DepartmentOutcome{
				Department: department,
				Kind:       attendance.OutcomeNotOpen,
			}, nil
		}
		return attendance.DepartmentOutcome{}, fmt.Errorf("failed to find open record: %w", err)
	}

	closed, err := s.attendanceRepo.SetCheckout(ctx, open.ID, now)
	if err != nil {
		return attendance.DepartmentOutcome{}, fmt.Errorf("failed to close attendance record: %w", err)
	}

	return attendance.DepartmentOutcome{
		Department: department,
		Kind:       attendance.OutcomeClosed,
		Record:     &closed,
	}, nil
}

// ListRecords implements attendance.Service.
func (s *ServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	return records, nil
}

// ExportCSV implements attendance.Service.
func (s *ServiceImpl) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := s.attendanceRepo.List(ctx, attendance.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Date", "User ID", "Name", "Department", "Check In", "Check Out", "Status", "Method", "Note"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range records {
		checkOut := ""
		if rec.CheckOutAt != nil {
			checkOut = rec.CheckOutAt.Format(time.RFC3339)
		}
		note := ""
		if rec.Note != nil {
			note = *rec.Note
		}
		row := []string{
			rec.Date,
			rec.UserID,
			rec.UserName,
			rec.Department,
			rec.CheckInAt.Format(time.RFC3339),
			checkOut,
			string(rec.Status),
			string(rec.Method),
			note,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateManualRecord implements attendance.Service. The open-record invariant
// still holds: a manual record with no checkout competes with live check-ins
// for the same triple.
func (s *ServiceImpl) CreateManualRecord(ctx context.Context, req attendance.ManualRecordRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	u, err := s.userRepo.GetByLogicalID(ctx, req.UserID)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load user %q: %w", req.UserID, err)
	}

	department := req.Department
	if department == "" {
		if len(u.Departments) > 0 {
			department = u.Departments[0]
		} else {
			department = "Unassigned"
		}
	}

	checkIn, _ := validator.IsValidDateTime(req.CheckInAt)

	now := s.now()
	rec := attendance.Record{
		ID:         uuid.NewString(),
		UserID:     u.UserID,
		UserName:   u.Name,
		Department: department,
		Date:       req.Date,
		CheckInAt:  checkIn,
		Status:     req.Status,
		Method:     req.Method,
		Note:       req.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if rec.Method == "" {
		rec.Method = attendance.MethodManual
	}
	if req.CheckOutAt != nil {
		t, _ := validator.IsValidDateTime(*req.CheckOutAt)
		rec.CheckOutAt = &t
	}

	created, err := s.attendanceRepo.Insert(ctx, rec)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to create manual record: %w", err)
	}

	s.publisher.Publish("records_updated", []attendance.Record{created})
	return created, nil
}

// UpdateRecord implements attendance.Service. An explicit empty check_out_at
// reopens the record, subject to the one-open-record rule at the store.
func (s *ServiceImpl) UpdateRecord(ctx context.Context, req attendance.UpdateRecordRequest) (attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return attendance.Record{}, err
	}

	rec, err := s.attendanceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.Record{}, err
	}

	if req.Date != nil {
		rec.Date = *req.Date
	}
	if req.CheckInAt != nil {
		t, _ := validator.IsValidDateTime(*req.CheckInAt)
		rec.CheckInAt = t
	}
	if req.CheckOutAt != nil {
		if *req.CheckOutAt == "" {
			rec.CheckOutAt = nil
		} else {
			t, _ := validator.IsValidDateTime(*req.CheckOutAt)
			rec.CheckOutAt = &t
		}
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}
	if req.Method != nil {
		rec.Method = *req.Method
	}
	if req.Note != nil {
		rec.Note = req.Note
	}
	rec.UpdatedAt = s.now()

	if err := s.attendanceRepo.Update(ctx, rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to update record %q: %w", req.ID, err)
	}

	s.publisher.Publish("records_updated", []attendance.Record{rec})
	return rec, nil
}

// DeleteRecord implements attendance.Service.
func (s *ServiceImpl) DeleteRecord(ctx context.Context, id string) error {
	if err := s.attendanceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publisher.Publish("refresh_data", map[string]interface{}{"deleted": id})
	return nil
}

// DeleteAllRecords implements attendance.Service.
func (s *ServiceImpl) DeleteAllRecords(ctx context.Context) error {
	if err := s.attendanceRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to wipe attendance records: %w", err)
	}
	s.publisher.Publish("refresh_data", map[string]interface{}{"wiped": true})
	return nil
}
