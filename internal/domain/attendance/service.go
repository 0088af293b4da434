package attendance

import (
	"context"
)

// Service is the attendance session manager: it resolves the effective policy,
// evaluates enabled checks against the request's evidence, classifies the
// event and drives the open/closed record state machine.
type Service interface {
	// Mark processes a check-in or check-out. With no specific department the
	// attempt fans out independently over every department the user belongs
	// to; per-department state conflicts come back as outcomes, not errors.
	Mark(ctx context.Context, req MarkRequest) (MarkResponse, error)

	// ListRecords returns records for display, newest first.
	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error)

	// ExportCSV writes all records as CSV, newest first.
	ExportCSV(ctx context.Context) ([]byte, error)

	// CreateManualRecord creates a record bypassing eligibility checks.
	CreateManualRecord(ctx context.Context, req ManualRecordRequest) (Record, error)

	// UpdateRecord applies an administrative partial update.
	UpdateRecord(ctx context.Context, req UpdateRecordRequest) (Record, error)

	// DeleteRecord removes one record.
	DeleteRecord(ctx context.Context, id string) error

	// DeleteAllRecords wipes the event log.
	DeleteAllRecords(ctx context.Context) error
}
