package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/attendly/attendance-backend-go/internal/domain/attendance"
	"github.com/attendly/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type attendanceRepository struct {
	db *database.DB
}

const recordColumns = `
	id, user_id, user_name, department, date,
	check_in_at, check_out_at, status, method, note,
	latitude, longitude, created_at, updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.UserName, &rec.Department, &rec.Date,
		&rec.CheckInAt, &rec.CheckOutAt, &rec.Status, &rec.Method, &rec.Note,
		&rec.Latitude, &rec.Longitude, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// isOpenRecordConflict reports whether err is a unique violation on the
// partial index guarding one open record per (user, department, date).
func isOpenRecordConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// InsertOpen implements attendance.Repository. The conflict arbiter is the
// partial unique index over open records, so the existence check and the
// insert are one atomic statement: concurrent duplicates lose the race
// instead of double-writing.
func (a *attendanceRepository) InsertOpen(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, user_id, user_name, department, date,
			check_in_at, status, method, note, latitude, longitude,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) ON CONFLICT (user_id, department, date) WHERE check_out_at IS NULL
			DO NOTHING
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.UserName, rec.Department, rec.Date,
		rec.CheckInAt, rec.Status, rec.Method, rec.Note, rec.Latitude, rec.Longitude,
		rec.CreatedAt, rec.UpdatedAt,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to insert attendance record: %w", err)
	}

	return created, nil
}

// Insert implements attendance.Repository. Closed records never match the
// open-record index predicate, so only open manual records compete with live
// check-ins.
func (a *attendanceRepository) Insert(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, user_id, user_name, department, date,
			check_in_at, check_out_at, status, method, note, latitude, longitude,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) ON CONFLICT (user_id, department, date) WHERE check_out_at IS NULL
			DO NOTHING
		RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID, rec.UserID, rec.UserName, rec.Department, rec.Date,
		rec.CheckInAt, rec.CheckOutAt, rec.Status, rec.Method, rec.Note, rec.Latitude, rec.Longitude,
		rec.CreatedAt, rec.UpdatedAt,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to insert attendance record: %w", err)
	}

	return created, nil
}

// FindOpen implements attendance.Repository.
func (a *attendanceRepository) FindOpen(ctx context.Context, userID, department, date string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE user_id = $1
		  AND department = $2
		  AND date = $3
		  AND check_out_at IS NULL
		LIMIT 1
	`

	rec, err := scanRecord(q.QueryRow(ctx, query, userID, department, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to find open record: %w", err)
	}

	return rec, nil
}

// SetCheckout implements attendance.Repository. The status column is left
// untouched: checkout closes the record, it does not reclassify it.
func (a *attendanceRepository) SetCheckout(ctx context.Context, recordID string, at time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET check_out_at = $2, updated_at = $2
		WHERE id = $1
		RETURNING ` + recordColumns

	rec, err := scanRecord(q.QueryRow(ctx, query, recordID, at))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to set checkout: %w", err)
	}

	return rec, nil
}

// GetByID implements attendance.Repository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get record: %w", err)
	}

	return rec, nil
}

// Update implements attendance.Repository. Reopening a record (clearing its
// checkout) re-enters the open-record index, so a second open record for the
// same triple is rejected here too.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET user_id = $2, user_name = $3, department = $4, date = $5,
			check_in_at = $6, check_out_at = $7, status = $8, method = $9,
			note = $10, latitude = $11, longitude = $12, updated_at = $13
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		rec.ID, rec.UserID, rec.UserName, rec.Department, rec.Date,
		rec.CheckInAt, rec.CheckOutAt, rec.Status, rec.Method,
		rec.Note, rec.Latitude, rec.Longitude, rec.UpdatedAt,
	)
	if err != nil {
		if isOpenRecordConflict(err) {
			return attendance.ErrAlreadyCheckedIn
		}
		return fmt.Errorf("failed to update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// Delete implements attendance.Repository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// DeleteAll implements attendance.Repository.
func (a *attendanceRepository) DeleteAll(ctx context.Context) error {
	q := GetQuerier(ctx, a.db)

	if _, err := q.Exec(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("failed to delete all records: %w", err)
	}

	return nil
}

// List implements attendance.Repository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	var conditions []string
	var args []interface{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)))
	}

	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY check_in_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// DeleteOlderThan implements attendance.Repository.
func (a *attendanceRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_records WHERE check_in_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge old records: %w", err)
	}

	return tag.RowsAffected(), nil
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}
