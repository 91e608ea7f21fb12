package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

const attendanceColumns = `a.id, a.staff_id, a.login_time, a.logout_time, a.logout_reason`

// AttendanceRepository manages attendance rows.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindOpen returns the most recent open row for the staff member, or nil.
func (r *AttendanceRepository) FindOpen(ctx context.Context, staffID string) (*models.Attendance, error) {
	query := r.db.Rebind(`SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.staff_id = ? AND a.logout_time IS NULL ORDER BY a.id DESC LIMIT 1`)
	return r.getOne(ctx, query, staffID)
}

// FindLatest returns the most recent row for the staff member, or nil.
func (r *AttendanceRepository) FindLatest(ctx context.Context, staffID string) (*models.Attendance, error) {
	query := r.db.Rebind(`SELECT ` + attendanceColumns + ` FROM attendance a WHERE a.staff_id = ? ORDER BY a.id DESC LIMIT 1`)
	return r.getOne(ctx, query, staffID)
}

func (r *AttendanceRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Attendance, error) {
	var row models.Attendance
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return &row, nil
}

// Create inserts an open row and sets its ID.
func (r *AttendanceRepository) Create(ctx context.Context, row *models.Attendance) error {
	query := r.db.Rebind(`INSERT INTO attendance (staff_id, login_time) VALUES (?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &row.ID, query, row.StaffID, row.LoginTime); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Close sets the logout fields on an open row. It reports false when the row
// was already closed.
func (r *AttendanceRepository) Close(ctx context.Context, id int64, logoutTime time.Time, reason *string) (bool, error) {
	query := r.db.Rebind(`UPDATE attendance SET logout_time = ?, logout_reason = ? WHERE id = ? AND logout_time IS NULL`)
	res, err := r.db.ExecContext(ctx, query, logoutTime, reason, id)
	if err != nil {
		return false, fmt.Errorf("close attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close attendance: %w", err)
	}
	return affected > 0, nil
}

// List returns every row, most recent sign-in first, with staff names.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + `, COALESCE(s.name, '') AS staff_name
        FROM attendance a LEFT JOIN staff s ON s.staff_id = a.staff_id
        ORDER BY a.login_time DESC, a.id DESC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// ListOpen returns all open rows with the staff contact details.
func (r *AttendanceRepository) ListOpen(ctx context.Context) ([]models.OpenAttendance, error) {
	query := `SELECT ` + attendanceColumns + `, s.name AS staff_name, s.email
        FROM attendance a JOIN staff s ON s.staff_id = a.staff_id
        WHERE a.logout_time IS NULL
        ORDER BY a.staff_id`
	var rows []models.OpenAttendance
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list open attendance: %w", err)
	}
	return rows, nil
}
