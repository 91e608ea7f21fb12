package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

const staffColumns = `id, staff_id, name, email, password_hash, is_admin, is_class_teacher, grade_assigned, subjects, syllabus_coverage, created_at, updated_at`

// StaffRepository manages persistence for staff accounts.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// Count returns the number of staff rows.
func (r *StaffRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM staff`); err != nil {
		return 0, fmt.Errorf("count staff: %w", err)
	}
	return total, nil
}

// FindByStaffID fetches a staff member by exact identifier.
func (r *StaffRepository) FindByStaffID(ctx context.Context, staffID string) (*models.Staff, error) {
	query := r.db.Rebind(`SELECT ` + staffColumns + ` FROM staff WHERE staff_id = ?`)
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, staffID); err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns every staff member ordered by identifier.
func (r *StaffRepository) List(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, `SELECT `+staffColumns+` FROM staff ORDER BY staff_id`); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// CreateBatch inserts all rows in a single transaction.
func (r *StaffRepository) CreateBatch(ctx context.Context, staff []models.Staff) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin staff batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := tx.Rebind(`INSERT INTO staff (staff_id, name, email, password_hash, is_admin, is_class_teacher, grade_assigned, subjects, syllabus_coverage, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	now := time.Now().UTC()
	for i := range staff {
		s := &staff[i]
		s.CreatedAt, s.UpdatedAt = now, now
		if _, err := tx.ExecContext(ctx, query, s.StaffID, s.Name, s.Email, s.PasswordHash, s.IsAdmin, s.IsClassTeacher,
			s.GradeAssigned, s.Subjects, s.SyllabusCoverage, s.CreatedAt, s.UpdatedAt); err != nil {
			return fmt.Errorf("create staff %s: %w", s.StaffID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit staff batch: %w", err)
	}
	return nil
}

// UpdateProfile stores the first-time registration fields.
func (r *StaffRepository) UpdateProfile(ctx context.Context, staffID string, profile models.StaffProfile) error {
	query := r.db.Rebind(`UPDATE staff SET email = ?, is_class_teacher = ?, grade_assigned = ?, subjects = ?, syllabus_coverage = ?, updated_at = ? WHERE staff_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, profile.Email, profile.IsClassTeacher, profile.GradeAssigned,
		profile.Subjects, profile.SyllabusCoverage, time.Now().UTC(), staffID); err != nil {
		return fmt.Errorf("update staff profile: %w", err)
	}
	return nil
}
