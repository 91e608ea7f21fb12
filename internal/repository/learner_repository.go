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

const learnerColumns = `id, admission_no, full_name, gender, date_of_birth, grade, guardian_name, guardian_phone, address, medical_notes, created_at, updated_at`

// LearnerRepository manages individual learner rows.
type LearnerRepository struct {
	db *sqlx.DB
}

// NewLearnerRepository constructs a LearnerRepository.
func NewLearnerRepository(db *sqlx.DB) *LearnerRepository {
	return &LearnerRepository{db: db}
}

// List returns learners, optionally restricted to one grade.
func (r *LearnerRepository) List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, error) {
	query := `SELECT ` + learnerColumns + ` FROM learners`
	var args []interface{}
	if filter.Grade != "" {
		query += ` WHERE grade = ?`
		args = append(args, filter.Grade)
	}
	query += ` ORDER BY grade, full_name, id`

	var learners []models.Learner
	if err := r.db.SelectContext(ctx, &learners, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list learners: %w", err)
	}
	return learners, nil
}

// FindByID fetches a learner by ID.
func (r *LearnerRepository) FindByID(ctx context.Context, id int64) (*models.Learner, error) {
	var learner models.Learner
	if err := r.db.GetContext(ctx, &learner, r.db.Rebind(`SELECT `+learnerColumns+` FROM learners WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &learner, nil
}

// ExistsByAdmissionNo checks for an admission number optionally excluding an ID.
func (r *LearnerRepository) ExistsByAdmissionNo(ctx context.Context, admissionNo string, excludeID int64) (bool, error) {
	query := `SELECT 1 FROM learners WHERE admission_no = ?`
	args := []interface{}{admissionNo}
	if excludeID > 0 {
		query += ` AND id <> ?`
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, r.db.Rebind(query+` LIMIT 1`), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check admission number: %w", err)
	}
	return true, nil
}

// Create inserts a learner and sets its ID.
func (r *LearnerRepository) Create(ctx context.Context, l *models.Learner) error {
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	query := r.db.Rebind(`INSERT INTO learners (admission_no, full_name, gender, date_of_birth, grade, guardian_name, guardian_phone, address, medical_notes, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &l.ID, query, l.AdmissionNo, l.FullName, l.Gender, l.DateOfBirth, l.Grade,
		l.GuardianName, l.GuardianPhone, l.Address, l.MedicalNotes, l.CreatedAt, l.UpdatedAt); err != nil {
		return fmt.Errorf("create learner: %w", err)
	}
	return nil
}

// Update modifies an existing learner.
func (r *LearnerRepository) Update(ctx context.Context, l *models.Learner) error {
	l.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE learners SET admission_no = ?, full_name = ?, gender = ?, date_of_birth = ?, grade = ?, guardian_name = ?, guardian_phone = ?, address = ?, medical_notes = ?, updated_at = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, l.AdmissionNo, l.FullName, l.Gender, l.DateOfBirth, l.Grade,
		l.GuardianName, l.GuardianPhone, l.Address, l.MedicalNotes, l.UpdatedAt, l.ID); err != nil {
		return fmt.Errorf("update learner: %w", err)
	}
	return nil
}

// Delete removes a learner, reporting whether a row existed.
func (r *LearnerRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM learners WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete learner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete learner: %w", err)
	}
	return affected > 0, nil
}

// CountByGradeGender returns the census grouped by grade and gender.
func (r *LearnerRepository) CountByGradeGender(ctx context.Context) ([]models.GradeGenderCount, error) {
	var rows []models.GradeGenderCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT grade, gender, COUNT(*) AS count FROM learners GROUP BY grade, gender`); err != nil {
		return nil, fmt.Errorf("count learners: %w", err)
	}
	return rows, nil
}
