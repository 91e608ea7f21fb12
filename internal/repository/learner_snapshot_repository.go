package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staff-attendance/internal/models"
)

// LearnerSnapshotRepository stores aggregate headcount snapshots.
type LearnerSnapshotRepository struct {
	db *sqlx.DB
}

// NewLearnerSnapshotRepository constructs a LearnerSnapshotRepository.
func NewLearnerSnapshotRepository(db *sqlx.DB) *LearnerSnapshotRepository {
	return &LearnerSnapshotRepository{db: db}
}

// Create inserts a snapshot and sets its ID.
func (r *LearnerSnapshotRepository) Create(ctx context.Context, s *models.LearnerSnapshot) error {
	query := r.db.Rebind(`INSERT INTO learners (ecde_girls, ecde_boys, primary_girls, primary_boys, jss_girls, jss_boys, total_population, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &s.ID, query, s.ECDEGirls, s.ECDEBoys, s.PrimaryGirls, s.PrimaryBoys,
		s.JSSGirls, s.JSSBoys, s.TotalPopulation, s.CreatedAt); err != nil {
		return fmt.Errorf("create learner snapshot: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil when none exists.
func (r *LearnerSnapshotRepository) Latest(ctx context.Context) (*models.LearnerSnapshot, error) {
	const query = `SELECT id, ecde_girls, ecde_boys, primary_girls, primary_boys, jss_girls, jss_boys, total_population, created_at
        FROM learners ORDER BY created_at DESC, id DESC LIMIT 1`
	var s models.LearnerSnapshot
	if err := r.db.GetContext(ctx, &s, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest learner snapshot: %w", err)
	}
	return &s, nil
}
