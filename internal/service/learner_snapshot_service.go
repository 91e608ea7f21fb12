package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type learnerSnapshotRepository interface {
	Create(ctx context.Context, s *models.LearnerSnapshot) error
	Latest(ctx context.Context) (*models.LearnerSnapshot, error)
}

// LearnerSnapshotService records aggregate learner headcounts.
type LearnerSnapshotService struct {
	repo      learnerSnapshotRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLearnerSnapshotService constructs a LearnerSnapshotService.
func NewLearnerSnapshotService(repo learnerSnapshotRepository, validate *validator.Validate, logger *zap.Logger) *LearnerSnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LearnerSnapshotService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// Record stores a snapshot. Missing counts are zero; a missing total is the sum.
func (s *LearnerSnapshotService) Record(ctx context.Context, form dto.LearnerSnapshotForm) (*models.LearnerSnapshot, error) {
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Learner counts cannot be negative.")
	}

	snap := &models.LearnerSnapshot{
		ECDEGirls:    count(form.ECDEGirls),
		ECDEBoys:     count(form.ECDEBoys),
		PrimaryGirls: count(form.PrimaryGirls),
		PrimaryBoys:  count(form.PrimaryBoys),
		JSSGirls:     count(form.JSSGirls),
		JSSBoys:      count(form.JSSBoys),
		CreatedAt:    s.now().UTC(),
	}
	snap.TotalPopulation = count(form.TotalPopulation)
	if snap.TotalPopulation == 0 {
		snap.TotalPopulation = snapshotSum(snap)
	}

	if err := s.repo.Create(ctx, snap); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save learners data")
	}
	return snap, nil
}

// Latest returns the most recent snapshot or nil.
func (s *LearnerSnapshotService) Latest(ctx context.Context) (*models.LearnerSnapshot, error) {
	snap, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load learners data")
	}
	return snap, nil
}

// Headcount turns the latest snapshot into chart data.
func (s *LearnerSnapshotService) Headcount(ctx context.Context) (*models.Headcount, error) {
	snap, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &models.Headcount{}, nil
	}
	total := snap.TotalPopulation
	if total == 0 {
		total = snapshotSum(snap)
	}
	recorded := snap.CreatedAt
	return &models.Headcount{
		Categories: append([]string(nil), models.Bands...),
		Girls:      []int{snap.ECDEGirls, snap.PrimaryGirls, snap.JSSGirls},
		Boys:       []int{snap.ECDEBoys, snap.PrimaryBoys, snap.JSSBoys},
		Total:      total,
		RecordedAt: &recorded,
	}, nil
}

func snapshotSum(s *models.LearnerSnapshot) int {
	return s.ECDEGirls + s.ECDEBoys + s.PrimaryGirls + s.PrimaryBoys + s.JSSGirls + s.JSSBoys
}

func count(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
