package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/database"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type learnerRepository interface {
	List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, error)
	FindByID(ctx context.Context, id int64) (*models.Learner, error)
	ExistsByAdmissionNo(ctx context.Context, admissionNo string, excludeID int64) (bool, error)
	Create(ctx context.Context, l *models.Learner) error
	Update(ctx context.Context, l *models.Learner) error
	Delete(ctx context.Context, id int64) (bool, error)
	CountByGradeGender(ctx context.Context) ([]models.GradeGenderCount, error)
}

// LearnerService manages individual learner records.
type LearnerService struct {
	repo      learnerRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewLearnerService constructs a LearnerService.
func NewLearnerService(repo learnerRepository, validate *validator.Validate, logger *zap.Logger) *LearnerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LearnerService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List returns learners, optionally for a single grade.
func (s *LearnerService) List(ctx context.Context, grade string) ([]models.Learner, error) {
	grade = strings.TrimSpace(grade)
	if grade != "" && !models.IsGradeLevel(grade) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown grade.")
	}
	learners, err := s.repo.List(ctx, models.LearnerFilter{Grade: grade})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list learners")
	}
	return learners, nil
}

// GroupByGrade buckets learners by grade in school order. Grades with no
// learners are omitted.
func GroupByGrade(learners []models.Learner) []models.GradeGroup {
	byGrade := make(map[string][]models.Learner)
	for _, l := range learners {
		byGrade[l.Grade] = append(byGrade[l.Grade], l)
	}

	groups := make([]models.GradeGroup, 0, len(byGrade))
	for _, grade := range models.GradeLevels {
		if rows, ok := byGrade[grade]; ok {
			groups = append(groups, models.GradeGroup{Grade: grade, Learners: rows})
			delete(byGrade, grade)
		}
	}
	for _, l := range learners {
		if rows, ok := byGrade[l.Grade]; ok {
			groups = append(groups, models.GradeGroup{Grade: l.Grade, Learners: rows})
			delete(byGrade, l.Grade)
		}
	}
	return groups
}

// Get loads a learner by ID.
func (s *LearnerService) Get(ctx context.Context, id int64) (*models.Learner, error) {
	learner, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Learner not found.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch learner")
	}
	return learner, nil
}

// Create validates and stores a new learner.
func (s *LearnerService) Create(ctx context.Context, form dto.LearnerForm) (*models.Learner, error) {
	learner, err := s.fromForm(form)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueAdmission(ctx, learner.AdmissionNo, 0); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, learner); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Admission number already exists.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create learner")
	}
	return learner, nil
}

// Update replaces the editable fields of an existing learner.
func (s *LearnerService) Update(ctx context.Context, id int64, form dto.LearnerForm) (*models.Learner, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	learner, err := s.fromForm(form)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueAdmission(ctx, learner.AdmissionNo, id); err != nil {
		return nil, err
	}
	learner.ID = existing.ID
	learner.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, learner); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Admission number already exists.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update learner")
	}
	return learner, nil
}

// Delete removes a learner.
func (s *LearnerService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete learner")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "Learner not found.")
	}
	return nil
}

// Headcount derives the dashboard chart from the learner census.
func (s *LearnerService) Headcount(ctx context.Context) (*models.Headcount, error) {
	rows, err := s.repo.CountByGradeGender(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count learners")
	}
	if len(rows) == 0 {
		return &models.Headcount{}, nil
	}

	index := make(map[string]int, len(models.Bands))
	for i, band := range models.Bands {
		index[band] = i
	}
	h := &models.Headcount{
		Categories: append([]string(nil), models.Bands...),
		Girls:      make([]int, len(models.Bands)),
		Boys:       make([]int, len(models.Bands)),
	}
	for _, row := range rows {
		i, ok := index[models.GradeBand(row.Grade)]
		if !ok {
			continue
		}
		switch strings.ToUpper(row.Gender) {
		case "F":
			h.Girls[i] += row.Count
		case "M":
			h.Boys[i] += row.Count
		}
		h.Total += row.Count
	}
	return h, nil
}

func (s *LearnerService) ensureUniqueAdmission(ctx context.Context, admissionNo string, excludeID int64) error {
	exists, err := s.repo.ExistsByAdmissionNo(ctx, admissionNo, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admission number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Admission number already exists.")
	}
	return nil
}

func (s *LearnerService) fromForm(form dto.LearnerForm) (*models.Learner, error) {
	form.AdmissionNo = strings.TrimSpace(form.AdmissionNo)
	form.FullName = strings.TrimSpace(form.FullName)
	form.Gender = strings.ToUpper(strings.TrimSpace(form.Gender))
	form.Grade = strings.TrimSpace(form.Grade)
	form.DateOfBirth = strings.TrimSpace(form.DateOfBirth)
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Admission number, name, gender and grade are required.")
	}
	if !models.IsGradeLevel(form.Grade) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown grade.")
	}

	learner := &models.Learner{
		AdmissionNo:   form.AdmissionNo,
		FullName:      form.FullName,
		Gender:        form.Gender,
		Grade:         form.Grade,
		GuardianName:  optional(form.GuardianName),
		GuardianPhone: optional(form.GuardianPhone),
		Address:       optional(form.Address),
		MedicalNotes:  optional(form.MedicalNotes),
	}
	if form.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", form.DateOfBirth)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date of birth.")
		}
		if dob.After(s.now()) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "Date of birth cannot be in the future.")
		}
		learner.DateOfBirth = &dob
	}
	return learner, nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
