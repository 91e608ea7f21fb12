package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type memoryLearnerRepo struct {
	rows   map[int64]models.Learner
	nextID int64
	counts []models.GradeGenderCount
}

func newMemoryLearnerRepo() *memoryLearnerRepo {
	return &memoryLearnerRepo{rows: map[int64]models.Learner{}}
}

func (m *memoryLearnerRepo) List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, error) {
	out := make([]models.Learner, 0, len(m.rows))
	for id := int64(1); id <= m.nextID; id++ {
		l, ok := m.rows[id]
		if !ok || (filter.Grade != "" && l.Grade != filter.Grade) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memoryLearnerRepo) FindByID(ctx context.Context, id int64) (*models.Learner, error) {
	l, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &l, nil
}

func (m *memoryLearnerRepo) ExistsByAdmissionNo(ctx context.Context, admissionNo string, excludeID int64) (bool, error) {
	for id, l := range m.rows {
		if l.AdmissionNo == admissionNo && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryLearnerRepo) Create(ctx context.Context, l *models.Learner) error {
	m.nextID++
	l.ID = m.nextID
	m.rows[l.ID] = *l
	return nil
}

func (m *memoryLearnerRepo) Update(ctx context.Context, l *models.Learner) error {
	m.rows[l.ID] = *l
	return nil
}

func (m *memoryLearnerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := m.rows[id]; !ok {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memoryLearnerRepo) CountByGradeGender(ctx context.Context) ([]models.GradeGenderCount, error) {
	return m.counts, nil
}

func newLearnerFixture() (*LearnerService, *memoryLearnerRepo) {
	repo := newMemoryLearnerRepo()
	svc := NewLearnerService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func learnerForm(admission, grade string) dto.LearnerForm {
	return dto.LearnerForm{AdmissionNo: admission, FullName: "Learner " + admission, Gender: "f", Grade: grade, DateOfBirth: "2016-05-01"}
}

func TestLearnerServiceCreateAndUpdate(t *testing.T) {
	svc, repo := newLearnerFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, learnerForm("ADM001", "Grade 3"))
	require.NoError(t, err)
	assert.Equal(t, "F", created.Gender)
	require.NotNil(t, created.DateOfBirth)
	assert.Nil(t, created.GuardianName)

	_, err = svc.Create(ctx, learnerForm("ADM001", "Grade 4"))
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, "Admission number already exists.", appErrors.FromError(err).Message)

	form := learnerForm("ADM001", "Grade 4")
	form.GuardianName = "Jane"
	updated, err := svc.Update(ctx, created.ID, form)
	require.NoError(t, err)
	assert.Equal(t, "Grade 4", repo.rows[created.ID].Grade)
	assert.Equal(t, "Jane", *updated.GuardianName)

	second, err := svc.Create(ctx, learnerForm("ADM002", "PP1"))
	require.NoError(t, err)
	_, err = svc.Update(ctx, second.ID, learnerForm("ADM001", "PP1"))
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestLearnerServiceValidation(t *testing.T) {
	svc, _ := newLearnerFixture()
	ctx := context.Background()

	future := learnerForm("ADM010", "Grade 1")
	future.DateOfBirth = "2030-01-01"
	_, err := svc.Create(ctx, future)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, learnerForm("ADM011", "Grade 10"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	bad := learnerForm("ADM012", "Grade 1")
	bad.Gender = "X"
	_, err = svc.Create(ctx, bad)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.List(ctx, "Form 1")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestLearnerServiceDeleteAndGet(t *testing.T) {
	svc, _ := newLearnerFixture()
	ctx := context.Background()

	created, err := svc.Create(ctx, learnerForm("ADM020", "Grade 9"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	err = svc.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestGroupByGradeUsesSchoolOrder(t *testing.T) {
	learners := []models.Learner{
		{AdmissionNo: "1", Grade: "Grade 2"},
		{AdmissionNo: "2", Grade: "PP1"},
		{AdmissionNo: "3", Grade: "Grade 2"},
		{AdmissionNo: "4", Grade: "Legacy"},
	}

	groups := GroupByGrade(learners)
	require.Len(t, groups, 3)
	assert.Equal(t, "PP1", groups[0].Grade)
	assert.Equal(t, "Grade 2", groups[1].Grade)
	assert.Len(t, groups[1].Learners, 2)
	assert.Equal(t, "Legacy", groups[2].Grade)
}

func TestLearnerServiceHeadcount(t *testing.T) {
	svc, repo := newLearnerFixture()
	ctx := context.Background()

	empty, err := svc.Headcount(ctx)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	repo.counts = []models.GradeGenderCount{
		{Grade: "PP1", Gender: "F", Count: 4},
		{Grade: "Playgroup", Gender: "M", Count: 2},
		{Grade: "Grade 5", Gender: "M", Count: 7},
		{Grade: "Grade 8", Gender: "F", Count: 3},
		{Grade: "Unknown", Gender: "F", Count: 99},
	}
	h, err := svc.Headcount(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ECDE", "Primary", "JSS"}, h.Categories)
	assert.Equal(t, []int{4, 0, 3}, h.Girls)
	assert.Equal(t, []int{2, 7, 0}, h.Boys)
	assert.Equal(t, 16, h.Total)
}
