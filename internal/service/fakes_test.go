package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/mailer"
)

type memoryAttendanceRepo struct {
	mu      sync.Mutex
	rows    []models.Attendance
	nextID  int64
	names   map[string]string
	listErr error
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{names: map[string]string{}}
}

func (m *memoryAttendanceRepo) FindOpen(ctx context.Context, staffID string) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].StaffID == staffID && m.rows[i].LogoutTime == nil {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memoryAttendanceRepo) FindLatest(ctx context.Context, staffID string) (*models.Attendance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].StaffID == staffID {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, nil
}

func (m *memoryAttendanceRepo) Create(ctx context.Context, row *models.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	row.ID = m.nextID
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memoryAttendanceRepo) Close(ctx context.Context, id int64, logoutTime time.Time, reason *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].LogoutTime == nil {
			lt := logoutTime
			m.rows[i].LogoutTime = &lt
			m.rows[i].LogoutReason = reason
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAttendanceRepo) List(ctx context.Context) ([]models.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.AttendanceRecord, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, models.AttendanceRecord{Attendance: row, StaffName: m.names[row.StaffID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LoginTime.After(out[j].LoginTime) })
	return out, nil
}

type memoryStaffRepo struct {
	staff   map[string]*models.Staff
	created []models.Staff
	profile *models.StaffProfile
}

func newMemoryStaffRepo(staff ...models.Staff) *memoryStaffRepo {
	repo := &memoryStaffRepo{staff: map[string]*models.Staff{}}
	for i := range staff {
		s := staff[i]
		repo.staff[s.StaffID] = &s
	}
	return repo
}

func (m *memoryStaffRepo) Count(ctx context.Context) (int, error) {
	return len(m.staff), nil
}

func (m *memoryStaffRepo) FindByStaffID(ctx context.Context, staffID string) (*models.Staff, error) {
	s, ok := m.staff[staffID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	out := *s
	return &out, nil
}

func (m *memoryStaffRepo) CreateBatch(ctx context.Context, staff []models.Staff) error {
	for i := range staff {
		s := staff[i]
		m.staff[s.StaffID] = &s
	}
	m.created = append(m.created, staff...)
	return nil
}

func (m *memoryStaffRepo) UpdateProfile(ctx context.Context, staffID string, profile models.StaffProfile) error {
	s, ok := m.staff[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	m.profile = &profile
	email := profile.Email
	s.Email = &email
	s.IsClassTeacher = profile.IsClassTeacher
	s.GradeAssigned = profile.GradeAssigned
	subjects := profile.Subjects
	s.Subjects = &subjects
	s.SyllabusCoverage = profile.SyllabusCoverage
	return nil
}

type recordingNotifier struct {
	sent []mailer.Message
	fail bool
}

func (r *recordingNotifier) Notify(ctx context.Context, to, subject, body string) bool {
	if r.fail {
		return false
	}
	r.sent = append(r.sent, mailer.Message{To: to, Subject: subject, Body: body})
	return true
}

func nairobi(t testing.TB) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

type clockStub struct {
	now time.Time
}

func (c *clockStub) Now() time.Time { return c.now }
