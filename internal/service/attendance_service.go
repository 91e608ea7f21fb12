package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/database"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

const maxLogoutReason = 200

type attendanceRepository interface {
	FindOpen(ctx context.Context, staffID string) (*models.Attendance, error)
	FindLatest(ctx context.Context, staffID string) (*models.Attendance, error)
	Create(ctx context.Context, row *models.Attendance) error
	Close(ctx context.Context, id int64, logoutTime time.Time, reason *string) (bool, error)
	List(ctx context.Context) ([]models.AttendanceRecord, error)
}

type staffLookup interface {
	FindByStaffID(ctx context.Context, staffID string) (*models.Staff, error)
}

type notifier interface {
	Notify(ctx context.Context, to, subject, body string) bool
}

// AttendanceConfig fixes the timezone and early departure cutoff.
type AttendanceConfig struct {
	Location *time.Location
	Cutoff   TimeOfDay
}

// AttendanceService drives the per-staff sign-in/sign-out state machine.
type AttendanceService struct {
	repo     attendanceRepository
	staff    staffLookup
	notifier notifier
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      AttendanceConfig
	now      func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, staff staffLookup, n notifier, metrics *MetricsService, logger *zap.Logger, cfg AttendanceConfig) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if n == nil {
		n = (*Notifier)(nil)
	}
	return &AttendanceService{repo: repo, staff: staff, notifier: n, metrics: metrics, logger: logger, cfg: cfg, now: time.Now}
}

// Location returns the timezone attendance is recorded in.
func (s *AttendanceService) Location() *time.Location {
	return s.cfg.Location
}

// SignIn opens an attendance row. It fails with ErrAlreadySignedIn while a row is open.
func (s *AttendanceService) SignIn(ctx context.Context, staffID string) (*models.Attendance, error) {
	open, err := s.repo.FindOpen(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if open != nil {
		s.metrics.RecordAttendanceEvent(EventSignInRejected)
		return nil, appErrors.Clone(appErrors.ErrAlreadySignedIn, "You already signed in and haven't signed out yet.")
	}

	row := &models.Attendance{StaffID: staffID, LoginTime: s.now().In(s.cfg.Location)}
	if err := s.repo.Create(ctx, row); err != nil {
		if database.IsUniqueViolation(err) {
			s.metrics.RecordAttendanceEvent(EventSignInRejected)
			return nil, appErrors.Clone(appErrors.ErrAlreadySignedIn, "You already signed in and haven't signed out yet.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign in")
	}
	s.metrics.RecordAttendanceEvent(EventSignIn)

	if staff := s.lookup(ctx, staffID); staff != nil && staff.EmailAddress() != "" {
		s.notifier.Notify(ctx, staff.EmailAddress(), "Attendance Signed In",
			fmt.Sprintf("Hello %s, you signed in for attendance at %s.", staff.Name, row.LoginTime.Format("2006-01-02 15:04")))
	}
	return row, nil
}

// SignOut closes the latest open row with an optional reason. It fails with
// ErrNoOpenAttendance when nothing is open.
func (s *AttendanceService) SignOut(ctx context.Context, staffID string, reason *string) (*models.Attendance, error) {
	if reason != nil {
		trimmed := strings.TrimSpace(*reason)
		if trimmed == "" {
			reason = nil
		} else if len([]rune(trimmed)) > maxLogoutReason {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("Reason must be at most %d characters.", maxLogoutReason))
		}
	}

	open, err := s.repo.FindOpen(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	if open == nil {
		s.metrics.RecordAttendanceEvent(EventSignOutRejected)
		return nil, appErrors.Clone(appErrors.ErrNoOpenAttendance, "No active sign-in record found.")
	}

	logout := s.now().In(s.cfg.Location)
	if logout.Before(open.LoginTime) {
		logout = open.LoginTime.In(s.cfg.Location)
	}
	closed, err := s.repo.Close(ctx, open.ID, logout, reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign out")
	}
	if !closed {
		s.metrics.RecordAttendanceEvent(EventSignOutRejected)
		return nil, appErrors.Clone(appErrors.ErrNoOpenAttendance, "No active sign-in record found.")
	}
	open.LogoutTime = &logout
	open.LogoutReason = reason
	s.metrics.RecordAttendanceEvent(EventSignOut)

	if reason != nil {
		if staff := s.lookup(ctx, staffID); staff != nil && staff.EmailAddress() != "" {
			s.notifier.Notify(ctx, staff.EmailAddress(), "Attendance Signed Out",
				fmt.Sprintf("Hello %s, you signed out at %s. Reason: %s", staff.Name, logout.Format("2006-01-02 15:04"), *reason))
		}
	}
	return open, nil
}

// Status reports whether the staff member is signed in and their last sign-in.
func (s *AttendanceService) Status(ctx context.Context, staffID string) (*models.AttendanceStatus, error) {
	open, err := s.repo.FindOpen(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	latest, err := s.repo.FindLatest(ctx, staffID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	status := &models.AttendanceStatus{StaffID: staffID, SignedIn: open != nil, Open: s.localize(open)}
	if latest != nil {
		last := latest.LoginTime.In(s.cfg.Location)
		status.LastSignIn = &last
	}
	return status, nil
}

// ListRecords returns every attendance row, most recent first, in local time.
func (s *AttendanceService) ListRecords(ctx context.Context) ([]models.AttendanceRecord, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	for i := range rows {
		rows[i].Attendance = *s.localize(&rows[i].Attendance)
	}
	return rows, nil
}

// EarlyDepartures counts, per staff member, the rows signed out on a weekday before the cutoff.
func (s *AttendanceService) EarlyDepartures(ctx context.Context) (map[string]int, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	counts := make(map[string]int)
	for _, entry := range s.SummarizeEarlyDepartures(rows) {
		counts[entry.StaffID] = entry.Count
	}
	return counts, nil
}

// SummarizeEarlyDepartures aggregates already loaded rows, highest count first.
func (s *AttendanceService) SummarizeEarlyDepartures(rows []models.AttendanceRecord) []models.EarlyDeparture {
	byStaff := make(map[string]*models.EarlyDeparture)
	for _, row := range rows {
		if row.LogoutTime == nil || !IsEarlyDeparture(*row.LogoutTime, s.cfg.Location, s.cfg.Cutoff) {
			continue
		}
		entry, ok := byStaff[row.StaffID]
		if !ok {
			entry = &models.EarlyDeparture{StaffID: row.StaffID, StaffName: row.StaffName}
			byStaff[row.StaffID] = entry
		}
		entry.Count++
	}

	out := make([]models.EarlyDeparture, 0, len(byStaff))
	for _, entry := range byStaff {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out
}

func (s *AttendanceService) lookup(ctx context.Context, staffID string) *models.Staff {
	if s.staff == nil {
		return nil
	}
	staff, err := s.staff.FindByStaffID(ctx, staffID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load staff for notification", zap.String("staff_id", staffID), zap.Error(err))
		}
		return nil
	}
	return staff
}

func (s *AttendanceService) localize(row *models.Attendance) *models.Attendance {
	if row == nil {
		return nil
	}
	out := *row
	out.LoginTime = row.LoginTime.In(s.cfg.Location)
	if row.LogoutTime != nil {
		lt := row.LogoutTime.In(s.cfg.Location)
		out.LogoutTime = &lt
	}
	return &out
}
