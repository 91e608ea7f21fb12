package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

const (
	reminderSubject = "Reminder: Logout"
	reminderBody    = "Please sign out today to complete your attendance record."
	reminderTimeout = 5 * time.Minute
)

type openAttendanceLister interface {
	ListOpen(ctx context.Context) ([]models.OpenAttendance, error)
}

// ReminderService emails staff who signed in today and have not signed out.
type ReminderService struct {
	repo     openAttendanceLister
	notifier notifier
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
	schedule string
	now      func() time.Time
}

// NewReminderService constructs a ReminderService.
func NewReminderService(repo openAttendanceLister, n notifier, metrics *MetricsService, logger *zap.Logger, loc *time.Location, schedule string) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if n == nil {
		n = (*Notifier)(nil)
	}
	return &ReminderService{repo: repo, notifier: n, metrics: metrics, logger: logger, loc: loc, schedule: schedule, now: time.Now}
}

// Run sends reminders for rows opened since local midnight and still open.
// It returns how many reminders were accepted by the mail relay.
func (s *ReminderService) Run(ctx context.Context) (int, error) {
	midnight := StartOfDay(s.now(), s.loc)
	rows, err := s.repo.ListOpen(ctx)
	if err != nil {
		s.metrics.RecordReminderRun(0, err)
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open attendance")
	}

	sent := 0
	reminded := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.LoginTime.Before(midnight) || row.Email == nil || *row.Email == "" {
			continue
		}
		if _, ok := reminded[row.StaffID]; ok {
			continue
		}
		reminded[row.StaffID] = struct{}{}
		if s.notifier.Notify(ctx, *row.Email, reminderSubject, reminderBody) {
			sent++
		}
	}
	s.metrics.RecordReminderRun(sent, nil)
	return sent, nil
}

// Start schedules Run on the cron schedule in the configured timezone. Stop the
// returned scheduler on shutdown.
func (s *ReminderService) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc), cron.WithLogger(cronLogger{s.logger.Sugar()}))
	_, err := c.AddFunc(s.schedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, reminderTimeout)
		defer cancel()
		sent, err := s.Run(runCtx)
		if err != nil {
			s.logger.Error("reminder run failed", zap.Error(err))
			return
		}
		s.logger.Info("reminder run completed", zap.Int("sent", sent))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule reminder %q: %w", s.schedule, err)
	}
	c.Start()
	s.logger.Info("reminder scheduled", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))
	return c, nil
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
