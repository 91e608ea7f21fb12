package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type stubOpenLister struct {
	rows []models.OpenAttendance
	err  error
}

func (s stubOpenLister) ListOpen(ctx context.Context) ([]models.OpenAttendance, error) {
	return s.rows, s.err
}

func TestReminderServiceRun(t *testing.T) {
	loc := nairobi(t)
	now := time.Date(2024, 3, 6, 17, 0, 0, 0, loc)
	open := func(staffID string, login time.Time, email *string) models.OpenAttendance {
		return models.OpenAttendance{Attendance: models.Attendance{StaffID: staffID, LoginTime: login}, Email: email}
	}
	lister := stubOpenLister{rows: []models.OpenAttendance{
		open("GFHKTS001", time.Date(2024, 3, 6, 8, 0, 0, 0, loc), strPtr("wilfred@school.example")),
		open("GFHKTS002", time.Date(2024, 3, 6, 0, 0, 0, 0, loc), strPtr("josephine@school.example")),
		open("GFHKTS003", time.Date(2024, 3, 5, 23, 59, 0, 0, loc), strPtr("catherine@school.example")),
		open("GFHKTS004", time.Date(2024, 3, 6, 9, 0, 0, 0, loc), nil),
		open("GFHKTS005", time.Date(2024, 3, 6, 9, 0, 0, 0, loc), strPtr("")),
	}}
	notifier := &recordingNotifier{}
	metrics := NewMetricsService()
	svc := NewReminderService(lister, notifier, metrics, nil, loc, "0 17 * * *")
	svc.now = func() time.Time { return now }

	sent, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, notifier.sent, 2)
	assert.Equal(t, "wilfred@school.example", notifier.sent[0].To)
	assert.Equal(t, "Reminder: Logout", notifier.sent[0].Subject)
	assert.Equal(t, "Please sign out today to complete your attendance record.", notifier.sent[0].Body)
	assert.Equal(t, 2.0, counterValue(t, metrics, "attendance_reminders_sent_total"))
}

func TestReminderServiceCountsOnlyDelivered(t *testing.T) {
	loc := nairobi(t)
	lister := stubOpenLister{rows: []models.OpenAttendance{
		{Attendance: models.Attendance{StaffID: "A", LoginTime: time.Now().In(loc)}, Email: strPtr("a@school.example")},
	}}
	svc := NewReminderService(lister, &recordingNotifier{fail: true}, nil, nil, loc, "0 17 * * *")

	sent, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderServiceListError(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewReminderService(stubOpenLister{err: errors.New("db down")}, nil, metrics, nil, nil, "0 17 * * *")

	_, err := svc.Run(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, 1.0, counterValue(t, metrics, "attendance_reminder_runs_total", "status", "error"))
}

func TestReminderServiceStart(t *testing.T) {
	svc := NewReminderService(stubOpenLister{}, nil, nil, nil, nil, "0 17 * * *")
	c, err := svc.Start(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()

	bad := NewReminderService(stubOpenLister{}, nil, nil, nil, nil, "every day")
	_, err = bad.Start(context.Background())
	assert.Error(t, err)
}
