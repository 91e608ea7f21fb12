package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads a counter from the registry. labels are name/value pairs;
// zero is returned when no series matches.
func counterValue(t *testing.T, m *MetricsService, name string, labels ...string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, metric := range family.GetMetric() {
			for i := 0; i+1 < len(labels); i += 2 {
				found := false
				for _, pair := range metric.GetLabel() {
					if pair.GetName() == labels[i] && pair.GetValue() == labels[i+1] {
						found = true
					}
				}
				if !found {
					continue metrics
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetricsServiceRecordsDomainEvents(t *testing.T) {
	m := NewMetricsService()
	m.RecordAttendanceEvent(EventSignIn)
	m.RecordAttendanceEvent(EventSignIn)
	m.RecordAttendanceEvent(EventSignOutRejected)
	m.RecordReminderRun(3, nil)
	m.RecordReminderRun(0, errors.New("boom"))
	m.RecordExport("attendance", "xlsx", true)
	m.ObserveHTTPRequest(http.MethodGet, "/dashboard", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "attendance_events_total", "event", EventSignIn))
	assert.Equal(t, 1.0, counterValue(t, m, "attendance_events_total", "event", EventSignOutRejected))
	assert.Equal(t, 3.0, counterValue(t, m, "attendance_reminders_sent_total"))
	assert.Equal(t, 1.0, counterValue(t, m, "attendance_reminder_runs_total", "status", "error"))
	assert.Equal(t, 1.0, counterValue(t, m, "report_exports_total", "report", "attendance", "format", "xlsx", "status", "ok"))
	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", "path", "/dashboard", "status", "200"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "attendance_events_total"))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordAttendanceEvent(EventSignIn)
		m.RecordEmail(true)
		m.RecordReminderRun(1, nil)
		m.RecordExport("attendance", "csv", false)
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	})
}
