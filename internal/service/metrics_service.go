package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attendance event labels.
const (
	EventSignIn          = "signin"
	EventSignOut         = "signout"
	EventSignInRejected  = "signin_rejected"
	EventSignOutRejected = "signout_rejected"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	attendance      *prometheus.CounterVec
	emails          *prometheus.CounterVec
	remindersSent   prometheus.Counter
	reminderRuns    *prometheus.CounterVec
	exports         *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	attendance := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_events_total",
		Help: "Attendance sign-in and sign-out attempts by outcome",
	}, []string{"event"})

	emails := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_emails_total",
		Help: "Notification emails by delivery status",
	}, []string{"status"})

	remindersSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "attendance_reminders_sent_total",
		Help: "Sign-out reminders delivered",
	})

	reminderRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_reminder_runs_total",
		Help: "Reminder job executions by outcome",
	}, []string{"status"})

	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_exports_total",
		Help: "Generated report downloads",
	}, []string{"report", "format", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, attendance, emails, remindersSent, reminderRuns, exports, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		attendance:      attendance,
		emails:          emails,
		remindersSent:   remindersSent,
		reminderRuns:    reminderRuns,
		exports:         exports,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordAttendanceEvent counts a sign-in or sign-out outcome.
func (m *MetricsService) RecordAttendanceEvent(event string) {
	if m == nil {
		return
	}
	m.attendance.WithLabelValues(event).Inc()
}

// RecordEmail counts a notification delivery attempt.
func (m *MetricsService) RecordEmail(delivered bool) {
	if m == nil {
		return
	}
	status := "sent"
	if !delivered {
		status = "failed"
	}
	m.emails.WithLabelValues(status).Inc()
}

// RecordReminderRun counts a reminder job execution and the reminders it sent.
func (m *MetricsService) RecordReminderRun(sent int, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reminderRuns.WithLabelValues(status).Inc()
	m.remindersSent.Add(float64(sent))
}

// RecordExport counts a generated report.
func (m *MetricsService) RecordExport(report, format string, ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.exports.WithLabelValues(report, format, status).Inc()
}
