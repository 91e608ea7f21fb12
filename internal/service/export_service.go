package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/export"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

const reportTimeLayout = "2006-01-02 15:04:05"

// AttendanceColumns are the attendance table columns in export order.
var AttendanceColumns = []string{"id", "staff_id", "login_time", "logout_time", "logout_reason"}

// LearnerColumns are the learner table columns in export order.
var LearnerColumns = []string{"admission_no", "full_name", "gender", "date_of_birth", "grade", "guardian_name", "guardian_phone", "address", "medical_notes"}

type attendanceLister interface {
	List(ctx context.Context) ([]models.AttendanceRecord, error)
}

type learnerLister interface {
	List(ctx context.Context, filter models.LearnerFilter) ([]models.Learner, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Report is a rendered download held fully in memory.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
	Rows        int
}

// ExportService dumps tables into downloadable files.
type ExportService struct {
	attendance attendanceLister
	learners   learnerLister
	xlsx       xlsxRenderer
	csv        csvRenderer
	pdf        pdfRenderer
	metrics    *MetricsService
	logger     *zap.Logger
	loc        *time.Location
}

// NewExportService constructs an ExportService. learners may be nil when
// individual learner records are not in use.
func NewExportService(attendance attendanceLister, learners learnerLister, loc *time.Location, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		attendance: attendance,
		learners:   learners,
		xlsx:       export.NewXLSXExporter(),
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		metrics:    metrics,
		logger:     logger,
		loc:        loc,
	}
}

// AttendanceReport renders the whole attendance table in the requested format.
func (s *ExportService) AttendanceReport(ctx context.Context, format string) (*Report, error) {
	f, ok := export.ParseFormat(format)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unsupported export format.")
	}
	rows, err := s.attendance.List(ctx)
	if err != nil {
		s.metrics.RecordExport("attendance", string(f), false)
		s.logger.Error("attendance export query failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "Failed to generate report.")
	}

	data := export.Dataset{Headers: AttendanceColumns, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"id":            strconv.FormatInt(row.ID, 10),
			"staff_id":      row.StaffID,
			"login_time":    row.LoginTime.In(s.loc).Format(reportTimeLayout),
			"logout_time":   s.formatTime(row.LogoutTime),
			"logout_reason": deref(row.LogoutReason),
		})
	}
	return s.render("attendance", "attendance_report", "Attendance Report", f, data)
}

// LearnersReport renders learners as a spreadsheet, optionally for one grade.
func (s *ExportService) LearnersReport(ctx context.Context, grade string) (*Report, error) {
	if s.learners == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Learner records are not enabled.")
	}
	grade = strings.TrimSpace(grade)
	if grade != "" && !models.IsGradeLevel(grade) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Unknown grade.")
	}
	learners, err := s.learners.List(ctx, models.LearnerFilter{Grade: grade})
	if err != nil {
		s.metrics.RecordExport("learners", string(export.FormatXLSX), false)
		s.logger.Error("learner export query failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "Failed to generate report.")
	}

	data := export.Dataset{Headers: LearnerColumns, Rows: make([]map[string]string, 0, len(learners))}
	for _, l := range learners {
		dob := ""
		if l.DateOfBirth != nil {
			dob = l.DateOfBirth.Format("2006-01-02")
		}
		data.Rows = append(data.Rows, map[string]string{
			"admission_no":   l.AdmissionNo,
			"full_name":      l.FullName,
			"gender":         l.Gender,
			"date_of_birth":  dob,
			"grade":          l.Grade,
			"guardian_name":  deref(l.GuardianName),
			"guardian_phone": deref(l.GuardianPhone),
			"address":        deref(l.Address),
			"medical_notes":  deref(l.MedicalNotes),
		})
	}

	base := "learners_report"
	if grade != "" {
		base = "learners_" + strings.ToLower(strings.ReplaceAll(grade, " ", "_"))
	}
	return s.render("learners", base, "Learners", export.FormatXLSX, data)
}

func (s *ExportService) render(report, base, title string, f export.Format, data export.Dataset) (*Report, error) {
	var (
		body []byte
		err  error
	)
	switch f {
	case export.FormatCSV:
		body, err = s.csv.Render(data)
	case export.FormatPDF:
		body, err = s.pdf.Render(data, title)
	default:
		body, err = s.xlsx.Render(data, report)
	}
	if err != nil || len(body) == 0 {
		s.metrics.RecordExport(report, string(f), false)
		s.logger.Error("report rendering failed", zap.String("report", report), zap.String("format", string(f)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrExportFailed.Code, appErrors.ErrExportFailed.Status, "Failed to generate report.")
	}
	s.metrics.RecordExport(report, string(f), true)
	return &Report{Filename: f.Filename(base), ContentType: f.ContentType(), Body: body, Rows: len(data.Rows)}, nil
}

func (s *ExportService) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format(reportTimeLayout)
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
