package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/service"
	"github.com/noah-isme/staff-attendance/pkg/response"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

type attendanceRecords interface {
	ListRecords(ctx context.Context) ([]models.AttendanceRecord, error)
	SummarizeEarlyDepartures(rows []models.AttendanceRecord) []models.EarlyDeparture
}

type snapshotRecorder interface {
	Record(ctx context.Context, form dto.LearnerSnapshotForm) (*models.LearnerSnapshot, error)
	Latest(ctx context.Context) (*models.LearnerSnapshot, error)
}

type attendanceExporter interface {
	AttendanceReport(ctx context.Context, format string) (*service.Report, error)
}

// AdminHandler serves the administrator console.
type AdminHandler struct {
	attendance attendanceRecords
	snapshots  snapshotRecorder
	exports    attendanceExporter
	logger     *zap.Logger
}

// NewAdminHandler creates a new handler. snapshots is nil when learners are
// kept as individual records.
func NewAdminHandler(attendance attendanceRecords, snapshots snapshotRecorder, exports attendanceExporter, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{attendance: attendance, snapshots: snapshots, exports: exports, logger: logger}
}

// Show lists attendance, the early departure summary and learner data.
func (h *AdminHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	records, err := h.attendance.ListRecords(ctx)
	if err != nil {
		flashError(c, err)
		records = nil
	}

	data := gin.H{
		"Records":           records,
		"Summary":           h.attendance.SummarizeEarlyDepartures(records),
		"AggregateLearners": h.snapshots != nil,
	}
	if h.snapshots != nil {
		latest, err := h.snapshots.Latest(ctx)
		if err != nil {
			_ = c.Error(err)
		}
		data["Learners"] = latest
	}
	render(c, http.StatusOK, "admin.html", data)
}

// SaveLearners records an aggregate learner headcount.
func (h *AdminHandler) SaveLearners(c *gin.Context) {
	if h.snapshots == nil {
		redirect(c, "/learners")
		return
	}

	var form dto.LearnerSnapshotForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, session.FlashDanger, "Learner counts must be whole numbers.")
		redirect(c, "/admin")
		return
	}
	if _, err := h.snapshots.Record(c.Request.Context(), form); err != nil {
		flashError(c, err)
		redirect(c, "/admin")
		return
	}
	session.AddFlash(c, session.FlashSuccess, "Learners data saved successfully!")
	redirect(c, "/admin")
}

// Export downloads the attendance table, as xlsx unless ?format= says otherwise.
func (h *AdminHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	_ = c.ShouldBindQuery(&query)

	report, err := h.exports.AttendanceReport(c.Request.Context(), query.Format)
	if err != nil {
		h.logger.Error("attendance export failed", zap.String("format", query.Format), zap.Error(err))
		session.AddFlash(c, session.FlashDanger, "Failed to generate report.")
		redirect(c, "/admin")
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}
