package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/internal/service"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/response"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

type learnerService interface {
	List(ctx context.Context, grade string) ([]models.Learner, error)
	Get(ctx context.Context, id int64) (*models.Learner, error)
	Create(ctx context.Context, form dto.LearnerForm) (*models.Learner, error)
	Update(ctx context.Context, id int64, form dto.LearnerForm) (*models.Learner, error)
	Delete(ctx context.Context, id int64) error
}

type learnerExporter interface {
	LearnersReport(ctx context.Context, grade string) (*service.Report, error)
}

// LearnerHandler manages individual learner records for administrators.
type LearnerHandler struct {
	service learnerService
	exports learnerExporter
	logger  *zap.Logger
}

// NewLearnerHandler creates a new handler.
func NewLearnerHandler(svc learnerService, exports learnerExporter, logger *zap.Logger) *LearnerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LearnerHandler{service: svc, exports: exports, logger: logger}
}

// List renders learners grouped by grade with the add form.
func (h *LearnerHandler) List(c *gin.Context) {
	var query dto.LearnerListQuery
	_ = c.ShouldBindQuery(&query)

	learners, err := h.service.List(c.Request.Context(), query.Grade)
	if err != nil {
		flashError(c, err)
		if query.Grade != "" {
			redirect(c, "/learners")
			return
		}
	}
	render(c, http.StatusOK, "learners.html", gin.H{
		"Groups":        service.GroupByGrade(learners),
		"Count":         len(learners),
		"GradeLevels":   models.GradeLevels,
		"SelectedGrade": query.Grade,
	})
}

// Create adds a learner from the posted form.
func (h *LearnerHandler) Create(c *gin.Context) {
	var form dto.LearnerForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, session.FlashDanger, "Invalid learner form.")
		redirect(c, "/learners")
		return
	}
	learner, err := h.service.Create(c.Request.Context(), form)
	if err != nil {
		flashError(c, err)
		redirect(c, "/learners")
		return
	}
	session.AddFlash(c, session.FlashSuccess, "Learner "+learner.FullName+" added.")
	redirect(c, "/learners?grade="+url.QueryEscape(learner.Grade))
}

// EditPage renders the edit form for one learner.
func (h *LearnerHandler) EditPage(c *gin.Context) {
	learner, ok := h.load(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "learner_edit.html", gin.H{
		"Learner":     learner,
		"GradeLevels": models.GradeLevels,
	})
}

// Update saves the edit form.
func (h *LearnerHandler) Update(c *gin.Context) {
	id, ok := learnerID(c)
	if !ok {
		return
	}
	var form dto.LearnerForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, session.FlashDanger, "Invalid learner form.")
		redirect(c, "/learners/edit/"+c.Param("id"))
		return
	}
	learner, err := h.service.Update(c.Request.Context(), id, form)
	if err != nil {
		flashError(c, err)
		if appErrors.FromError(err).Status == http.StatusNotFound {
			redirect(c, "/learners")
			return
		}
		redirect(c, "/learners/edit/"+c.Param("id"))
		return
	}
	session.AddFlash(c, session.FlashSuccess, "Learner "+learner.FullName+" updated.")
	redirect(c, "/learners?grade="+url.QueryEscape(learner.Grade))
}

// Delete removes a learner.
func (h *LearnerHandler) Delete(c *gin.Context) {
	id, ok := learnerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		flashError(c, err)
	} else {
		session.AddFlash(c, session.FlashSuccess, "Learner deleted.")
	}
	redirect(c, "/learners")
}

// Export downloads learners as a spreadsheet, optionally for one grade.
func (h *LearnerHandler) Export(c *gin.Context) {
	var query dto.LearnerListQuery
	_ = c.ShouldBindQuery(&query)

	report, err := h.exports.LearnersReport(c.Request.Context(), query.Grade)
	if err != nil {
		h.logger.Error("learner export failed", zap.String("grade", query.Grade), zap.Error(err))
		session.AddFlash(c, session.FlashDanger, "Failed to generate report.")
		redirect(c, "/learners")
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}

func (h *LearnerHandler) load(c *gin.Context) (*models.Learner, bool) {
	id, ok := learnerID(c)
	if !ok {
		return nil, false
	}
	learner, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		flashError(c, err)
		redirect(c, "/learners")
		return nil, false
	}
	return learner, true
}

func learnerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		session.AddFlash(c, session.FlashDanger, "Learner not found.")
		redirect(c, "/learners")
		return 0, false
	}
	return id, true
}
