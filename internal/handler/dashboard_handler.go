package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	"github.com/noah-isme/staff-attendance/pkg/response"
)

type attendanceStatusProvider interface {
	Status(ctx context.Context, staffID string) (*models.AttendanceStatus, error)
}

// headcountProvider is served by whichever learner store is active.
type headcountProvider interface {
	Headcount(ctx context.Context) (*models.Headcount, error)
}

// DashboardHandler renders the staff landing page.
type DashboardHandler struct {
	attendance attendanceStatusProvider
	learners   headcountProvider
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(attendance attendanceStatusProvider, learners headcountProvider) *DashboardHandler {
	return &DashboardHandler{attendance: attendance, learners: learners}
}

// Show renders the profile, attendance state and learner chart.
func (h *DashboardHandler) Show(c *gin.Context) {
	current := middleware.CurrentStaff(c)
	ctx := c.Request.Context()

	status, err := h.attendance.Status(ctx, current.StaffID)
	if err != nil {
		_ = c.Error(err)
		status = &models.AttendanceStatus{StaffID: current.StaffID}
	}

	headcount, err := h.learners.Headcount(ctx)
	if err != nil {
		_ = c.Error(err)
		headcount = &models.Headcount{}
	}

	render(c, http.StatusOK, "dashboard.html", gin.H{
		"Staff":            current,
		"AttendanceActive": status.SignedIn,
		"LastSignIn":       formatOptionalTime(status.LastSignIn),
		"Headcount":        headcount,
		"HasLearners":      !headcount.Empty(),
		"LogoutReasons":    dto.LogoutReasons,
	})
}

// Headcount godoc
// @Summary Learner headcount chart data
// @Tags Learners
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /learners/headcount [get]
func (h *DashboardHandler) Headcount(c *gin.Context) {
	headcount, err := h.learners.Headcount(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, headcount)
}
