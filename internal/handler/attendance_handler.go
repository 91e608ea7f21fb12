package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/response"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

type attendanceService interface {
	SignIn(ctx context.Context, staffID string) (*models.Attendance, error)
	SignOut(ctx context.Context, staffID string, reason *string) (*models.Attendance, error)
	Status(ctx context.Context, staffID string) (*models.AttendanceStatus, error)
	EarlyDepartures(ctx context.Context) (map[string]int, error)
}

type staffDirectory interface {
	GetStaff(ctx context.Context, staffID string) (*models.Staff, error)
}

// AttendanceHandler drives sign-in and sign-out from the dashboard.
type AttendanceHandler struct {
	service attendanceService
	staff   staffDirectory
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService, staff staffDirectory) *AttendanceHandler {
	return &AttendanceHandler{service: svc, staff: staff}
}

// SignIn opens an attendance record for the signed-in staff member.
func (h *AttendanceHandler) SignIn(c *gin.Context) {
	current := middleware.CurrentStaff(c)
	row, err := h.service.SignIn(c.Request.Context(), current.StaffID)
	if err != nil {
		flashError(c, err)
		redirect(c, "/dashboard")
		return
	}
	session.AddFlash(c, session.FlashSuccess, "Attendance signed in at "+row.LoginTime.Format("15:04"))
	redirect(c, "/dashboard")
}

// SignOutPage renders the sign-out form with the last sign-in time.
func (h *AttendanceHandler) SignOutPage(c *gin.Context) {
	target, ok := h.signOutTarget(c)
	if !ok {
		return
	}
	status, err := h.service.Status(c.Request.Context(), target.StaffID)
	if err != nil {
		flashError(c, err)
		redirect(c, "/dashboard")
		return
	}
	render(c, http.StatusOK, "logout.html", gin.H{
		"Staff":         target,
		"LastSignIn":    formatOptionalTime(status.LastSignIn),
		"LogoutReasons": dto.LogoutReasons,
	})
}

// SignOut closes the open attendance record with the posted reason.
func (h *AttendanceHandler) SignOut(c *gin.Context) {
	target, ok := h.signOutTarget(c)
	if !ok {
		return
	}

	var form dto.SignOutForm
	_ = c.ShouldBind(&form)
	h.signOut(c, target.StaffID, &form.Reason, "No active sign-in record found to sign out.")
}

// SignOutSimple closes the open attendance record without a reason.
func (h *AttendanceHandler) SignOutSimple(c *gin.Context) {
	h.signOut(c, middleware.CurrentStaff(c).StaffID, nil, "No active sign-in record found.")
}

func (h *AttendanceHandler) signOut(c *gin.Context, staffID string, reason *string, missing string) {
	row, err := h.service.SignOut(c.Request.Context(), staffID, reason)
	switch {
	case errors.Is(err, appErrors.ErrNoOpenAttendance):
		session.AddFlash(c, session.FlashWarning, missing)
	case err != nil:
		flashError(c, err)
	default:
		session.AddFlash(c, session.FlashSuccess, "Signed out at "+row.LogoutTime.Format("15:04"))
	}
	redirect(c, "/dashboard")
}

// signOutTarget resolves the path staff id. Staff may only sign themselves
// out; administrators may sign out anyone.
func (h *AttendanceHandler) signOutTarget(c *gin.Context) (*models.Staff, bool) {
	current := middleware.CurrentStaff(c)
	staffID := c.Param("staff_id")
	if current.StaffID == staffID {
		return current, true
	}
	if !current.IsAdmin {
		session.AddFlash(c, session.FlashDanger, "Access denied.")
		redirect(c, "/dashboard")
		return nil, false
	}

	target, err := h.staff.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			session.AddFlash(c, session.FlashDanger, "Invalid Staff ID")
		} else {
			flashError(c, err)
		}
		redirect(c, "/dashboard")
		return nil, false
	}
	return target, true
}

// Status godoc
// @Summary Attendance status of the signed-in staff member
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance/status [get]
func (h *AttendanceHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), middleware.CurrentStaff(c).StaffID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, status)
}

// EarlyDepartures godoc
// @Summary Early departure counts per staff member
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/early-departures [get]
func (h *AttendanceHandler) EarlyDepartures(c *gin.Context) {
	counts, err := h.service.EarlyDepartures(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, counts)
}
