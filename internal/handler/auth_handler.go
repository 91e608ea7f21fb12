package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/dto"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

type authService interface {
	Authenticate(ctx context.Context, form dto.LoginForm) (*models.Staff, error)
	GetStaff(ctx context.Context, staffID string) (*models.Staff, error)
	Register(ctx context.Context, staffID string, form dto.RegistrationForm) (*models.Staff, error)
}

// AuthHandler serves login, first-time registration and session logout.
type AuthHandler struct {
	service  authService
	sessions *session.Manager
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, sessions: sessions, logger: logger}
}

// LoginPage renders the login form.
func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", nil)
}

// Login authenticates the posted credentials and starts a session. Staff with
// an incomplete profile are sent to registration first.
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, session.FlashDanger, "Staff ID and password are required.")
		render(c, http.StatusBadRequest, "login.html", gin.H{"StaffID": form.StaffID})
		return
	}

	staff, err := h.service.Authenticate(c.Request.Context(), form)
	if err != nil {
		flashError(c, err)
		status := appErrors.FromError(err).Status
		render(c, status, "login.html", gin.H{"StaffID": form.StaffID})
		return
	}

	if err := h.sessions.Login(c, staff.StaffID, form.RememberMe); err != nil {
		h.logger.Error("failed to save session", zap.String("staff_id", staff.StaffID), zap.Error(err))
		flashError(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session"))
		render(c, http.StatusInternalServerError, "login.html", nil)
		return
	}

	if staff.NeedsRegistration() {
		redirect(c, "/register/"+staff.StaffID)
		return
	}
	session.AddFlash(c, session.FlashSuccess, "Login successful!")
	redirect(c, "/dashboard")
}

// RegisterPage renders the first-time profile form.
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	staff, ok := h.registrationTarget(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "register.html", gin.H{
		"Staff":       staff,
		"GradeLevels": models.GradeLevels,
	})
}

// Register saves the first-time profile and returns to the login page.
func (h *AuthHandler) Register(c *gin.Context) {
	staff, ok := h.registrationTarget(c)
	if !ok {
		return
	}

	var form dto.RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		session.AddFlash(c, session.FlashDanger, "A valid email and your subjects are required.")
		render(c, http.StatusBadRequest, "register.html", gin.H{"Staff": staff, "GradeLevels": models.GradeLevels, "Form": form})
		return
	}

	if _, err := h.service.Register(c.Request.Context(), staff.StaffID, form); err != nil {
		flashError(c, err)
		render(c, appErrors.FromError(err).Status, "register.html", gin.H{"Staff": staff, "GradeLevels": models.GradeLevels, "Form": form})
		return
	}

	session.AddFlash(c, session.FlashSuccess, "Registration completed! Use your Staff ID and password to login.")
	redirect(c, "/")
}

// LogoutSession ends the browser session. Attendance rows are left untouched.
func (h *AuthHandler) LogoutSession(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		h.logger.Warn("failed to clear session", zap.Error(err))
	}
	session.AddFlash(c, session.FlashSuccess, "Logged out of system successfully!")
	redirect(c, "/")
}

// registrationTarget resolves the path staff id. Only that staff member or an
// administrator may complete the profile.
func (h *AuthHandler) registrationTarget(c *gin.Context) (*models.Staff, bool) {
	current := middleware.CurrentStaff(c)
	staffID := c.Param("staff_id")
	if current == nil || (current.StaffID != staffID && !current.IsAdmin) {
		session.AddFlash(c, session.FlashDanger, "Access denied.")
		redirect(c, "/dashboard")
		return nil, false
	}

	staff, err := h.service.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			session.AddFlash(c, session.FlashDanger, "Invalid Staff ID")
			redirect(c, "/dashboard")
			return nil, false
		}
		flashError(c, err)
		redirect(c, "/dashboard")
		return nil, false
	}
	return staff, true
}
