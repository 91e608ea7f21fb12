package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/models"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/logger"
	"github.com/noah-isme/staff-attendance/pkg/response"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

// ContextStaffKey is the gin context key storing the signed-in staff member.
const ContextStaffKey = "currentStaff"

type staffLoader interface {
	GetStaff(ctx context.Context, staffID string) (*models.Staff, error)
}

type denyFunc func(c *gin.Context, err error)

// RequireStaff protects HTML pages. Anonymous visitors are sent to the login
// page with a flash; a session naming an unknown staff member is cleared.
func RequireStaff(mgr *session.Manager, staff staffLoader, log *zap.Logger) gin.HandlerFunc {
	return requireStaff(mgr, staff, log, func(c *gin.Context, err error) {
		switch {
		case errors.Is(err, appErrors.ErrUnauthorized):
			session.AddFlash(c, session.FlashDanger, "Please login first.")
		case errors.Is(err, appErrors.ErrNotFound):
			session.AddFlash(c, session.FlashDanger, "Invalid session. Please login again.")
		default:
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	})
}

// RequireStaffAPI protects JSON endpoints with the same session.
func RequireStaffAPI(mgr *session.Manager, staff staffLoader, log *zap.Logger) gin.HandlerFunc {
	return requireStaff(mgr, staff, log, func(c *gin.Context, err error) {
		if errors.Is(err, appErrors.ErrNotFound) {
			err = appErrors.ErrUnauthorized
		}
		response.Error(c, err)
		c.Abort()
	})
}

func requireStaff(mgr *session.Manager, staff staffLoader, log *zap.Logger, deny denyFunc) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		staffID := session.StaffID(c)
		if staffID == "" {
			deny(c, appErrors.ErrUnauthorized)
			return
		}

		current, err := staff.GetStaff(c.Request.Context(), staffID)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotFound) {
				log.Warn("session references unknown staff", zap.String("staff_id", staffID))
				if logoutErr := mgr.Logout(c); logoutErr != nil {
					log.Warn("failed to clear session", zap.Error(logoutErr))
				}
			}
			deny(c, err)
			return
		}

		c.Set(ContextStaffKey, current)
		c.Set(logger.StaffIDKey, current.StaffID)
		c.Next()
	}
}

// RequireAdmin must run after RequireStaff. Non-admins go back to their dashboard.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if current := CurrentStaff(c); current == nil || !current.IsAdmin {
			session.AddFlash(c, session.FlashDanger, "Access denied.")
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdminAPI is the JSON variant of RequireAdmin.
func RequireAdminAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if current := CurrentStaff(c); current == nil || !current.IsAdmin {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentStaff returns the staff member loaded by RequireStaff, if any.
func CurrentStaff(c *gin.Context) *models.Staff {
	value, exists := c.Get(ContextStaffKey)
	if !exists {
		return nil
	}
	staff, ok := value.(*models.Staff)
	if !ok {
		return nil
	}
	return staff
}
