package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/noah-isme/staff-attendance/internal/middleware"
	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

const (
	displayTimeLayout = "2006-01-02 15:04"
	genericFailure    = "Something went wrong. Please try again."
)

// render fills the layout values every page needs and pops pending flashes.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Flashes"] = session.Flashes(c)
	data["CSRFField"] = csrf.TemplateField(c.Request)
	data["CurrentStaff"] = middleware.CurrentStaff(c)
	data["Year"] = time.Now().Year()
	c.HTML(status, name, data)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// flashError turns a service error into a flash. State conflicts are warnings;
// internal failures are logged through gin and shown generically.
func flashError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	switch {
	case errors.Is(err, appErrors.ErrAlreadySignedIn), errors.Is(err, appErrors.ErrNoOpenAttendance):
		session.AddFlash(c, session.FlashWarning, appErr.Message)
	case appErr.Status >= http.StatusInternalServerError:
		_ = c.Error(err)
		session.AddFlash(c, session.FlashDanger, genericFailure)
	default:
		session.AddFlash(c, session.FlashDanger, appErr.Message)
	}
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format(displayTimeLayout)
}
