package handler

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/middleware"
	corsmiddleware "github.com/noah-isme/staff-attendance/pkg/middleware/cors"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

// Routes binds handlers to URLs. Learners is nil when learner data is kept as
// aggregate snapshots.
type Routes struct {
	Auth       *AuthHandler
	Dashboard  *DashboardHandler
	Attendance *AttendanceHandler
	Admin      *AdminHandler
	Learners   *LearnerHandler
	Metrics    *MetricsHandler

	Sessions *session.Manager
	Staff    staffDirectory
	Logger   *zap.Logger

	APIPrefix      string
	AllowedOrigins []string
	EnableMetrics  bool
	EnableDocs     bool
}

// Register mounts every route on r.
func (rt Routes) Register(r *gin.Engine) {
	r.GET("/health", rt.Metrics.Health)
	r.GET("/ready", rt.Metrics.Ready)
	if rt.EnableMetrics {
		r.GET("/metrics", rt.Metrics.Prometheus)
	}
	if rt.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", rt.Auth.LoginPage)
	r.POST("/", rt.Auth.Login)
	r.GET("/logout_session", rt.Auth.LogoutSession)

	pages := r.Group("/", middleware.RequireStaff(rt.Sessions, rt.Staff, rt.Logger))
	pages.GET("/register/:staff_id", rt.Auth.RegisterPage)
	pages.POST("/register/:staff_id", rt.Auth.Register)
	pages.GET("/dashboard", rt.Dashboard.Show)
	pages.POST("/dashboard", rt.Dashboard.Show)
	pages.POST("/attendance/signin", rt.Attendance.SignIn)
	pages.POST("/attendance/signout_simple", rt.Attendance.SignOutSimple)
	pages.GET("/logout/:staff_id", rt.Attendance.SignOutPage)
	pages.POST("/logout/:staff_id", rt.Attendance.SignOut)

	admin := pages.Group("/", middleware.RequireAdmin())
	admin.GET("/admin", rt.Admin.Show)
	admin.POST("/admin", rt.Admin.SaveLearners)
	admin.GET("/admin/export", rt.Admin.Export)
	if rt.Learners != nil {
		admin.GET("/learners", rt.Learners.List)
		admin.POST("/learners", rt.Learners.Create)
		admin.GET("/learners/edit/:id", rt.Learners.EditPage)
		admin.POST("/learners/edit/:id", rt.Learners.Update)
		admin.POST("/learners/delete/:id", rt.Learners.Delete)
		admin.GET("/learners/export", rt.Learners.Export)
	}

	api := r.Group(rt.APIPrefix,
		corsmiddleware.New(rt.AllowedOrigins),
		middleware.RequireStaffAPI(rt.Sessions, rt.Staff, rt.Logger),
	)
	api.GET("/attendance/status", rt.Attendance.Status)
	api.GET("/learners/headcount", rt.Dashboard.Headcount)
	api.GET("/attendance/early-departures", middleware.RequireAdminAPI(), rt.Attendance.EarlyDepartures)
}
