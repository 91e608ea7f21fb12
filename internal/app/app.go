// Package app assembles repositories, services and handlers into the HTTP
// application and the reminder job.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/staff-attendance/internal/handler"
	"github.com/noah-isme/staff-attendance/internal/middleware"
	"github.com/noah-isme/staff-attendance/internal/repository"
	"github.com/noah-isme/staff-attendance/internal/service"
	"github.com/noah-isme/staff-attendance/internal/web"
	"github.com/noah-isme/staff-attendance/pkg/config"
	"github.com/noah-isme/staff-attendance/pkg/database"
	"github.com/noah-isme/staff-attendance/pkg/logger"
	"github.com/noah-isme/staff-attendance/pkg/mailer"
	reqidmiddleware "github.com/noah-isme/staff-attendance/pkg/middleware/requestid"
	"github.com/noah-isme/staff-attendance/pkg/session"
)

// App is the wired application.
type App struct {
	Engine   *gin.Engine
	Handler  http.Handler
	Reminder *service.ReminderService
	Metrics  *service.MetricsService
}

// New migrates the schema, seeds the roster and builds the router.
func New(ctx context.Context, cfg *config.Config, db *sqlx.DB, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cutoff, err := service.ParseTimeOfDay(cfg.Attendance.EarlyDepartureCutoff)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db, cfg.Learners.Mode, log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	staffRepo := repository.NewStaffRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)

	authSvc := service.NewAuthService(staffRepo, validate, log)
	if cfg.Seed.Enabled {
		created, err := authSvc.Seed(ctx, service.SeedConfig{
			DefaultPassword: cfg.Seed.DefaultPassword,
			AdminStaffID:    cfg.Seed.AdminStaffID,
			AdminPassword:   cfg.Seed.AdminPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("seed staff: %w", err)
		}
		if created > 0 {
			log.Info("seeded staff roster", zap.Int("created", created))
		}
	}

	mail, err := mailer.New(cfg.Mail, log)
	if err != nil {
		return nil, err
	}
	notifier := service.NewNotifier(mail, metrics, log)

	attendanceSvc := service.NewAttendanceService(attendanceRepo, staffRepo, notifier, metrics, log, service.AttendanceConfig{
		Location: loc,
		Cutoff:   cutoff,
	})
	reminder := service.NewReminderService(attendanceRepo, notifier, metrics, log, loc, cfg.Reminder.Schedule)

	var (
		exportSvc        *service.ExportService
		adminHandler     *handler.AdminHandler
		dashboardHandler *handler.DashboardHandler
		learnerHandler   *handler.LearnerHandler
	)
	switch cfg.Learners.Mode {
	case config.LearnersModeAggregate:
		snapshots := service.NewLearnerSnapshotService(repository.NewLearnerSnapshotRepository(db), validate, log)
		exportSvc = service.NewExportService(attendanceRepo, nil, loc, metrics, log)
		adminHandler = handler.NewAdminHandler(attendanceSvc, snapshots, exportSvc, log)
		dashboardHandler = handler.NewDashboardHandler(attendanceSvc, snapshots)
	default:
		learnerRepo := repository.NewLearnerRepository(db)
		learners := service.NewLearnerService(learnerRepo, validate, log)
		exportSvc = service.NewExportService(attendanceRepo, learnerRepo, loc, metrics, log)
		adminHandler = handler.NewAdminHandler(attendanceSvc, nil, exportSvc, log)
		dashboardHandler = handler.NewDashboardHandler(attendanceSvc, learners)
		learnerHandler = handler.NewLearnerHandler(learners, exportSvc, log)
	}

	sessions := session.NewManager(cfg.Session)
	store, err := sessions.NewStore(cfg.Redis)
	if err != nil {
		return nil, err
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(reqidmiddleware.Middleware())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Metrics(metrics))
	engine.Use(sessions.Middleware(store))
	engine.SetHTMLTemplate(tmpl)

	handler.Routes{
		Auth:           handler.NewAuthHandler(authSvc, sessions, log),
		Dashboard:      dashboardHandler,
		Attendance:     handler.NewAttendanceHandler(attendanceSvc, authSvc),
		Admin:          adminHandler,
		Learners:       learnerHandler,
		Metrics:        handler.NewMetricsHandler(metrics, db),
		Sessions:       sessions,
		Staff:          authSvc,
		Logger:         log,
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableMetrics:  cfg.Metrics.Enabled,
		EnableDocs:     cfg.Env != config.EnvProduction,
	}.Register(engine)

	return &App{
		Engine:   engine,
		Handler:  middleware.CSRF(cfg.CSRF, cfg.Session.Secure, log)(engine),
		Reminder: reminder,
		Metrics:  metrics,
	}, nil
}
