package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/niwaya/kintai-backend/internal/config"
	"github.com/niwaya/kintai-backend/internal/domain/notification"
	appHTTP "github.com/niwaya/kintai-backend/internal/handler/http"
	"github.com/niwaya/kintai-backend/internal/handler/http/middleware"
	"github.com/niwaya/kintai-backend/internal/pkg/cron"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
	"github.com/niwaya/kintai-backend/internal/pkg/email"
	"github.com/niwaya/kintai-backend/internal/pkg/jwt"
	"github.com/niwaya/kintai-backend/internal/pkg/metrics"
	"github.com/niwaya/kintai-backend/internal/pkg/storage"
	"github.com/niwaya/kintai-backend/internal/repository/postgresql"
	attendanceService "github.com/niwaya/kintai-backend/internal/service/attendance"
	serviceAuth "github.com/niwaya/kintai-backend/internal/service/auth"
	dailyReportService "github.com/niwaya/kintai-backend/internal/service/dailyreport"
	dashboardService "github.com/niwaya/kintai-backend/internal/service/dashboard"
	"github.com/niwaya/kintai-backend/internal/service/leave"
	notificationService "github.com/niwaya/kintai-backend/internal/service/notification"
	reportService "github.com/niwaya/kintai-backend/internal/service/report"
	requestService "github.com/niwaya/kintai-backend/internal/service/request"
	userService "github.com/niwaya/kintai-backend/internal/service/user"
)

// app holds everything serve and the one-shot commands share.
type app struct {
	cfg                 *config.Config
	db                  *database.DB
	scheduler           *cron.Scheduler
	reminderJobs        *cron.ReminderJobs
	notificationService notification.Service
	router              http.Handler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Reminder.TimeZone)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load time zone: %w", err)
	}
	accessExpiration, err := time.ParseDuration(cfg.JWT.AccessExpiration)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	mailer, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}
	if !cfg.SMTP.Enabled {
		slog.Warn("SMTP is disabled, notification emails will only be logged")
	}

	m := metrics.New()
	tx := postgresql.NewTransactor(db)

	userRepo := postgresql.NewUserRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	attachmentRepo := postgresql.NewAttachmentRepository(db)
	sourceRepo := postgresql.NewAttendanceSourceRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	settingsRepo := postgresql.NewNotificationSettingsRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	dailyReportRepo := postgresql.NewDailyReportRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, accessExpiration)
	scheduler := cron.NewScheduler(loc)

	notificationSvc := notificationService.NewNotificationService(
		settingsRepo,
		userRepo,
		requestRepo,
		dailyReportRepo,
		mailer,
		scheduler,
		m,
		notificationService.Config{
			BaseURL:  cfg.App.BaseURL,
			Location: loc,
		},
	)
	balanceSvc := leave.NewBalanceService(tx, balanceRepo)
	requestSvc := requestService.NewRequestService(
		tx,
		requestRepo,
		attachmentRepo,
		balanceSvc,
		notificationSvc,
		fileStorage,
		cfg.Storage.MaxUploadSize,
		m,
	)
	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	userSvc := userService.NewUserService(userRepo)
	attendanceSvc := attendanceService.NewAttendanceService(userRepo, sourceRepo, balanceRepo, cfg.PDF.FontPath)
	dailyReportSvc := dailyReportService.NewReportService(dailyReportRepo, cfg.PDF.FontPath)
	reportSvc := reportService.NewReportService(reportRepo, requestRepo, cfg.PDF.FontPath)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, userRepo)

	loginLimiter, err := middleware.NewLoginLimiter(cfg.RateLimit.Login)
	if err != nil {
		notificationSvc.Stop()
		db.Close()
		return nil, fmt.Errorf("invalid login rate limit: %w", err)
	}

	opts := appHTTP.RouterOptions{
		Logger:         slog.Default(),
		AllowedOrigins: cfg.App.AllowedOrigins,
		LoginLimiter:   loginLimiter,
	}
	if cfg.App.MetricsEnabled {
		opts.Metrics = m
	}

	router := appHTTP.NewRouter(opts, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(authSvc),
		User:         appHTTP.NewUserHandler(userSvc),
		Request:      appHTTP.NewRequestHandler(requestSvc, cfg.Storage.MaxUploadSize),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc, balanceSvc),
		DailyReport:  appHTTP.NewDailyReportHandler(dailyReportSvc),
		Report:       appHTTP.NewReportHandler(reportSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Notification: appHTTP.NewNotificationHandler(notificationSvc),
	})

	return &app{
		cfg:                 cfg,
		db:                  db,
		scheduler:           scheduler,
		reminderJobs:        cron.NewReminderJobs(notificationSvc, cfg.Reminder.ApprovalReminderSpec),
		notificationService: notificationSvc,
		router:              router,
	}, nil
}

func (a *app) startScheduler(ctx context.Context) error {
	if err := a.reminderJobs.RegisterJobs(ctx, a.scheduler, a.cfg.Reminder.DailyReportSpec); err != nil {
		return fmt.Errorf("failed to register reminder jobs: %w", err)
	}
	a.scheduler.Start()
	return nil
}

// Close stops the scheduler before the notification workers so no sweep
// enqueues into a stopped queue, then releases the pool.
func (a *app) Close() {
	a.scheduler.Stop()
	a.notificationService.Stop()
	a.db.Close()
}
