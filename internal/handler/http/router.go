package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/niwaya/kintai-backend/internal/domain/report"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/handler/http/middleware"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
	"github.com/niwaya/kintai-backend/internal/pkg/jwt"
	"github.com/niwaya/kintai-backend/internal/pkg/metrics"
	"github.com/ulule/limiter/v3"
)

type RouterOptions struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// Metrics is optional; nil disables /metrics and request instrumentation.
	Metrics *metrics.Metrics
	// LoginLimiter is optional; nil leaves login unthrottled.
	LoginLimiter *limiter.Limiter
}

type Handlers struct {
	Auth         AuthHandler
	User         UserHandler
	Request      RequestHandler
	Attendance   AttendanceHandler
	DailyReport  DailyReportHandler
	Report       ReportHandler
	Dashboard    DashboardHandler
	Notification NotificationHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Remaining"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			response.Success(w, map[string]string{"status": "ok"})
		})

		r.Group(func(r chi.Router) {
			if opts.LoginLimiter != nil {
				r.Use(middleware.RateLimit(opts.LoginLimiter))
			}
			r.Post("/auth/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/auth", func(r chi.Router) {
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
				r.Put("/password", h.Auth.ChangePassword)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/{id}", h.User.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionUserManage))
					r.Get("/", h.User.List)
					r.Post("/", h.User.Create)
					r.Put("/{id}", h.User.Update)
					r.Delete("/{id}", h.User.Delete)
					r.Post("/{id}/deactivate", h.User.Deactivate)
					r.Post("/{id}/reset-password", h.User.ResetPassword)
				})
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/leave", h.Request.CreateLeave)
				r.Post("/overtime", h.Request.CreateOvertime)
				r.Post("/holiday-work", h.Request.CreateHolidayWork)
				r.Post("/expense", h.Request.CreateExpense)
				r.Post("/reimbursement", h.Request.CreateReimbursement)
				r.Post("/expense-settlement", h.Request.CreateSettlement)

				r.Get("/", h.Request.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Request.Get)
					r.Delete("/", h.Request.Cancel)
					r.Post("/submit", h.Request.Submit)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireApprover)
						r.Post("/approve", h.Request.Approve)
						r.Post("/reject", h.Request.Reject)
						r.Post("/return", h.Request.Return)
					})

					r.Post("/attachments", h.Request.UploadAttachment)
					r.Get("/attachments/{attachmentID}", h.Request.DownloadAttachment)
				})
			})

			r.With(middleware.RequireApprover).Get("/approvals", h.Request.Approvals)

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/timesheet/{user_id}/{year}/{month}", h.Attendance.Timesheet)
				r.Get("/timesheet/{user_id}/{year}/{month}/pdf", h.Attendance.TimesheetPDF)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Get("/shift/{year}/{month}", h.Attendance.ShiftTable)
					r.Get("/shift/{year}/{month}/pdf", h.Attendance.ShiftTablePDF)
				})

				r.Get("/balance/{user_id}", h.Attendance.GetBalance)
				r.With(middleware.RequirePermission(user.PermissionLeaveBalanceGrant)).
					Post("/balance/{user_id}", h.Attendance.GrantBalance)
			})

			r.Route("/daily-reports", func(r chi.Router) {
				r.Post("/", h.DailyReport.Create)
				r.Get("/", h.DailyReport.List)
				r.Get("/{id}", h.DailyReport.Get)
				r.Put("/{id}", h.DailyReport.Update)
				r.Delete("/{id}", h.DailyReport.Delete)
				r.Get("/{id}/pdf", h.DailyReport.PDF)
			})

			r.Route("/export", func(r chi.Router) {
				r.Get("/requests/pdf", h.Report.ExportRequests(report.FormatPDF))
				r.Get("/requests/csv", h.Report.ExportRequests(report.FormatCSV))
				r.Get("/requests/excel", h.Report.ExportRequests(report.FormatExcel))
				r.With(middleware.RequirePermission(user.PermissionReportsView)).
					Get("/summary/pdf", h.Report.SummaryPDF)
			})

			r.With(middleware.RequirePermission(user.PermissionReportsView)).
				Get("/reports/summary", h.Report.Summary)
			r.Get("/dashboard/stats", h.Dashboard.GetStats)
			r.With(middleware.RequirePermission(user.PermissionAdminStats)).
				Get("/admin/stats", h.Dashboard.GetAdminStats)

			r.Route("/notifications", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionNotificationManage))
				r.Get("/settings", h.Notification.GetSettings)
				r.Put("/settings", h.Notification.UpdateSettings)
				r.Post("/daily-report-reminder", h.Notification.SendDailyReportReminder)
			})
		})
	})
	return r
}
