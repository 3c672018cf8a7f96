package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/cron"
	"github.com/niwaya/kintai-backend/internal/pkg/email"
	"golang.org/x/sync/errgroup"
)

// Config holds notification service configuration
type Config struct {
	WorkerCount int            // default: 2
	QueueSize   int            // default: 100
	SendLimit   int            // parallel sends per sweep, default: 4
	BaseURL     string         // frontend origin used in email links
	Location    *time.Location // default: Asia/Tokyo
}

// Rescheduler moves a cron job to a new spec.
type Rescheduler interface {
	Reschedule(name, spec string) error
}

// Recorder counts deliveries and sweeps by outcome.
type Recorder interface {
	Email(event string, err error)
	ReminderSweep(kind string, err error)
}

// ReportLookup tells which users already logged a daily report.
type ReportLookup interface {
	UserIDsReportedOn(ctx context.Context, date time.Time) (map[string]bool, error)
}

var errQueueFull = errors.New("notification queue is full")

type delivery struct {
	event notification.EventType
	run   func(ctx context.Context)
}

type service struct {
	settings  notification.SettingsRepository
	users     user.UserRepository
	requests  request.RequestRepository
	reports   ReportLookup
	mailer    email.EmailService
	scheduler Rescheduler
	recorder  Recorder
	config    Config
	now       func() time.Time

	queue    chan delivery
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(
	settings notification.SettingsRepository,
	users user.UserRepository,
	requests request.RequestRepository,
	reports ReportLookup,
	mailer email.EmailService,
	scheduler Rescheduler,
	recorder Recorder,
	cfg Config,
) notification.Service {
	// Set defaults
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 100
	}
	if cfg.SendLimit == 0 {
		cfg.SendLimit = 4
	}
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("Asia/Tokyo", 9*60*60)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	s := &service{
		settings:  settings,
		users:     users,
		requests:  requests,
		reports:   reports,
		mailer:    mailer,
		scheduler: scheduler,
		recorder:  recorder,
		config:    cfg,
		now:       time.Now,
		queue:     make(chan delivery, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return s
}

// worker sends queued emails until Stop, then drains what is left.
func (s *service) worker(id int) {
	defer s.wg.Done()

	run := func(d delivery) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		d.run(ctx)
	}

	for {
		select {
		case d := <-s.queue:
			run(d)
		case <-s.stopCh:
			for {
				select {
				case d := <-s.queue:
					run(d)
				default:
					slog.Debug("notification worker stopped", "worker", id)
					return
				}
			}
		}
	}
}

// enqueue never blocks the caller. A full queue drops the delivery.
func (s *service) enqueue(d delivery) {
	select {
	case <-s.stopCh:
		slog.Warn("notification service stopped, dropping email", "event", d.event)
		return
	default:
	}

	select {
	case s.queue <- d:
	default:
		slog.Warn("notification queue full, dropping email", "event", d.event)
		s.recordEmail(d.event, errQueueFull)
	}
}

// Stop signals the workers and waits for queued deliveries to finish.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// ApprovalRequested implements notification.Notifier. Every active approver
// and admin other than the applicant is told about the new request.
func (s *service) ApprovalRequested(_ context.Context, req request.Request) {
	s.enqueue(delivery{
		event: notification.EventApprovalRequested,
		run: func(ctx context.Context) {
			approvers, err := s.users.ListActiveByRoles(ctx, []user.Role{user.RoleApprover, user.RoleAdmin})
			if err != nil {
				slog.Error("failed to list approvers for notification", "request_id", req.ID, "error", err)
				s.recordEmail(notification.EventApprovalRequested, err)
				return
			}

			appliedAt := req.CreatedAt
			if req.AppliedAt != nil {
				appliedAt = *req.AppliedAt
			}
			for _, approver := range approvers {
				if approver.ID == req.ApplicantID {
					continue
				}
				err := s.mailer.SendApprovalRequest(approver.Email, email.ApprovalRequestData{
					ApproverName:  approver.Name,
					ApplicantName: req.ApplicantName,
					RequestType:   req.Type.Label(),
					Title:         req.Title,
					AppliedAt:     s.formatTime(appliedAt),
					DetailURL:     s.link("/requests/" + req.ID),
				})
				s.logDelivery(notification.EventApprovalRequested, approver.Email, req.ID, err)
			}
		},
	})
}

// RequestDecided implements notification.Notifier.
func (s *service) RequestDecided(_ context.Context, req request.Request) {
	s.enqueue(delivery{
		event: notification.EventRequestDecided,
		run: func(ctx context.Context) {
			to, name := req.ApplicantEmail, req.ApplicantName
			if to == "" {
				applicant, err := s.users.GetByID(ctx, req.ApplicantID)
				if err != nil {
					slog.Error("failed to load applicant for notification", "request_id", req.ID, "error", err)
					s.recordEmail(notification.EventRequestDecided, err)
					return
				}
				to, name = applicant.Email, applicant.Name
			}

			data := email.RequestResultData{
				ApplicantName: name,
				RequestType:   req.Type.Label(),
				Title:         req.Title,
				Status:        string(req.Status),
				StatusLabel:   req.Status.Label(),
				DetailURL:     s.link("/requests/" + req.ID),
			}
			if req.ApproverName != nil {
				data.ApproverName = *req.ApproverName
			}
			if req.ApproverComment != nil {
				data.Comment = *req.ApproverComment
			}

			err := s.mailer.SendRequestResult(to, data)
			s.logDelivery(notification.EventRequestDecided, to, req.ID, err)
		},
	})
}

// GetSettings implements notification.Service.
func (s *service) GetSettings(ctx context.Context) (notification.SettingsResponse, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return notification.SettingsResponse{}, err
	}
	return notification.ToResponse(settings), nil
}

// UpdateSettings implements notification.Service. A new send time moves the
// daily-report job right away.
func (s *service) UpdateSettings(ctx context.Context, actor user.Actor, req notification.UpdateSettingsRequest) (notification.SettingsResponse, error) {
	if !actor.IsAdmin() {
		return notification.SettingsResponse{}, notification.ErrAdminOnly
	}
	if err := req.Validate(); err != nil {
		return notification.SettingsResponse{}, err
	}

	current, err := s.loadSettings(ctx)
	if err != nil {
		return notification.SettingsResponse{}, err
	}
	req.Apply(&current)

	updated, err := s.settings.Update(ctx, current)
	if err != nil {
		return notification.SettingsResponse{}, fmt.Errorf("failed to update notification settings: %w", err)
	}

	if s.scheduler != nil && req.SendTime != nil {
		spec, err := updated.DailyReportSpec()
		if err == nil {
			err = s.scheduler.Reschedule(cron.JobDailyReportReminder, spec)
		}
		if err != nil {
			slog.Error("failed to reschedule daily report reminder", "send_time", updated.SendTime, "error", err)
		}
	}

	slog.Info("notification settings updated", "updated_by", actor.ID, "send_time", updated.SendTime)
	return notification.ToResponse(updated), nil
}

func (s *service) loadSettings(ctx context.Context) (notification.Settings, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, notification.ErrSettingsNotFound) {
			return notification.DefaultSettings(), nil
		}
		return notification.Settings{}, fmt.Errorf("failed to get notification settings: %w", err)
	}
	return settings, nil
}

// SendDailyReportReminders implements notification.Service.
func (s *service) SendDailyReportReminders(ctx context.Context, force bool) (result notification.ReminderResult, err error) {
	defer func() { s.recordSweep("daily_report", err) }()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return notification.ReminderResult{}, err
	}

	today := s.now().In(s.config.Location)
	if !force {
		if !settings.DailyReportReminderEnabled {
			return notification.ReminderResult{Skipped: true, Reason: "daily report reminder is disabled"}, nil
		}
		if settings.SkipsDay(today) {
			return notification.ReminderResult{Skipped: true, Reason: "weekend"}, nil
		}
	}

	users, err := s.users.ListActiveByRoles(ctx, settings.TargetRoles)
	if err != nil {
		return notification.ReminderResult{}, fmt.Errorf("failed to list reminder targets: %w", err)
	}
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	reported, err := s.reports.UserIDsReportedOn(ctx, date)
	if err != nil {
		return notification.ReminderResult{}, fmt.Errorf("failed to load daily reports: %w", err)
	}

	var targets []user.User
	for _, u := range users {
		if !reported[u.ID] {
			targets = append(targets, u)
		}
	}

	sent, failed := s.fanOut(ctx, len(targets), func(i int) error {
		u := targets[i]
		err := s.mailer.SendDailyReportReminder(u.Email, email.DailyReportReminderData{
			UserName:  u.Name,
			Date:      today.Format("2006年01月02日"),
			ReportURL: s.link("/daily-reports/new"),
		})
		s.logDelivery(notification.EventDailyReportReminder, u.Email, "", err)
		return err
	})

	return notification.ReminderResult{Targets: len(targets), Sent: sent, Failed: failed}, nil
}

// SendApprovalReminders implements notification.Service. Each approver gets
// one digest of the requests that have waited too long, minus their own.
func (s *service) SendApprovalReminders(ctx context.Context) (result notification.ReminderResult, err error) {
	defer func() { s.recordSweep("approval", err) }()

	settings, err := s.loadSettings(ctx)
	if err != nil {
		return notification.ReminderResult{}, err
	}
	if !settings.ApprovalReminderEnabled {
		return notification.ReminderResult{Skipped: true, Reason: "approval reminder is disabled"}, nil
	}

	applied := request.StatusApplied
	pending, _, err := s.requests.List(ctx, request.ListFilter{Status: &applied})
	if err != nil {
		return notification.ReminderResult{}, fmt.Errorf("failed to list pending requests: %w", err)
	}

	now := s.now()
	threshold := time.Duration(settings.ApprovalReminderDays) * 24 * time.Hour
	var stale []request.Request
	for _, r := range pending {
		if r.AppliedAt != nil && now.Sub(*r.AppliedAt) >= threshold {
			stale = append(stale, r)
		}
	}
	if len(stale) == 0 {
		return notification.ReminderResult{}, nil
	}

	approvers, err := s.users.ListActiveByRoles(ctx, []user.Role{user.RoleApprover, user.RoleAdmin})
	if err != nil {
		return notification.ReminderResult{}, fmt.Errorf("failed to list approvers: %w", err)
	}

	type digest struct {
		to   user.User
		data email.ApprovalReminderData
	}
	var digests []digest
	for _, approver := range approvers {
		data := email.ApprovalReminderData{ApproverName: approver.Name, ApprovalsURL: s.link("/approvals")}
		for _, r := range stale {
			if r.ApplicantID == approver.ID {
				continue
			}
			data.Items = append(data.Items, email.PendingItem{
				ApplicantName: r.ApplicantName,
				RequestType:   r.Type.Label(),
				Title:         r.Title,
				AppliedAt:     s.formatTime(*r.AppliedAt),
				DaysPending:   int(now.Sub(*r.AppliedAt).Hours() / 24),
			})
		}
		if len(data.Items) > 0 {
			digests = append(digests, digest{to: approver, data: data})
		}
	}

	sent, failed := s.fanOut(ctx, len(digests), func(i int) error {
		err := s.mailer.SendApprovalReminder(digests[i].to.Email, digests[i].data)
		s.logDelivery(notification.EventApprovalReminder, digests[i].to.Email, "", err)
		return err
	})

	return notification.ReminderResult{Targets: len(digests), Sent: sent, Failed: failed}, nil
}

// fanOut runs send for 0..n-1 with bounded parallelism and counts outcomes.
// A failed send never stops the others.
func (s *service) fanOut(ctx context.Context, n int, send func(i int) error) (sent, failed int) {
	var ok, ko atomic.Int64
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.config.SendLimit)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := send(i); err != nil {
				ko.Add(1)
			} else {
				ok.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load()), int(ko.Load())
}

func (s *service) logDelivery(event notification.EventType, to, requestID string, err error) {
	s.recordEmail(event, err)
	if err != nil {
		slog.Error("failed to send email", "event", event, "to", to, "request_id", requestID, "error", err)
		return
	}
	slog.Debug("email sent", "event", event, "to", to, "request_id", requestID)
}

func (s *service) recordEmail(event notification.EventType, err error) {
	if s.recorder != nil {
		s.recorder.Email(string(event), err)
	}
}

func (s *service) recordSweep(kind string, err error) {
	if s.recorder != nil {
		s.recorder.ReminderSweep(kind, err)
	}
}

func (s *service) link(path string) string {
	return s.config.BaseURL + path
}

func (s *service) formatTime(t time.Time) string {
	return t.In(s.config.Location).Format("2006/01/02 15:04")
}
