package cron

import (
	"context"
	"log/slog"

	"github.com/niwaya/kintai-backend/internal/domain/notification"
)

// ReminderJobs wires the notification sweeps into the scheduler.
type ReminderJobs struct {
	notificationSvc notification.Service
	approvalSpec    string
}

func NewReminderJobs(notificationSvc notification.Service, approvalSpec string) *ReminderJobs {
	return &ReminderJobs{
		notificationSvc: notificationSvc,
		approvalSpec:    approvalSpec,
	}
}

// RegisterJobs schedules the daily-report sweep from the stored send time,
// falling back to fallbackSpec when the settings cannot be read.
func (j *ReminderJobs) RegisterJobs(ctx context.Context, scheduler *Scheduler, fallbackSpec string) error {
	spec := fallbackSpec
	if settings, err := j.notificationSvc.GetSettings(ctx); err != nil {
		slog.Warn("Cron: could not load notification settings, using default reminder time", "error", err)
	} else if settingsSpec, err := (notification.Settings{SendTime: settings.SendTime}).DailyReportSpec(); err == nil {
		spec = settingsSpec
	}

	if err := scheduler.AddJob(JobDailyReportReminder, spec, j.DailyReportReminder); err != nil {
		return err
	}
	return scheduler.AddJob(JobApprovalReminder, j.approvalSpec, j.ApprovalReminder)
}

func (j *ReminderJobs) DailyReportReminder(ctx context.Context) error {
	result, err := j.notificationSvc.SendDailyReportReminders(ctx, false)
	if err != nil {
		return err
	}
	slog.Info("Cron: daily report reminder finished",
		"targets", result.Targets,
		"sent", result.Sent,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"reason", result.Reason,
	)
	return nil
}

func (j *ReminderJobs) ApprovalReminder(ctx context.Context) error {
	result, err := j.notificationSvc.SendApprovalReminders(ctx)
	if err != nil {
		return err
	}
	slog.Info("Cron: approval reminder finished", "targets", result.Targets, "sent", result.Sent, "failed", result.Failed)
	return nil
}
