package notification

import (
	"fmt"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

// EventType names what an outgoing email is about.
type EventType string

const (
	EventApprovalRequested   EventType = "approval_requested"
	EventRequestDecided      EventType = "request_decided"
	EventDailyReportReminder EventType = "daily_report_reminder"
	EventApprovalReminder    EventType = "approval_reminder"
)

// Settings is the singleton reminder configuration.
type Settings struct {
	DailyReportReminderEnabled bool
	SendTime                   string
	TargetRoles                []user.Role
	SkipWeekends               bool
	// SkipHolidays is stored for the admin screen. No holiday calendar is
	// consulted yet, so only weekends are skipped.
	SkipHolidays            bool
	ApprovalReminderEnabled bool
	ApprovalReminderDays    int
	UpdatedAt               time.Time
}

func DefaultSettings() Settings {
	return Settings{
		DailyReportReminderEnabled: true,
		SendTime:                   "18:00",
		TargetRoles:                []user.Role{user.RoleUser, user.RoleAdmin},
		SkipWeekends:               true,
		SkipHolidays:               true,
		ApprovalReminderEnabled:    true,
		ApprovalReminderDays:       3,
	}
}

// DailyReportSpec converts SendTime into a daily cron spec.
func (s Settings) DailyReportSpec() (string, error) {
	minutes, err := validator.ClockMinutes(s.SendTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d * * *", minutes%60, minutes/60), nil
}

// SkipsDay reports whether the daily-report sweep should stay quiet on day.
func (s Settings) SkipsDay(day time.Time) bool {
	if !s.SkipWeekends {
		return false
	}
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (s Settings) Targets(role user.Role) bool {
	for _, r := range s.TargetRoles {
		if r == role {
			return true
		}
	}
	return false
}
