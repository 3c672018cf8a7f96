package notification

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

type SettingsResponse struct {
	DailyReportReminderEnabled bool     `json:"daily_report_reminder_enabled"`
	SendTime                   string   `json:"send_time"`
	TargetRoles                []string `json:"target_roles"`
	SkipWeekends               bool     `json:"skip_weekends"`
	SkipHolidays               bool     `json:"skip_holidays"`
	ApprovalReminderEnabled    bool     `json:"approval_reminder_enabled"`
	ApprovalReminderDays       int      `json:"approval_reminder_days"`
	UpdatedAt                  *string  `json:"updated_at,omitempty"`
}

func ToResponse(s Settings) SettingsResponse {
	roles := make([]string, 0, len(s.TargetRoles))
	for _, r := range s.TargetRoles {
		roles = append(roles, string(r))
	}
	resp := SettingsResponse{
		DailyReportReminderEnabled: s.DailyReportReminderEnabled,
		SendTime:                   s.SendTime,
		TargetRoles:                roles,
		SkipWeekends:               s.SkipWeekends,
		SkipHolidays:               s.SkipHolidays,
		ApprovalReminderEnabled:    s.ApprovalReminderEnabled,
		ApprovalReminderDays:       s.ApprovalReminderDays,
	}
	if !s.UpdatedAt.IsZero() {
		ts := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &ts
	}
	return resp
}

// UpdateSettingsRequest is a partial update; nil fields keep their value.
type UpdateSettingsRequest struct {
	DailyReportReminderEnabled *bool    `json:"daily_report_reminder_enabled,omitempty"`
	SendTime                   *string  `json:"send_time,omitempty"`
	TargetRoles                []string `json:"target_roles,omitempty"`
	SkipWeekends               *bool    `json:"skip_weekends,omitempty"`
	SkipHolidays               *bool    `json:"skip_holidays,omitempty"`
	ApprovalReminderEnabled    *bool    `json:"approval_reminder_enabled,omitempty"`
	ApprovalReminderDays       *int     `json:"approval_reminder_days,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.SendTime != nil && !validator.IsValidClock(*r.SendTime) {
		errs.Add("send_time", "send_time must be in HH:MM format")
	}
	if r.TargetRoles != nil {
		if len(r.TargetRoles) == 0 {
			errs.Add("target_roles", "target_roles must not be empty")
		}
		for _, role := range r.TargetRoles {
			if !user.Role(role).Valid() {
				errs.Add("target_roles", "target_roles must only contain [admin approver user]")
				break
			}
		}
	}
	if r.ApprovalReminderDays != nil && (*r.ApprovalReminderDays < 1 || *r.ApprovalReminderDays > 30) {
		errs.Add("approval_reminder_days", "approval_reminder_days must be between 1 and 30")
	}

	return errs.Err()
}

func (r *UpdateSettingsRequest) Apply(s *Settings) {
	if r.DailyReportReminderEnabled != nil {
		s.DailyReportReminderEnabled = *r.DailyReportReminderEnabled
	}
	if r.SendTime != nil {
		s.SendTime = *r.SendTime
	}
	if r.TargetRoles != nil {
		roles := make([]user.Role, 0, len(r.TargetRoles))
		for _, role := range r.TargetRoles {
			roles = append(roles, user.Role(role))
		}
		s.TargetRoles = roles
	}
	if r.SkipWeekends != nil {
		s.SkipWeekends = *r.SkipWeekends
	}
	if r.SkipHolidays != nil {
		s.SkipHolidays = *r.SkipHolidays
	}
	if r.ApprovalReminderEnabled != nil {
		s.ApprovalReminderEnabled = *r.ApprovalReminderEnabled
	}
	if r.ApprovalReminderDays != nil {
		s.ApprovalReminderDays = *r.ApprovalReminderDays
	}
}

// ReminderResult reports the outcome of one reminder sweep.
type ReminderResult struct {
	Targets int    `json:"targets"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}
