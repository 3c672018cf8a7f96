package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type notificationSettingsRepositoryImpl struct {
	db *database.DB
}

func NewNotificationSettingsRepository(db *database.DB) notification.SettingsRepository {
	return &notificationSettingsRepositoryImpl{db: db}
}

const notificationSettingsColumns = `
	daily_report_reminder_enabled, send_time, target_roles, skip_weekends, skip_holidays,
	approval_reminder_enabled, approval_reminder_days, updated_at`

func scanNotificationSettings(row pgx.Row) (notification.Settings, error) {
	var s notification.Settings
	var roles []string
	err := row.Scan(
		&s.DailyReportReminderEnabled,
		&s.SendTime,
		&roles,
		&s.SkipWeekends,
		&s.SkipHolidays,
		&s.ApprovalReminderEnabled,
		&s.ApprovalReminderDays,
		&s.UpdatedAt,
	)
	if err != nil {
		return notification.Settings{}, err
	}
	s.TargetRoles = make([]user.Role, 0, len(roles))
	for _, r := range roles {
		s.TargetRoles = append(s.TargetRoles, user.Role(r))
	}
	return s, nil
}

// Get implements notification.SettingsRepository.
func (r *notificationSettingsRepositoryImpl) Get(ctx context.Context) (notification.Settings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanNotificationSettings(q.QueryRow(ctx, `SELECT `+notificationSettingsColumns+` FROM notification_settings WHERE id = 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Settings{}, notification.ErrSettingsNotFound
		}
		return notification.Settings{}, fmt.Errorf("failed to get notification settings: %w", err)
	}
	return s, nil
}

// Update implements notification.SettingsRepository. The singleton row is
// created when a fresh database lost it.
func (r *notificationSettingsRepositoryImpl) Update(ctx context.Context, s notification.Settings) (notification.Settings, error) {
	q := GetQuerier(ctx, r.db)

	roles := make([]string, 0, len(s.TargetRoles))
	for _, role := range s.TargetRoles {
		roles = append(roles, string(role))
	}

	query := `
		INSERT INTO notification_settings (
			id, daily_report_reminder_enabled, send_time, target_roles, skip_weekends, skip_holidays,
			approval_reminder_enabled, approval_reminder_days, updated_at
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			daily_report_reminder_enabled = EXCLUDED.daily_report_reminder_enabled,
			send_time = EXCLUDED.send_time,
			target_roles = EXCLUDED.target_roles,
			skip_weekends = EXCLUDED.skip_weekends,
			skip_holidays = EXCLUDED.skip_holidays,
			approval_reminder_enabled = EXCLUDED.approval_reminder_enabled,
			approval_reminder_days = EXCLUDED.approval_reminder_days,
			updated_at = NOW()
		RETURNING ` + notificationSettingsColumns

	updated, err := scanNotificationSettings(q.QueryRow(ctx, query,
		s.DailyReportReminderEnabled,
		s.SendTime,
		roles,
		s.SkipWeekends,
		s.SkipHolidays,
		s.ApprovalReminderEnabled,
		s.ApprovalReminderDays,
	))
	if err != nil {
		return notification.Settings{}, fmt.Errorf("failed to update notification settings: %w", err)
	}
	return updated, nil
}
