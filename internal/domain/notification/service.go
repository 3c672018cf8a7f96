package notification

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
)

// Notifier is what the approval workflow calls after a transition commits.
// Implementations must not block on delivery and never report delivery failures.
type Notifier interface {
	ApprovalRequested(ctx context.Context, req request.Request)
	RequestDecided(ctx context.Context, req request.Request)
}

type Service interface {
	Notifier

	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, actor user.Actor, req UpdateSettingsRequest) (SettingsResponse, error)

	// SendDailyReportReminders runs the sweep. force ignores the enabled and weekend checks.
	SendDailyReportReminders(ctx context.Context, force bool) (ReminderResult, error)
	SendApprovalReminders(ctx context.Context) (ReminderResult, error)

	Stop()
}
