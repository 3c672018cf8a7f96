package dashboard

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/user"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// GetStats returns the caller's request counts using goroutines
	GetStats(ctx context.Context, actor user.Actor) (StatsResponse, error)

	// GetAdminStats returns user and request counts across the organisation
	GetAdminStats(ctx context.Context, actor user.Actor) (AdminStatsResponse, error)
}
