package dashboard

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/request"
)

// DashboardRepository defines the interface for dashboard data access
type DashboardRepository interface {
	// CountByStatus counts requests per status, for one applicant when applicantID is set.
	CountByStatus(ctx context.Context, applicantID *string) (map[request.Status]int64, error)

	// CountByType counts requests per type across all applicants
	CountByType(ctx context.Context) (map[request.Type]int64, error)

	// CountAwaitingDecision counts applied requests not filed by the given user
	CountAwaitingDecision(ctx context.Context, excludeApplicantID string) (int64, error)
}
