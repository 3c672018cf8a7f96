package report

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/request"
)

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	// CountByStatus and CountByType count requests created within the period
	CountByStatus(ctx context.Context, period Period) (map[request.Status]int64, error)
	CountByType(ctx context.Context, period Period) (map[request.Type]int64, error)

	// CountByAppliedMonth groups requests created within the period by the month they were applied
	CountByAppliedMonth(ctx context.Context, period Period) ([]MonthlyCount, error)
}
