package dailyreport

import (
	"context"
	"time"
)

type ReportRepository interface {
	// Create returns ErrReportExists when the user already has a report for the date.
	Create(ctx context.Context, report Report) (Report, error)
	GetByID(ctx context.Context, id string) (Report, error)
	List(ctx context.Context, filter ListFilter) ([]Report, int64, error)
	Update(ctx context.Context, report Report) error
	Delete(ctx context.Context, id string) error
	// UserIDsReportedOn returns the users who logged a report for date.
	UserIDsReportedOn(ctx context.Context, date time.Time) (map[string]bool, error)
}
