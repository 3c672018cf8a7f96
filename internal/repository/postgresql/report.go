package postgresql

import (
	"context"
	"fmt"

	"github.com/niwaya/kintai-backend/internal/domain/report"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// CountByStatus implements report.ReportRepository.
func (r *reportRepositoryImpl) CountByStatus(ctx context.Context, period report.Period) (map[request.Status]int64, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT status, COUNT(*) FROM requests
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status`, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[request.Status]int64)
	for rows.Next() {
		var status request.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// CountByType implements report.ReportRepository.
func (r *reportRepositoryImpl) CountByType(ctx context.Context, period report.Period) (map[request.Type]int64, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT type, COUNT(*) FROM requests
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY type`, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[request.Type]int64)
	for rows.Next() {
		var t request.Type
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

// CountByAppliedMonth implements report.ReportRepository. Drafts that were
// never applied are left out.
func (r *reportRepositoryImpl) CountByAppliedMonth(ctx context.Context, period report.Period) ([]report.MonthlyCount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT to_char(date_trunc('month', applied_at), 'YYYY-MM') AS month, COUNT(*)
		FROM requests
		WHERE created_at >= $1 AND created_at < $2 AND applied_at IS NOT NULL
		GROUP BY month
		ORDER BY month`, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by month: %w", err)
	}
	defer rows.Close()

	months := []report.MonthlyCount{}
	for rows.Next() {
		var m report.MonthlyCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, rows.Err()
}
