package postgresql

import (
	"context"
	"fmt"

	"github.com/niwaya/kintai-backend/internal/domain/dashboard"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// CountByStatus implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountByStatus(ctx context.Context, applicantID *string) (map[request.Status]int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*)
		FROM requests
		WHERE ($1::uuid IS NULL OR applicant_id = $1)
		GROUP BY status
	`
	rows, err := q.Query(ctx, query, applicantID)
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

// CountByType implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountByType(ctx context.Context) (map[request.Type]int64, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT type, COUNT(*) FROM requests GROUP BY type`)
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

// CountAwaitingDecision implements dashboard.DashboardRepository.
func (r *dashboardRepositoryImpl) CountAwaitingDecision(ctx context.Context, excludeApplicantID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var n int64
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM requests WHERE status = 'applied' AND applicant_id <> $1`, excludeApplicantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending approvals: %w", err)
	}
	return n, nil
}
