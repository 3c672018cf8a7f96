package dashboard

import (
	"context"
	"fmt"

	"github.com/niwaya/kintai-backend/internal/domain/dashboard"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	users user.UserRepository
}

func NewDashboardService(repo dashboard.DashboardRepository, userRepo user.UserRepository) dashboard.DashboardService {
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		users:               userRepo,
	}
}

// GetStats returns the caller's own counts. The awaiting-decision count runs
// in parallel and only for approvers and admins.
func (s *DashboardServiceImpl) GetStats(ctx context.Context, actor user.Actor) (dashboard.StatsResponse, error) {
	var (
		byStatus map[request.Status]int64
		awaiting int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		applicantID := actor.ID
		counts, err := s.DashboardRepository.CountByStatus(gCtx, &applicantID)
		if err != nil {
			return fmt.Errorf("failed to count own requests: %w", err)
		}
		byStatus = counts
		return nil
	})

	if actor.CanApprove() {
		g.Go(func() error {
			n, err := s.DashboardRepository.CountAwaitingDecision(gCtx, actor.ID)
			if err != nil {
				return fmt.Errorf("failed to count pending approvals: %w", err)
			}
			awaiting = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dashboard.StatsResponse{}, err
	}

	stats := dashboard.StatsResponse{
		DraftRequests:      byStatus[request.StatusDraft],
		PendingRequests:    byStatus[request.StatusApplied],
		ApprovedRequests:   byStatus[request.StatusApproved],
		RejectedRequests:   byStatus[request.StatusRejected],
		ReturnedRequests:   byStatus[request.StatusReturned],
		MyPendingApprovals: awaiting,
	}
	for _, n := range byStatus {
		stats.TotalRequests += n
	}
	return stats, nil
}

// GetAdminStats runs the three counting queries concurrently.
func (s *DashboardServiceImpl) GetAdminStats(ctx context.Context, actor user.Actor) (dashboard.AdminStatsResponse, error) {
	if !actor.IsAdmin() {
		return dashboard.AdminStatsResponse{}, dashboard.ErrAdminOnly
	}

	var (
		users    user.UserStats
		byStatus map[request.Status]int64
		byType   map[request.Type]int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Users by role and activity
	g.Go(func() error {
		stats, err := s.users.CountByRole(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count users: %w", err)
		}
		users = stats
		return nil
	})

	// 2. Requests by status
	g.Go(func() error {
		counts, err := s.DashboardRepository.CountByStatus(gCtx, nil)
		if err != nil {
			return fmt.Errorf("failed to count requests by status: %w", err)
		}
		byStatus = counts
		return nil
	})

	// 3. Requests by type
	g.Go(func() error {
		counts, err := s.DashboardRepository.CountByType(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count requests by type: %w", err)
		}
		byType = counts
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.AdminStatsResponse{}, err
	}

	resp := dashboard.AdminStatsResponse{
		Users: users,
		Requests: dashboard.RequestStats{
			ByStatus: make(map[string]int64, len(byStatus)),
			ByType:   make(map[string]int64, len(byType)),
		},
	}
	for status, n := range byStatus {
		resp.Requests.ByStatus[string(status)] = n
		resp.Requests.Total += n
	}
	for typ, n := range byType {
		resp.Requests.ByType[string(typ)] = n
	}
	return resp, nil
}
