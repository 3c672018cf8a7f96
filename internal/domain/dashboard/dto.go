package dashboard

import "github.com/niwaya/kintai-backend/internal/domain/user"

// ========== USER DASHBOARD ==========

// StatsResponse is the caller's own request counts plus, for approvers and
// admins, how many requests wait for a decision.
type StatsResponse struct {
	TotalRequests      int64 `json:"total_requests"`
	DraftRequests      int64 `json:"draft_requests"`
	PendingRequests    int64 `json:"pending_requests"` // applied
	ApprovedRequests   int64 `json:"approved_requests"`
	RejectedRequests   int64 `json:"rejected_requests"`
	ReturnedRequests   int64 `json:"returned_requests"`
	MyPendingApprovals int64 `json:"my_pending_approvals"`
}

// ========== ADMIN DASHBOARD ==========

type RequestStats struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByType   map[string]int64 `json:"by_type"`
}

type AdminStatsResponse struct {
	Users    user.UserStats `json:"users"`
	Requests RequestStats   `json:"requests"`
}
