package leave

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/shopspring/decimal"
)

type BalanceService interface {
	GetOrDefault(ctx context.Context, actor user.Actor, userID string, fiscalYear int) (BalanceResponse, error)
	ApplyGrant(ctx context.Context, actor user.Actor, userID string, req GrantRequest) (BalanceResponse, error)
	// CommitUsage must run inside the approval transaction.
	CommitUsage(ctx context.Context, userID string, fiscalYear int, leaveType request.LeaveType, days decimal.Decimal) error
}
