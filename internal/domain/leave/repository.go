package leave

import "context"

type BalanceRepository interface {
	// Get returns ErrBalanceNotFound when the user has no row for the year.
	Get(ctx context.Context, userID string, fiscalYear int) (LeaveBalance, error)
	GetForUpdate(ctx context.Context, userID string, fiscalYear int) (LeaveBalance, error)
	Upsert(ctx context.Context, balance LeaveBalance) error
	ListByYear(ctx context.Context, fiscalYear int) ([]LeaveBalance, error)
}
