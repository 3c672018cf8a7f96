package leave

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrBalanceNotFound     = apperror.NotFound("leave balance not found")
	ErrInsufficientBalance = apperror.Validation("insufficient leave balance")
	ErrNegativeTotal       = apperror.Validation("leave totals must not be negative")
	ErrTotalBelowUsed      = apperror.Validation("leave total must not be below the days already used")
	ErrInvalidDays         = apperror.Validation("leave days must be positive")
	ErrUnknownCategory     = apperror.Validation("leave type has no balance")
	ErrAccessDenied        = apperror.Authorization("you can only view your own leave balance")
)
