package attendance

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrInvalidMonth = apperror.Validation("year or month is out of range")
	ErrAccessDenied = apperror.Authorization("you can only view your own timesheet")
	ErrAdminOnly    = apperror.Authorization("shift table is available to administrators only")
	ErrUserNotFound = apperror.NotFound("user not found")
)
