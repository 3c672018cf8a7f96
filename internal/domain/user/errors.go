package user

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrUserNotFound            = apperror.NotFound("user not found")
	ErrUserEmailExists         = apperror.Conflict("email already registered")
	ErrEmployeeIDExists        = apperror.Conflict("employee id already registered")
	ErrUserInactive            = apperror.Authentication("user account is inactive")
	ErrAdminPrivilegeRequired  = apperror.Authorization("admin privilege required")
	ErrApproverAccessRequired  = apperror.Authorization("approver or admin access required")
	ErrInsufficientPermissions = apperror.Authorization("insufficient permissions")
	ErrCannotModifySelf        = apperror.Validation("cannot deactivate or delete your own account")
)
