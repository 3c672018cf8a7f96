package notification

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrSettingsNotFound = apperror.NotFound("notification settings not found")
	ErrAdminOnly        = apperror.Authorization("notification settings are available to administrators only")
)
