package dashboard

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var ErrAdminOnly = apperror.Authorization("admin statistics are available to administrators only")
