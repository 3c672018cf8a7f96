package dailyreport

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrReportNotFound = apperror.NotFound("daily report not found")
	ErrReportExists   = apperror.Conflict("a daily report already exists for this date")
	ErrAccessDenied   = apperror.Authorization("you do not have access to this daily report")
	ErrNotOwner       = apperror.Authorization("only the author can edit this daily report")
)
