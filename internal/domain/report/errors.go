package report

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrUnsupportedFormat = apperror.Validation("format must be one of [pdf csv excel]")
	ErrReportAccess      = apperror.Authorization("reports are available to approvers and administrators only")
)
