package report

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
)

// ReportService defines the interface for report generation
type ReportService interface {
	// ExportRequests renders the filtered request list. Non-admins only ever export their own requests.
	ExportRequests(ctx context.Context, actor user.Actor, filter request.ListFilter, format Format) (export.File, error)

	// Summary counts requests by status, type and applied month
	Summary(ctx context.Context, actor user.Actor, period Period) (SummaryReport, error)

	// SummaryPDF renders Summary as a PDF download
	SummaryPDF(ctx context.Context, actor user.Actor, period Period) (export.File, error)
}
