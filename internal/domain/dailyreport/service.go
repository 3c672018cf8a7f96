package dailyreport

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
)

type ReportService interface {
	Create(ctx context.Context, actor user.Actor, req ReportRequest) (ReportResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (ReportResponse, error)
	List(ctx context.Context, actor user.Actor, filter ListFilter) (ListReportResponse, error)
	Update(ctx context.Context, actor user.Actor, id string, req ReportRequest) (ReportResponse, error)
	Delete(ctx context.Context, actor user.Actor, id string) error
	PDF(ctx context.Context, actor user.Actor, id string) (export.File, error)
}
