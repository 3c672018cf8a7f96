package attendance

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
)

type AttendanceService interface {
	Timesheet(ctx context.Context, actor user.Actor, userID string, q MonthQuery) (Timesheet, error)
	ShiftTable(ctx context.Context, actor user.Actor, q MonthQuery) (ShiftTable, error)
	TimesheetPDF(ctx context.Context, actor user.Actor, userID string, q MonthQuery) (export.File, error)
	ShiftTablePDF(ctx context.Context, actor user.Actor, q MonthQuery) (export.File, error)
}
