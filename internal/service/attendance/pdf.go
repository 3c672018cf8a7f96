package attendance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
	"github.com/shopspring/decimal"
)

var (
	timesheetHeaders = []string{"日", "曜", "午前", "午後", "振替", "作業内容", "監督者", "早出", "残業"}
	timesheetWidths  = []float64{10, 10, 14, 14, 14, 66, 30, 16, 16}
	shiftSummary     = []string{"有", "代", "特", "病", "他", "◎"}
)

// TimesheetPDF implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) TimesheetPDF(ctx context.Context, actor user.Actor, userID string, q attendance.MonthQuery) (export.File, error) {
	sheet, err := a.Timesheet(ctx, actor, userID, q)
	if err != nil {
		return export.File{}, err
	}

	doc := export.NewDocument(a.fontPath, export.OrientationPortrait)
	doc.Title(fmt.Sprintf("勤務表 %d年%02d月", sheet.Year, sheet.Month))

	fields := []export.Field{{Label: "氏名", Value: sheet.User.Name}}
	if sheet.User.EmployeeID != nil {
		fields = append(fields, export.Field{Label: "社員番号", Value: *sheet.User.EmployeeID})
	}
	if sheet.User.Department != nil {
		fields = append(fields, export.Field{Label: "所属", Value: *sheet.User.Department})
	}
	doc.KeyValues(fields, 30)
	doc.Space(3)

	rows := make([][]string, 0, len(sheet.Records))
	for _, r := range sheet.Records {
		rows = append(rows, []string{
			strconv.Itoa(r.Day),
			r.Weekday,
			r.MorningStatus,
			r.AfternoonStatus,
			r.Substitute,
			r.WorkContent,
			r.Supervisor,
			hours(r.EarlyHours),
			hours(r.OvertimeHours),
		})
	}
	doc.Table(timesheetHeaders, timesheetWidths, rows, 8)

	s := sheet.Summary
	doc.Section("集計")
	doc.KeyValues([]export.Field{
		{Label: "出勤日数", Value: s.TotalWorkDays.String()},
		{Label: "振替出勤", Value: strconv.Itoa(s.SubstituteWorkDays)},
		{Label: "休日出勤", Value: strconv.Itoa(s.HolidayWorkDays)},
		{Label: "有給休暇", Value: s.PaidLeaveDays.String()},
		{Label: "代休", Value: s.CompensatoryLeaveDays.String()},
		{Label: "特別休暇", Value: s.SpecialLeaveDays.String()},
		{Label: "病気休暇", Value: s.SickLeaveDays.String()},
		{Label: "その他休暇", Value: s.OtherLeaveDays.String()},
		{Label: "欠勤", Value: strconv.Itoa(s.AbsenceDays)},
		{Label: "早出時間", Value: s.TotalEarlyHours.StringFixed(1)},
		{Label: "残業時間", Value: s.TotalOvertimeHours.StringFixed(1)},
		{Label: "総労働時間", Value: s.TotalWorkHours.StringFixed(1)},
	}, 40)

	data, err := doc.Bytes()
	if err != nil {
		return export.File{}, fmt.Errorf("failed to render timesheet: %w", err)
	}

	return export.File{
		Name:        fmt.Sprintf("timesheet_%s_%04d_%02d.pdf", asciiName(sheet.User), sheet.Year, sheet.Month),
		UTF8Name:    fmt.Sprintf("timesheet_%s_%04d_%02d.pdf", sheet.User.Name, sheet.Year, sheet.Month),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, nil
}

// ShiftTablePDF implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ShiftTablePDF(ctx context.Context, actor user.Actor, q attendance.MonthQuery) (export.File, error) {
	table, err := a.ShiftTable(ctx, actor, q)
	if err != nil {
		return export.File{}, err
	}

	headers := []string{"氏名"}
	widths := []float64{28}
	for _, d := range table.Dates {
		headers = append(headers, strconv.Itoa(d.Day))
		widths = append(widths, 6)
	}
	for _, h := range shiftSummary {
		headers = append(headers, h)
		widths = append(widths, 6)
	}
	headers = append(headers, "有休残", "代休残")
	widths = append(widths, 11, 11)

	rows := make([][]string, 0, len(table.Employees))
	for _, e := range table.Employees {
		row := []string{e.Name}
		for _, d := range table.Dates {
			row = append(row, e.DailyStatus[d.Date])
		}
		row = append(row,
			e.Summary.PaidLeave.String(),
			e.Summary.CompensatoryLeave.String(),
			e.Summary.SpecialLeave.String(),
			e.Summary.SickLeave.String(),
			e.Summary.OtherLeave.String(),
			strconv.Itoa(e.Summary.HolidayWork),
			e.Balance.PaidLeave.String(),
			e.Balance.CompensatoryLeave.String(),
		)
		rows = append(rows, row)
	}

	doc := export.NewDocument(a.fontPath, export.OrientationLandscape)
	doc.Title(fmt.Sprintf("シフト表 %d年%02d月", table.Year, table.Month))
	doc.RightLine("有:有給 代:代休 特:特別休暇 病:病気休暇 他:その他 ◎:休日出勤")
	doc.Table(headers, widths, rows, 7)

	data, err := doc.Bytes()
	if err != nil {
		return export.File{}, fmt.Errorf("failed to render shift table: %w", err)
	}

	return export.File{
		Name:        fmt.Sprintf("shift_table_%04d_%02d.pdf", table.Year, table.Month),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, nil
}

func hours(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(1)
}

// asciiName is the filename-safe stand-in for a Japanese display name.
func asciiName(u attendance.TimesheetUser) string {
	if u.EmployeeID != nil && *u.EmployeeID != "" {
		return *u.EmployeeID
	}
	return u.ID
}
