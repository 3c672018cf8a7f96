package attendance

import (
	"github.com/shopspring/decimal"
)

type DailyRecord struct {
	Date            string          `json:"date"`
	Day             int             `json:"day"`
	Weekday         string          `json:"weekday"`
	MorningStatus   string          `json:"morning_status"`
	AfternoonStatus string          `json:"afternoon_status"`
	Substitute      string          `json:"substitute,omitempty"`
	LeaveType       string          `json:"leave_type,omitempty"`
	WorkContent     string          `json:"work_content,omitempty"`
	Supervisor      string          `json:"supervisor,omitempty"`
	EarlyHours      decimal.Decimal `json:"early_hours"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	Worked          bool            `json:"worked"`
}

// TimesheetSummary counts days in halves: a half-day leave is 0.5 leave and,
// when the other half was reported, 0.5 worked.
type TimesheetSummary struct {
	TotalWorkDays         decimal.Decimal `json:"total_work_days"`
	SubstituteWorkDays    int             `json:"substitute_work_days"`
	HolidayWorkDays       int             `json:"holiday_work_days"`
	PaidLeaveDays         decimal.Decimal `json:"paid_leave_days"`
	CompensatoryLeaveDays decimal.Decimal `json:"compensatory_leave_days"`
	SpecialLeaveDays      decimal.Decimal `json:"special_leave_days"`
	SickLeaveDays         decimal.Decimal `json:"sick_leave_days"`
	OtherLeaveDays        decimal.Decimal `json:"other_leave_days"`
	AbsenceDays           int             `json:"absence_days"`
	TotalEarlyHours       decimal.Decimal `json:"total_early_hours"`
	TotalOvertimeHours    decimal.Decimal `json:"total_overtime_hours"`
	TotalWorkHours        decimal.Decimal `json:"total_work_hours"`
}

type TimesheetUser struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

type Timesheet struct {
	User    TimesheetUser    `json:"user"`
	Year    int              `json:"year"`
	Month   int              `json:"month"`
	Records []DailyRecord    `json:"records"`
	Summary TimesheetSummary `json:"summary"`
}

type DayHeader struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	Weekday string `json:"weekday"`
}

type ShiftSummary struct {
	PaidLeave         decimal.Decimal `json:"paid_leave"`
	CompensatoryLeave decimal.Decimal `json:"compensatory_leave"`
	SpecialLeave      decimal.Decimal `json:"special_leave"`
	SickLeave         decimal.Decimal `json:"sick_leave"`
	OtherLeave        decimal.Decimal `json:"other_leave"`
	HolidayWork       int             `json:"holiday_work"`
}

type ShiftBalance struct {
	PaidLeave         decimal.Decimal `json:"paid_leave"`
	CompensatoryLeave decimal.Decimal `json:"compensatory_leave"`
}

type ShiftRow struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name"`
	Department  *string           `json:"department,omitempty"`
	DailyStatus map[string]string `json:"daily_status"`
	Summary     ShiftSummary      `json:"summary"`
	Balance     ShiftBalance      `json:"balance"`
}

type ShiftTable struct {
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Dates     []DayHeader `json:"dates"`
	Employees []ShiftRow  `json:"employees"`
}

// MonthQuery is the {year}/{month} path pair.
type MonthQuery struct {
	Year  int
	Month int
}
