package attendance

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/shopspring/decimal"
)

var (
	// HoursPerWorkDay converts worked days into total_work_hours.
	HoursPerWorkDay = decimal.NewFromInt(8)
	// EarlyStartHours is credited on every report day with an early start.
	EarlyStartHours = decimal.NewFromInt(1)
)

// DefaultSupervisor is who signs off a report day. Reports carry no
// supervisor of their own, so the worker is recorded.
func DefaultSupervisor(u user.User) string {
	return u.Name
}

// Attendance marks written to the morning/afternoon columns.
const (
	MarkWorked     = "○"
	MarkSubstitute = "振替出"
	MarkHoliday    = "◎"
)

var weekdayLabels = [...]string{"日", "月", "火", "水", "木", "金", "土"}

func WeekdayLabel(t time.Time) string {
	return weekdayLabels[t.Weekday()]
}

// LeaveMark is the timesheet label for an approved leave.
func LeaveMark(t request.LeaveType) string {
	switch t {
	case request.LeaveTypePaid:
		return "有給"
	case request.LeaveTypeCompensatory:
		return "代休"
	case request.LeaveTypeSpecial:
		return "特別休"
	case request.LeaveTypeSick:
		return "病休"
	}
	return "休"
}

// ShiftCode is the one-character shift table code for an approved leave.
func ShiftCode(t request.LeaveType) string {
	switch t {
	case request.LeaveTypePaid:
		return "有"
	case request.LeaveTypeCompensatory:
		return "代"
	case request.LeaveTypeSpecial:
		return "特"
	case request.LeaveTypeSick:
		return "病"
	}
	return "他"
}

// Source rows, all taken from approved requests or logged reports.

type LeaveEntry struct {
	UserID        string
	LeaveType     request.LeaveType
	StartDate     time.Time
	EndDate       time.Time
	StartDuration request.Duration
	EndDuration   request.Duration
}

type HolidayWorkEntry struct {
	UserID                string
	WorkDate              time.Time
	WorkContent           string
	CompensatoryLeaveDate *time.Time
}

type OvertimeEntry struct {
	UserID      string
	WorkDate    time.Time
	TotalHours  decimal.Decimal
	WorkContent string
}

type ReportEntry struct {
	UserID      string
	ReportDate  time.Time
	SiteName    string
	WorkContent string
	EarlyStart  *string
}

// MonthData is everything the aggregator reads for one month.
type MonthData struct {
	Leaves      []LeaveEntry
	HolidayWork []HolidayWorkEntry
	Overtime    []OvertimeEntry
	Reports     []ReportEntry
}

// ForUser narrows the data to a single user.
func (m MonthData) ForUser(userID string) MonthData {
	var out MonthData
	for _, e := range m.Leaves {
		if e.UserID == userID {
			out.Leaves = append(out.Leaves, e)
		}
	}
	for _, e := range m.HolidayWork {
		if e.UserID == userID {
			out.HolidayWork = append(out.HolidayWork, e)
		}
	}
	for _, e := range m.Overtime {
		if e.UserID == userID {
			out.Overtime = append(out.Overtime, e)
		}
	}
	for _, e := range m.Reports {
		if e.UserID == userID {
			out.Reports = append(out.Reports, e)
		}
	}
	return out
}
