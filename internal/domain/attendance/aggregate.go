package attendance

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.RequireFromString("0.5")
)

func (q MonthQuery) Validate() error {
	if q.Year < 2000 || q.Year > 2100 || q.Month < 1 || q.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Range returns the first and last calendar date of the month.
func (q MonthQuery) Range() (time.Time, time.Time) {
	first := time.Date(q.Year, time.Month(q.Month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

func (q MonthQuery) dates() []time.Time {
	first, last := q.Range()
	var out []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// BuildTimesheet projects one user's month. For each date an approved leave
// wins over approved holiday work, which wins over a logged daily report.
// The result depends only on its inputs.
func BuildTimesheet(u user.User, q MonthQuery, data MonthData) Timesheet {
	reports := make(map[string]ReportEntry)
	for _, r := range data.Reports {
		reports[r.ReportDate.Format(dateLayout)] = r
	}
	holidayWork := make(map[string]HolidayWorkEntry)
	for _, hw := range data.HolidayWork {
		holidayWork[hw.WorkDate.Format(dateLayout)] = hw
	}
	overtime := make(map[string][]OvertimeEntry)
	for _, ot := range data.Overtime {
		key := ot.WorkDate.Format(dateLayout)
		overtime[key] = append(overtime[key], ot)
	}

	sheet := Timesheet{
		User: TimesheetUser{
			ID:         u.ID,
			Name:       u.Name,
			Department: u.Department,
			EmployeeID: u.EmployeeID,
		},
		Year:  q.Year,
		Month: q.Month,
		Summary: TimesheetSummary{
			TotalWorkDays:         decimal.Zero,
			PaidLeaveDays:         decimal.Zero,
			CompensatoryLeaveDays: decimal.Zero,
			SpecialLeaveDays:      decimal.Zero,
			SickLeaveDays:         decimal.Zero,
			OtherLeaveDays:        decimal.Zero,
			TotalEarlyHours:       decimal.Zero,
			TotalOvertimeHours:    decimal.Zero,
		},
	}
	s := &sheet.Summary

	for _, d := range q.dates() {
		key := d.Format(dateLayout)
		rec := DailyRecord{
			Date:          key,
			Day:           d.Day(),
			Weekday:       WeekdayLabel(d),
			EarlyHours:    decimal.Zero,
			OvertimeHours: decimal.Zero,
		}
		report, hasReport := reports[key]
		worked := decimal.Zero

		if lv, ok := leaveOn(data.Leaves, d); ok {
			mark := LeaveMark(lv.LeaveType)
			morning, afternoon := leaveHalves(lv, d)
			if morning {
				rec.MorningStatus = mark
			}
			if afternoon {
				rec.AfternoonStatus = mark
			}
			rec.LeaveType = string(lv.LeaveType)
			taken := leaveTaken(morning, afternoon)
			countLeave(s, lv.LeaveType, taken)

			// A report on a half-day leave covers the other half.
			if taken.LessThan(fullDay) && hasReport {
				if morning {
					rec.AfternoonStatus = MarkWorked
				} else {
					rec.MorningStatus = MarkWorked
				}
				rec.Worked = true
				worked = halfDay
				applyReport(&rec, u, report)
			}
		} else if hw, ok := holidayWork[key]; ok {
			rec.MorningStatus, rec.AfternoonStatus = MarkWorked, MarkWorked
			rec.Worked = true
			worked = fullDay
			if hw.CompensatoryLeaveDate != nil {
				rec.Substitute = MarkSubstitute
				s.SubstituteWorkDays++
			} else {
				s.HolidayWorkDays++
			}
			rec.WorkContent = hw.WorkContent
			if hasReport {
				applyReport(&rec, u, report)
			}
		} else if hasReport {
			rec.MorningStatus, rec.AfternoonStatus = MarkWorked, MarkWorked
			rec.Worked = true
			worked = fullDay
			applyReport(&rec, u, report)
		}

		for _, ot := range overtime[key] {
			rec.OvertimeHours = rec.OvertimeHours.Add(ot.TotalHours)
			if rec.WorkContent == "" {
				rec.WorkContent = ot.WorkContent
			}
		}

		s.TotalWorkDays = s.TotalWorkDays.Add(worked)
		s.TotalEarlyHours = s.TotalEarlyHours.Add(rec.EarlyHours)
		s.TotalOvertimeHours = s.TotalOvertimeHours.Add(rec.OvertimeHours)
		sheet.Records = append(sheet.Records, rec)
	}

	s.TotalWorkHours = s.TotalWorkDays.Mul(HoursPerWorkDay)
	return sheet
}

// BuildShiftTable projects every user's month into one-character codes.
// balances is keyed by user id; users without a ledger row show zero.
func BuildShiftTable(q MonthQuery, users []user.User, data MonthData, balances map[string]leave.LeaveBalance) ShiftTable {
	dates := q.dates()
	table := ShiftTable{Year: q.Year, Month: q.Month}
	for _, d := range dates {
		table.Dates = append(table.Dates, DayHeader{
			Date:    d.Format(dateLayout),
			Day:     d.Day(),
			Weekday: WeekdayLabel(d),
		})
	}

	for _, u := range users {
		own := data.ForUser(u.ID)
		holidayWork := make(map[string]bool)
		for _, hw := range own.HolidayWork {
			holidayWork[hw.WorkDate.Format(dateLayout)] = true
		}

		row := ShiftRow{
			UserID:      u.ID,
			Name:        u.Name,
			Department:  u.Department,
			DailyStatus: make(map[string]string, len(dates)),
			Summary: ShiftSummary{
				PaidLeave:         decimal.Zero,
				CompensatoryLeave: decimal.Zero,
				SpecialLeave:      decimal.Zero,
				SickLeave:         decimal.Zero,
				OtherLeave:        decimal.Zero,
			},
		}
		for _, d := range dates {
			key := d.Format(dateLayout)
			code := ""
			if lv, ok := leaveOn(own.Leaves, d); ok {
				code = ShiftCode(lv.LeaveType)
				taken := leaveTaken(leaveHalves(lv, d))
				switch lv.LeaveType {
				case request.LeaveTypePaid:
					row.Summary.PaidLeave = row.Summary.PaidLeave.Add(taken)
				case request.LeaveTypeCompensatory:
					row.Summary.CompensatoryLeave = row.Summary.CompensatoryLeave.Add(taken)
				case request.LeaveTypeSpecial:
					row.Summary.SpecialLeave = row.Summary.SpecialLeave.Add(taken)
				case request.LeaveTypeSick:
					row.Summary.SickLeave = row.Summary.SickLeave.Add(taken)
				default:
					row.Summary.OtherLeave = row.Summary.OtherLeave.Add(taken)
				}
			} else if holidayWork[key] {
				code = MarkHoliday
				row.Summary.HolidayWork++
			}
			row.DailyStatus[key] = code
		}

		balance, ok := balances[u.ID]
		if !ok {
			balance = leave.Zero(u.ID, q.Year)
		}
		row.Balance = ShiftBalance{
			PaidLeave:         balance.Paid.Balance,
			CompensatoryLeave: balance.Compensatory.Balance,
		}
		table.Employees = append(table.Employees, row)
	}

	return table
}

func applyReport(rec *DailyRecord, u user.User, report ReportEntry) {
	if report.WorkContent != "" {
		rec.WorkContent = report.WorkContent
	}
	rec.Supervisor = DefaultSupervisor(u)
	if report.EarlyStart != nil && *report.EarlyStart != "" {
		rec.EarlyHours = EarlyStartHours
	}
}

func countLeave(s *TimesheetSummary, t request.LeaveType, days decimal.Decimal) {
	switch t {
	case request.LeaveTypePaid:
		s.PaidLeaveDays = s.PaidLeaveDays.Add(days)
	case request.LeaveTypeCompensatory:
		s.CompensatoryLeaveDays = s.CompensatoryLeaveDays.Add(days)
	case request.LeaveTypeSpecial:
		s.SpecialLeaveDays = s.SpecialLeaveDays.Add(days)
	case request.LeaveTypeSick:
		s.SickLeaveDays = s.SickLeaveDays.Add(days)
	default:
		s.OtherLeaveDays = s.OtherLeaveDays.Add(days)
	}
}

// leaveTaken matches the ledger debit for one date: a full day or a half.
func leaveTaken(morning, afternoon bool) decimal.Decimal {
	if morning && afternoon {
		return fullDay
	}
	return halfDay
}

// leaveOn returns the first leave covering d.
func leaveOn(leaves []LeaveEntry, d time.Time) (LeaveEntry, bool) {
	for _, lv := range leaves {
		if !d.Before(dateOnly(lv.StartDate)) && !d.After(dateOnly(lv.EndDate)) {
			return lv, true
		}
	}
	return LeaveEntry{}, false
}

// leaveHalves reports which halves of d the leave takes. Boundary days with an
// am/pm duration take only that half.
func leaveHalves(lv LeaveEntry, d time.Time) (morning, afternoon bool) {
	duration := request.DurationFull
	start, end := dateOnly(lv.StartDate), dateOnly(lv.EndDate)
	switch {
	case start.Equal(end):
		duration = lv.StartDuration
		if duration == request.DurationFull || duration == "" {
			duration = lv.EndDuration
		}
	case d.Equal(start):
		duration = lv.StartDuration
	case d.Equal(end):
		duration = lv.EndDuration
	}

	switch duration {
	case request.DurationAM:
		return true, false
	case request.DurationPM:
		return false, true
	}
	return true, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
