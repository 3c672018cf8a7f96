package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type attendanceSourceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceSourceRepository(db *database.DB) attendance.SourceRepository {
	return &attendanceSourceRepositoryImpl{db: db}
}

// LoadMonth implements attendance.SourceRepository. Only approved requests
// count towards attendance.
func (r *attendanceSourceRepositoryImpl) LoadMonth(ctx context.Context, userIDs []string, from, to time.Time) (attendance.MonthData, error) {
	q := GetQuerier(ctx, r.db)
	var data attendance.MonthData

	leaveRows, err := q.Query(ctx, `
		SELECT r.applicant_id, l.leave_type, l.start_date, l.end_date, l.start_duration, l.end_duration
		FROM leave_requests l
		JOIN requests r ON r.id = l.request_id
		WHERE r.status = 'approved' AND l.start_date <= $2 AND l.end_date >= $1
			AND ($3::uuid[] IS NULL OR r.applicant_id = ANY($3))
		ORDER BY l.start_date`, from, to, userIDs)
	if err != nil {
		return data, fmt.Errorf("failed to load approved leave: %w", err)
	}
	for leaveRows.Next() {
		var e attendance.LeaveEntry
		if err := leaveRows.Scan(&e.UserID, &e.LeaveType, &e.StartDate, &e.EndDate, &e.StartDuration, &e.EndDuration); err != nil {
			leaveRows.Close()
			return data, fmt.Errorf("failed to scan leave entry: %w", err)
		}
		data.Leaves = append(data.Leaves, e)
	}
	leaveRows.Close()
	if err := leaveRows.Err(); err != nil {
		return data, err
	}

	holidayRows, err := q.Query(ctx, `
		SELECT r.applicant_id, h.work_date, h.work_content, h.compensatory_leave_date
		FROM holiday_work_requests h
		JOIN requests r ON r.id = h.request_id
		WHERE r.status = 'approved' AND h.work_date BETWEEN $1 AND $2
			AND ($3::uuid[] IS NULL OR r.applicant_id = ANY($3))
		ORDER BY h.work_date`, from, to, userIDs)
	if err != nil {
		return data, fmt.Errorf("failed to load approved holiday work: %w", err)
	}
	for holidayRows.Next() {
		var e attendance.HolidayWorkEntry
		if err := holidayRows.Scan(&e.UserID, &e.WorkDate, &e.WorkContent, &e.CompensatoryLeaveDate); err != nil {
			holidayRows.Close()
			return data, fmt.Errorf("failed to scan holiday work entry: %w", err)
		}
		data.HolidayWork = append(data.HolidayWork, e)
	}
	holidayRows.Close()
	if err := holidayRows.Err(); err != nil {
		return data, err
	}

	overtimeRows, err := q.Query(ctx, `
		SELECT r.applicant_id, o.work_date, o.total_hours, o.work_content
		FROM overtime_requests o
		JOIN requests r ON r.id = o.request_id
		WHERE r.status = 'approved' AND o.work_date BETWEEN $1 AND $2
			AND ($3::uuid[] IS NULL OR r.applicant_id = ANY($3))
		ORDER BY o.work_date`, from, to, userIDs)
	if err != nil {
		return data, fmt.Errorf("failed to load approved overtime: %w", err)
	}
	for overtimeRows.Next() {
		var e attendance.OvertimeEntry
		if err := overtimeRows.Scan(&e.UserID, &e.WorkDate, &e.TotalHours, &e.WorkContent); err != nil {
			overtimeRows.Close()
			return data, fmt.Errorf("failed to scan overtime entry: %w", err)
		}
		data.Overtime = append(data.Overtime, e)
	}
	overtimeRows.Close()
	if err := overtimeRows.Err(); err != nil {
		return data, err
	}

	reportRows, err := q.Query(ctx, `
		SELECT user_id, report_date, site_name, work_content, early_start
		FROM construction_daily_reports
		WHERE report_date BETWEEN $1 AND $2
			AND ($3::uuid[] IS NULL OR user_id = ANY($3))
		ORDER BY report_date`, from, to, userIDs)
	if err != nil {
		return data, fmt.Errorf("failed to load daily reports: %w", err)
	}
	defer reportRows.Close()
	for reportRows.Next() {
		var e attendance.ReportEntry
		if err := reportRows.Scan(&e.UserID, &e.ReportDate, &e.SiteName, &e.WorkContent, &e.EarlyStart); err != nil {
			return data, fmt.Errorf("failed to scan daily report entry: %w", err)
		}
		data.Reports = append(data.Reports, e)
	}
	return data, reportRows.Err()
}
