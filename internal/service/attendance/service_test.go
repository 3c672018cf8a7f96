package attendance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	user.UserRepository
	users []user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) ListActiveByRoles(_ context.Context, _ []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSource struct {
	data     attendance.MonthData
	lastIDs  []string
	from, to time.Time
}

func (f *fakeSource) LoadMonth(_ context.Context, userIDs []string, from, to time.Time) (attendance.MonthData, error) {
	f.lastIDs, f.from, f.to = userIDs, from, to
	if userIDs == nil {
		return f.data, nil
	}
	return f.data.ForUser(userIDs[0]), nil
}

type fakeBalances struct {
	leave.BalanceRepository
	rows []leave.LeaveBalance
}

func (f *fakeBalances) ListByYear(_ context.Context, year int) ([]leave.LeaveBalance, error) {
	return f.rows, nil
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

var (
	sato   = user.User{ID: "u1", Name: "佐藤 一郎", Role: user.RoleUser, IsActive: true}
	suzuki = user.User{ID: "u2", Name: "鈴木 次郎", Role: user.RoleUser, IsActive: true}
	admin  = user.Actor{ID: "admin-1", Role: user.RoleAdmin}
	august = attendance.MonthQuery{Year: 2025, Month: 8}
)

func newAttendanceTest() (attendance.AttendanceService, *fakeSource) {
	compDate := date("2025-08-18")
	source := &fakeSource{data: attendance.MonthData{
		HolidayWork: []attendance.HolidayWorkEntry{
			{UserID: "u1", WorkDate: date("2025-08-10"), WorkContent: "足場解体", CompensatoryLeaveDate: &compDate},
		},
		Leaves: []attendance.LeaveEntry{
			{UserID: "u2", LeaveType: request.LeaveTypePaid, StartDate: date("2025-08-04"), EndDate: date("2025-08-05"),
				StartDuration: request.DurationFull, EndDuration: request.DurationFull},
		},
		Overtime: []attendance.OvertimeEntry{
			{UserID: "u1", WorkDate: date("2025-08-12"), TotalHours: decimal.NewFromFloat(2.5), WorkContent: "図面修正"},
		},
	}}
	balances := &fakeBalances{rows: []leave.LeaveBalance{{
		UserID: "u2", FiscalYear: 2025,
		Paid: leave.Bucket{Total: decimal.NewFromInt(10), Used: decimal.NewFromInt(2), Balance: decimal.NewFromInt(8)},
	}}}
	svc := NewAttendanceService(&fakeUsers{users: []user.User{sato, suzuki}}, source, balances, "")
	return svc, source
}

// Scenario D
func TestTimesheet_SubstituteHolidayWork(t *testing.T) {
	svc, source := newAttendanceTest()

	sheet, err := svc.Timesheet(context.Background(), user.Actor{ID: "u1", Role: user.RoleUser}, "u1", august)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, source.lastIDs)
	assert.Equal(t, date("2025-08-31"), source.to)

	require.Len(t, sheet.Records, 31)
	day10 := sheet.Records[9]
	assert.Equal(t, "2025-08-10", day10.Date)
	assert.Equal(t, "日", day10.Weekday)
	assert.Equal(t, attendance.MarkSubstitute, day10.Substitute)
	assert.Equal(t, 1, sheet.Summary.SubstituteWorkDays)
	assert.Equal(t, 0, sheet.Summary.HolidayWorkDays)
	assert.True(t, sheet.Summary.TotalOvertimeHours.Equal(decimal.NewFromFloat(2.5)))
	assert.True(t, sheet.Summary.TotalWorkHours.Equal(decimal.NewFromInt(8)))
}

func TestTimesheet_AccessAndValidation(t *testing.T) {
	svc, _ := newAttendanceTest()
	ctx := context.Background()

	_, err := svc.Timesheet(ctx, user.Actor{ID: "u2", Role: user.RoleUser}, "u1", august)
	assert.ErrorIs(t, err, attendance.ErrAccessDenied)

	_, err = svc.Timesheet(ctx, admin, "nobody", august)
	assert.ErrorIs(t, err, attendance.ErrUserNotFound)

	_, err = svc.Timesheet(ctx, admin, "u1", attendance.MonthQuery{Year: 2025, Month: 13})
	assert.ErrorIs(t, err, attendance.ErrInvalidMonth)
}

func TestTimesheet_Idempotent(t *testing.T) {
	svc, _ := newAttendanceTest()
	ctx := context.Background()

	first, err := svc.Timesheet(ctx, admin, "u1", august)
	require.NoError(t, err)
	second, err := svc.Timesheet(ctx, admin, "u1", august)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestShiftTable(t *testing.T) {
	svc, source := newAttendanceTest()
	ctx := context.Background()

	_, err := svc.ShiftTable(ctx, user.Actor{ID: "approver-1", Role: user.RoleApprover}, august)
	assert.ErrorIs(t, err, attendance.ErrAdminOnly)

	table, err := svc.ShiftTable(ctx, admin, august)
	require.NoError(t, err)
	assert.Nil(t, source.lastIDs, "the shift table loads every user")
	require.Len(t, table.Employees, 2)

	rows := map[string]attendance.ShiftRow{}
	for _, r := range table.Employees {
		rows[r.UserID] = r
	}
	assert.Equal(t, attendance.MarkHoliday, rows["u1"].DailyStatus["2025-08-10"])
	assert.Equal(t, "有", rows["u2"].DailyStatus["2025-08-04"])
	assert.True(t, rows["u2"].Summary.PaidLeave.Equal(decimal.NewFromInt(2)))
	assert.True(t, rows["u2"].Balance.PaidLeave.Equal(decimal.NewFromInt(8)))
	assert.True(t, rows["u1"].Balance.PaidLeave.IsZero())
}

func TestPDFs(t *testing.T) {
	svc, _ := newAttendanceTest()
	ctx := context.Background()

	file, err := svc.TimesheetPDF(ctx, admin, "u1", august)
	require.NoError(t, err)
	assert.Equal(t, "timesheet_u1_2025_08.pdf", file.Name)
	assert.Equal(t, "timesheet_佐藤 一郎_2025_08.pdf", file.UTF8Name)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	file, err = svc.ShiftTablePDF(ctx, admin, august)
	require.NoError(t, err)
	assert.Equal(t, "shift_table_2025_08.pdf", file.Name)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	_, err = svc.ShiftTablePDF(ctx, user.Actor{ID: "u1", Role: user.RoleUser}, august)
	assert.ErrorIs(t, err, attendance.ErrAdminOnly)
}
