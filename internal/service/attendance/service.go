package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/user"
)

var allRoles = []user.Role{user.RoleAdmin, user.RoleApprover, user.RoleUser}

type AttendanceServiceImpl struct {
	user.UserRepository
	attendance.SourceRepository
	balances leave.BalanceRepository
	fontPath string
}

func NewAttendanceService(userRepository user.UserRepository, sourceRepository attendance.SourceRepository, balanceRepository leave.BalanceRepository, fontPath string) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		UserRepository:   userRepository,
		SourceRepository: sourceRepository,
		balances:         balanceRepository,
		fontPath:         fontPath,
	}
}

// Timesheet implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Timesheet(ctx context.Context, actor user.Actor, userID string, q attendance.MonthQuery) (attendance.Timesheet, error) {
	if err := q.Validate(); err != nil {
		return attendance.Timesheet{}, err
	}
	if !actor.CanAccessUser(userID) {
		return attendance.Timesheet{}, attendance.ErrAccessDenied
	}

	u, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return attendance.Timesheet{}, attendance.ErrUserNotFound
		}
		return attendance.Timesheet{}, fmt.Errorf("failed to get user: %w", err)
	}

	from, to := q.Range()
	data, err := a.SourceRepository.LoadMonth(ctx, []string{userID}, from, to)
	if err != nil {
		return attendance.Timesheet{}, fmt.Errorf("failed to load attendance sources: %w", err)
	}

	return attendance.BuildTimesheet(u, q, data), nil
}

// ShiftTable implements attendance.AttendanceService. Every active user gets a row.
func (a *AttendanceServiceImpl) ShiftTable(ctx context.Context, actor user.Actor, q attendance.MonthQuery) (attendance.ShiftTable, error) {
	if err := q.Validate(); err != nil {
		return attendance.ShiftTable{}, err
	}
	if !actor.IsAdmin() {
		return attendance.ShiftTable{}, attendance.ErrAdminOnly
	}

	users, err := a.UserRepository.ListActiveByRoles(ctx, allRoles)
	if err != nil {
		return attendance.ShiftTable{}, fmt.Errorf("failed to list users: %w", err)
	}

	from, to := q.Range()
	data, err := a.SourceRepository.LoadMonth(ctx, nil, from, to)
	if err != nil {
		return attendance.ShiftTable{}, fmt.Errorf("failed to load attendance sources: %w", err)
	}

	rows, err := a.balances.ListByYear(ctx, q.Year)
	if err != nil {
		return attendance.ShiftTable{}, fmt.Errorf("failed to list leave balances: %w", err)
	}
	balances := make(map[string]leave.LeaveBalance, len(rows))
	for _, b := range rows {
		balances[b.UserID] = b
	}

	return attendance.BuildShiftTable(q, users, data, balances), nil
}
