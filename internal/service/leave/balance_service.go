package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
	"github.com/shopspring/decimal"
)

type BalanceServiceImpl struct {
	tx database.Transactor
	leave.BalanceRepository
	now func() time.Time
}

func NewBalanceService(tx database.Transactor, balanceRepository leave.BalanceRepository) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		tx:                tx,
		BalanceRepository: balanceRepository,
		now:               time.Now,
	}
}

// GetOrDefault implements leave.BalanceService. A missing row reads as a
// zeroed ledger and is not created.
func (s *BalanceServiceImpl) GetOrDefault(ctx context.Context, actor user.Actor, userID string, fiscalYear int) (leave.BalanceResponse, error) {
	if !actor.CanAccessUser(userID) && !actor.CanApprove() {
		return leave.BalanceResponse{}, leave.ErrAccessDenied
	}
	if fiscalYear == 0 {
		fiscalYear = s.now().Year()
	}

	balance, err := s.BalanceRepository.Get(ctx, userID, fiscalYear)
	if err != nil {
		if !errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.BalanceResponse{}, fmt.Errorf("failed to get leave balance: %w", err)
		}
		balance = leave.Zero(userID, fiscalYear)
	}

	return leave.ToResponse(balance), nil
}

// ApplyGrant implements leave.BalanceService.
func (s *BalanceServiceImpl) ApplyGrant(ctx context.Context, actor user.Actor, userID string, req leave.GrantRequest) (leave.BalanceResponse, error) {
	if !actor.IsAdmin() {
		return leave.BalanceResponse{}, user.ErrAdminPrivilegeRequired
	}
	if req.FiscalYear == 0 {
		req.FiscalYear = s.now().Year()
	}
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}

	var updated leave.LeaveBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.lockOrZero(ctx, userID, req.FiscalYear)
		if err != nil {
			return err
		}

		totals := map[leave.Category]*decimal.Decimal{
			leave.CategoryPaid:         req.PaidLeaveTotal,
			leave.CategoryCompensatory: req.CompensatoryLeaveTotal,
			leave.CategorySpecial:      req.SpecialLeaveTotal,
		}
		for category, total := range totals {
			if total == nil {
				continue
			}
			if err := balance.SetTotal(category, *total); err != nil {
				return err
			}
		}

		balance.UpdatedAt = s.now()
		if err := s.BalanceRepository.Upsert(ctx, balance); err != nil {
			return fmt.Errorf("failed to save leave balance: %w", err)
		}
		updated = balance
		return nil
	})
	if err != nil {
		return leave.BalanceResponse{}, err
	}

	slog.Info("leave balance granted",
		"user_id", userID,
		"fiscal_year", req.FiscalYear,
		"granted_by", actor.ID,
	)
	return leave.ToResponse(updated), nil
}

// CommitUsage implements leave.BalanceService. Leave types without a bucket
// are ignored.
func (s *BalanceServiceImpl) CommitUsage(ctx context.Context, userID string, fiscalYear int, leaveType request.LeaveType, days decimal.Decimal) error {
	category, ok := leave.CategoryFor(leaveType)
	if !ok {
		return nil
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.lockOrZero(ctx, userID, fiscalYear)
		if err != nil {
			return err
		}
		if err := balance.Use(category, days); err != nil {
			return err
		}
		balance.UpdatedAt = s.now()
		if err := s.BalanceRepository.Upsert(ctx, balance); err != nil {
			return fmt.Errorf("failed to save leave balance: %w", err)
		}
		return nil
	})
}

func (s *BalanceServiceImpl) lockOrZero(ctx context.Context, userID string, fiscalYear int) (leave.LeaveBalance, error) {
	balance, err := s.BalanceRepository.GetForUpdate(ctx, userID, fiscalYear)
	if err == nil {
		return balance, nil
	}
	if errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.Zero(userID, fiscalYear), nil
	}
	return leave.LeaveBalance{}, fmt.Errorf("failed to lock leave balance: %w", err)
}
