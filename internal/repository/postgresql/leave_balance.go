package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	user_id, fiscal_year,
	paid_leave_total, paid_leave_used, paid_leave_balance,
	compensatory_leave_total, compensatory_leave_used, compensatory_leave_balance,
	special_leave_total, special_leave_used, special_leave_balance,
	created_at, updated_at`

func scanLeaveBalance(row pgx.Row) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.UserID, &b.FiscalYear,
		&b.Paid.Total, &b.Paid.Used, &b.Paid.Balance,
		&b.Compensatory.Total, &b.Compensatory.Used, &b.Compensatory.Balance,
		&b.Special.Total, &b.Special.Used, &b.Special.Balance,
		&b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, userID string, fiscalYear int) (leave.LeaveBalance, error) {
	return r.get(ctx, `SELECT `+leaveBalanceColumns+` FROM leave_balances WHERE user_id = $1 AND fiscal_year = $2`, userID, fiscalYear)
}

// GetForUpdate implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, userID string, fiscalYear int) (leave.LeaveBalance, error) {
	return r.get(ctx, `SELECT `+leaveBalanceColumns+` FROM leave_balances WHERE user_id = $1 AND fiscal_year = $2 FOR UPDATE`, userID, fiscalYear)
}

func (r *leaveBalanceRepositoryImpl) get(ctx context.Context, query, userID string, fiscalYear int) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanLeaveBalance(q.QueryRow(ctx, query, userID, fiscalYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to get leave balance for user %s year %d: %w", userID, fiscalYear, err)
	}
	return b, nil
}

// Upsert implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Upsert(ctx context.Context, b leave.LeaveBalance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			user_id, fiscal_year,
			paid_leave_total, paid_leave_used, paid_leave_balance,
			compensatory_leave_total, compensatory_leave_used, compensatory_leave_balance,
			special_leave_total, special_leave_used, special_leave_balance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, fiscal_year) DO UPDATE SET
			paid_leave_total = EXCLUDED.paid_leave_total,
			paid_leave_used = EXCLUDED.paid_leave_used,
			paid_leave_balance = EXCLUDED.paid_leave_balance,
			compensatory_leave_total = EXCLUDED.compensatory_leave_total,
			compensatory_leave_used = EXCLUDED.compensatory_leave_used,
			compensatory_leave_balance = EXCLUDED.compensatory_leave_balance,
			special_leave_total = EXCLUDED.special_leave_total,
			special_leave_used = EXCLUDED.special_leave_used,
			special_leave_balance = EXCLUDED.special_leave_balance,
			updated_at = NOW()
	`
	_, err := q.Exec(ctx, query,
		b.UserID, b.FiscalYear,
		b.Paid.Total, b.Paid.Used, b.Paid.Balance,
		b.Compensatory.Total, b.Compensatory.Used, b.Compensatory.Balance,
		b.Special.Total, b.Special.Used, b.Special.Balance,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert leave balance: %w", err)
	}
	return nil
}

// ListByYear implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByYear(ctx context.Context, fiscalYear int) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+leaveBalanceColumns+` FROM leave_balances WHERE fiscal_year = $1`, fiscalYear)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.LeaveBalance
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
