package leave

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var halfDay = decimal.NewFromFloat(0.5)

// GrantRequest sets the yearly totals. Nil totals keep their current value.
type GrantRequest struct {
	FiscalYear             int              `json:"fiscal_year"`
	PaidLeaveTotal         *decimal.Decimal `json:"paid_leave_total,omitempty"`
	CompensatoryLeaveTotal *decimal.Decimal `json:"compensatory_leave_total,omitempty"`
	SpecialLeaveTotal      *decimal.Decimal `json:"special_leave_total,omitempty"`
}

func (r *GrantRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FiscalYear < 2000 || r.FiscalYear > 2100 {
		errs.Add("fiscal_year", "fiscal_year must be between 2000 and 2100")
	}
	check := func(field string, v *decimal.Decimal) {
		if v == nil {
			return
		}
		if v.IsNegative() {
			errs.Add(field, field+" must not be negative")
		} else if !v.Mod(halfDay).IsZero() {
			errs.Add(field, field+" must be a multiple of 0.5")
		}
	}
	check("paid_leave_total", r.PaidLeaveTotal)
	check("compensatory_leave_total", r.CompensatoryLeaveTotal)
	check("special_leave_total", r.SpecialLeaveTotal)

	if r.PaidLeaveTotal == nil && r.CompensatoryLeaveTotal == nil && r.SpecialLeaveTotal == nil {
		errs.Add("paid_leave_total", "at least one total is required")
	}

	return errs.Err()
}

type BalanceResponse struct {
	UserID                   string          `json:"user_id"`
	FiscalYear               int             `json:"fiscal_year"`
	PaidLeaveTotal           decimal.Decimal `json:"paid_leave_total"`
	PaidLeaveUsed            decimal.Decimal `json:"paid_leave_used"`
	PaidLeaveBalance         decimal.Decimal `json:"paid_leave_balance"`
	CompensatoryLeaveTotal   decimal.Decimal `json:"compensatory_leave_total"`
	CompensatoryLeaveUsed    decimal.Decimal `json:"compensatory_leave_used"`
	CompensatoryLeaveBalance decimal.Decimal `json:"compensatory_leave_balance"`
	SpecialLeaveTotal        decimal.Decimal `json:"special_leave_total"`
	SpecialLeaveUsed         decimal.Decimal `json:"special_leave_used"`
	SpecialLeaveBalance      decimal.Decimal `json:"special_leave_balance"`
	UpdatedAt                *string         `json:"updated_at,omitempty"`
}

func ToResponse(b LeaveBalance) BalanceResponse {
	resp := BalanceResponse{
		UserID:                   b.UserID,
		FiscalYear:               b.FiscalYear,
		PaidLeaveTotal:           b.Paid.Total,
		PaidLeaveUsed:            b.Paid.Used,
		PaidLeaveBalance:         b.Paid.Balance,
		CompensatoryLeaveTotal:   b.Compensatory.Total,
		CompensatoryLeaveUsed:    b.Compensatory.Used,
		CompensatoryLeaveBalance: b.Compensatory.Balance,
		SpecialLeaveTotal:        b.Special.Total,
		SpecialLeaveUsed:         b.Special.Used,
		SpecialLeaveBalance:      b.Special.Balance,
	}
	if !b.UpdatedAt.IsZero() {
		s := b.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &s
	}
	return resp
}
