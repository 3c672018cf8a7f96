package leave

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/shopspring/decimal"
)

// Category is a ledger bucket. Sick and other leave have no bucket.
type Category string

const (
	CategoryPaid         Category = "paid"
	CategoryCompensatory Category = "compensatory"
	CategorySpecial      Category = "special"
)

// CategoryFor maps a leave type to the bucket it debits.
func CategoryFor(t request.LeaveType) (Category, bool) {
	switch t {
	case request.LeaveTypePaid:
		return CategoryPaid, true
	case request.LeaveTypeCompensatory:
		return CategoryCompensatory, true
	case request.LeaveTypeSpecial:
		return CategorySpecial, true
	}
	return "", false
}

type Bucket struct {
	Total   decimal.Decimal
	Used    decimal.Decimal
	Balance decimal.Decimal
}

func (b *Bucket) recompute() {
	b.Balance = b.Total.Sub(b.Used)
}

// LeaveBalance is one user's ledger row for a fiscal year.
// Balance is always Total - Used for every bucket.
type LeaveBalance struct {
	UserID       string
	FiscalYear   int
	Paid         Bucket
	Compensatory Bucket
	Special      Bucket
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Zero is the projection returned when no row exists yet.
func Zero(userID string, fiscalYear int) LeaveBalance {
	return LeaveBalance{UserID: userID, FiscalYear: fiscalYear}
}

func (b *LeaveBalance) Bucket(c Category) *Bucket {
	switch c {
	case CategoryPaid:
		return &b.Paid
	case CategoryCompensatory:
		return &b.Compensatory
	case CategorySpecial:
		return &b.Special
	}
	return nil
}

func (b *LeaveBalance) Recompute() {
	b.Paid.recompute()
	b.Compensatory.recompute()
	b.Special.recompute()
}

// Use debits days from the bucket. The ledger is left untouched on error.
func (b *LeaveBalance) Use(c Category, days decimal.Decimal) error {
	bucket := b.Bucket(c)
	if bucket == nil {
		return ErrUnknownCategory
	}
	if !days.IsPositive() {
		return ErrInvalidDays
	}
	if bucket.Total.Sub(bucket.Used).Sub(days).IsNegative() {
		return ErrInsufficientBalance
	}
	bucket.Used = bucket.Used.Add(days)
	bucket.recompute()
	return nil
}

// SetTotal overwrites a bucket total. A total below what is already used is
// rejected so the balance can never go negative.
func (b *LeaveBalance) SetTotal(c Category, total decimal.Decimal) error {
	bucket := b.Bucket(c)
	if bucket == nil {
		return ErrUnknownCategory
	}
	if total.IsNegative() {
		return ErrNegativeTotal
	}
	if total.LessThan(bucket.Used) {
		return ErrTotalBelowUsed
	}
	bucket.Total = total
	bucket.recompute()
	return nil
}
