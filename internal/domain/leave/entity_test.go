package leave

import (
	"testing"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func assertInvariant(t *testing.T, b LeaveBalance) {
	t.Helper()
	for _, c := range []Category{CategoryPaid, CategoryCompensatory, CategorySpecial} {
		bucket := b.Bucket(c)
		assert.True(t, bucket.Balance.Equal(bucket.Total.Sub(bucket.Used)), "%s balance drifted", c)
		assert.False(t, bucket.Balance.IsNegative(), "%s balance negative", c)
	}
}

func TestLeaveBalance_Use(t *testing.T) {
	b := Zero("u1", 2025)
	require.NoError(t, b.SetTotal(CategoryPaid, d(10)))

	require.NoError(t, b.Use(CategoryPaid, d(3)))
	assert.True(t, b.Paid.Used.Equal(d(3)))
	assert.True(t, b.Paid.Balance.Equal(d(7)))
	assertInvariant(t, b)

	err := b.Use(CategoryPaid, d(7.5))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.True(t, b.Paid.Used.Equal(d(3)), "failed debit must not change the ledger")
	assertInvariant(t, b)
}

func TestLeaveBalance_SetTotalBelowUsed(t *testing.T) {
	b := Zero("u1", 2025)
	require.NoError(t, b.SetTotal(CategorySpecial, d(5)))
	require.NoError(t, b.Use(CategorySpecial, d(2)))

	assert.ErrorIs(t, b.SetTotal(CategorySpecial, d(1.5)), ErrTotalBelowUsed)
	assert.ErrorIs(t, b.SetTotal(CategorySpecial, d(-1)), ErrNegativeTotal)
	require.NoError(t, b.SetTotal(CategorySpecial, d(2)))
	assert.True(t, b.Special.Balance.IsZero())
	assertInvariant(t, b)
}

func TestCategoryFor(t *testing.T) {
	c, ok := CategoryFor(request.LeaveTypeCompensatory)
	assert.True(t, ok)
	assert.Equal(t, CategoryCompensatory, c)

	_, ok = CategoryFor(request.LeaveTypeSick)
	assert.False(t, ok)
	_, ok = CategoryFor(request.LeaveTypeOther)
	assert.False(t, ok)
}

func TestGrantRequest_Validate(t *testing.T) {
	neg := d(-1)
	r := &GrantRequest{FiscalYear: 2025, PaidLeaveTotal: &neg}
	assert.Error(t, r.Validate())

	ok := d(20)
	r = &GrantRequest{FiscalYear: 2025, PaidLeaveTotal: &ok}
	assert.NoError(t, r.Validate())

	assert.Error(t, (&GrantRequest{FiscalYear: 2025}).Validate())
}
