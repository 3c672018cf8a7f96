package postgresql_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/apperror"
	"github.com/niwaya/kintai-backend/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func leaveDraft(applicantID string) request.Request {
	return request.Request{
		Type:        request.TypeLeave,
		ApplicantID: applicantID,
		Status:      request.StatusDraft,
		Title:       "有給休暇申請",
		Leave: &request.LeaveDetail{
			LeaveType:     request.LeaveTypePaid,
			StartDate:     date(2025, 8, 1),
			EndDate:       date(2025, 8, 3),
			StartDuration: request.DurationFull,
			EndDuration:   request.DurationFull,
			Days:          decimal.NewFromInt(3),
			Reason:        "family trip",
		},
	}
}

func TestRequestRepository_CreateGetList(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)
	applicant := createTestUser(t, db, "applicant@example.com", user.RoleUser)

	created, err := repo.Create(ctx, leaveDraft(applicant.ID))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusDraft, got.Status)
	assert.Equal(t, applicant.Email, got.ApplicantEmail)
	require.NotNil(t, got.Leave)
	assert.True(t, decimal.NewFromInt(3).Equal(got.Leave.Days))

	reimb := request.Request{
		Type:        request.TypeReimbursement,
		ApplicantID: applicant.ID,
		Status:      request.StatusDraft,
		Title:       "立替金精算申請",
		Reimbursement: &request.ReimbursementDetail{
			SiteName:        "North yard",
			ApplicationDate: date(2025, 7, 20),
			TotalAmount:     decimal.NewFromInt(5000),
			Lines: []request.ExpenseLine{
				{LineNo: 1, Date: date(2025, 7, 18), Item: "gloves", TaxType: request.TaxTypeTaxIncluded, Amount: decimal.NewFromInt(2000)},
				{LineNo: 2, Date: date(2025, 7, 19), Item: "tape", TaxType: request.TaxTypeTaxable, Amount: decimal.NewFromInt(3000)},
			},
		},
	}
	_, err = repo.Create(ctx, reimb)
	require.NoError(t, err)

	list, total, err := repo.List(ctx, request.ListFilter{ApplicantID: &applicant.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, request.TypeReimbursement, list[0].Type)
	require.NotNil(t, list[0].Reimbursement)
	assert.Len(t, list[0].Reimbursement.Lines, 2)
}

func TestRequestRepository_ConditionalStatusUpdate(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)
	applicant := createTestUser(t, db, "applicant@example.com", user.RoleUser)
	approver := createTestUser(t, db, "approver@example.com", user.RoleApprover)

	created, err := repo.Create(ctx, leaveDraft(applicant.ID))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.UpdateStatus(ctx, request.StatusUpdate{
		ID: created.ID, From: request.StatusDraft, To: request.StatusApplied, At: now,
	}))

	err = repo.UpdateStatus(ctx, request.StatusUpdate{
		ID: created.ID, From: request.StatusDraft, To: request.StatusApplied, At: now,
	})
	assert.ErrorIs(t, err, request.ErrStatusChanged)

	comment := "ok"
	require.NoError(t, repo.UpdateStatus(ctx, request.StatusUpdate{
		ID: created.ID, From: request.StatusApplied, To: request.StatusApproved,
		ApproverID: &approver.ID, Comment: &comment, At: now,
	}))

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, got.Status)
	require.NotNil(t, got.ApproverName)
	assert.Equal(t, approver.Name, *got.ApproverName)
	assert.NotNil(t, got.AppliedAt)
	assert.NotNil(t, got.ApprovedAt)
}

func TestRequestRepository_LockSerializesApprovals(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)
	tx := postgresql.NewTransactor(db)
	applicant := createTestUser(t, db, "applicant@example.com", user.RoleUser)
	approver := createTestUser(t, db, "approver@example.com", user.RoleApprover)

	created, err := repo.Create(ctx, leaveDraft(applicant.ID))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, request.StatusUpdate{
		ID: created.ID, From: request.StatusDraft, To: request.StatusApplied, At: time.Now(),
	}))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = tx.WithinTransaction(ctx, func(ctx context.Context) error {
				locked, err := repo.GetByIDForUpdate(ctx, created.ID)
				if err != nil {
					return err
				}
				if locked.Status != request.StatusApplied {
					return request.ErrNotInAppliedState
				}
				return repo.UpdateStatus(ctx, request.StatusUpdate{
					ID: created.ID, From: request.StatusApplied, To: request.StatusApproved,
					ApproverID: &approver.ID, At: time.Now(),
				})
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.True(t, apperror.Is(err, apperror.KindValidation), err)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestRequestRepository_LinkSettlement(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)
	applicant := createTestUser(t, db, "applicant@example.com", user.RoleUser)

	advance, err := repo.Create(ctx, request.Request{
		Type:        request.TypeExpense,
		ApplicantID: applicant.ID,
		Status:      request.StatusDraft,
		Title:       "仮払申請",
		Expense: &request.ExpenseDetail{
			SiteName:        "North yard",
			ApplicationDate: date(2025, 7, 1),
			RequestAmount:   decimal.NewFromInt(30000),
			Purpose:         "materials",
		},
	})
	require.NoError(t, err)

	settlement, err := repo.Create(ctx, request.Request{
		Type:        request.TypeSettlement,
		ApplicantID: applicant.ID,
		Status:      request.StatusDraft,
		Title:       "仮払精算申請",
		Settlement: &request.SettlementDetail{
			AdvanceRequestID:     advance.ID,
			SettlementDate:       date(2025, 7, 31),
			ExpenseType:          "materials",
			AdvancePaymentAmount: decimal.NewFromInt(30000),
			TotalAmount:          decimal.NewFromInt(28000),
			BalanceAmount:        decimal.NewFromInt(2000),
			Lines: []request.ExpenseLine{
				{LineNo: 1, Date: date(2025, 7, 10), Item: "lumber", TaxType: request.TaxTypeTaxIncluded, Amount: decimal.NewFromInt(28000)},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetReceivedDate(ctx, advance.ID, date(2025, 7, 2)))
	require.NoError(t, repo.LinkSettlement(ctx, advance.ID, settlement.ID))
	assert.ErrorIs(t, repo.LinkSettlement(ctx, advance.ID, settlement.ID), request.ErrAdvanceAlreadySettled)

	got, err := repo.GetByID(ctx, advance.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Expense.SettlementRequestID)
	assert.Equal(t, settlement.ID, *got.Expense.SettlementRequestID)

	require.NoError(t, repo.Delete(ctx, settlement.ID))
	got, err = repo.GetByID(ctx, advance.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Expense.SettlementRequestID)
}

func TestLeaveBalanceRepository_Upsert(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(db)
	u := createTestUser(t, db, "leave@example.com", user.RoleUser)

	_, err := repo.Get(ctx, u.ID, 2025)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)

	b := leave.Zero(u.ID, 2025)
	require.NoError(t, b.SetTotal(leave.CategoryPaid, decimal.NewFromInt(10)))
	require.NoError(t, repo.Upsert(ctx, b))
	require.NoError(t, b.Use(leave.CategoryPaid, decimal.NewFromInt(3)))
	require.NoError(t, repo.Upsert(ctx, b))

	got, err := repo.Get(ctx, u.ID, 2025)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(got.Paid.Used))
	assert.True(t, decimal.NewFromInt(7).Equal(got.Paid.Balance))
}

func TestAttendanceSourceRepository_OnlyApproved(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewRequestRepository(db)
	u := createTestUser(t, db, "worker@example.com", user.RoleUser)
	approver := createTestUser(t, db, "approver@example.com", user.RoleApprover)

	approved, err := repo.Create(ctx, leaveDraft(u.ID))
	require.NoError(t, err)
	_, err = repo.Create(ctx, leaveDraft(u.ID))
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.UpdateStatus(ctx, request.StatusUpdate{ID: approved.ID, From: request.StatusDraft, To: request.StatusApplied, At: now}))
	require.NoError(t, repo.UpdateStatus(ctx, request.StatusUpdate{ID: approved.ID, From: request.StatusApplied, To: request.StatusApproved, ApproverID: &approver.ID, At: now}))

	data, err := postgresql.NewAttendanceSourceRepository(db).LoadMonth(ctx, []string{u.ID}, date(2025, 8, 1), date(2025, 8, 31))
	require.NoError(t, err)
	require.Len(t, data.Leaves, 1)
	assert.Equal(t, attendance.LeaveEntry{
		UserID:        u.ID,
		LeaveType:     request.LeaveTypePaid,
		StartDate:     date(2025, 8, 1),
		EndDate:       date(2025, 8, 3),
		StartDuration: request.DurationFull,
		EndDuration:   request.DurationFull,
	}, data.Leaves[0])
}
