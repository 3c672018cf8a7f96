package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/apperror"
	"github.com/niwaya/kintai-backend/internal/pkg/storage"
	leavesvc "github.com/niwaya/kintai-backend/internal/service/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

// fakeTransactor serialises transactions, which is what the row lock on the
// request gives us in PostgreSQL.
type fakeTransactor struct{ mu sync.Mutex }

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

type fakeRequestRepo struct {
	mu   sync.Mutex
	seq  int
	rows map[string]request.Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{rows: map[string]request.Request{}}
}

func clone(r request.Request) request.Request {
	if r.Expense != nil {
		e := *r.Expense
		r.Expense = &e
	}
	return r
}

func (f *fakeRequestRepo) Create(_ context.Context, req request.Request) (request.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	req.ID = fmt.Sprintf("0192b3c4-0000-7000-8000-%012d", f.seq)
	req.CreatedAt = time.Date(2025, 7, 1, 0, 0, f.seq, 0, time.UTC)
	req.UpdatedAt = req.CreatedAt
	f.rows[req.ID] = clone(req)
	return clone(req), nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (request.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return request.Request{}, request.ErrRequestNotFound
	}
	return clone(r), nil
}

func (f *fakeRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (request.Request, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRequestRepo) List(_ context.Context, filter request.ListFilter) ([]request.Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request.Request
	for _, r := range f.rows {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.ApplicantID != nil && r.ApplicantID != *filter.ApplicantID {
			continue
		}
		out = append(out, clone(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, u request.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[u.ID]
	if !ok || r.Status != u.From {
		return request.ErrStatusChanged
	}
	at := u.At
	r.Status = u.To
	r.UpdatedAt = at
	switch u.To {
	case request.StatusApplied:
		r.AppliedAt = &at
	case request.StatusApproved:
		r.ApprovedAt = &at
	case request.StatusRejected:
		r.RejectedAt = &at
	case request.StatusReturned:
		r.ReturnedAt = &at
	}
	if u.To != request.StatusApplied {
		r.ApproverID = u.ApproverID
		r.ApproverComment = u.Comment
	}
	f.rows[u.ID] = r
	return nil
}

func (f *fakeRequestRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return request.ErrRequestNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRequestRepo) SetReceivedDate(_ context.Context, advanceID string, date time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[advanceID]
	if !ok || r.Expense == nil {
		return request.ErrAdvanceNotFound
	}
	r = clone(r)
	r.Expense.ReceivedDate = &date
	f.rows[advanceID] = r
	return nil
}

func (f *fakeRequestRepo) LinkSettlement(_ context.Context, advanceID, settlementID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[advanceID]
	if !ok || r.Expense == nil {
		return request.ErrAdvanceNotFound
	}
	if r.Expense.SettlementRequestID != nil {
		return request.ErrAdvanceAlreadySettled
	}
	r = clone(r)
	r.Expense.SettlementRequestID = &settlementID
	f.rows[advanceID] = r
	return nil
}

type fakeAttachmentRepo struct {
	mu   sync.Mutex
	rows []request.Attachment
}

func (f *fakeAttachmentRepo) Create(_ context.Context, a request.Attachment) (request.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.CreatedAt = time.Now()
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeAttachmentRepo) GetByID(_ context.Context, requestID, id string) (request.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.rows {
		if a.ID == id && a.RequestID == requestID {
			return a, nil
		}
	}
	return request.Attachment{}, request.ErrAttachmentNotFound
}

func (f *fakeAttachmentRepo) ListByRequest(_ context.Context, requestID string) ([]request.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []request.Attachment
	for _, a := range f.rows {
		if a.RequestID == requestID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeBalanceRepo struct {
	mu   sync.Mutex
	rows map[string]leave.LeaveBalance
}

func balanceKey(userID string, year int) string { return fmt.Sprintf("%s/%d", userID, year) }

func (f *fakeBalanceRepo) Get(_ context.Context, userID string, year int) (leave.LeaveBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[balanceKey(userID, year)]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (f *fakeBalanceRepo) GetForUpdate(ctx context.Context, userID string, year int) (leave.LeaveBalance, error) {
	return f.Get(ctx, userID, year)
}

func (f *fakeBalanceRepo) Upsert(_ context.Context, b leave.LeaveBalance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[balanceKey(b.UserID, b.FiscalYear)] = b
	return nil
}

func (f *fakeBalanceRepo) ListByYear(context.Context, int) ([]leave.LeaveBalance, error) {
	return nil, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	requested []string
	decided   []request.Status
}

func (n *recordingNotifier) ApprovalRequested(_ context.Context, req request.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requested = append(n.requested, req.ID)
}

func (n *recordingNotifier) RequestDecided(_ context.Context, req request.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, req.Status)
}

type countingRecorder struct {
	mu      sync.Mutex
	results map[string]int
}

func (c *countingRecorder) Transition(action string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.results[action+"/"+outcome]++
}

var (
	applicant = user.Actor{ID: "user-1", Role: user.RoleUser}
	colleague = user.Actor{ID: "user-2", Role: user.RoleUser}
	approver  = user.Actor{ID: "approver-1", Role: user.RoleApprover}
	admin     = user.Actor{ID: "admin-1", Role: user.RoleAdmin}
)

type fixture struct {
	svc         *RequestServiceImpl
	requests    *fakeRequestRepo
	attachments *fakeAttachmentRepo
	balances    *fakeBalanceRepo
	ledger      *leavesvc.BalanceServiceImpl
	notifier    *recordingNotifier
	recorder    *countingRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tx := &fakeTransactor{}
	requests := newFakeRequestRepo()
	attachments := &fakeAttachmentRepo{}
	balances := &fakeBalanceRepo{rows: map[string]leave.LeaveBalance{}}
	ledger := leavesvc.NewBalanceService(tx, balances)
	notifier := &recordingNotifier{}
	recorder := &countingRecorder{results: map[string]int{}}

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svc := NewRequestService(tx, requests, attachments, ledger, notifier, files, 1024, recorder)
	svc.now = func() time.Time { return time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC) }

	return &fixture{
		svc:         svc,
		requests:    requests,
		attachments: attachments,
		balances:    balances,
		ledger:      ledger,
		notifier:    notifier,
		recorder:    recorder,
	}
}

func (f *fixture) grantPaid(t *testing.T, userID string, total float64) {
	t.Helper()
	d := decimal.NewFromFloat(total)
	_, err := f.ledger.ApplyGrant(context.Background(), admin, userID, leave.GrantRequest{FiscalYear: 2025, PaidLeaveTotal: &d})
	require.NoError(t, err)
}

func (f *fixture) paidLeave(t *testing.T, actor user.Actor) request.RequestResponse {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), actor, &request.CreateLeaveRequest{
		LeaveType: "paid",
		StartDate: "2025-08-01",
		EndDate:   "2025-08-03",
		Reason:    "帰省",
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) submitted(t *testing.T, actor user.Actor) request.RequestResponse {
	t.Helper()
	created := f.paidLeave(t, actor)
	resp, err := f.svc.Submit(context.Background(), actor, created.ID)
	require.NoError(t, err)
	return resp
}

func (f *fixture) paidUsed(userID string) decimal.Decimal {
	b, err := f.balances.Get(context.Background(), userID, 2025)
	if err != nil {
		return decimal.Zero
	}
	return b.Paid.Used
}

func comment(s string) *string { return &s }

func TestCreate_StartsInDraft(t *testing.T) {
	f := newFixture(t)

	resp := f.paidLeave(t, applicant)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "有給休暇申請", resp.Title)
	assert.Equal(t, applicant.ID, resp.ApplicantID)
	require.NotNil(t, resp.Leave)
	assert.True(t, resp.Leave.Days.Equal(decimal.NewFromInt(3)))
}

func TestCreate_ValidationAndReservedType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, applicant, &request.CreateOvertimeRequest{})
	require.Error(t, err)
	assert.Empty(t, f.requests.rows)

	_, err = f.svc.Create(ctx, applicant, reservedPayload{})
	assert.ErrorIs(t, err, request.ErrReservedType)
}

type reservedPayload struct{}

func (reservedPayload) RequestType() request.Type       { return request.TypeConstructionDaily }
func (reservedPayload) Validate() error                 { return nil }
func (reservedPayload) Draft(time.Time) request.Request { return request.Request{} }

// Scenario A
func TestApprovePaidLeave_DebitsLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantPaid(t, applicant.ID, 10)

	req := f.submitted(t, applicant)
	assert.Equal(t, "applied", req.Status)
	assert.NotNil(t, req.AppliedAt)

	approved, err := f.svc.Approve(ctx, approver, req.ID, request.Decision{Comment: comment("OK")})
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, approver.ID, *approved.ApproverID)
	assert.Equal(t, "OK", *approved.ApproverComment)

	b, err := f.balances.Get(ctx, applicant.ID, 2025)
	require.NoError(t, err)
	assert.True(t, b.Paid.Used.Equal(decimal.NewFromInt(3)))
	assert.True(t, b.Paid.Balance.Equal(decimal.NewFromInt(7)))

	assert.Equal(t, []string{req.ID}, f.notifier.requested)
	assert.Equal(t, []request.Status{request.StatusApproved}, f.notifier.decided)
	assert.Equal(t, 1, f.recorder.results["approve/success"])
}

// Scenario B
func TestConcurrentApprovals_OneWins(t *testing.T) {
	f := newFixture(t)
	f.grantPaid(t, applicant.ID, 10)
	req := f.submitted(t, applicant)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []user.Actor{approver, admin} {
		wg.Add(1)
		go func(i int, actor user.Actor) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), actor, req.ID, request.Decision{})
		}(i, actor)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		assert.ErrorIs(t, err, request.ErrNotInAppliedState)
		assert.True(t, apperror.Is(err, apperror.KindValidation))
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.True(t, f.paidUsed(applicant.ID).Equal(decimal.NewFromInt(3)), "usage must be committed once")
}

// Scenario C
func TestGet_OtherUsersRequestDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.paidLeave(t, applicant)

	_, err := f.svc.Get(ctx, colleague, req.ID)
	assert.ErrorIs(t, err, request.ErrAccessDenied)
	assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))

	_, err = f.svc.Get(ctx, approver, req.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, applicant, "missing")
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

// Scenario E
func TestCancel_ApprovedRequestStays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantPaid(t, applicant.ID, 10)
	req := f.submitted(t, applicant)
	_, err := f.svc.Approve(ctx, approver, req.ID, request.Decision{})
	require.NoError(t, err)

	err = f.svc.Cancel(ctx, applicant, req.ID)
	assert.ErrorIs(t, err, request.ErrNotCancellable)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, stored.Status)
}

func TestCancel_Draft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.paidLeave(t, applicant)

	assert.ErrorIs(t, f.svc.Cancel(ctx, colleague, req.ID), request.ErrNotApplicant)
	require.NoError(t, f.svc.Cancel(ctx, applicant, req.ID))

	_, err := f.requests.GetByID(ctx, req.ID)
	assert.ErrorIs(t, err, request.ErrRequestNotFound)
}

func TestTerminalStatesNeverMoveBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantPaid(t, applicant.ID, 10)
	req := f.submitted(t, applicant)

	_, err := f.svc.Reject(ctx, approver, req.ID, request.Decision{Comment: comment("期間が長すぎます")})
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, admin, req.ID, request.Decision{})
	assert.ErrorIs(t, err, request.ErrNotInAppliedState)
	_, err = f.svc.Submit(ctx, applicant, req.ID)
	assert.ErrorIs(t, err, request.ErrNotSubmittable)
	_, err = f.svc.Return(ctx, approver, req.ID, request.Decision{Comment: comment("x")})
	assert.ErrorIs(t, err, request.ErrNotInAppliedState)

	assert.True(t, f.paidUsed(applicant.ID).IsZero(), "rejection must not touch the ledger")
	stored, _ := f.requests.GetByID(ctx, req.ID)
	assert.Equal(t, request.StatusRejected, stored.Status)
	assert.Equal(t, 3, f.recorder.results["approve/error"]+f.recorder.results["submit/error"]+f.recorder.results["return/error"])
}

func TestReturnAndResubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submitted(t, applicant)

	_, err := f.svc.Return(ctx, approver, req.ID, request.Decision{})
	assert.ErrorIs(t, err, request.ErrCommentRequired)

	returned, err := f.svc.Return(ctx, approver, req.ID, request.Decision{Comment: comment("引継ぎメモを追記してください")})
	require.NoError(t, err)
	assert.Equal(t, "returned", returned.Status)
	assert.NotNil(t, returned.ReturnedAt)

	resubmitted, err := f.svc.Submit(ctx, applicant, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "applied", resubmitted.Status)
	assert.Len(t, f.notifier.requested, 2)
}

func TestDecisionAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submitted(t, approver)

	_, err := f.svc.Approve(ctx, colleague, req.ID, request.Decision{})
	assert.ErrorIs(t, err, request.ErrApproverRequired)

	_, err = f.svc.Approve(ctx, approver, req.ID, request.Decision{})
	assert.ErrorIs(t, err, request.ErrSelfDecision)

	draft := f.paidLeave(t, applicant)
	_, err = f.svc.Submit(ctx, colleague, draft.ID)
	assert.ErrorIs(t, err, request.ErrNotApplicant)
}

func TestApprove_InsufficientBalanceLeavesRequestApplied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.grantPaid(t, applicant.ID, 2)
	req := f.submitted(t, applicant)

	_, err := f.svc.Approve(ctx, approver, req.ID, request.Decision{})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	stored, _ := f.requests.GetByID(ctx, req.ID)
	assert.Equal(t, request.StatusApplied, stored.Status)
	assert.Empty(t, f.notifier.decided)
}

func TestApproveExpense_SetsReceivedDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, applicant, &request.CreateExpenseRequest{
		SiteName:      "渋谷現場",
		RequestAmount: decimal.NewFromInt(50000),
		Purpose:       "資材購入",
	})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, applicant, created.ID)
	require.NoError(t, err)

	approved, err := f.svc.Approve(ctx, approver, created.ID, request.Decision{})
	require.NoError(t, err)
	require.NotNil(t, approved.Expense.ReceivedDate)
	assert.Equal(t, "2025-07-20", *approved.Expense.ReceivedDate)
}

func (f *fixture) approvedAdvance(t *testing.T, actor user.Actor) string {
	t.Helper()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, actor, &request.CreateExpenseRequest{
		SiteName:      "新宿現場",
		RequestAmount: decimal.NewFromInt(30000),
		Purpose:       "交通費",
	})
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, actor, created.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, admin, created.ID, request.Decision{})
	require.NoError(t, err)
	return created.ID
}

func settlementFor(advanceID string) *request.CreateSettlementRequest {
	return &request.CreateSettlementRequest{
		AdvanceRequestID: advanceID,
		ExpenseType:      "交通費",
		Lines: []request.ExpenseLineInput{
			{Date: "2025-07-18", Item: "電車代", Amount: decimal.NewFromInt(12000)},
			{Date: "2025-07-19", Item: "タクシー", Amount: decimal.NewFromInt(8000)},
		},
	}
}

func TestSettlement_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	advanceID := f.approvedAdvance(t, applicant)

	// the advance must belong to the applicant
	_, err := f.svc.Create(ctx, colleague, settlementFor(advanceID))
	assert.ErrorIs(t, err, request.ErrAdvanceNotEligible)

	created, err := f.svc.Create(ctx, applicant, settlementFor(advanceID))
	require.NoError(t, err)
	require.NotNil(t, created.Expense)
	assert.True(t, created.Expense.AdvancePaymentAmount.Equal(decimal.NewFromInt(30000)))
	assert.True(t, created.Expense.TotalAmount.Equal(decimal.NewFromInt(20000)))
	assert.True(t, created.Expense.BalanceAmount.Equal(decimal.NewFromInt(10000)))

	second, err := f.svc.Create(ctx, applicant, settlementFor(advanceID))
	require.NoError(t, err)

	for _, id := range []string{created.ID, second.ID} {
		_, err = f.svc.Submit(ctx, applicant, id)
		require.NoError(t, err)
	}
	_, err = f.svc.Approve(ctx, approver, created.ID, request.Decision{})
	require.NoError(t, err)

	advance, _ := f.requests.GetByID(ctx, advanceID)
	require.NotNil(t, advance.Expense.SettlementRequestID)
	assert.Equal(t, created.ID, *advance.Expense.SettlementRequestID)

	_, err = f.svc.Approve(ctx, approver, second.ID, request.Decision{})
	assert.ErrorIs(t, err, request.ErrAdvanceAlreadySettled)
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = f.svc.Create(ctx, applicant, settlementFor(advanceID))
	assert.ErrorIs(t, err, request.ErrAdvanceAlreadySettled)
}

func TestSettlement_UnknownAdvance(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), applicant, settlementFor("0192b3c4-0000-7000-8000-000000000099"))
	assert.ErrorIs(t, err, request.ErrAdvanceNotFound)
}

func TestList_ScopedForRegularUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.paidLeave(t, applicant)
	f.paidLeave(t, colleague)

	own, err := f.svc.List(ctx, applicant, request.ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, own.Total)
	assert.Equal(t, applicant.ID, own.Requests[0].ApplicantID)

	all, err := f.svc.List(ctx, admin, request.ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
}

func TestApprovals_PriorityAndOwnRequestsHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC)

	f.svc.now = func() time.Time { return base.Add(-5 * 24 * time.Hour) }
	old := f.submitted(t, applicant)
	f.svc.now = func() time.Time { return base.Add(-2 * time.Hour) }
	fresh := f.submitted(t, colleague)
	f.submitted(t, approver)
	f.svc.now = func() time.Time { return base }

	_, err := f.svc.Approvals(ctx, applicant)
	assert.ErrorIs(t, err, request.ErrApproverRequired)

	resp, err := f.svc.Approvals(ctx, approver)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, old.ID, resp.Items[0].ID)
	assert.Equal(t, request.PriorityHigh, resp.Items[0].Priority)
	assert.Equal(t, 5, resp.Items[0].DaysPending)
	assert.Equal(t, fresh.ID, resp.Items[1].ID)
	assert.Equal(t, request.PriorityLow, resp.Items[1].Priority)
}

func TestApprovals_SameDayOldestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 7, 20, 9, 0, 0, 0, time.UTC)

	f.svc.now = func() time.Time { return base.Add(-3 * time.Hour) }
	first := f.submitted(t, applicant)
	f.svc.now = func() time.Time { return base.Add(-2 * time.Hour) }
	second := f.submitted(t, colleague)
	f.svc.now = func() time.Time { return base.Add(-1 * time.Hour) }
	third := f.submitted(t, applicant)
	f.svc.now = func() time.Time { return base }

	resp, err := f.svc.Approvals(ctx, approver)
	require.NoError(t, err)
	require.Len(t, resp.Items, 3)
	for _, item := range resp.Items {
		assert.Equal(t, 0, item.DaysPending)
	}
	assert.Equal(t, first.ID, resp.Items[0].ID)
	assert.Equal(t, second.ID, resp.Items[1].ID)
	assert.Equal(t, third.ID, resp.Items[2].ID)
}

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.paidLeave(t, applicant)

	meta := request.UploadAttachmentRequest{FileName: "診断書.pdf", ContentType: "application/pdf", Size: 11}
	uploaded, err := f.svc.UploadAttachment(ctx, applicant, req.ID, meta, strings.NewReader("%PDF-1.4..."))
	require.NoError(t, err)
	assert.Equal(t, "診断書.pdf", uploaded.FileName)
	assert.EqualValues(t, 11, uploaded.Size)

	got, err := f.svc.Get(ctx, applicant, req.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attachments, 1)

	attachment, body, err := f.svc.OpenAttachment(ctx, approver, req.ID, uploaded.ID)
	require.NoError(t, err)
	defer body.Close()
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4...", string(content))
	assert.Equal(t, "application/pdf", attachment.ContentType)

	_, _, err = f.svc.OpenAttachment(ctx, colleague, req.ID, uploaded.ID)
	assert.ErrorIs(t, err, request.ErrAccessDenied)
}

func TestUploadAttachment_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.paidLeave(t, applicant)

	_, err := f.svc.UploadAttachment(ctx, applicant, req.ID,
		request.UploadAttachmentRequest{FileName: "run.exe", Size: 3}, strings.NewReader("MZ!"))
	assert.ErrorIs(t, err, request.ErrUnsupportedFileType)

	big := bytes.Repeat([]byte("a"), 2048)
	_, err = f.svc.UploadAttachment(ctx, applicant, req.ID,
		request.UploadAttachmentRequest{FileName: "big.txt"}, bytes.NewReader(big))
	assert.ErrorIs(t, err, request.ErrFileTooLarge)

	_, err = f.svc.UploadAttachment(ctx, colleague, req.ID,
		request.UploadAttachmentRequest{FileName: "memo.txt", Size: 2}, strings.NewReader("hi"))
	assert.ErrorIs(t, err, request.ErrNotApplicant)

	_, err = f.svc.Submit(ctx, applicant, req.ID)
	require.NoError(t, err)
	_, err = f.svc.UploadAttachment(ctx, applicant, req.ID,
		request.UploadAttachmentRequest{FileName: "memo.txt", Size: 2}, strings.NewReader("hi"))
	assert.ErrorIs(t, err, request.ErrNotEditable)

	assert.Empty(t, f.attachments.rows)
}
