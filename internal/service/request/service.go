package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/domain/notification"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
	"github.com/niwaya/kintai-backend/internal/pkg/storage"
)

// TransitionRecorder counts workflow transitions by outcome.
type TransitionRecorder interface {
	Transition(action string, err error)
}

type RequestServiceImpl struct {
	tx database.Transactor
	request.RequestRepository
	attachments   request.AttachmentRepository
	balances      leave.BalanceService
	notifier      notification.Notifier
	files         storage.FileStorage
	maxUploadSize int64
	recorder      TransitionRecorder
	now           func() time.Time
}

func NewRequestService(
	tx database.Transactor,
	requestRepository request.RequestRepository,
	attachmentRepository request.AttachmentRepository,
	balanceService leave.BalanceService,
	notifier notification.Notifier,
	files storage.FileStorage,
	maxUploadSize int64,
	recorder TransitionRecorder,
) *RequestServiceImpl {
	return &RequestServiceImpl{
		tx:                tx,
		RequestRepository: requestRepository,
		attachments:       attachmentRepository,
		balances:          balanceService,
		notifier:          notifier,
		files:             files,
		maxUploadSize:     maxUploadSize,
		recorder:          recorder,
		now:               time.Now,
	}
}

// Create implements request.RequestService. The request starts in draft.
func (s *RequestServiceImpl) Create(ctx context.Context, actor user.Actor, payload request.Draftable) (request.RequestResponse, error) {
	if payload.RequestType() == request.TypeConstructionDaily {
		return request.RequestResponse{}, request.ErrReservedType
	}
	if err := payload.Validate(); err != nil {
		return request.RequestResponse{}, err
	}

	draft := payload.Draft(s.now())
	draft.ApplicantID = actor.ID

	var created request.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if draft.Settlement != nil {
			if err := s.prepareSettlement(ctx, actor, draft.Settlement); err != nil {
				return err
			}
		}

		inserted, err := s.RequestRepository.Create(ctx, draft)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		created, err = s.RequestRepository.GetByID(ctx, inserted.ID)
		if err != nil {
			return fmt.Errorf("failed to reload request: %w", err)
		}
		return nil
	})
	if err != nil {
		return request.RequestResponse{}, err
	}

	slog.Info("request created",
		"request_id", created.ID,
		"type", created.Type,
		"applicant_id", actor.ID,
	)
	return request.ToResponse(created), nil
}

// prepareSettlement checks the referenced advance and fills in the amounts
// derived from it.
func (s *RequestServiceImpl) prepareSettlement(ctx context.Context, actor user.Actor, detail *request.SettlementDetail) error {
	advance, err := s.RequestRepository.GetByIDForUpdate(ctx, detail.AdvanceRequestID)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			return request.ErrAdvanceNotFound
		}
		return fmt.Errorf("failed to get advance payment: %w", err)
	}

	if advance.ApplicantID != actor.ID || advance.Type != request.TypeExpense ||
		advance.Status != request.StatusApproved || advance.Expense == nil {
		return request.ErrAdvanceNotEligible
	}
	if advance.Expense.SettlementRequestID != nil {
		return request.ErrAdvanceAlreadySettled
	}

	detail.AdvancePaymentAmount = advance.Expense.RequestAmount
	detail.BalanceAmount = detail.AdvancePaymentAmount.Sub(detail.TotalAmount)
	return nil
}

// Get implements request.RequestService.
func (s *RequestServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (request.RequestResponse, error) {
	req, err := s.load(ctx, actor, id)
	if err != nil {
		return request.RequestResponse{}, err
	}

	req.Attachments, err = s.attachments.ListByRequest(ctx, req.ID)
	if err != nil {
		return request.RequestResponse{}, fmt.Errorf("failed to list attachments: %w", err)
	}
	return request.ToResponse(req), nil
}

// load fetches a request the actor may read.
func (s *RequestServiceImpl) load(ctx context.Context, actor user.Actor, id string) (request.Request, error) {
	req, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			return request.Request{}, err
		}
		return request.Request{}, fmt.Errorf("failed to get request: %w", err)
	}
	if req.ApplicantID != actor.ID && !actor.CanApprove() {
		return request.Request{}, request.ErrAccessDenied
	}
	return req, nil
}

// List implements request.RequestService. Regular users only ever see
// their own requests.
func (s *RequestServiceImpl) List(ctx context.Context, actor user.Actor, filter request.ListFilter) (request.ListRequestResponse, error) {
	if !actor.CanApprove() {
		filter.ApplicantID = &actor.ID
	}

	reqs, total, err := s.RequestRepository.List(ctx, filter)
	if err != nil {
		return request.ListRequestResponse{}, fmt.Errorf("failed to list requests: %w", err)
	}

	resp := request.ListRequestResponse{
		Requests: make([]request.RequestResponse, 0, len(reqs)),
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	for _, r := range reqs {
		resp.Requests = append(resp.Requests, request.ToResponse(r))
	}
	return resp, nil
}

// Cancel implements request.RequestService. Only the applicant can withdraw
// a request, and only while it is draft or returned.
func (s *RequestServiceImpl) Cancel(ctx context.Context, actor user.Actor, id string) error {
	var attachments []request.Attachment
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.RequestRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.ApplicantID != actor.ID {
			return request.ErrNotApplicant
		}
		if !request.Cancellable(req.Status) {
			return request.ErrNotCancellable
		}

		attachments, err = s.attachments.ListByRequest(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to list attachments: %w", err)
		}
		return s.RequestRepository.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	for _, a := range attachments {
		if err := s.files.Delete(ctx, a.StoragePath); err != nil && !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("failed to remove attachment file", "request_id", id, "path", a.StoragePath, "error", err)
		}
	}
	slog.Info("request cancelled", "request_id", id, "applicant_id", actor.ID)
	return nil
}

// Approvals implements request.RequestService. The queue holds every applied
// request the actor may decide, oldest first.
func (s *RequestServiceImpl) Approvals(ctx context.Context, actor user.Actor) (request.ApprovalsResponse, error) {
	if !actor.CanApprove() {
		return request.ApprovalsResponse{}, request.ErrApproverRequired
	}

	applied := request.StatusApplied
	reqs, _, err := s.RequestRepository.List(ctx, request.ListFilter{Status: &applied})
	if err != nil {
		return request.ApprovalsResponse{}, fmt.Errorf("failed to list pending requests: %w", err)
	}

	type pending struct {
		item      request.ApprovalItem
		appliedAt time.Time
	}

	now := s.now()
	queue := make([]pending, 0, len(reqs))
	for _, r := range reqs {
		if r.ApplicantID == actor.ID {
			continue
		}
		appliedAt := r.CreatedAt
		if r.AppliedAt != nil {
			appliedAt = *r.AppliedAt
		}
		queue = append(queue, pending{
			item: request.ApprovalItem{
				RequestResponse: request.ToResponse(r),
				Priority:        request.PriorityFor(appliedAt, now),
				DaysPending:     int(now.Sub(appliedAt).Hours() / 24),
			},
			appliedAt: appliedAt,
		})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if !queue[i].appliedAt.Equal(queue[j].appliedAt) {
			return queue[i].appliedAt.Before(queue[j].appliedAt)
		}
		return queue[i].item.ID < queue[j].item.ID
	})

	items := make([]request.ApprovalItem, len(queue))
	for i, p := range queue {
		items[i] = p.item
	}

	return request.ApprovalsResponse{Items: items, Total: len(items)}, nil
}
