package request

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

// Submit implements request.RequestService.
func (s *RequestServiceImpl) Submit(ctx context.Context, actor user.Actor, id string) (request.RequestResponse, error) {
	return s.transition(ctx, actor, id, request.ActionSubmit, request.Decision{})
}

// Approve implements request.RequestService.
func (s *RequestServiceImpl) Approve(ctx context.Context, actor user.Actor, id string, decision request.Decision) (request.RequestResponse, error) {
	return s.transition(ctx, actor, id, request.ActionApprove, decision)
}

// Reject implements request.RequestService.
func (s *RequestServiceImpl) Reject(ctx context.Context, actor user.Actor, id string, decision request.Decision) (request.RequestResponse, error) {
	return s.transition(ctx, actor, id, request.ActionReject, decision)
}

// Return implements request.RequestService. A comment telling the applicant
// what to fix is mandatory.
func (s *RequestServiceImpl) Return(ctx context.Context, actor user.Actor, id string, decision request.Decision) (request.RequestResponse, error) {
	if decision.Comment == nil || validator.IsEmpty(*decision.Comment) {
		return request.RequestResponse{}, request.ErrCommentRequired
	}
	return s.transition(ctx, actor, id, request.ActionReturn, decision)
}

// transition locks the request, checks the move, applies the side effects
// and writes the new status in one transaction. Emails go out after commit.
func (s *RequestServiceImpl) transition(ctx context.Context, actor user.Actor, id string, action request.Action, decision request.Decision) (request.RequestResponse, error) {
	if action.RequiresApprover() && !actor.CanApprove() {
		s.record(action, request.ErrApproverRequired)
		return request.RequestResponse{}, request.ErrApproverRequired
	}

	var updated request.Request
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.RequestRepository.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if action.RequiresApprover() {
			if req.ApplicantID == actor.ID {
				return request.ErrSelfDecision
			}
		} else if req.ApplicantID != actor.ID {
			return request.ErrNotApplicant
		}

		to, err := request.Next(req.Status, action)
		if err != nil {
			return err
		}

		now := s.now()
		if action == request.ActionApprove {
			if err := s.applyApproval(ctx, req, decision, now); err != nil {
				return err
			}
		}

		update := request.StatusUpdate{ID: req.ID, From: req.Status, To: to, At: now}
		if action.RequiresApprover() {
			update.ApproverID = &actor.ID
			update.Comment = decision.Comment
		}
		if err := s.RequestRepository.UpdateStatus(ctx, update); err != nil {
			return err
		}

		updated, err = s.RequestRepository.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to reload request: %w", err)
		}
		return nil
	})
	s.record(action, err)
	if err != nil {
		return request.RequestResponse{}, err
	}

	slog.Info("request transitioned",
		"request_id", updated.ID,
		"action", action,
		"status", updated.Status,
		"actor_id", actor.ID,
	)

	if s.notifier != nil {
		if action == request.ActionSubmit {
			s.notifier.ApprovalRequested(ctx, updated)
		} else {
			s.notifier.RequestDecided(ctx, updated)
		}
	}

	return request.ToResponse(updated), nil
}

// applyApproval runs the per-type effects of an approval inside the
// transition's transaction.
func (s *RequestServiceImpl) applyApproval(ctx context.Context, req request.Request, decision request.Decision, now time.Time) error {
	switch {
	case req.Leave != nil:
		if !req.Leave.LeaveType.DebitsLedger() {
			return nil
		}
		fiscalYear := req.Leave.StartDate.Year()
		if err := s.balances.CommitUsage(ctx, req.ApplicantID, fiscalYear, req.Leave.LeaveType, req.Leave.Days); err != nil {
			return err
		}

	case req.Expense != nil:
		received := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if decision.ReceivedDate != nil {
			received = *decision.ReceivedDate
		}
		if err := s.RequestRepository.SetReceivedDate(ctx, req.ID, received); err != nil {
			return err
		}

	case req.Settlement != nil:
		if err := s.RequestRepository.LinkSettlement(ctx, req.Settlement.AdvanceRequestID, req.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *RequestServiceImpl) record(action request.Action, err error) {
	if s.recorder != nil {
		s.recorder.Transition(string(action), err)
	}
}
