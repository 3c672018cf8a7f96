package request

import (
	"context"
	"time"
)

// StatusUpdate is a conditional status write: it only applies while the row
// is still in From.
type StatusUpdate struct {
	ID         string
	From       Status
	To         Status
	ApproverID *string
	Comment    *string
	At         time.Time
}

type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// GetByIDForUpdate locks the request row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (Request, error)
	List(ctx context.Context, filter ListFilter) ([]Request, int64, error)
	UpdateStatus(ctx context.Context, update StatusUpdate) error
	Delete(ctx context.Context, id string) error
	SetReceivedDate(ctx context.Context, advanceID string, date time.Time) error
	LinkSettlement(ctx context.Context, advanceID, settlementID string) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment Attachment) (Attachment, error)
	GetByID(ctx context.Context, requestID, id string) (Attachment, error)
	ListByRequest(ctx context.Context, requestID string) ([]Attachment, error)
}
