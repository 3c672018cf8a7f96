package request

import (
	"context"
	"io"

	"github.com/niwaya/kintai-backend/internal/domain/user"
)

type RequestService interface {
	Create(ctx context.Context, actor user.Actor, payload Draftable) (RequestResponse, error)
	Get(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	List(ctx context.Context, actor user.Actor, filter ListFilter) (ListRequestResponse, error)
	Cancel(ctx context.Context, actor user.Actor, id string) error

	Submit(ctx context.Context, actor user.Actor, id string) (RequestResponse, error)
	Approve(ctx context.Context, actor user.Actor, id string, decision Decision) (RequestResponse, error)
	Reject(ctx context.Context, actor user.Actor, id string, decision Decision) (RequestResponse, error)
	Return(ctx context.Context, actor user.Actor, id string, decision Decision) (RequestResponse, error)
	Approvals(ctx context.Context, actor user.Actor) (ApprovalsResponse, error)

	UploadAttachment(ctx context.Context, actor user.Actor, id string, meta UploadAttachmentRequest, content io.Reader) (AttachmentResponse, error)
	OpenAttachment(ctx context.Context, actor user.Actor, id, attachmentID string) (Attachment, io.ReadCloser, error)
}
