package request

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrRequestNotFound    = apperror.NotFound("request not found")
	ErrAttachmentNotFound = apperror.NotFound("attachment not found")
	ErrAdvanceNotFound    = apperror.NotFound("advance payment request not found")

	ErrNotInAppliedState     = apperror.Validation("request is not in applied state")
	ErrNotSubmittable        = apperror.Validation("request can only be submitted from draft or returned")
	ErrNotCancellable        = apperror.Validation("only draft or returned requests can be cancelled")
	ErrNotEditable           = apperror.Validation("attachments can only be added while the request is draft or returned")
	ErrStatusChanged         = apperror.Validation("request status changed concurrently")
	ErrCommentRequired       = apperror.Validation("comment is required to return a request")
	ErrReservedType          = apperror.Validation("construction daily reports are created through /daily-reports")
	ErrAdvanceNotEligible    = apperror.Validation("advance payment must be an approved expense request of the same applicant")
	ErrFileTooLarge          = apperror.Validation("file exceeds the maximum upload size")
	ErrUnsupportedFileType   = apperror.Validation("unsupported file type")
	ErrAdvanceAlreadySettled = apperror.Conflict("advance payment has already been settled")

	ErrAccessDenied     = apperror.Authorization("you do not have access to this request")
	ErrNotApplicant     = apperror.Authorization("only the applicant can perform this action")
	ErrApproverRequired = apperror.Authorization("approver or admin role required")
	ErrSelfDecision     = apperror.Authorization("applicants cannot decide their own requests")
)
