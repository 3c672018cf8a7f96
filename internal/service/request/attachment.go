package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/storage"
)

// UploadAttachment implements request.RequestService. The file is written to
// storage before the row is inserted and removed again if the insert fails.
func (s *RequestServiceImpl) UploadAttachment(ctx context.Context, actor user.Actor, id string, meta request.UploadAttachmentRequest, content io.Reader) (request.AttachmentResponse, error) {
	req, err := s.RequestRepository.GetByID(ctx, id)
	if err != nil {
		return request.AttachmentResponse{}, err
	}
	if req.ApplicantID != actor.ID {
		return request.AttachmentResponse{}, request.ErrNotApplicant
	}
	if !request.Editable(req.Status) {
		return request.AttachmentResponse{}, request.ErrNotEditable
	}

	if !storage.AllowedExtension(meta.FileName, storage.AttachmentExtensions) {
		return request.AttachmentResponse{}, request.ErrUnsupportedFileType
	}
	if s.maxUploadSize > 0 && meta.Size > s.maxUploadSize {
		return request.AttachmentResponse{}, request.ErrFileTooLarge
	}

	attachmentID := uuid.Must(uuid.NewV7()).String()
	key := path.Join("requests", req.ID, attachmentID+strings.ToLower(filepath.Ext(meta.FileName)))

	size, err := s.files.Save(ctx, content, key, s.maxUploadSize)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return request.AttachmentResponse{}, request.ErrFileTooLarge
		}
		return request.AttachmentResponse{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	created, err := s.attachments.Create(ctx, request.Attachment{
		ID:          attachmentID,
		RequestID:   req.ID,
		FileName:    filepath.Base(meta.FileName),
		ContentType: contentType,
		Size:        size,
		StoragePath: key,
		UploadedBy:  actor.ID,
	})
	if err != nil {
		if delErr := s.files.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to clean up attachment file", "path", key, "error", delErr)
		}
		return request.AttachmentResponse{}, fmt.Errorf("failed to save attachment: %w", err)
	}

	return request.ToAttachmentResponse(created), nil
}

// OpenAttachment implements request.RequestService. The caller closes the reader.
func (s *RequestServiceImpl) OpenAttachment(ctx context.Context, actor user.Actor, id, attachmentID string) (request.Attachment, io.ReadCloser, error) {
	req, err := s.load(ctx, actor, id)
	if err != nil {
		return request.Attachment{}, nil, err
	}

	attachment, err := s.attachments.GetByID(ctx, req.ID, attachmentID)
	if err != nil {
		return request.Attachment{}, nil, err
	}

	body, err := s.files.Open(ctx, attachment.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return request.Attachment{}, nil, request.ErrAttachmentNotFound
		}
		return request.Attachment{}, nil, fmt.Errorf("failed to open attachment: %w", err)
	}
	return attachment, body, nil
}
