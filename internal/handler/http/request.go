package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

// multipartOverhead leaves room for the form boundaries around the file part.
const multipartOverhead = 1 << 20

type RequestHandler interface {
	CreateLeave(w http.ResponseWriter, r *http.Request)
	CreateOvertime(w http.ResponseWriter, r *http.Request)
	CreateHolidayWork(w http.ResponseWriter, r *http.Request)
	CreateExpense(w http.ResponseWriter, r *http.Request)
	CreateReimbursement(w http.ResponseWriter, r *http.Request)
	CreateSettlement(w http.ResponseWriter, r *http.Request)

	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	Submit(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Return(w http.ResponseWriter, r *http.Request)
	Approvals(w http.ResponseWriter, r *http.Request)

	UploadAttachment(w http.ResponseWriter, r *http.Request)
	DownloadAttachment(w http.ResponseWriter, r *http.Request)
}

type RequestHandlerImpl struct {
	requestService request.RequestService
	maxUploadSize  int64
}

func NewRequestHandler(requestService request.RequestService, maxUploadSize int64) RequestHandler {
	return &RequestHandlerImpl{requestService: requestService, maxUploadSize: maxUploadSize}
}

func (h *RequestHandlerImpl) create(w http.ResponseWriter, r *http.Request, payload request.Draftable) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	if !decodeJSON(w, r, payload, false) {
		return
	}

	created, err := h.requestService.Create(r.Context(), actor, payload)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Request created successfully", created)
}

func (h *RequestHandlerImpl) CreateLeave(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateLeaveRequest{})
}

func (h *RequestHandlerImpl) CreateOvertime(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateOvertimeRequest{})
}

func (h *RequestHandlerImpl) CreateHolidayWork(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateHolidayWorkRequest{})
}

func (h *RequestHandlerImpl) CreateExpense(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateExpenseRequest{})
}

func (h *RequestHandlerImpl) CreateReimbursement(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateReimbursementRequest{})
}

func (h *RequestHandlerImpl) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, &request.CreateSettlementRequest{})
}

// parseListQuery reads ?status=&type=&applicant_id=&from=&to=&limit=&offset=.
func parseListQuery(r *http.Request) (request.ListFilter, error) {
	q := r.URL.Query()
	query := request.ListQuery{
		Status:      q.Get("status"),
		Type:        q.Get("type"),
		ApplicantID: q.Get("applicant_id"),
		From:        q.Get("from"),
		To:          q.Get("to"),
	}
	query.Limit, _ = strconv.Atoi(q.Get("limit"))
	query.Offset, _ = strconv.Atoi(q.Get("offset"))
	return query.Parse()
}

// List implements RequestHandler.
func (h *RequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter, err := parseListQuery(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	list, err := h.requestService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, list.Requests, &response.Meta{Total: list.Total, Limit: list.Limit, Offset: list.Offset})
}

// Get implements RequestHandler.
func (h *RequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	found, err := h.requestService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, found)
}

// Cancel implements RequestHandler.
func (h *RequestHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := h.requestService.Cancel(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Request cancelled successfully", nil)
}

// Submit implements RequestHandler.
func (h *RequestHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	submitted, err := h.requestService.Submit(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Request submitted successfully", submitted)
}

// Approve implements RequestHandler. The body is optional.
func (h *RequestHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.ApproveRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	approved, err := h.requestService.Approve(r.Context(), actor, chi.URLParam(r, "id"), req.Decision())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Request approved successfully", approved)
}

// Reject implements RequestHandler. The body is optional.
func (h *RequestHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.RejectRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	rejected, err := h.requestService.Reject(r.Context(), actor, chi.URLParam(r, "id"), req.Decision())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Request rejected successfully", rejected)
}

// Return implements RequestHandler. A comment is required.
func (h *RequestHandlerImpl) Return(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req request.ReturnRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, r, err)
		return
	}

	returned, err := h.requestService.Return(r.Context(), actor, chi.URLParam(r, "id"), req.Decision())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Request returned successfully", returned)
}

// Approvals implements RequestHandler.
func (h *RequestHandlerImpl) Approvals(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	approvals, err := h.requestService.Approvals(r.Context(), actor)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, approvals)
}

// UploadAttachment accepts a multipart form with a single "file" part.
func (h *RequestHandlerImpl) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.HandleError(w, r, request.ErrFileTooLarge)
			return
		}
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Field 'file' is required", map[string]string{"file": "file is required"})
		return
	}
	defer file.Close()

	meta := request.UploadAttachmentRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}

	uploaded, err := h.requestService.UploadAttachment(r.Context(), actor, chi.URLParam(r, "id"), meta, file)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Attachment uploaded successfully", uploaded)
}

// DownloadAttachment streams the stored file.
func (h *RequestHandlerImpl) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	attachment, content, err := h.requestService.OpenAttachment(r.Context(), actor, chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(attachment.FileName))
	if attachment.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(attachment.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		slog.Warn("attachment download interrupted", "attachment_id", attachment.ID, "error", err)
	}
}
