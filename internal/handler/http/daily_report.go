package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niwaya/kintai-backend/internal/domain/dailyreport"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

type DailyReportHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	PDF(w http.ResponseWriter, r *http.Request)
}

type dailyReportHandlerImpl struct {
	reportService dailyreport.ReportService
}

func NewDailyReportHandler(reportService dailyreport.ReportService) DailyReportHandler {
	return &dailyReportHandlerImpl{reportService: reportService}
}

func (h *dailyReportHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dailyreport.ReportRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := h.reportService.Create(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "Daily report created successfully", created)
}

// List handles GET /daily-reports?user_id=&from=&to=&limit=&offset=
func (h *dailyReportHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	query := dailyreport.ListQuery{
		UserID: q.Get("user_id"),
		From:   q.Get("from"),
		To:     q.Get("to"),
	}
	query.Limit, _ = strconv.Atoi(q.Get("limit"))
	query.Offset, _ = strconv.Atoi(q.Get("offset"))

	filter, err := query.Parse()
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	list, err := h.reportService.List(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, list.Reports, &response.Meta{Total: list.Total, Limit: list.Limit, Offset: list.Offset})
}

func (h *dailyReportHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	found, err := h.reportService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, found)
}

func (h *dailyReportHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req dailyreport.ReportRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	updated, err := h.reportService.Update(r.Context(), actor, chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Daily report updated successfully", updated)
}

func (h *dailyReportHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := h.reportService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Daily report deleted successfully", nil)
}

func (h *dailyReportHandlerImpl) PDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	file, err := h.reportService.PDF(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.File(w, file)
}
