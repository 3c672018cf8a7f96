package http

import (
	"net/http"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/report"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

type ReportHandler interface {
	// Request exports, format taken from the path
	ExportRequests(format report.Format) http.HandlerFunc

	// Summary report
	Summary(w http.ResponseWriter, r *http.Request)
	SummaryPDF(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// ExportRequests handles GET /export/requests/{pdf,csv,excel}. It accepts the
// same filters as GET /requests.
func (h *reportHandlerImpl) ExportRequests(format report.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		filter, err := parseListQuery(r)
		if err != nil {
			response.HandleError(w, r, err)
			return
		}

		file, err := h.reportService.ExportRequests(r.Context(), actor, filter, format)
		if err != nil {
			response.HandleError(w, r, err)
			return
		}

		response.File(w, file)
	}
}

func summaryPeriod(r *http.Request) (report.Period, error) {
	req := report.SummaryRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	return req.Parse(time.Now())
}

// Summary handles GET /reports/summary?start_date=&end_date=
func (h *reportHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	period, err := summaryPeriod(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	summary, err := h.reportService.Summary(r.Context(), actor, period)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, summary)
}

// SummaryPDF handles GET /export/summary/pdf
func (h *reportHandlerImpl) SummaryPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	period, err := summaryPeriod(r)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	file, err := h.reportService.SummaryPDF(r.Context(), actor, period)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.File(w, file)
}
