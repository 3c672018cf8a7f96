package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niwaya/kintai-backend/internal/domain/attendance"
	"github.com/niwaya/kintai-backend/internal/domain/leave"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

type AttendanceHandler interface {
	Timesheet(w http.ResponseWriter, r *http.Request)
	TimesheetPDF(w http.ResponseWriter, r *http.Request)
	ShiftTable(w http.ResponseWriter, r *http.Request)
	ShiftTablePDF(w http.ResponseWriter, r *http.Request)

	GetBalance(w http.ResponseWriter, r *http.Request)
	GrantBalance(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	balanceService    leave.BalanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, balanceService leave.BalanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		balanceService:    balanceService,
	}
}

// monthQuery reads the {year}/{month} path parameters.
func monthQuery(w http.ResponseWriter, r *http.Request) (attendance.MonthQuery, bool) {
	year, yErr := strconv.Atoi(chi.URLParam(r, "year"))
	month, mErr := strconv.Atoi(chi.URLParam(r, "month"))
	if yErr != nil || mErr != nil {
		response.BadRequest(w, "year and month must be numbers", nil)
		return attendance.MonthQuery{}, false
	}
	return attendance.MonthQuery{Year: year, Month: month}, true
}

// Timesheet handles GET /attendance/timesheet/{user_id}/{year}/{month}
func (h *attendanceHandlerImpl) Timesheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q, ok := monthQuery(w, r)
	if !ok {
		return
	}

	sheet, err := h.attendanceService.Timesheet(r.Context(), actor, chi.URLParam(r, "user_id"), q)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, sheet)
}

// TimesheetPDF handles GET /attendance/timesheet/{user_id}/{year}/{month}/pdf
func (h *attendanceHandlerImpl) TimesheetPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q, ok := monthQuery(w, r)
	if !ok {
		return
	}

	file, err := h.attendanceService.TimesheetPDF(r.Context(), actor, chi.URLParam(r, "user_id"), q)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.File(w, file)
}

// ShiftTable handles GET /attendance/shift/{year}/{month}
func (h *attendanceHandlerImpl) ShiftTable(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q, ok := monthQuery(w, r)
	if !ok {
		return
	}

	table, err := h.attendanceService.ShiftTable(r.Context(), actor, q)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, table)
}

// ShiftTablePDF handles GET /attendance/shift/{year}/{month}/pdf
func (h *attendanceHandlerImpl) ShiftTablePDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	q, ok := monthQuery(w, r)
	if !ok {
		return
	}

	file, err := h.attendanceService.ShiftTablePDF(r.Context(), actor, q)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.File(w, file)
}

// GetBalance handles GET /attendance/balance/{user_id}?fiscal_year=
func (h *attendanceHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	year, err := queryInt(r, "fiscal_year", 0)
	if err != nil {
		response.BadRequest(w, "fiscal_year must be a number", nil)
		return
	}

	balance, err := h.balanceService.GetOrDefault(r.Context(), actor, chi.URLParam(r, "user_id"), year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, balance)
}

// GrantBalance handles POST /attendance/balance/{user_id}
func (h *attendanceHandlerImpl) GrantBalance(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	var req leave.GrantRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.FiscalYear == 0 {
		if year, err := queryInt(r, "fiscal_year", 0); err == nil {
			req.FiscalYear = year
		}
	}

	balance, err := h.balanceService.ApplyGrant(r.Context(), actor, chi.URLParam(r, "user_id"), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance updated successfully", balance)
}
