package request

import (
	"strconv"
	"strings"
	"time"

	"github.com/niwaya/kintai-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	maxTitleLength  = 200
	maxExpenseLines = 50
	maxBreakMinutes = 24 * 60
)

// Draftable is implemented by every typed create payload.
type Draftable interface {
	RequestType() Type
	Validate() error
	// Draft builds the unsaved request. It must only be called after Validate succeeds.
	Draft(now time.Time) Request
}

// Envelope holds the fields every create payload shares.
type Envelope struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (e Envelope) validate(errs *validator.ValidationErrors) {
	if e.Title != nil && len([]rune(*e.Title)) > maxTitleLength {
		errs.Add("title", "title must not exceed 200 characters")
	}
}

func (e Envelope) draft(t Type, defaultTitle string) Request {
	title := defaultTitle
	if e.Title != nil && !validator.IsEmpty(*e.Title) {
		title = strings.TrimSpace(*e.Title)
	}
	return Request{
		Type:        t,
		Status:      StatusDraft,
		Title:       title,
		Description: e.Description,
	}
}

type CreateLeaveRequest struct {
	Envelope
	LeaveType            string           `json:"leave_type"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	StartDuration        string           `json:"start_duration,omitempty"`
	EndDuration          string           `json:"end_duration,omitempty"`
	Days                 *decimal.Decimal `json:"days,omitempty"`
	Hours                *decimal.Decimal `json:"hours,omitempty"`
	Reason               string           `json:"reason"`
	HandoverNotes        *string          `json:"handover_notes,omitempty"`
	CompensatoryWorkDate *string          `json:"compensatory_work_date,omitempty"`
}

func (r *CreateLeaveRequest) RequestType() Type { return TypeLeave }

func (r *CreateLeaveRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)

	if validator.IsEmpty(r.LeaveType) {
		errs.Add("leave_type", "leave_type is required")
	} else if !LeaveType(r.LeaveType).Valid() {
		errs.Add("leave_type", "leave_type must be one of [paid compensatory special sick other]")
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	} else if !startOK {
		errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	} else if !endOK {
		errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	if r.StartDuration == "" {
		r.StartDuration = string(DurationFull)
	} else if !Duration(r.StartDuration).Valid() {
		errs.Add("start_duration", "start_duration must be one of [full am pm]")
	}
	if r.EndDuration == "" {
		r.EndDuration = string(DurationFull)
	} else if !Duration(r.EndDuration).Valid() {
		errs.Add("end_duration", "end_duration must be one of [full am pm]")
	}

	if r.Days != nil && (!r.Days.IsPositive() || !r.Days.Mod(half).IsZero()) {
		errs.Add("days", "days must be a positive multiple of 0.5")
	} else if r.Days != nil && startOK && endOK && !end.Before(start) &&
		Duration(r.StartDuration).Valid() && Duration(r.EndDuration).Valid() {
		span := LeaveSpan(start, end, Duration(r.StartDuration), Duration(r.EndDuration))
		if r.Days.GreaterThan(span) {
			errs.Add("days", "days must not exceed the requested span of "+span.String()+" days")
		}
	}
	if r.Hours != nil && (!r.Hours.IsPositive() || r.Hours.GreaterThan(decimal.NewFromInt(8))) {
		errs.Add("hours", "hours must be between 0 and 8")
	}

	if validator.IsEmpty(r.Reason) {
		errs.Add("reason", "reason is required")
	}

	if r.CompensatoryWorkDate != nil && *r.CompensatoryWorkDate != "" {
		if _, ok := validator.IsValidDate(*r.CompensatoryWorkDate); !ok {
			errs.Add("compensatory_work_date", "compensatory_work_date must be in YYYY-MM-DD format")
		}
	}

	return errs.Err()
}

func (r *CreateLeaveRequest) Draft(now time.Time) Request {
	leaveType := LeaveType(r.LeaveType)
	start, _ := time.Parse(dateLayout, r.StartDate)
	end, _ := time.Parse(dateLayout, r.EndDate)
	startDuration, endDuration := Duration(r.StartDuration), Duration(r.EndDuration)

	// The client may claim fewer days than the span (e.g. excluding weekends).
	// Validate rejects more.
	days := LeaveSpan(start, end, startDuration, endDuration)
	if r.Days != nil && r.Days.IsPositive() && r.Days.LessThanOrEqual(days) {
		days = *r.Days
	}

	req := r.Envelope.draft(TypeLeave, leaveType.DefaultTitle())
	req.Leave = &LeaveDetail{
		LeaveType:            leaveType,
		StartDate:            start,
		EndDate:              end,
		StartDuration:        startDuration,
		EndDuration:          endDuration,
		Days:                 days,
		Hours:                r.Hours,
		Reason:               r.Reason,
		HandoverNotes:        r.HandoverNotes,
		CompensatoryWorkDate: parseOptionalDate(r.CompensatoryWorkDate),
	}
	return req
}

// WorkTime is shared by overtime and holiday work payloads.
type WorkTime struct {
	WorkDate     string `json:"work_date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	BreakMinutes int    `json:"break_minutes"`
	WorkContent  string `json:"work_content"`
	Reason       string `json:"reason"`
}

func (w *WorkTime) validate(errs *validator.ValidationErrors) {
	if validator.IsEmpty(w.WorkDate) {
		errs.Add("work_date", "work_date is required")
	} else if _, ok := validator.IsValidDate(w.WorkDate); !ok {
		errs.Add("work_date", "work_date must be in YYYY-MM-DD format")
	}

	startOK, endOK := validator.IsValidClock(w.StartTime), validator.IsValidClock(w.EndTime)
	if !startOK {
		errs.Add("start_time", "start_time must be in HH:MM format")
	}
	if !endOK {
		errs.Add("end_time", "end_time must be in HH:MM format")
	}
	if w.BreakMinutes < 0 || w.BreakMinutes > maxBreakMinutes {
		errs.Add("break_minutes", "break_minutes must be between 0 and 1440")
	} else if startOK && endOK {
		if _, err := WorkedHours(w.StartTime, w.EndTime, w.BreakMinutes); err != nil {
			errs.Add("end_time", "end_time must be after start_time plus break")
		}
	}

	if validator.IsEmpty(w.WorkContent) {
		errs.Add("work_content", "work_content is required")
	}
	if validator.IsEmpty(w.Reason) {
		errs.Add("reason", "reason is required")
	}
}

type CreateOvertimeRequest struct {
	Envelope
	WorkTime
	ProjectName *string `json:"project_name,omitempty"`
}

func (r *CreateOvertimeRequest) RequestType() Type { return TypeOvertime }

func (r *CreateOvertimeRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)
	r.WorkTime.validate(&errs)
	return errs.Err()
}

func (r *CreateOvertimeRequest) Draft(now time.Time) Request {
	workDate, _ := time.Parse(dateLayout, r.WorkDate)
	hours, _ := WorkedHours(r.StartTime, r.EndTime, r.BreakMinutes)

	req := r.Envelope.draft(TypeOvertime, "時間外労働申請")
	req.Overtime = &OvertimeDetail{
		WorkDate:     workDate,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		BreakMinutes: r.BreakMinutes,
		TotalHours:   hours,
		WorkContent:  r.WorkContent,
		Reason:       r.Reason,
		ProjectName:  r.ProjectName,
	}
	return req
}

type CreateHolidayWorkRequest struct {
	Envelope
	WorkTime
	CompensatoryLeaveDate *string `json:"compensatory_leave_date,omitempty"`
}

func (r *CreateHolidayWorkRequest) RequestType() Type { return TypeHolidayWork }

func (r *CreateHolidayWorkRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)
	r.WorkTime.validate(&errs)
	if r.CompensatoryLeaveDate != nil && *r.CompensatoryLeaveDate != "" {
		if _, ok := validator.IsValidDate(*r.CompensatoryLeaveDate); !ok {
			errs.Add("compensatory_leave_date", "compensatory_leave_date must be in YYYY-MM-DD format")
		}
	}
	return errs.Err()
}

func (r *CreateHolidayWorkRequest) Draft(now time.Time) Request {
	workDate, _ := time.Parse(dateLayout, r.WorkDate)
	hours, _ := WorkedHours(r.StartTime, r.EndTime, r.BreakMinutes)

	req := r.Envelope.draft(TypeHolidayWork, "休日出勤申請")
	req.HolidayWork = &HolidayWorkDetail{
		WorkDate:              workDate,
		StartTime:             r.StartTime,
		EndTime:               r.EndTime,
		BreakMinutes:          r.BreakMinutes,
		TotalHours:            hours,
		WorkContent:           r.WorkContent,
		Reason:                r.Reason,
		CompensatoryLeaveDate: parseOptionalDate(r.CompensatoryLeaveDate),
	}
	return req
}

// CreateExpenseRequest is an advance payment (仮払) application.
type CreateExpenseRequest struct {
	Envelope
	SiteName        string          `json:"site_name"`
	ApplicationDate string          `json:"application_date,omitempty"`
	RequestAmount   decimal.Decimal `json:"request_amount"`
	Purpose         string          `json:"purpose"`
}

func (r *CreateExpenseRequest) RequestType() Type { return TypeExpense }

func (r *CreateExpenseRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)

	if validator.IsEmpty(r.SiteName) {
		errs.Add("site_name", "site_name is required")
	}
	validateOptionalDate(&errs, "application_date", r.ApplicationDate)
	if !r.RequestAmount.IsPositive() {
		errs.Add("request_amount", "request_amount must be greater than 0")
	} else if !r.RequestAmount.IsInteger() {
		errs.Add("request_amount", "request_amount must be a whole yen amount")
	}
	if validator.IsEmpty(r.Purpose) {
		errs.Add("purpose", "purpose is required")
	}

	return errs.Err()
}

func (r *CreateExpenseRequest) Draft(now time.Time) Request {
	req := r.Envelope.draft(TypeExpense, "仮払申請")
	req.Expense = &ExpenseDetail{
		SiteName:        r.SiteName,
		ApplicationDate: dateOrToday(r.ApplicationDate, now),
		RequestAmount:   r.RequestAmount,
		Purpose:         r.Purpose,
	}
	return req
}

type ExpenseLineInput struct {
	Date     string          `json:"date"`
	Item     string          `json:"item"`
	SiteName *string         `json:"site_name,omitempty"`
	TaxType  string          `json:"tax_type,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

func validateLines(errs *validator.ValidationErrors, lines []ExpenseLineInput) {
	if len(lines) == 0 {
		errs.Add("lines", "at least one expense line is required")
		return
	}
	if len(lines) > maxExpenseLines {
		errs.Add("lines", "no more than 50 expense lines are allowed")
		return
	}
	for i := range lines {
		field := "lines[" + strconv.Itoa(i) + "]"
		if _, ok := validator.IsValidDate(lines[i].Date); !ok {
			errs.Add(field+".date", "date must be in YYYY-MM-DD format")
		}
		if validator.IsEmpty(lines[i].Item) {
			errs.Add(field+".item", "item is required")
		}
		if lines[i].TaxType == "" {
			lines[i].TaxType = string(TaxTypeTaxIncluded)
		} else if !TaxType(lines[i].TaxType).Valid() {
			errs.Add(field+".tax_type", "tax_type must be one of [taxable tax_free tax_included]")
		}
		if !lines[i].Amount.IsPositive() || !lines[i].Amount.IsInteger() {
			errs.Add(field+".amount", "amount must be a positive whole yen amount")
		}
	}
}

func draftLines(inputs []ExpenseLineInput) []ExpenseLine {
	lines := make([]ExpenseLine, 0, len(inputs))
	for i, in := range inputs {
		date, _ := time.Parse(dateLayout, in.Date)
		lines = append(lines, ExpenseLine{
			LineNo:   i + 1,
			Date:     date,
			Item:     in.Item,
			SiteName: in.SiteName,
			TaxType:  TaxType(in.TaxType),
			Amount:   in.Amount,
		})
	}
	return lines
}

type CreateReimbursementRequest struct {
	Envelope
	SiteName        string             `json:"site_name"`
	ApplicationDate string             `json:"application_date,omitempty"`
	Lines           []ExpenseLineInput `json:"lines"`
}

func (r *CreateReimbursementRequest) RequestType() Type { return TypeReimbursement }

func (r *CreateReimbursementRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)
	if validator.IsEmpty(r.SiteName) {
		errs.Add("site_name", "site_name is required")
	}
	validateOptionalDate(&errs, "application_date", r.ApplicationDate)
	validateLines(&errs, r.Lines)
	return errs.Err()
}

func (r *CreateReimbursementRequest) Draft(now time.Time) Request {
	lines := draftLines(r.Lines)
	req := r.Envelope.draft(TypeReimbursement, "立替金精算申請")
	req.Reimbursement = &ReimbursementDetail{
		SiteName:        r.SiteName,
		ApplicationDate: dateOrToday(r.ApplicationDate, now),
		TotalAmount:     SumLines(lines),
		Lines:           lines,
	}
	return req
}

// CreateSettlementRequest settles an approved advance payment (仮払精算).
// The advance amount and balance are filled in by the service.
type CreateSettlementRequest struct {
	Envelope
	AdvanceRequestID string             `json:"advance_request_id"`
	SettlementDate   string             `json:"settlement_date,omitempty"`
	ExpenseType      string             `json:"expense_type"`
	Lines            []ExpenseLineInput `json:"lines"`
}

func (r *CreateSettlementRequest) RequestType() Type { return TypeSettlement }

func (r *CreateSettlementRequest) Validate() error {
	var errs validator.ValidationErrors
	r.Envelope.validate(&errs)
	if validator.IsEmpty(r.AdvanceRequestID) {
		errs.Add("advance_request_id", "advance_request_id is required")
	} else if !validator.IsValidUUID(r.AdvanceRequestID) {
		errs.Add("advance_request_id", "advance_request_id must be a valid UUID")
	}
	validateOptionalDate(&errs, "settlement_date", r.SettlementDate)
	if validator.IsEmpty(r.ExpenseType) {
		errs.Add("expense_type", "expense_type is required")
	} else if len([]rune(r.ExpenseType)) > 50 {
		errs.Add("expense_type", "expense_type must not exceed 50 characters")
	}
	validateLines(&errs, r.Lines)
	return errs.Err()
}

func (r *CreateSettlementRequest) Draft(now time.Time) Request {
	lines := draftLines(r.Lines)
	req := r.Envelope.draft(TypeSettlement, "仮払精算申請")
	req.Settlement = &SettlementDetail{
		AdvanceRequestID: r.AdvanceRequestID,
		SettlementDate:   dateOrToday(r.SettlementDate, now),
		ExpenseType:      r.ExpenseType,
		TotalAmount:      SumLines(lines),
		Lines:            lines,
	}
	return req
}

// ApproveRequest is the optional body of POST /requests/{id}/approve.
type ApproveRequest struct {
	Comment      *string `json:"comment,omitempty"`
	ReceivedDate *string `json:"received_date,omitempty"`
}

func (r *ApproveRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.ReceivedDate != nil {
		validateOptionalDate(&errs, "received_date", *r.ReceivedDate)
	}
	return errs.Err()
}

// Decision converts the validated body.
func (r *ApproveRequest) Decision() Decision {
	return Decision{Comment: emptyToNil(r.Comment), ReceivedDate: parseOptionalDate(r.ReceivedDate)}
}

type RejectRequest struct {
	Comment *string `json:"comment,omitempty"`
}

func (r *RejectRequest) Decision() Decision {
	return Decision{Comment: emptyToNil(r.Comment)}
}

type ReturnRequest struct {
	Comment string `json:"comment"`
}

func (r *ReturnRequest) Validate() error {
	if validator.IsEmpty(r.Comment) {
		return ErrCommentRequired
	}
	return nil
}

func (r *ReturnRequest) Decision() Decision {
	comment := strings.TrimSpace(r.Comment)
	return Decision{Comment: &comment}
}

// Decision carries the actor input for approve, reject and return.
type Decision struct {
	Comment      *string
	ReceivedDate *time.Time
}

// ListFilter narrows a request listing. Zero values are ignored.
type ListFilter struct {
	Status      *Status
	Type        *Type
	ApplicantID *string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// ListQuery is the raw query string form of ListFilter.
type ListQuery struct {
	Status      string
	Type        string
	ApplicantID string
	From        string
	To          string
	Limit       int
	Offset      int
}

func (q ListQuery) Parse() (ListFilter, error) {
	var errs validator.ValidationErrors
	var filter ListFilter

	if q.Status != "" {
		s := Status(q.Status)
		if !s.Valid() {
			errs.Add("status", "status must be one of [draft applied approved rejected returned]")
		}
		filter.Status = &s
	}
	if q.Type != "" {
		t := Type(q.Type)
		if !t.Valid() {
			errs.Add("type", "unknown request type")
		}
		filter.Type = &t
	}
	if q.ApplicantID != "" {
		id := q.ApplicantID
		filter.ApplicantID = &id
	}
	if q.From != "" {
		if from, ok := validator.IsValidDate(q.From); ok {
			filter.From = &from
		} else {
			errs.Add("from", "from must be in YYYY-MM-DD format")
		}
	}
	if q.To != "" {
		if to, ok := validator.IsValidDate(q.To); ok {
			// inclusive upper bound
			to = to.AddDate(0, 0, 1)
			filter.To = &to
		} else {
			errs.Add("to", "to must be in YYYY-MM-DD format")
		}
	}

	filter.Limit, filter.Offset = q.Limit, q.Offset
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return filter, errs.Err()
}

type ExpenseLineResponse struct {
	LineNo   int             `json:"line_no"`
	Date     string          `json:"date"`
	Item     string          `json:"item"`
	SiteName *string         `json:"site_name,omitempty"`
	TaxType  string          `json:"tax_type"`
	Amount   decimal.Decimal `json:"amount"`
}

type LeaveDetailResponse struct {
	LeaveType            string           `json:"leave_type"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	StartDuration        string           `json:"start_duration"`
	EndDuration          string           `json:"end_duration"`
	Days                 decimal.Decimal  `json:"days"`
	Hours                *decimal.Decimal `json:"hours,omitempty"`
	Reason               string           `json:"reason"`
	HandoverNotes        *string          `json:"handover_notes,omitempty"`
	CompensatoryWorkDate *string          `json:"compensatory_work_date,omitempty"`
}

type WorkTimeDetailResponse struct {
	WorkDate              string          `json:"work_date"`
	StartTime             string          `json:"start_time"`
	EndTime               string          `json:"end_time"`
	BreakMinutes          int             `json:"break_minutes"`
	TotalHours            decimal.Decimal `json:"total_hours"`
	WorkContent           string          `json:"work_content"`
	Reason                string          `json:"reason"`
	ProjectName           *string         `json:"project_name,omitempty"`
	CompensatoryLeaveDate *string         `json:"compensatory_leave_date,omitempty"`
}

type ExpenseDetailResponse struct {
	SiteName             string                `json:"site_name,omitempty"`
	ApplicationDate      string                `json:"application_date,omitempty"`
	RequestAmount        *decimal.Decimal      `json:"request_amount,omitempty"`
	Purpose              string                `json:"purpose,omitempty"`
	ReceivedDate         *string               `json:"received_date,omitempty"`
	SettlementRequestID  *string               `json:"settlement_request_id,omitempty"`
	AdvanceRequestID     string                `json:"advance_request_id,omitempty"`
	SettlementDate       string                `json:"settlement_date,omitempty"`
	ExpenseType          string                `json:"expense_type,omitempty"`
	AdvancePaymentAmount *decimal.Decimal      `json:"advance_payment_amount,omitempty"`
	TotalAmount          *decimal.Decimal      `json:"total_amount,omitempty"`
	BalanceAmount        *decimal.Decimal      `json:"balance_amount,omitempty"`
	Lines                []ExpenseLineResponse `json:"lines,omitempty"`
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedBy  string `json:"uploaded_by"`
	CreatedAt   string `json:"created_at"`
}

type RequestResponse struct {
	ID              string                  `json:"id"`
	Type            string                  `json:"type"`
	TypeLabel       string                  `json:"type_label"`
	Status          string                  `json:"status"`
	StatusLabel     string                  `json:"status_label"`
	Title           string                  `json:"title"`
	Description     *string                 `json:"description,omitempty"`
	ApplicantID     string                  `json:"applicant_id"`
	ApplicantName   string                  `json:"applicant_name,omitempty"`
	ApproverID      *string                 `json:"approver_id,omitempty"`
	ApproverName    *string                 `json:"approver_name,omitempty"`
	ApproverComment *string                 `json:"approver_comment,omitempty"`
	CreatedAt       string                  `json:"created_at"`
	AppliedAt       *string                 `json:"applied_at,omitempty"`
	ApprovedAt      *string                 `json:"approved_at,omitempty"`
	RejectedAt      *string                 `json:"rejected_at,omitempty"`
	ReturnedAt      *string                 `json:"returned_at,omitempty"`
	Leave           *LeaveDetailResponse    `json:"leave,omitempty"`
	WorkTime        *WorkTimeDetailResponse `json:"work_time,omitempty"`
	Expense         *ExpenseDetailResponse  `json:"expense,omitempty"`
	Attachments     []AttachmentResponse    `json:"attachments,omitempty"`
}

func ToResponse(r Request) RequestResponse {
	resp := RequestResponse{
		ID:              r.ID,
		Type:            string(r.Type),
		TypeLabel:       r.Type.Label(),
		Status:          string(r.Status),
		StatusLabel:     r.Status.Label(),
		Title:           r.Title,
		Description:     r.Description,
		ApplicantID:     r.ApplicantID,
		ApplicantName:   r.ApplicantName,
		ApproverID:      r.ApproverID,
		ApproverName:    r.ApproverName,
		ApproverComment: r.ApproverComment,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		AppliedAt:       formatTimestamp(r.AppliedAt),
		ApprovedAt:      formatTimestamp(r.ApprovedAt),
		RejectedAt:      formatTimestamp(r.RejectedAt),
		ReturnedAt:      formatTimestamp(r.ReturnedAt),
	}

	switch {
	case r.Leave != nil:
		d := r.Leave
		resp.Leave = &LeaveDetailResponse{
			LeaveType:            string(d.LeaveType),
			StartDate:            d.StartDate.Format(dateLayout),
			EndDate:              d.EndDate.Format(dateLayout),
			StartDuration:        string(d.StartDuration),
			EndDuration:          string(d.EndDuration),
			Days:                 d.Days,
			Hours:                d.Hours,
			Reason:               d.Reason,
			HandoverNotes:        d.HandoverNotes,
			CompensatoryWorkDate: formatDate(d.CompensatoryWorkDate),
		}
	case r.Overtime != nil:
		d := r.Overtime
		resp.WorkTime = &WorkTimeDetailResponse{
			WorkDate:     d.WorkDate.Format(dateLayout),
			StartTime:    d.StartTime,
			EndTime:      d.EndTime,
			BreakMinutes: d.BreakMinutes,
			TotalHours:   d.TotalHours,
			WorkContent:  d.WorkContent,
			Reason:       d.Reason,
			ProjectName:  d.ProjectName,
		}
	case r.HolidayWork != nil:
		d := r.HolidayWork
		resp.WorkTime = &WorkTimeDetailResponse{
			WorkDate:              d.WorkDate.Format(dateLayout),
			StartTime:             d.StartTime,
			EndTime:               d.EndTime,
			BreakMinutes:          d.BreakMinutes,
			TotalHours:            d.TotalHours,
			WorkContent:           d.WorkContent,
			Reason:                d.Reason,
			CompensatoryLeaveDate: formatDate(d.CompensatoryLeaveDate),
		}
	case r.Expense != nil:
		d := r.Expense
		resp.Expense = &ExpenseDetailResponse{
			SiteName:            d.SiteName,
			ApplicationDate:     d.ApplicationDate.Format(dateLayout),
			RequestAmount:       &d.RequestAmount,
			Purpose:             d.Purpose,
			ReceivedDate:        formatDate(d.ReceivedDate),
			SettlementRequestID: d.SettlementRequestID,
		}
	case r.Reimbursement != nil:
		d := r.Reimbursement
		resp.Expense = &ExpenseDetailResponse{
			SiteName:        d.SiteName,
			ApplicationDate: d.ApplicationDate.Format(dateLayout),
			TotalAmount:     &d.TotalAmount,
			Lines:           toLineResponses(d.Lines),
		}
	case r.Settlement != nil:
		d := r.Settlement
		resp.Expense = &ExpenseDetailResponse{
			AdvanceRequestID:     d.AdvanceRequestID,
			SettlementDate:       d.SettlementDate.Format(dateLayout),
			ExpenseType:          d.ExpenseType,
			AdvancePaymentAmount: &d.AdvancePaymentAmount,
			TotalAmount:          &d.TotalAmount,
			BalanceAmount:        &d.BalanceAmount,
			Lines:                toLineResponses(d.Lines),
		}
	}

	for _, a := range r.Attachments {
		resp.Attachments = append(resp.Attachments, ToAttachmentResponse(a))
	}

	return resp
}

func ToAttachmentResponse(a Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		Size:        a.Size,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

func toLineResponses(lines []ExpenseLine) []ExpenseLineResponse {
	out := make([]ExpenseLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, ExpenseLineResponse{
			LineNo:   l.LineNo,
			Date:     l.Date.Format(dateLayout),
			Item:     l.Item,
			SiteName: l.SiteName,
			TaxType:  string(l.TaxType),
			Amount:   l.Amount,
		})
	}
	return out
}

type ListRequestResponse struct {
	Requests []RequestResponse `json:"requests"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityFor ranks a pending request by how long it has waited.
func PriorityFor(appliedAt, now time.Time) Priority {
	waited := now.Sub(appliedAt)
	switch {
	case waited > 3*24*time.Hour:
		return PriorityHigh
	case waited < 24*time.Hour:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type ApprovalItem struct {
	RequestResponse
	Priority    Priority `json:"priority"`
	DaysPending int      `json:"days_pending"`
}

type ApprovalsResponse struct {
	Items []ApprovalItem `json:"items"`
	Total int            `json:"total"`
}

// UploadAttachmentRequest describes a file received on multipart upload.
type UploadAttachmentRequest struct {
	FileName    string
	ContentType string
	Size        int64
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

func validateOptionalDate(errs *validator.ValidationErrors, field, value string) {
	if value == "" {
		return
	}
	if _, ok := validator.IsValidDate(value); !ok {
		errs.Add(field, field+" must be in YYYY-MM-DD format")
	}
}

func dateOrToday(s string, now time.Time) time.Time {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}
