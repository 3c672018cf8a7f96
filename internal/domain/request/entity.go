package request

import (
	"fmt"
	"time"

	"github.com/niwaya/kintai-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeLeave             Type = "leave"
	TypeOvertime          Type = "overtime"
	TypeExpense           Type = "expense"       // 仮払 (advance payment)
	TypeReimbursement     Type = "reimbursement" // 立替金精算
	TypeSettlement        Type = "settlement"    // 仮払精算
	TypeHolidayWork       Type = "holiday_work"
	TypeConstructionDaily Type = "construction_daily" // reserved, reports live in their own table
)

func (t Type) Valid() bool {
	switch t {
	case TypeLeave, TypeOvertime, TypeExpense, TypeReimbursement, TypeSettlement, TypeHolidayWork, TypeConstructionDaily:
		return true
	}
	return false
}

// Label is the Japanese display name used in exports and emails.
func (t Type) Label() string {
	switch t {
	case TypeLeave:
		return "休暇申請"
	case TypeOvertime:
		return "時間外労働申請"
	case TypeExpense:
		return "仮払申請"
	case TypeReimbursement:
		return "立替金精算申請"
	case TypeSettlement:
		return "仮払精算申請"
	case TypeHolidayWork:
		return "休日出勤申請"
	case TypeConstructionDaily:
		return "工事日報"
	}
	return string(t)
}

type Status string

const (
	StatusDraft    Status = "draft"
	StatusApplied  Status = "applied"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusReturned Status = "returned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusApplied, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "下書き"
	case StatusApplied:
		return "申請中"
	case StatusApproved:
		return "承認済み"
	case StatusRejected:
		return "却下"
	case StatusReturned:
		return "差戻し"
	}
	return string(s)
}

type LeaveType string

const (
	LeaveTypePaid         LeaveType = "paid"
	LeaveTypeCompensatory LeaveType = "compensatory"
	LeaveTypeSpecial      LeaveType = "special"
	LeaveTypeSick         LeaveType = "sick"
	LeaveTypeOther        LeaveType = "other"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypePaid, LeaveTypeCompensatory, LeaveTypeSpecial, LeaveTypeSick, LeaveTypeOther:
		return true
	}
	return false
}

// DebitsLedger reports whether approving this leave consumes a ledger balance.
func (t LeaveType) DebitsLedger() bool {
	return t == LeaveTypePaid || t == LeaveTypeCompensatory || t == LeaveTypeSpecial
}

func (t LeaveType) DefaultTitle() string {
	switch t {
	case LeaveTypePaid:
		return "有給休暇申請"
	case LeaveTypeCompensatory:
		return "代休申請"
	case LeaveTypeSpecial:
		return "特別休暇申請"
	case LeaveTypeSick:
		return "病気休暇申請"
	}
	return "休暇申請"
}

// Duration marks which half of a boundary day the leave covers.
type Duration string

const (
	DurationFull Duration = "full"
	DurationAM   Duration = "am"
	DurationPM   Duration = "pm"
)

func (d Duration) Valid() bool {
	return d == DurationFull || d == DurationAM || d == DurationPM
}

type TaxType string

const (
	TaxTypeTaxable     TaxType = "taxable"
	TaxTypeTaxFree     TaxType = "tax_free"
	TaxTypeTaxIncluded TaxType = "tax_included"
)

func (t TaxType) Valid() bool {
	return t == TaxTypeTaxable || t == TaxTypeTaxFree || t == TaxTypeTaxIncluded
}

// Request is the envelope shared by every request type. Exactly one of the
// detail pointers is set, chosen by Type.
type Request struct {
	ID              string
	Type            Type
	ApplicantID     string
	ApproverID      *string
	Status          Status
	Title           string
	Description     *string
	ApproverComment *string
	CreatedAt       time.Time
	AppliedAt       *time.Time
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	ReturnedAt      *time.Time
	UpdatedAt       time.Time

	// Joined from users for listings and exports
	ApplicantName  string
	ApplicantEmail string
	ApproverName   *string

	Leave         *LeaveDetail
	Overtime      *OvertimeDetail
	HolidayWork   *HolidayWorkDetail
	Expense       *ExpenseDetail
	Reimbursement *ReimbursementDetail
	Settlement    *SettlementDetail

	Attachments []Attachment
}

// DecidedAt is the approval or rejection time, whichever applies.
func (r *Request) DecidedAt() *time.Time {
	if r.ApprovedAt != nil {
		return r.ApprovedAt
	}
	return r.RejectedAt
}

type LeaveDetail struct {
	LeaveType            LeaveType
	StartDate            time.Time
	EndDate              time.Time
	StartDuration        Duration
	EndDuration          Duration
	Days                 decimal.Decimal
	Hours                *decimal.Decimal
	Reason               string
	HandoverNotes        *string
	CompensatoryWorkDate *time.Time
}

// Covers reports whether the leave includes the given calendar date.
func (d *LeaveDetail) Covers(date time.Time) bool {
	day := truncateDate(date)
	return !day.Before(truncateDate(d.StartDate)) && !day.After(truncateDate(d.EndDate))
}

type OvertimeDetail struct {
	WorkDate     time.Time
	StartTime    string
	EndTime      string
	BreakMinutes int
	TotalHours   decimal.Decimal
	WorkContent  string
	Reason       string
	ProjectName  *string
}

type HolidayWorkDetail struct {
	WorkDate              time.Time
	StartTime             string
	EndTime               string
	BreakMinutes          int
	TotalHours            decimal.Decimal
	WorkContent           string
	Reason                string
	CompensatoryLeaveDate *time.Time
}

// ExpenseDetail is an advance payment (仮払).
type ExpenseDetail struct {
	SiteName            string
	ApplicationDate     time.Time
	RequestAmount       decimal.Decimal
	Purpose             string
	ReceivedDate        *time.Time
	SettlementRequestID *string
}

type ReimbursementDetail struct {
	SiteName        string
	ApplicationDate time.Time
	TotalAmount     decimal.Decimal
	Lines           []ExpenseLine
}

type SettlementDetail struct {
	AdvanceRequestID     string
	SettlementDate       time.Time
	ExpenseType          string
	AdvancePaymentAmount decimal.Decimal
	TotalAmount          decimal.Decimal
	BalanceAmount        decimal.Decimal
	Lines                []ExpenseLine
}

type ExpenseLine struct {
	ID       string
	LineNo   int
	Date     time.Time
	Item     string
	SiteName *string
	TaxType  TaxType
	Amount   decimal.Decimal
}

type Attachment struct {
	ID          string
	RequestID   string
	FileName    string
	ContentType string
	Size        int64
	StoragePath string
	UploadedBy  string
	CreatedAt   time.Time
}

// SumLines totals the line amounts.
func SumLines(lines []ExpenseLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Amount)
	}
	return total
}

var half = decimal.NewFromFloat(0.5)

// LeaveSpan counts the calendar days between start and end inclusive, taking
// half-day boundaries into account.
func LeaveSpan(start, end time.Time, startDuration, endDuration Duration) decimal.Decimal {
	start, end = truncateDate(start), truncateDate(end)
	if end.Before(start) {
		return decimal.Zero
	}
	days := int(end.Sub(start).Hours()/24) + 1
	span := decimal.NewFromInt(int64(days))

	if days == 1 {
		if startDuration != DurationFull || endDuration != DurationFull {
			return half
		}
		return span
	}
	if startDuration != DurationFull {
		span = span.Sub(half)
	}
	if endDuration != DurationFull {
		span = span.Sub(half)
	}
	return span
}

// WorkedHours returns end - start - break in hours, rounded to 2 places.
// End times earlier than start are rejected; overnight shifts are split by the applicant.
func WorkedHours(start, end string, breakMinutes int) (decimal.Decimal, error) {
	startMin, err := validator.ClockMinutes(start)
	if err != nil {
		return decimal.Zero, err
	}
	endMin, err := validator.ClockMinutes(end)
	if err != nil {
		return decimal.Zero, err
	}
	worked := endMin - startMin - breakMinutes
	if worked <= 0 {
		return decimal.Zero, fmt.Errorf("worked time must be positive")
	}
	return decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(60)).Round(2), nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
