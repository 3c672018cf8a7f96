package report

import (
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST EXPORT
// ========================================

type Format string

const (
	FormatPDF   Format = "pdf"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatCSV || f == FormatExcel
}

// Extension is the file suffix used in download names.
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// ExportHeaders are the column labels of every request export.
var ExportHeaders = []string{
	"申請ID", "申請種類", "申請者名", "申請者メール", "タイトル", "説明",
	"ステータス", "申請日", "承認日", "承認者", "コメント",
}

const exportTimeLayout = "2006-01-02 15:04"

// ExportRow flattens a request into the ExportHeaders columns.
func ExportRow(r request.Request) []string {
	return []string{
		r.ID,
		r.Type.Label(),
		r.ApplicantName,
		r.ApplicantEmail,
		r.Title,
		deref(r.Description),
		r.Status.Label(),
		formatTime(r.AppliedAt),
		formatTime(r.DecidedAt()),
		deref(r.ApproverName),
		deref(r.ApproverComment),
	}
}

// ========================================
// SUMMARY REPORT
// ========================================

// Period bounds a summary by request creation time, [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
}

type SummaryRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Parse validates the dates. Missing bounds default to the current calendar year.
func (r SummaryRequest) Parse(now time.Time) (Period, error) {
	var errs validator.ValidationErrors
	period := Period{
		Start: time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(now.Year()+1, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if r.StartDate != "" {
		if start, ok := validator.IsValidDate(r.StartDate); ok {
			period.Start = start
		} else {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if r.EndDate != "" {
		if end, ok := validator.IsValidDate(r.EndDate); ok {
			period.End = end.AddDate(0, 0, 1)
		} else {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if len(errs) == 0 && !period.End.After(period.Start) {
		errs.Add("end_date", "end_date must not be before start_date")
	}

	return period, errs.Err()
}

type CountRow struct {
	Key        string          `json:"key"`
	Label      string          `json:"label"`
	Count      int64           `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

type MonthlyCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int64  `json:"count"`
}

type SummaryReport struct {
	PeriodStart   string          `json:"period_start"`
	PeriodEnd     string          `json:"period_end"`
	GeneratedAt   string          `json:"generated_at"`
	TotalRequests int64           `json:"total_requests"`
	ByStatus      []CountRow      `json:"by_status"`
	ByType        []CountRow      `json:"by_type"`
	Monthly       []MonthlyCount  `json:"monthly"`
	ApprovalRate  decimal.Decimal `json:"approval_rate"`
}

var hundred = decimal.NewFromInt(100)

// Percentage returns part/total as a percentage with one decimal place.
func Percentage(part, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(total)).Round(1)
}

// BuildSummary assembles the report from raw counts. Rows follow the
// declaration order of statuses and types; the approval rate is approved
// over decided (approved + rejected).
func BuildSummary(period Period, now time.Time, byStatus map[request.Status]int64, byType map[request.Type]int64, monthly []MonthlyCount) SummaryReport {
	var total int64
	for _, n := range byStatus {
		total += n
	}

	report := SummaryReport{
		PeriodStart:   period.Start.Format("2006-01-02"),
		PeriodEnd:     period.End.AddDate(0, 0, -1).Format("2006-01-02"),
		GeneratedAt:   now.Format(time.RFC3339),
		TotalRequests: total,
		Monthly:       monthly,
	}
	if report.Monthly == nil {
		report.Monthly = []MonthlyCount{}
	}

	for _, s := range []request.Status{request.StatusDraft, request.StatusApplied, request.StatusApproved, request.StatusRejected, request.StatusReturned} {
		report.ByStatus = append(report.ByStatus, CountRow{
			Key:        string(s),
			Label:      s.Label(),
			Count:      byStatus[s],
			Percentage: Percentage(byStatus[s], total),
		})
	}
	for _, t := range []request.Type{request.TypeLeave, request.TypeOvertime, request.TypeHolidayWork, request.TypeExpense, request.TypeReimbursement, request.TypeSettlement} {
		report.ByType = append(report.ByType, CountRow{
			Key:        string(t),
			Label:      t.Label(),
			Count:      byType[t],
			Percentage: Percentage(byType[t], total),
		})
	}

	approved, rejected := byStatus[request.StatusApproved], byStatus[request.StatusRejected]
	report.ApprovalRate = Percentage(approved, approved+rejected)
	return report
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportTimeLayout)
}
