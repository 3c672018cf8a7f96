package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/report"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
)

var (
	// Only the columns that fit a landscape page; the full set is in CSV/XLSX.
	pdfColumns  = []int{1, 2, 4, 6, 7, 8, 9}
	pdfWidths   = []float64{32, 36, 80, 24, 34, 34, 37}
	countWidths = []float64{90, 50, 50}
)

func (s *ReportServiceImpl) requestsPDF(now time.Time, rows [][]string) ([]byte, error) {
	doc := export.NewDocument(s.fontPath, export.OrientationLandscape)
	doc.Title("申請一覧")
	doc.RightLine("出力日時: " + now.Format("2006/01/02 15:04"))
	doc.RightLine(fmt.Sprintf("件数: %d", len(rows)))

	headers := make([]string, len(pdfColumns))
	for i, c := range pdfColumns {
		headers[i] = report.ExportHeaders[c]
	}
	narrowed := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(pdfColumns))
		for j, c := range pdfColumns {
			cells[j] = row[c]
		}
		narrowed[i] = cells
	}
	doc.Table(headers, pdfWidths, narrowed, 8)

	return doc.Bytes()
}

// SummaryPDF implements report.ReportService.
func (s *ReportServiceImpl) SummaryPDF(ctx context.Context, actor user.Actor, period report.Period) (export.File, error) {
	summary, err := s.Summary(ctx, actor, period)
	if err != nil {
		return export.File{}, err
	}

	doc := export.NewDocument(s.fontPath, export.OrientationPortrait)
	doc.Title("申請集計レポート")
	doc.RightLine(fmt.Sprintf("対象期間: %s 〜 %s", summary.PeriodStart, summary.PeriodEnd))

	doc.KeyValues([]export.Field{
		{Label: "総申請数", Value: strconv.FormatInt(summary.TotalRequests, 10)},
		{Label: "承認率", Value: summary.ApprovalRate.StringFixed(1) + "%"},
	}, 40)

	doc.Section("ステータス別")
	doc.Table([]string{"ステータス", "件数", "割合"}, countWidths, countRows(summary.ByStatus), 9)

	doc.Section("申請種類別")
	doc.Table([]string{"申請種類", "件数", "割合"}, countWidths, countRows(summary.ByType), 9)

	if len(summary.Monthly) > 0 {
		doc.Section("月別申請数")
		rows := make([][]string, 0, len(summary.Monthly))
		for _, m := range summary.Monthly {
			rows = append(rows, []string{m.Month, strconv.FormatInt(m.Count, 10)})
		}
		doc.Table([]string{"月", "件数"}, []float64{90, 50}, rows, 9)
	}

	data, err := doc.Bytes()
	if err != nil {
		return export.File{}, err
	}
	return export.File{
		Name:        export.FileName("summary", s.now(), "pdf"),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, nil
}

func countRows(counts []report.CountRow) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, strconv.FormatInt(c.Count, 10), c.Percentage.StringFixed(1) + "%"})
	}
	return rows
}
