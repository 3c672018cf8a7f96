package dailyreport

import (
	"context"
	"fmt"
	"strings"

	"github.com/niwaya/kintai-backend/internal/domain/dailyreport"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
)

// PDF implements dailyreport.ReportService. It renders the A4 工事日報 sheet.
func (s *ReportServiceImpl) PDF(ctx context.Context, actor user.Actor, id string) (export.File, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return export.File{}, err
	}
	if !actor.CanAccessUser(report.UserID) {
		return export.File{}, dailyreport.ErrAccessDenied
	}

	doc := export.NewDocument(s.fontPath, export.OrientationPortrait)
	doc.Title("工事日報")
	doc.RightLine(fmt.Sprintf("作成者: %s", report.UserName))

	doc.KeyValues([]export.Field{
		{Label: "日付", Value: report.ReportDate.Format("2006年01月02日") + " (" + weekday(report) + ")"},
		{Label: "現場名", Value: report.SiteName},
		{Label: "作業場所", Value: report.WorkLocation},
		{Label: "作業時間", Value: report.WorkStartTime + " 〜 " + report.WorkEndTime},
		{Label: "早出", Value: deref(report.EarlyStart)},
		{Label: "残業", Value: deref(report.Overtime)},
		{Label: "作業内容", Value: report.WorkContent},
	}, 30)

	if len(report.Workers) > 0 {
		doc.Section("作業員")
		rows := make([][]string, 0, len(report.Workers))
		for _, w := range report.Workers {
			rows = append(rows, []string{w.Category, w.Name})
		}
		doc.Table([]string{"区分", "氏名"}, []float64{50, 140}, rows, 9)
	}

	if len(report.OwnVehicles) > 0 {
		doc.Section("自社車両")
		rows := make([][]string, 0, len(report.OwnVehicles))
		for _, v := range report.OwnVehicles {
			rows = append(rows, []string{v.Type, v.Name, v.Number, v.Driver, v.Refuel})
		}
		doc.Table([]string{"種類", "車名", "番号", "運転者", "給油"}, nil, rows, 9)
	}

	if len(report.Machinery) > 0 {
		doc.Section("重機")
		rows := make([][]string, 0, len(report.Machinery))
		for _, m := range report.Machinery {
			rows = append(rows, []string{m.Code, m.Type, m.User})
		}
		doc.Table([]string{"コード", "種類", "使用者"}, nil, rows, 9)
	}

	if len(report.OtherMachinery) > 0 {
		doc.Section("その他機械")
		rows := make([][]string, 0, len(report.OtherMachinery))
		for _, m := range report.OtherMachinery {
			rows = append(rows, []string{m.Name, m.Type, m.User, m.Refuel})
		}
		doc.Table([]string{"名称", "種類", "使用者", "給油"}, nil, rows, 9)
	}

	if len(report.LeaseMachines) > 0 {
		doc.Section("リース機械")
		rows := make([][]string, 0, len(report.LeaseMachines))
		for _, m := range report.LeaseMachines {
			rows = append(rows, []string{m.Category, m.Type, m.Driver, m.Count, m.Company})
		}
		doc.Table([]string{"区分", "種類", "運転者", "台数", "リース会社"}, nil, rows, 9)
	}

	if len(report.KYActivities) > 0 {
		doc.Section("KY活動")
		rows := make([][]string, 0, len(report.KYActivities))
		for _, ky := range report.KYActivities {
			check := ""
			if ky.Checked {
				check = "✓"
			}
			rows = append(rows, []string{ky.Hazard, ky.Countermeasure, check})
		}
		doc.Table([]string{"危険予知", "対策", "確認"}, []float64{85, 85, 20}, rows, 9)
	}

	doc.Section("備考")
	doc.KeyValues([]export.Field{
		{Label: "その他資材", Value: deref(report.OtherMaterials)},
		{Label: "顧客要望", Value: deref(report.CustomerRequests)},
		{Label: "事務所確認", Value: deref(report.OfficeConfirmation)},
	}, 30)

	data, err := doc.Bytes()
	if err != nil {
		return export.File{}, err
	}

	stamp := report.ReportDate.Format("20060102")
	return export.File{
		Name:        export.FileName("construction_daily", report.ReportDate, "pdf"),
		UTF8Name:    fmt.Sprintf("工事日報_%s_%s.pdf", stamp, safeName(report.SiteName)),
		ContentType: export.ContentTypePDF,
		Data:        data,
	}, nil
}

func weekday(r dailyreport.Report) string {
	return [...]string{"日", "月", "火", "水", "木", "金", "土"}[r.ReportDate.Weekday()]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// safeName strips characters that break download names.
func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}
