package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/report"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/export"
	"golang.org/x/sync/errgroup"
)

type ReportServiceImpl struct {
	report.ReportRepository
	requests request.RequestRepository
	fontPath string
	now      func() time.Time
}

func NewReportService(reportRepo report.ReportRepository, requestRepo request.RequestRepository, fontPath string) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepo,
		requests:         requestRepo,
		fontPath:         fontPath,
		now:              time.Now,
	}
}

// ExportRequests implements report.ReportService. Pagination is ignored so
// the file holds every matching request.
func (s *ReportServiceImpl) ExportRequests(ctx context.Context, actor user.Actor, filter request.ListFilter, format report.Format) (export.File, error) {
	if !format.Valid() {
		return export.File{}, report.ErrUnsupportedFormat
	}
	if !actor.IsAdmin() {
		own := actor.ID
		filter.ApplicantID = &own
	}
	filter.Limit, filter.Offset = 0, 0

	requests, _, err := s.requests.List(ctx, filter)
	if err != nil {
		return export.File{}, fmt.Errorf("failed to list requests for export: %w", err)
	}

	rows := make([][]string, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, report.ExportRow(r))
	}

	now := s.now()
	file := export.File{Name: export.FileName("requests", now, format.Extension())}

	switch format {
	case report.FormatCSV:
		file.ContentType = export.ContentTypeCSV
		file.Data, err = export.CSV(report.ExportHeaders, rows)
	case report.FormatExcel:
		file.ContentType = export.ContentTypeXLSX
		file.Data, err = export.XLSX("申請一覧", report.ExportHeaders, rows)
	case report.FormatPDF:
		file.ContentType = export.ContentTypePDF
		file.Data, err = s.requestsPDF(now, rows)
	}
	if err != nil {
		return export.File{}, err
	}

	slog.Info("requests exported", "user_id", actor.ID, "format", format, "rows", len(rows))
	return file, nil
}

// Summary implements report.ReportService. The three counts run concurrently.
func (s *ReportServiceImpl) Summary(ctx context.Context, actor user.Actor, period report.Period) (report.SummaryReport, error) {
	if !actor.CanApprove() {
		return report.SummaryReport{}, report.ErrReportAccess
	}

	var (
		byStatus map[request.Status]int64
		byType   map[request.Type]int64
		monthly  []report.MonthlyCount
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.ReportRepository.CountByStatus(gCtx, period)
		if err != nil {
			return fmt.Errorf("failed to count requests by status: %w", err)
		}
		byStatus = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.ReportRepository.CountByType(gCtx, period)
		if err != nil {
			return fmt.Errorf("failed to count requests by type: %w", err)
		}
		byType = counts
		return nil
	})
	g.Go(func() error {
		counts, err := s.ReportRepository.CountByAppliedMonth(gCtx, period)
		if err != nil {
			return fmt.Errorf("failed to count requests by month: %w", err)
		}
		monthly = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.SummaryReport{}, err
	}

	return report.BuildSummary(period, s.now(), byStatus, byType, monthly), nil
}
