package dailyreport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/dailyreport"
	"github.com/niwaya/kintai-backend/internal/domain/user"
)

type ReportServiceImpl struct {
	dailyreport.ReportRepository
	fontPath string
	now      func() time.Time
}

func NewReportService(reportRepository dailyreport.ReportRepository, fontPath string) dailyreport.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepository,
		fontPath:         fontPath,
		now:              time.Now,
	}
}

// Create implements dailyreport.ReportService.
func (s *ReportServiceImpl) Create(ctx context.Context, actor user.Actor, req dailyreport.ReportRequest) (dailyreport.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.ReportResponse{}, err
	}

	now := s.now()
	report := dailyreport.Report{UserID: actor.ID, CreatedAt: now, UpdatedAt: now}
	req.Apply(&report)

	created, err := s.ReportRepository.Create(ctx, report)
	if err != nil {
		if errors.Is(err, dailyreport.ErrReportExists) {
			return dailyreport.ReportResponse{}, err
		}
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to create daily report: %w", err)
	}

	slog.Info("daily report created", "report_id", created.ID, "user_id", actor.ID, "report_date", req.ReportDate)
	return s.reload(ctx, created.ID)
}

// Get implements dailyreport.ReportService.
func (s *ReportServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (dailyreport.ReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}
	if !actor.CanAccessUser(report.UserID) {
		return dailyreport.ReportResponse{}, dailyreport.ErrAccessDenied
	}
	return dailyreport.ToResponse(report), nil
}

// List implements dailyreport.ReportService. Non-admins only see their own.
func (s *ReportServiceImpl) List(ctx context.Context, actor user.Actor, filter dailyreport.ListFilter) (dailyreport.ListReportResponse, error) {
	if !actor.IsAdmin() {
		own := actor.ID
		filter.UserID = &own
	}

	reports, total, err := s.ReportRepository.List(ctx, filter)
	if err != nil {
		return dailyreport.ListReportResponse{}, fmt.Errorf("failed to list daily reports: %w", err)
	}

	out := dailyreport.ListReportResponse{
		Reports: make([]dailyreport.ReportResponse, 0, len(reports)),
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}
	for _, r := range reports {
		out.Reports = append(out.Reports, dailyreport.ToResponse(r))
	}
	return out, nil
}

// Update implements dailyreport.ReportService. Only the author may edit.
func (s *ReportServiceImpl) Update(ctx context.Context, actor user.Actor, id string, req dailyreport.ReportRequest) (dailyreport.ReportResponse, error) {
	if err := req.Validate(); err != nil {
		return dailyreport.ReportResponse{}, err
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}
	if report.UserID != actor.ID {
		return dailyreport.ReportResponse{}, dailyreport.ErrNotOwner
	}

	req.Apply(&report)
	report.UpdatedAt = s.now()
	if err := s.ReportRepository.Update(ctx, report); err != nil {
		if errors.Is(err, dailyreport.ErrReportExists) || errors.Is(err, dailyreport.ErrReportNotFound) {
			return dailyreport.ReportResponse{}, err
		}
		return dailyreport.ReportResponse{}, fmt.Errorf("failed to update daily report: %w", err)
	}

	return s.reload(ctx, id)
}

// Delete implements dailyreport.ReportService. Admins may delete any report.
func (s *ReportServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	report, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if report.UserID != actor.ID && !actor.IsAdmin() {
		return dailyreport.ErrNotOwner
	}

	if err := s.ReportRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, dailyreport.ErrReportNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete daily report: %w", err)
	}

	slog.Info("daily report deleted", "report_id", id, "deleted_by", actor.ID)
	return nil
}

func (s *ReportServiceImpl) load(ctx context.Context, id string) (dailyreport.Report, error) {
	report, err := s.ReportRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, dailyreport.ErrReportNotFound) {
			return dailyreport.Report{}, err
		}
		return dailyreport.Report{}, fmt.Errorf("failed to get daily report: %w", err)
	}
	return report, nil
}

func (s *ReportServiceImpl) reload(ctx context.Context, id string) (dailyreport.ReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return dailyreport.ReportResponse{}, err
	}
	return dailyreport.ToResponse(report), nil
}
