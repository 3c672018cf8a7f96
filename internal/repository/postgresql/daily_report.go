package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/niwaya/kintai-backend/internal/domain/dailyreport"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type dailyReportRepositoryImpl struct {
	db *database.DB
}

func NewDailyReportRepository(db *database.DB) dailyreport.ReportRepository {
	return &dailyReportRepositoryImpl{db: db}
}

const dailyReportSelect = `
	SELECT d.id, d.user_id, d.report_date, d.site_name, d.work_location, d.work_content, d.early_start,
		d.work_start_time, d.work_end_time, d.overtime, d.workers, d.own_vehicles, d.machinery,
		d.other_machinery, d.lease_machines, d.ky_activities, d.other_materials, d.customer_requests,
		d.office_confirmation, d.created_at, d.updated_at, u.name
	FROM construction_daily_reports d
	JOIN users u ON u.id = d.user_id
`

func scanDailyReport(row pgx.Row) (dailyreport.Report, error) {
	var rep dailyreport.Report
	err := row.Scan(
		&rep.ID, &rep.UserID, &rep.ReportDate, &rep.SiteName, &rep.WorkLocation, &rep.WorkContent, &rep.EarlyStart,
		&rep.WorkStartTime, &rep.WorkEndTime, &rep.Overtime, &rep.Workers, &rep.OwnVehicles, &rep.Machinery,
		&rep.OtherMachinery, &rep.LeaseMachines, &rep.KYActivities, &rep.OtherMaterials, &rep.CustomerRequests,
		&rep.OfficeConfirmation, &rep.CreatedAt, &rep.UpdatedAt, &rep.UserName,
	)
	return rep, err
}

// jsonList keeps empty lists as [] so the NOT NULL JSONB columns never see NULL.
func jsonList[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Create implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) Create(ctx context.Context, rep dailyreport.Report) (dailyreport.Report, error) {
	q := GetQuerier(ctx, r.db)

	if rep.ID == "" {
		rep.ID = newID()
	}

	query := `
		INSERT INTO construction_daily_reports (
			id, user_id, report_date, site_name, work_location, work_content, early_start, work_start_time,
			work_end_time, overtime, workers, own_vehicles, machinery, other_machinery, lease_machines,
			ky_activities, other_materials, customer_requests, office_confirmation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query,
		rep.ID, rep.UserID, rep.ReportDate, rep.SiteName, rep.WorkLocation, rep.WorkContent, rep.EarlyStart,
		rep.WorkStartTime, rep.WorkEndTime, rep.Overtime,
		jsonList(rep.Workers), jsonList(rep.OwnVehicles), jsonList(rep.Machinery),
		jsonList(rep.OtherMachinery), jsonList(rep.LeaseMachines), jsonList(rep.KYActivities),
		rep.OtherMaterials, rep.CustomerRequests, rep.OfficeConfirmation,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return dailyreport.Report{}, dailyreport.ErrReportExists
		}
		return dailyreport.Report{}, fmt.Errorf("failed to insert daily report: %w", err)
	}
	return rep, nil
}

// GetByID implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) GetByID(ctx context.Context, id string) (dailyreport.Report, error) {
	q := GetQuerier(ctx, r.db)

	rep, err := scanDailyReport(q.QueryRow(ctx, dailyReportSelect+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dailyreport.Report{}, dailyreport.ErrReportNotFound
		}
		return dailyreport.Report{}, fmt.Errorf("failed to get daily report %s: %w", id, err)
	}
	return rep, nil
}

// List implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) List(ctx context.Context, filter dailyreport.ListFilter) ([]dailyreport.Report, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("d.user_id = $%d", argIdx))
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("d.report_date >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("d.report_date <= $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM construction_daily_reports d`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count daily reports: %w", err)
	}

	query := dailyReportSelect + where + ` ORDER BY d.report_date DESC, d.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list daily reports: %w", err)
	}
	defer rows.Close()

	reports := []dailyreport.Report{}
	for rows.Next() {
		rep, err := scanDailyReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan daily report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

// Update implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) Update(ctx context.Context, rep dailyreport.Report) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE construction_daily_reports SET
			report_date = $1, site_name = $2, work_location = $3, work_content = $4, early_start = $5,
			work_start_time = $6, work_end_time = $7, overtime = $8, workers = $9, own_vehicles = $10,
			machinery = $11, other_machinery = $12, lease_machines = $13, ky_activities = $14,
			other_materials = $15, customer_requests = $16, office_confirmation = $17, updated_at = NOW()
		WHERE id = $18
	`
	tag, err := q.Exec(ctx, query,
		rep.ReportDate, rep.SiteName, rep.WorkLocation, rep.WorkContent, rep.EarlyStart,
		rep.WorkStartTime, rep.WorkEndTime, rep.Overtime,
		jsonList(rep.Workers), jsonList(rep.OwnVehicles), jsonList(rep.Machinery),
		jsonList(rep.OtherMachinery), jsonList(rep.LeaseMachines), jsonList(rep.KYActivities),
		rep.OtherMaterials, rep.CustomerRequests, rep.OfficeConfirmation, rep.ID,
	)
	if err != nil {
		if _, dup := uniqueViolation(err); dup {
			return dailyreport.ErrReportExists
		}
		return fmt.Errorf("failed to update daily report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dailyreport.ErrReportNotFound
	}
	return nil
}

// Delete implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM construction_daily_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete daily report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dailyreport.ErrReportNotFound
	}
	return nil
}

// UserIDsReportedOn implements dailyreport.ReportRepository.
func (r *dailyReportRepositoryImpl) UserIDsReportedOn(ctx context.Context, date time.Time) (map[string]bool, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT user_id FROM construction_daily_reports WHERE report_date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list reporters: %w", err)
	}
	defer rows.Close()

	reported := make(map[string]bool)
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		reported[userID] = true
	}
	return reported, rows.Err()
}
