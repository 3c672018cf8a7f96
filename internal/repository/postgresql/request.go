package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/niwaya/kintai-backend/internal/domain/request"
	"github.com/niwaya/kintai-backend/internal/pkg/database"
)

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

const requestSelect = `
	SELECT r.id, r.type, r.applicant_id, r.approver_id, r.status, r.title, r.description, r.approver_comment,
		r.created_at, r.applied_at, r.approved_at, r.rejected_at, r.returned_at, r.updated_at,
		a.name, a.email, ap.name
	FROM requests r
	JOIN users a ON a.id = r.applicant_id
	LEFT JOIN users ap ON ap.id = r.approver_id
`

func scanRequest(row pgx.Row) (request.Request, error) {
	var req request.Request
	err := row.Scan(
		&req.ID,
		&req.Type,
		&req.ApplicantID,
		&req.ApproverID,
		&req.Status,
		&req.Title,
		&req.Description,
		&req.ApproverComment,
		&req.CreatedAt,
		&req.AppliedAt,
		&req.ApprovedAt,
		&req.RejectedAt,
		&req.ReturnedAt,
		&req.UpdatedAt,
		&req.ApplicantName,
		&req.ApplicantEmail,
		&req.ApproverName,
	)
	return req, err
}

// Create implements request.RequestRepository. The envelope, its detail row
// and any expense lines are written with the querier from ctx, so callers
// wrap it in a transaction.
func (r *requestRepositoryImpl) Create(ctx context.Context, req request.Request) (request.Request, error) {
	q := GetQuerier(ctx, r.db)

	if req.ID == "" {
		req.ID = newID()
	}

	query := `
		INSERT INTO requests (id, type, applicant_id, status, title, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := q.QueryRow(ctx, query, req.ID, req.Type, req.ApplicantID, req.Status, req.Title, req.Description).
		Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to insert request: %w", err)
	}

	if err := r.insertDetail(ctx, q, &req); err != nil {
		return request.Request{}, err
	}
	return req, nil
}

func (r *requestRepositoryImpl) insertDetail(ctx context.Context, q database.Querier, req *request.Request) error {
	var err error
	switch req.Type {
	case request.TypeLeave:
		d := req.Leave
		_, err = q.Exec(ctx, `
			INSERT INTO leave_requests (request_id, leave_type, start_date, end_date, start_duration, end_duration,
				days, hours, reason, handover_notes, compensatory_work_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			req.ID, d.LeaveType, d.StartDate, d.EndDate, d.StartDuration, d.EndDuration,
			d.Days, d.Hours, d.Reason, d.HandoverNotes, d.CompensatoryWorkDate)
	case request.TypeOvertime:
		d := req.Overtime
		_, err = q.Exec(ctx, `
			INSERT INTO overtime_requests (request_id, work_date, start_time, end_time, break_minutes, total_hours,
				work_content, reason, project_name)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			req.ID, d.WorkDate, d.StartTime, d.EndTime, d.BreakMinutes, d.TotalHours, d.WorkContent, d.Reason, d.ProjectName)
	case request.TypeHolidayWork:
		d := req.HolidayWork
		_, err = q.Exec(ctx, `
			INSERT INTO holiday_work_requests (request_id, work_date, start_time, end_time, break_minutes, total_hours,
				work_content, reason, compensatory_leave_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			req.ID, d.WorkDate, d.StartTime, d.EndTime, d.BreakMinutes, d.TotalHours, d.WorkContent, d.Reason, d.CompensatoryLeaveDate)
	case request.TypeExpense:
		d := req.Expense
		_, err = q.Exec(ctx, `
			INSERT INTO expense_requests (request_id, site_name, application_date, request_amount, purpose)
			VALUES ($1, $2, $3, $4, $5)`,
			req.ID, d.SiteName, d.ApplicationDate, d.RequestAmount, d.Purpose)
	case request.TypeReimbursement:
		d := req.Reimbursement
		_, err = q.Exec(ctx, `
			INSERT INTO reimbursement_requests (request_id, site_name, application_date, total_amount)
			VALUES ($1, $2, $3, $4)`,
			req.ID, d.SiteName, d.ApplicationDate, d.TotalAmount)
		if err == nil {
			err = r.insertLines(ctx, q, req.ID, d.Lines)
		}
	case request.TypeSettlement:
		d := req.Settlement
		_, err = q.Exec(ctx, `
			INSERT INTO settlement_requests (request_id, advance_request_id, expense_type, settlement_date,
				advance_payment_amount, total_amount, balance_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			req.ID, d.AdvanceRequestID, d.ExpenseType, d.SettlementDate, d.AdvancePaymentAmount, d.TotalAmount, d.BalanceAmount)
		if err == nil {
			err = r.insertLines(ctx, q, req.ID, d.Lines)
		}
	default:
		return fmt.Errorf("no detail table for request type %q", req.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to insert %s detail: %w", req.Type, err)
	}
	return nil
}

func (r *requestRepositoryImpl) insertLines(ctx context.Context, q database.Querier, requestID string, lines []request.ExpenseLine) error {
	query := `
		INSERT INTO expense_lines (id, request_id, line_no, line_date, item, site_name, tax_type, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range lines {
		l := &lines[i]
		if l.ID == "" {
			l.ID = newID()
		}
		if _, err := q.Exec(ctx, query, l.ID, requestID, l.LineNo, l.Date, l.Item, l.SiteName, l.TaxType, l.Amount); err != nil {
			return fmt.Errorf("line %d: %w", l.LineNo, err)
		}
	}
	return nil
}

// GetByID implements request.RequestRepository.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (request.Request, error) {
	return r.get(ctx, requestSelect+` WHERE r.id = $1`, id)
}

// GetByIDForUpdate implements request.RequestRepository.
func (r *requestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (request.Request, error) {
	return r.get(ctx, requestSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id)
}

func (r *requestRepositoryImpl) get(ctx context.Context, query, id string) (request.Request, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrRequestNotFound
		}
		return request.Request{}, fmt.Errorf("failed to get request %s: %w", id, err)
	}

	reqs := []request.Request{req}
	if err := r.loadDetails(ctx, q, reqs); err != nil {
		return request.Request{}, err
	}
	return reqs[0], nil
}

// List implements request.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, filter request.ListFilter) ([]request.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("r.type = $%d", argIdx))
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.ApplicantID != nil {
		conditions = append(conditions, fmt.Sprintf("r.applicant_id = $%d", argIdx))
		args = append(args, *filter.ApplicantID)
		argIdx++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("r.created_at >= $%d", argIdx))
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("r.created_at < $%d", argIdx))
		args = append(args, *filter.To)
		argIdx++
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM requests r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count requests: %w", err)
	}

	query := requestSelect + where + ` ORDER BY r.created_at DESC, r.id DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	reqs := []request.Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan request: %w", err)
		}
		reqs = append(reqs, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadDetails(ctx, q, reqs); err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

// loadDetails fills the type-specific detail of every request with one query
// per detail table.
func (r *requestRepositoryImpl) loadDetails(ctx context.Context, q database.Querier, reqs []request.Request) error {
	if len(reqs) == 0 {
		return nil
	}

	byType := make(map[request.Type][]string)
	index := make(map[string]*request.Request, len(reqs))
	for i := range reqs {
		byType[reqs[i].Type] = append(byType[reqs[i].Type], reqs[i].ID)
		index[reqs[i].ID] = &reqs[i]
	}

	if ids := byType[request.TypeLeave]; len(ids) > 0 {
		if err := loadLeaveDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}
	if ids := byType[request.TypeOvertime]; len(ids) > 0 {
		if err := loadOvertimeDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}
	if ids := byType[request.TypeHolidayWork]; len(ids) > 0 {
		if err := loadHolidayWorkDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}
	if ids := byType[request.TypeExpense]; len(ids) > 0 {
		if err := loadExpenseDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}
	if ids := byType[request.TypeReimbursement]; len(ids) > 0 {
		if err := loadReimbursementDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}
	if ids := byType[request.TypeSettlement]; len(ids) > 0 {
		if err := loadSettlementDetails(ctx, q, ids, index); err != nil {
			return err
		}
	}

	lineIDs := append(append([]string{}, byType[request.TypeReimbursement]...), byType[request.TypeSettlement]...)
	if len(lineIDs) > 0 {
		return loadLines(ctx, q, lineIDs, index)
	}
	return nil
}

func loadLeaveDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, leave_type, start_date, end_date, start_duration, end_duration, days, hours,
			reason, handover_notes, compensatory_work_date
		FROM leave_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load leave details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.LeaveDetail
		if err := rows.Scan(&id, &d.LeaveType, &d.StartDate, &d.EndDate, &d.StartDuration, &d.EndDuration,
			&d.Days, &d.Hours, &d.Reason, &d.HandoverNotes, &d.CompensatoryWorkDate); err != nil {
			return fmt.Errorf("failed to scan leave detail: %w", err)
		}
		index[id].Leave = &d
	}
	return rows.Err()
}

func loadOvertimeDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, work_date, start_time, end_time, break_minutes, total_hours, work_content, reason, project_name
		FROM overtime_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load overtime details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.OvertimeDetail
		if err := rows.Scan(&id, &d.WorkDate, &d.StartTime, &d.EndTime, &d.BreakMinutes, &d.TotalHours,
			&d.WorkContent, &d.Reason, &d.ProjectName); err != nil {
			return fmt.Errorf("failed to scan overtime detail: %w", err)
		}
		index[id].Overtime = &d
	}
	return rows.Err()
}

func loadHolidayWorkDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, work_date, start_time, end_time, break_minutes, total_hours, work_content, reason,
			compensatory_leave_date
		FROM holiday_work_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load holiday work details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.HolidayWorkDetail
		if err := rows.Scan(&id, &d.WorkDate, &d.StartTime, &d.EndTime, &d.BreakMinutes, &d.TotalHours,
			&d.WorkContent, &d.Reason, &d.CompensatoryLeaveDate); err != nil {
			return fmt.Errorf("failed to scan holiday work detail: %w", err)
		}
		index[id].HolidayWork = &d
	}
	return rows.Err()
}

func loadExpenseDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, site_name, application_date, request_amount, purpose, received_date, settlement_request_id
		FROM expense_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load expense details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.ExpenseDetail
		if err := rows.Scan(&id, &d.SiteName, &d.ApplicationDate, &d.RequestAmount, &d.Purpose,
			&d.ReceivedDate, &d.SettlementRequestID); err != nil {
			return fmt.Errorf("failed to scan expense detail: %w", err)
		}
		index[id].Expense = &d
	}
	return rows.Err()
}

func loadReimbursementDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, site_name, application_date, total_amount
		FROM reimbursement_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load reimbursement details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.ReimbursementDetail
		if err := rows.Scan(&id, &d.SiteName, &d.ApplicationDate, &d.TotalAmount); err != nil {
			return fmt.Errorf("failed to scan reimbursement detail: %w", err)
		}
		index[id].Reimbursement = &d
	}
	return rows.Err()
}

func loadSettlementDetails(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT request_id, advance_request_id, expense_type, settlement_date, advance_payment_amount,
			total_amount, balance_amount
		FROM settlement_requests WHERE request_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to load settlement details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var d request.SettlementDetail
		if err := rows.Scan(&id, &d.AdvanceRequestID, &d.ExpenseType, &d.SettlementDate, &d.AdvancePaymentAmount,
			&d.TotalAmount, &d.BalanceAmount); err != nil {
			return fmt.Errorf("failed to scan settlement detail: %w", err)
		}
		index[id].Settlement = &d
	}
	return rows.Err()
}

func loadLines(ctx context.Context, q database.Querier, ids []string, index map[string]*request.Request) error {
	rows, err := q.Query(ctx, `
		SELECT id, request_id, line_no, line_date, item, site_name, tax_type, amount
		FROM expense_lines WHERE request_id = ANY($1)
		ORDER BY request_id, line_no`, ids)
	if err != nil {
		return fmt.Errorf("failed to load expense lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var requestID string
		var l request.ExpenseLine
		if err := rows.Scan(&l.ID, &requestID, &l.LineNo, &l.Date, &l.Item, &l.SiteName, &l.TaxType, &l.Amount); err != nil {
			return fmt.Errorf("failed to scan expense line: %w", err)
		}
		req := index[requestID]
		switch {
		case req.Reimbursement != nil:
			req.Reimbursement.Lines = append(req.Reimbursement.Lines, l)
		case req.Settlement != nil:
			req.Settlement.Lines = append(req.Settlement.Lines, l)
		}
	}
	return rows.Err()
}

var statusTimestampColumn = map[request.Status]string{
	request.StatusApplied:  "applied_at",
	request.StatusApproved: "approved_at",
	request.StatusRejected: "rejected_at",
	request.StatusReturned: "returned_at",
}

// UpdateStatus implements request.RequestRepository. The write only lands
// while the row is still in update.From; otherwise ErrStatusChanged.
func (r *requestRepositoryImpl) UpdateStatus(ctx context.Context, update request.StatusUpdate) error {
	q := GetQuerier(ctx, r.db)

	column, ok := statusTimestampColumn[update.To]
	if !ok {
		return fmt.Errorf("no timestamp column for status %q", update.To)
	}

	var (
		query string
		args  []interface{}
	)
	if update.To == request.StatusApplied {
		query = fmt.Sprintf(`
			UPDATE requests SET status = $1, %s = $2, updated_at = $2
			WHERE id = $3 AND status = $4`, column)
		args = []interface{}{update.To, update.At, update.ID, update.From}
	} else {
		query = fmt.Sprintf(`
			UPDATE requests SET status = $1, %s = $2, updated_at = $2, approver_id = $3, approver_comment = $4
			WHERE id = $5 AND status = $6`, column)
		args = []interface{}{update.To, update.At, update.ApproverID, update.Comment, update.ID, update.From}
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return request.ErrStatusChanged
	}
	return nil
}

// Delete implements request.RequestRepository. Detail rows, lines and
// attachment rows go with the envelope through ON DELETE CASCADE.
func (r *requestRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return request.ErrRequestNotFound
	}
	return nil
}

// SetReceivedDate implements request.RequestRepository.
func (r *requestRepositoryImpl) SetReceivedDate(ctx context.Context, advanceID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE expense_requests SET received_date = $1 WHERE request_id = $2`, date, advanceID)
	if err != nil {
		return fmt.Errorf("failed to set received date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return request.ErrAdvanceNotFound
	}
	return nil
}

// LinkSettlement implements request.RequestRepository.
func (r *requestRepositoryImpl) LinkSettlement(ctx context.Context, advanceID, settlementID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE expense_requests SET settlement_request_id = $1
		WHERE request_id = $2 AND settlement_request_id IS NULL`, settlementID, advanceID)
	if err != nil {
		return fmt.Errorf("failed to link settlement: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM expense_requests WHERE request_id = $1)`, advanceID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check advance: %w", err)
	}
	if !exists {
		return request.ErrAdvanceNotFound
	}
	return request.ErrAdvanceAlreadySettled
}

type attachmentRepositoryImpl struct {
	db *database.DB
}

func NewAttachmentRepository(db *database.DB) request.AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

const attachmentColumns = `id, request_id, file_name, content_type, size, storage_path, uploaded_by, created_at`

func scanAttachment(row pgx.Row) (request.Attachment, error) {
	var a request.Attachment
	err := row.Scan(&a.ID, &a.RequestID, &a.FileName, &a.ContentType, &a.Size, &a.StoragePath, &a.UploadedBy, &a.CreatedAt)
	return a, err
}

// Create implements request.AttachmentRepository.
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment request.Attachment) (request.Attachment, error) {
	q := GetQuerier(ctx, r.db)

	if attachment.ID == "" {
		attachment.ID = newID()
	}

	query := `
		INSERT INTO request_attachments (id, request_id, file_name, content_type, size, storage_path, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + attachmentColumns

	created, err := scanAttachment(q.QueryRow(ctx, query,
		attachment.ID,
		attachment.RequestID,
		attachment.FileName,
		attachment.ContentType,
		attachment.Size,
		attachment.StoragePath,
		attachment.UploadedBy,
	))
	if err != nil {
		return request.Attachment{}, fmt.Errorf("failed to insert attachment: %w", err)
	}
	return created, nil
}

// GetByID implements request.AttachmentRepository.
func (r *attachmentRepositoryImpl) GetByID(ctx context.Context, requestID, id string) (request.Attachment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attachmentColumns + ` FROM request_attachments WHERE id = $1 AND request_id = $2`
	a, err := scanAttachment(q.QueryRow(ctx, query, id, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Attachment{}, request.ErrAttachmentNotFound
		}
		return request.Attachment{}, fmt.Errorf("failed to get attachment: %w", err)
	}
	return a, nil
}

// ListByRequest implements request.AttachmentRepository.
func (r *attachmentRepositoryImpl) ListByRequest(ctx context.Context, requestID string) ([]request.Attachment, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+attachmentColumns+` FROM request_attachments WHERE request_id = $1 ORDER BY created_at, id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	attachments := []request.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
