package dailyreport

import (
	"strings"
	"time"

	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

// ReportRequest is the create and update body. List sizes match the paper form.
type ReportRequest struct {
	ReportDate         string           `json:"report_date" validate:"required,datetime=2006-01-02"`
	SiteName           string           `json:"site_name" validate:"required,max=200"`
	WorkLocation       string           `json:"work_location" validate:"required,max=200"`
	WorkContent        string           `json:"work_content" validate:"required"`
	EarlyStart         *string          `json:"early_start,omitempty" validate:"omitempty,clock"`
	WorkStartTime      string           `json:"work_start_time" validate:"required,clock"`
	WorkEndTime        string           `json:"work_end_time" validate:"required,clock"`
	Overtime           *string          `json:"overtime,omitempty" validate:"omitempty,max=20"`
	Workers            []Worker         `json:"workers" validate:"max=6,dive"`
	OwnVehicles        []OwnVehicle     `json:"own_vehicles" validate:"max=4,dive"`
	Machinery          []Machinery      `json:"machinery" validate:"max=6,dive"`
	OtherMachinery     []OtherMachinery `json:"other_machinery" validate:"max=4,dive"`
	LeaseMachines      []LeaseMachine   `json:"lease_machines" validate:"max=4,dive"`
	KYActivities       []KYActivity     `json:"ky_activities" validate:"max=5,dive"`
	OtherMaterials     *string          `json:"other_materials,omitempty"`
	CustomerRequests   *string          `json:"customer_requests,omitempty"`
	OfficeConfirmation *string          `json:"office_confirmation,omitempty"`
}

func (r *ReportRequest) Validate() error {
	errs := validator.Struct(r)

	if validator.IsValidClock(r.WorkStartTime) && validator.IsValidClock(r.WorkEndTime) {
		start, _ := validator.ClockMinutes(r.WorkStartTime)
		end, _ := validator.ClockMinutes(r.WorkEndTime)
		if end <= start {
			errs.Add("work_end_time", "must be after work_start_time")
		}
	}

	return errs.Err()
}

// Apply copies the validated body onto report.
func (r *ReportRequest) Apply(report *Report) {
	report.ReportDate, _ = time.Parse(dateLayout, r.ReportDate)
	report.SiteName = strings.TrimSpace(r.SiteName)
	report.WorkLocation = strings.TrimSpace(r.WorkLocation)
	report.WorkContent = r.WorkContent
	report.EarlyStart = emptyToNil(r.EarlyStart)
	report.WorkStartTime = r.WorkStartTime
	report.WorkEndTime = r.WorkEndTime
	report.Overtime = emptyToNil(r.Overtime)
	report.Workers = orEmpty(r.Workers)
	report.OwnVehicles = orEmpty(r.OwnVehicles)
	report.Machinery = orEmpty(r.Machinery)
	report.OtherMachinery = orEmpty(r.OtherMachinery)
	report.LeaseMachines = orEmpty(r.LeaseMachines)
	report.KYActivities = orEmpty(r.KYActivities)
	report.OtherMaterials = r.OtherMaterials
	report.CustomerRequests = r.CustomerRequests
	report.OfficeConfirmation = r.OfficeConfirmation
}

type ReportResponse struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	UserName           string           `json:"user_name,omitempty"`
	ReportDate         string           `json:"report_date"`
	SiteName           string           `json:"site_name"`
	WorkLocation       string           `json:"work_location"`
	WorkContent        string           `json:"work_content"`
	EarlyStart         *string          `json:"early_start,omitempty"`
	WorkStartTime      string           `json:"work_start_time"`
	WorkEndTime        string           `json:"work_end_time"`
	Overtime           *string          `json:"overtime,omitempty"`
	Workers            []Worker         `json:"workers"`
	OwnVehicles        []OwnVehicle     `json:"own_vehicles"`
	Machinery          []Machinery      `json:"machinery"`
	OtherMachinery     []OtherMachinery `json:"other_machinery"`
	LeaseMachines      []LeaseMachine   `json:"lease_machines"`
	KYActivities       []KYActivity     `json:"ky_activities"`
	OtherMaterials     *string          `json:"other_materials,omitempty"`
	CustomerRequests   *string          `json:"customer_requests,omitempty"`
	OfficeConfirmation *string          `json:"office_confirmation,omitempty"`
	CreatedAt          string           `json:"created_at"`
	UpdatedAt          string           `json:"updated_at"`
}

func ToResponse(r Report) ReportResponse {
	return ReportResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		UserName:           r.UserName,
		ReportDate:         r.ReportDate.Format(dateLayout),
		SiteName:           r.SiteName,
		WorkLocation:       r.WorkLocation,
		WorkContent:        r.WorkContent,
		EarlyStart:         r.EarlyStart,
		WorkStartTime:      r.WorkStartTime,
		WorkEndTime:        r.WorkEndTime,
		Overtime:           r.Overtime,
		Workers:            orEmpty(r.Workers),
		OwnVehicles:        orEmpty(r.OwnVehicles),
		Machinery:          orEmpty(r.Machinery),
		OtherMachinery:     orEmpty(r.OtherMachinery),
		LeaseMachines:      orEmpty(r.LeaseMachines),
		KYActivities:       orEmpty(r.KYActivities),
		OtherMaterials:     r.OtherMaterials,
		CustomerRequests:   r.CustomerRequests,
		OfficeConfirmation: r.OfficeConfirmation,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          r.UpdatedAt.Format(time.RFC3339),
	}
}

type ListFilter struct {
	UserID *string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

type ListQuery struct {
	UserID string
	From   string
	To     string
	Limit  int
	Offset int
}

func (q ListQuery) Parse() (ListFilter, error) {
	var errs validator.ValidationErrors
	var filter ListFilter

	if q.UserID != "" {
		id := q.UserID
		filter.UserID = &id
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

type ListReportResponse struct {
	Reports []ReportResponse `json:"reports"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
