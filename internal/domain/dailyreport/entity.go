package dailyreport

import "time"

// Report is a construction daily report (工事日報). One per user and date,
// logged directly without approval.
type Report struct {
	ID                 string
	UserID             string
	ReportDate         time.Time
	SiteName           string
	WorkLocation       string
	WorkContent        string
	EarlyStart         *string
	WorkStartTime      string
	WorkEndTime        string
	Overtime           *string
	Workers            []Worker
	OwnVehicles        []OwnVehicle
	Machinery          []Machinery
	OtherMachinery     []OtherMachinery
	LeaseMachines      []LeaseMachine
	KYActivities       []KYActivity
	OtherMaterials     *string
	CustomerRequests   *string
	OfficeConfirmation *string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	UserName string
}

// List items are stored as JSONB arrays and share the JSON shape of the API.

type Worker struct {
	Category string `json:"category" validate:"max=50"`
	Name     string `json:"name" validate:"required,max=100"`
}

type OwnVehicle struct {
	VehicleID string `json:"vehicle_id" validate:"max=50"`
	Type      string `json:"type" validate:"max=50"`
	Name      string `json:"name" validate:"max=100"`
	Number    string `json:"number" validate:"max=50"`
	Driver    string `json:"driver" validate:"max=100"`
	Refuel    string `json:"refuel" validate:"max=50"`
}

type Machinery struct {
	MachineryID string `json:"machinery_id" validate:"max=50"`
	Code        string `json:"code" validate:"max=50"`
	Type        string `json:"type" validate:"max=50"`
	User        string `json:"user" validate:"max=100"`
}

type OtherMachinery struct {
	MachineryID string `json:"machinery_id" validate:"max=50"`
	Name        string `json:"name" validate:"max=100"`
	Type        string `json:"type" validate:"max=50"`
	User        string `json:"user" validate:"max=100"`
	Refuel      string `json:"refuel" validate:"max=50"`
}

type LeaseMachine struct {
	Category string `json:"category" validate:"max=50"`
	Type     string `json:"type" validate:"max=50"`
	Driver   string `json:"driver" validate:"max=100"`
	Count    string `json:"count" validate:"max=20"`
	Company  string `json:"company" validate:"max=100"`
}

// KYActivity is one 危険予知 (hazard prediction) entry.
type KYActivity struct {
	Hazard         string `json:"hazard" validate:"required,max=200"`
	Countermeasure string `json:"countermeasure" validate:"max=200"`
	Checked        bool   `json:"checked"`
}
