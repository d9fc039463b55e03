// Package model holds the canonical client-side entities. The backend is
// inconsistent about field names and envelopes; everything in this package is
// the already-normalized shape the screens render from (see internal/normalize).
package model

import (
	"strings"
	"time"
)

// Role is the backend user role. Workers exist in the data model but are not
// allowed to log into this client.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleWorker     Role = "worker"
)

// ParseRole lowercases and trims a raw role string. Unknown values pass
// through unchanged so the UI can still display them.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// CanManage reports whether the role may create/delete assignments and
// manage workers and vehicles.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleSupervisor
}

// UserProfile is a worker or administrative user as the backend knows them.
type UserProfile struct {
	ID                string `json:"id"`
	Role              Role   `json:"role"`
	Name              string `json:"name"`
	SecondName        string `json:"secondName,omitempty"`
	Lastname          string `json:"lastname"`
	SecondLastname    string `json:"secondLastname,omitempty"`
	Email             string `json:"email"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	FechaNacimiento   string `json:"fechaNacimiento,omitempty"`
	Status            string `json:"status,omitempty"`
	PhotoURL          string `json:"photoUrl,omitempty"`
	AssignedVehicleID string `json:"assignedVehicleId,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
}

// FullName joins the four name parts, skipping the optional ones.
func (u UserProfile) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{u.Name, u.SecondName, u.Lastname, u.SecondLastname} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}

// Vehicle is a municipal vehicle. Status is free-form at the backend; the
// normalizer substitutes "unknown" when it is absent.
type Vehicle struct {
	ID               string `json:"id"`
	LicensePlate     string `json:"licensePlate"`
	Model            string `json:"model,omitempty"`
	Year             int    `json:"year,omitempty"`
	Color            string `json:"color,omitempty"`
	Corporation      string `json:"corporation,omitempty"`
	Status           string `json:"status"`
	AssignedWorkerID string `json:"assignedWorkerId,omitempty"`
}

// ProgressStatus tracks an assignment through its lifecycle.
type ProgressStatus string

const (
	ProgressNotStarted ProgressStatus = "not_started"
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressOnHold     ProgressStatus = "on_hold"
)

// Priority of an assignment. The backend defaults to medium and so do we.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Assignment links a worker to (optionally) a vehicle with a progress status.
type Assignment struct {
	ID             string         `json:"id"`
	WorkerID       string         `json:"workerId"`
	WorkerName     string         `json:"workerName,omitempty"`
	VehicleID      string         `json:"vehicleId,omitempty"`
	VehiclePlate   string         `json:"vehiclePlate,omitempty"`
	ProgressStatus ProgressStatus `json:"progressStatus"`
	Priority       Priority       `json:"priority"`
	Notes          string         `json:"notes,omitempty"`
	AssignedAt     string         `json:"assignedAt,omitempty"`
	CompletedAt    string         `json:"completedAt,omitempty"`
}

// Severity of a pothole report, normalized from many raw spellings.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities for sorting. Unknown values sort with medium.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityHigh:
		return 3
	default:
		return 2
	}
}

// Location is a geographic point attached to a report.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ReporterRef identifies the vehicle or worker that filed a report. Only a
// subset of fields arrives depending on the backend's mood.
type ReporterRef struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Lastname     string `json:"lastname,omitempty"`
	Email        string `json:"email,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
	Model        string `json:"model,omitempty"`
}

// Report is a geolocated pothole/incident report.
type Report struct {
	ID                string       `json:"id"`
	Description       string       `json:"description"`
	Severity          Severity     `json:"severity"`
	Status            string       `json:"status"`
	Comments          string       `json:"comments,omitempty"`
	Street            string       `json:"street,omitempty"`
	Neighborhood      string       `json:"neighborhood,omitempty"`
	City              string       `json:"city,omitempty"`
	State             string       `json:"state,omitempty"`
	PostalCode        string       `json:"postalCode,omitempty"`
	Location          *Location    `json:"location,omitempty"`
	Images            []string     `json:"images"`
	ReportedByVehicle *ReporterRef `json:"reportedByVehicle,omitempty"`
	ReportedByWorker  *ReporterRef `json:"reportedByWorker,omitempty"`
	CreatedAt         string       `json:"createdAt,omitempty"`
}

// CreatedTime parses CreatedAt for sorting. Zero time when absent or
// unparseable so malformed records sort last instead of crashing a sort.
func (r Report) CreatedTime() time.Time {
	if r.CreatedAt == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, r.CreatedAt); err == nil {
			return ts
		}
	}
	return time.Time{}
}
