package models

import "time"

// ApplicationStatus enumerates the lifecycle states of an application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "Pending"
	ApplicationStatusSelected ApplicationStatus = "Selected"
	ApplicationStatusRejected ApplicationStatus = "Rejected"
	ApplicationStatusApproved ApplicationStatus = "Approved"
	ApplicationStatusPlaced   ApplicationStatus = "Placed"
)

// ApplicationStatuses lists every accepted status.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationStatusPending,
	ApplicationStatusSelected,
	ApplicationStatusRejected,
	ApplicationStatusApproved,
	ApplicationStatusPlaced,
}

// Valid reports whether the status belongs to the closed set.
func (s ApplicationStatus) Valid() bool {
	for _, candidate := range ApplicationStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Application links a student to a drive. Name, roll, company and role are snapshots taken at creation.
type Application struct {
	ID             string            `db:"id" json:"id"`
	StudentID      string            `db:"student_id" json:"student_id"`
	DriveID        string            `db:"drive_id" json:"drive_id"`
	StudentName    string            `db:"student_name" json:"student_name"`
	Roll           string            `db:"roll" json:"roll"`
	Company        string            `db:"company" json:"company"`
	Role           string            `db:"role" json:"role"`
	Status         ApplicationStatus `db:"status" json:"status"`
	AppliedByAdmin bool              `db:"applied_by_admin" json:"applied_by_admin"`
	AppliedAt      time.Time         `db:"applied_at" json:"applied_at"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter narrows application listings.
type ApplicationFilter struct {
	StudentID string
	DriveID   string
	Status    ApplicationStatus
	Page      int
	PageSize  int
}

// CreateApplicationRequest submits an application. StudentID and AppliedDate are honoured for admins only.
type CreateApplicationRequest struct {
	StudentID   string     `json:"student_id"`
	DriveID     string     `json:"drive_id" validate:"required"`
	AppliedDate *time.Time `json:"applied_date"`
}

// UpdateApplicationStatusRequest changes an application's status.
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" validate:"required,app_status"`
}

// Applicant is one row of a drive's applicant roster.
type Applicant struct {
	ApplicationID string            `db:"application_id" json:"application_id"`
	StudentID     string            `db:"student_id" json:"student_id"`
	Name          string            `db:"name" json:"name"`
	Roll          string            `db:"roll" json:"roll"`
	Email         string            `db:"email" json:"email"`
	Phone         string            `db:"phone" json:"phone"`
	Status        ApplicationStatus `db:"status" json:"status"`
	AppliedOn     time.Time         `db:"applied_on" json:"applied_on"`
}

// StatusCount is the number of applications holding a status.
type StatusCount struct {
	Status ApplicationStatus `db:"status" json:"status"`
	Count  int               `db:"count" json:"count"`
}
