package models

import (
	"time"

	"github.com/lib/pq"
)

// Drive represents a recruiter placement drive.
type Drive struct {
	ID               string         `db:"id" json:"id"`
	Company          string         `db:"company" json:"company"`
	Role             string         `db:"role" json:"role"`
	CTC              string         `db:"ctc" json:"ctc"`
	Location         string         `db:"location" json:"location"`
	Deadline         *time.Time     `db:"deadline" json:"deadline,omitempty"`
	DriveDate        *time.Time     `db:"drive_date" json:"drive_date,omitempty"`
	MinCGPA          string         `db:"min_cgpa" json:"min_cgpa"`
	EligibleBranches pq.StringArray `db:"eligible_branches" json:"eligible_branches"`
	EligibleYears    pq.StringArray `db:"eligible_years" json:"eligible_years"`
	Description      string         `db:"description" json:"description"`
	Link             string         `db:"link" json:"link"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// DeadlinePassed reports whether the drive stopped accepting applications at now.
func (d Drive) DeadlinePassed(now time.Time) bool {
	return d.Deadline != nil && now.After(*d.Deadline)
}

// EligibilityResult is the outcome of checking a student against a drive.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

// DriveListing is a drive optionally annotated with the viewer's eligibility.
type DriveListing struct {
	Drive
	Eligibility *EligibilityResult `json:"eligibility,omitempty"`
}

// DriveFilter narrows drive listings.
type DriveFilter struct {
	Search   string
	Page     int
	PageSize int
}
