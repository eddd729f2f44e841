package dto

// PlacementSummary captures the aggregated counts shown on the admin dashboard.
type PlacementSummary struct {
	TotalStudents        int            `json:"total_students"`
	TotalDrives          int            `json:"total_drives"`
	OpenDrives           int            `json:"open_drives"`
	TotalApplications    int            `json:"total_applications"`
	ApplicationsByStatus map[string]int `json:"applications_by_status"`
	PlacedStudents       int            `json:"placed_students"`
}
