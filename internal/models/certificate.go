package models

import "time"

// CertificateType classifies an uploaded certificate.
type CertificateType string

const (
	CertificateInternship CertificateType = "Internship"
	CertificateHackathon  CertificateType = "Hackathon"
	CertificateCourse     CertificateType = "Course"
	CertificateWorkshop   CertificateType = "Workshop"
	CertificateProject    CertificateType = "Project"
	CertificateAward      CertificateType = "Award"
)

// Valid reports whether the certificate type is one of the known kinds.
func (t CertificateType) Valid() bool {
	switch t {
	case CertificateInternship, CertificateHackathon, CertificateCourse, CertificateWorkshop, CertificateProject, CertificateAward:
		return true
	}
	return false
}

// Certificate is a student achievement backed by a stored file.
type Certificate struct {
	ID         string          `db:"id" json:"id"`
	StudentID  string          `db:"student_id" json:"student_id"`
	Type       CertificateType `db:"type" json:"type"`
	Title      string          `db:"title" json:"title"`
	Issuer     string          `db:"issuer" json:"issuer"`
	IssuedOn   time.Time       `db:"issued_on" json:"issued_on"`
	FileName   string          `db:"file_name" json:"file_name"`
	ObjectKey  string          `db:"object_key" json:"-"`
	FileSize   int64           `db:"file_size" json:"file_size"`
	MimeType   string          `db:"mime_type" json:"mime_type"`
	UploadedAt time.Time       `db:"uploaded_at" json:"uploaded_at"`
}

// CreateCertificateRequest carries the form fields sent with a certificate upload.
type CreateCertificateRequest struct {
	Type   string `form:"type" validate:"required,certificate_type"`
	Title  string `form:"title" validate:"required,max=200"`
	Issuer string `form:"issuer" validate:"max=200"`
	Date   string `form:"date" validate:"required"`
}

// CertificateView pairs a certificate with a signed link to its file.
type CertificateView struct {
	Certificate
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
