package models

import (
	"time"

	"github.com/lib/pq"
)

// Student represents a registered student profile.
type Student struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	Roll         string         `db:"roll" json:"roll"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Branch       string         `db:"branch" json:"branch"`
	Year         string         `db:"year" json:"year"`
	CGPA         string         `db:"cgpa" json:"cgpa"`
	Phone        string         `db:"phone" json:"phone"`
	Address      string         `db:"address" json:"address"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	ProfilePhoto string         `db:"profile_photo" json:"profile_photo,omitempty"`
	Resume       string         `db:"resume" json:"resume,omitempty"`
	Certificates pq.StringArray `db:"certificates" json:"certificates"`
	OfferLetters pq.StringArray `db:"offer_letters" json:"offer_letters"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Branch   string
	Year     string
	Page     int
	PageSize int
}

// DocumentType names the kinds of files a student may upload.
type DocumentType string

const (
	DocumentResume       DocumentType = "resume"
	DocumentProfilePhoto DocumentType = "profile_photo"
	DocumentCertificate  DocumentType = "certificate"
	DocumentOfferLetter  DocumentType = "offer_letter"
)

// Valid reports whether the document type is supported.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentResume, DocumentProfilePhoto, DocumentCertificate, DocumentOfferLetter:
		return true
	}
	return false
}

// DocumentUpload describes a stored student document and its download link.
type DocumentUpload struct {
	Type        DocumentType `json:"type"`
	Key         string       `json:"key"`
	DownloadURL string       `json:"download_url"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// SkippedRow explains why a roster row was not imported.
type SkippedRow struct {
	Row    int            `json:"row"`
	Data   SkippedRowData `json:"data"`
	Reason string         `json:"reason"`
}

// SkippedRowData echoes the identifying fields of a skipped row.
type SkippedRowData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Roll  string `json:"roll"`
}

// RosterImportResult summarises a bulk roster import.
type RosterImportResult struct {
	Imported int          `json:"imported"`
	Skipped  []SkippedRow `json:"skipped"`
}

// UpdateStudentRequest carries editable profile fields. Blank values leave the field unchanged.
type UpdateStudentRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email" validate:"omitempty,email"`
	Phone   string   `json:"phone"`
	Branch  string   `json:"branch"`
	Year    string   `json:"year"`
	CGPA    string   `json:"cgpa" validate:"omitempty,cgpa"`
	Address string   `json:"address"`
	Skills  []string `json:"skills"`
}
