package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const certificateColumns = "id, student_id, type, title, issuer, issued_on, file_name, object_key, file_size, mime_type, uploaded_at"

// CertificateRepository persists certificate metadata. The files live in the document store.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a certificate row.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	cert.UploadedAt = time.Now().UTC()
	const query = `INSERT INTO certificates (id, student_id, type, title, issuer, issued_on, file_name, object_key, file_size, mime_type, uploaded_at)
        VALUES (:id, :student_id, :type, :title, :issuer, :issued_on, :file_name, :object_key, :file_size, :mime_type, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// ListByStudent returns a student's certificates, most recent upload first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error) {
	certs := []models.Certificate{}
	query := "SELECT " + certificateColumns + " FROM certificates WHERE student_id = $1 ORDER BY uploaded_at DESC"
	if err := r.db.SelectContext(ctx, &certs, query, studentID); err != nil {
		if isMalformedID(err) {
			return []models.Certificate{}, nil
		}
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	return certs, nil
}

// FindByID fetches a certificate by ID.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, "SELECT "+certificateColumns+" FROM certificates WHERE id = $1", id); err != nil {
		return nil, lookupError(err)
	}
	return &cert, nil
}

// Delete removes a certificate row and reports whether one existed.
func (r *CertificateRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM certificates WHERE id = $1", id)
	if err != nil {
		if isMalformedID(err) {
			return false, nil
		}
		return false, fmt.Errorf("delete certificate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete certificate rows: %w", err)
	}
	return affected > 0, nil
}
