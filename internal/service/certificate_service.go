package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

type certificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Certificate, error)
	FindByID(ctx context.Context, id string) (*models.Certificate, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type certificateStudentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

var certificateDateLayouts = []string{"2006-01-02", time.RFC3339}

// CertificateService manages the certificate catalog of each student.
type CertificateService struct {
	repo      certificateRepository
	students  certificateStudentLookup
	files     storage.FileStore
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       StudentConfig
}

// NewCertificateService constructs the certificate service. Download links share the student document route.
func NewCertificateService(repo certificateRepository, students certificateStudentLookup, files storage.FileStore, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg StudentConfig) *CertificateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &CertificateService{repo: repo, students: students, files: files, signer: signer, validator: validate, logger: logger, cfg: cfg}
}

// Upload stores a certificate file and records its metadata.
func (s *CertificateService) Upload(ctx context.Context, studentID string, req models.CreateCertificateRequest, filename string, size int64, r io.Reader, actor *models.Actor) (*models.CertificateView, error) {
	if err := authorizeStudentAccess(studentID, actor); err != nil {
		return nil, err
	}
	req.Type = strings.TrimSpace(req.Type)
	req.Title = strings.TrimSpace(req.Title)
	req.Issuer = strings.TrimSpace(req.Issuer)
	req.Date = strings.TrimSpace(req.Date)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid certificate payload")
	}
	issuedOn, ok := parseCertificateDate(req.Date)
	if !ok {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "date must be YYYY-MM-DD", map[string]string{"date": "date"})
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !containsFold(documentExtensions[models.DocumentCertificate], ext) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "certificate must be a .pdf, .png, .jpg or .jpeg file")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	cert := &models.Certificate{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Type:      models.CertificateType(req.Type),
		Title:     req.Title,
		Issuer:    req.Issuer,
		IssuedOn:  issuedOn,
		FileName:  filepath.Base(filename),
		FileSize:  size,
		MimeType:  mime.TypeByExtension(ext),
	}
	cert.ObjectKey = storage.ObjectKey("students", studentID, "certificates", cert.ID+ext)

	if _, err := s.files.Save(ctx, cert.ObjectKey, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}
	if err := s.repo.Create(ctx, cert); err != nil {
		s.removeObject(ctx, cert.ObjectKey)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save certificate")
	}

	s.logger.Info("certificate uploaded",
		zap.String("certificate_id", cert.ID),
		zap.String("student_id", studentID),
		zap.String("type", string(cert.Type)),
		zap.String("actor_id", actor.ID),
	)
	return s.view(*cert)
}

// List returns a student's certificates with fresh download links.
func (s *CertificateService) List(ctx context.Context, studentID string, actor *models.Actor) ([]models.CertificateView, error) {
	if err := authorizeStudentAccess(studentID, actor); err != nil {
		return nil, err
	}
	certs, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list certificates")
	}
	views := make([]models.CertificateView, 0, len(certs))
	for _, cert := range certs {
		v, err := s.view(cert)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	return views, nil
}

// Get returns one certificate of the student.
func (s *CertificateService) Get(ctx context.Context, studentID, id string, actor *models.Actor) (*models.CertificateView, error) {
	if err := authorizeStudentAccess(studentID, actor); err != nil {
		return nil, err
	}
	cert, err := s.load(ctx, studentID, id)
	if err != nil {
		return nil, err
	}
	return s.view(*cert)
}

// Delete removes the certificate row and then its stored file.
func (s *CertificateService) Delete(ctx context.Context, studentID, id string, actor *models.Actor) error {
	if err := authorizeStudentAccess(studentID, actor); err != nil {
		return err
	}
	cert, err := s.load(ctx, studentID, id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, cert.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete certificate")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	s.removeObject(ctx, cert.ObjectKey)

	s.logger.Info("certificate deleted",
		zap.String("certificate_id", cert.ID),
		zap.String("student_id", studentID),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

// load hides certificates of other students behind NOT_FOUND.
func (s *CertificateService) load(ctx context.Context, studentID, id string) (*models.Certificate, error) {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	if cert.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
	}
	return cert, nil
}

func (s *CertificateService) view(cert models.Certificate) (*models.CertificateView, error) {
	token, expiresAt, err := s.signer.Generate(cert.StudentID, cert.ObjectKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.CertificateView{
		Certificate: cert,
		DownloadURL: s.cfg.DownloadURLBase + "?token=" + url.QueryEscape(token),
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *CertificateService) removeObject(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove stored certificate", zap.String("key", key), zap.Error(err))
	}
}

func parseCertificateDate(raw string) (time.Time, bool) {
	for _, layout := range certificateDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
