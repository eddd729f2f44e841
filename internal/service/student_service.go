package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByEmailOrRoll(ctx context.Context, email, roll, excludeID string) (bool, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateDocuments(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type studentApplicationCounter interface {
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

var documentExtensions = map[models.DocumentType][]string{
	models.DocumentResume:       {".pdf", ".doc", ".docx"},
	models.DocumentProfilePhoto: {".png", ".jpg", ".jpeg"},
	models.DocumentCertificate:  {".pdf", ".png", ".jpg", ".jpeg"},
	models.DocumentOfferLetter:  {".pdf", ".png", ".jpg", ".jpeg"},
}

// StudentConfig configures document links handed back to clients.
type StudentConfig struct {
	DownloadURLBase string
}

// StudentService handles student profile use-cases.
type StudentService struct {
	repo         studentRepository
	applications studentApplicationCounter
	files        storage.FileStore
	signer       *storage.SignedURLSigner
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          StudentConfig
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, applications studentApplicationCounter, files storage.FileStore, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg StudentConfig) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &StudentService{
		repo:         repo,
		applications: applications,
		files:        files,
		signer:       signer,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// List returns students ordered by name. Admin only.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter, actor *models.Actor) ([]models.Student, *models.Pagination, error) {
	if !actor.IsAdmin() {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can list students")
	}
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	filter.Search = strings.TrimSpace(filter.Search)

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a student profile visible to the actor.
func (s *StudentService) Get(ctx context.Context, id string, actor *models.Actor) (*models.Student, error) {
	if err := authorizeStudentAccess(id, actor); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Update changes profile fields. Email uniqueness is checked against other students.
func (s *StudentService) Update(ctx context.Context, id string, req models.UpdateStudentRequest, actor *models.Actor) (*models.Student, error) {
	if err := authorizeStudentAccess(id, actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}

	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && email != student.Email {
		exists, err := s.repo.ExistsByEmailOrRoll(ctx, email, student.Roll, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		student.Email = email
	}
	assignIfSet(&student.Name, req.Name)
	assignIfSet(&student.Phone, req.Phone)
	assignIfSet(&student.Branch, req.Branch)
	assignIfSet(&student.Year, req.Year)
	assignIfSet(&student.CGPA, req.CGPA)
	assignIfSet(&student.Address, req.Address)
	if req.Skills != nil {
		student.Skills = cleanList(req.Skills)
	}

	if err := s.repo.Update(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student profile. Students with applications cannot be removed.
func (s *StudentService) Delete(ctx context.Context, id string, actor *models.Actor) error {
	if err := authorizeStudentAccess(id, actor); err != nil {
		return err
	}
	count, err := s.applications.CountByStudent(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "student has applications and cannot be deleted")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	s.logger.Info("student deleted", zap.String("student_id", id), zap.String("actor_id", actor.ID))
	return nil
}

// UploadDocument stores a student document and returns a signed download link.
func (s *StudentService) UploadDocument(ctx context.Context, id string, docType models.DocumentType, filename string, r io.Reader, actor *models.Actor) (*models.DocumentUpload, error) {
	if err := authorizeStudentAccess(id, actor); err != nil {
		return nil, err
	}
	if !docType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported document type")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !containsFold(documentExtensions[docType], ext) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported file extension for "+string(docType))
	}

	student, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storage.ObjectKey("students", student.ID, string(docType), uuid.NewString()+ext)
	if _, err := s.files.Save(ctx, key, r); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	var replaced string
	switch docType {
	case models.DocumentResume:
		replaced, student.Resume = student.Resume, key
	case models.DocumentProfilePhoto:
		replaced, student.ProfilePhoto = student.ProfilePhoto, key
	case models.DocumentCertificate:
		student.Certificates = append(student.Certificates, key)
	case models.DocumentOfferLetter:
		student.OfferLetters = append(student.OfferLetters, key)
	}

	if err := s.repo.UpdateDocuments(ctx, student); err != nil {
		s.removeObject(ctx, key)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save document reference")
	}
	if replaced != "" {
		s.removeObject(ctx, replaced)
	}

	token, expiresAt, err := s.signer.Generate(student.ID, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	s.logger.Info("student document stored",
		zap.String("student_id", student.ID),
		zap.String("type", string(docType)),
		zap.String("key", key),
	)

	return &models.DocumentUpload{
		Type:        docType,
		Key:         key,
		DownloadURL: s.cfg.DownloadURLBase + "?token=" + url.QueryEscape(token),
		ExpiresAt:   expiresAt,
	}, nil
}

// OpenDocument resolves a signed download token into the stored file.
// The caller closes the returned reader.
func (s *StudentService) OpenDocument(ctx context.Context, token string) (io.ReadCloser, string, error) {
	grant, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}
	rc, err := s.files.Open(ctx, grant.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open document")
	}
	return rc, path.Base(grant.Key), nil
}

func (s *StudentService) load(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *StudentService) removeObject(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove stored document", zap.String("key", key), zap.Error(err))
	}
}

func authorizeStudentAccess(studentID string, actor *models.Actor) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if actor.IsAdmin() || (actor.IsStudent() && actor.ID == studentID) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "cannot access another student's profile")
}

func assignIfSet(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
