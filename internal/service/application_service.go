package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/repository"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type applicationRepository interface {
	Exists(ctx context.Context, studentID, driveID string) (bool, error)
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) (*models.Application, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	ListApplicants(ctx context.Context, driveID string) ([]models.Applicant, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountPlacedStudents(ctx context.Context) (int, error)
}

type applicationStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Count(ctx context.Context) (int, error)
}

type applicationDriveReader interface {
	FindByID(ctx context.Context, id string) (*models.Drive, error)
	Counts(ctx context.Context, now time.Time) (int, int, error)
}

// ApplicationConfig toggles workflow rules around applications.
type ApplicationConfig struct {
	EnforceDeadline bool
}

// ApplicationService manages the application lifecycle.
type ApplicationService struct {
	repo      applicationRepository
	students  applicationStudentReader
	drives    applicationDriveReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ApplicationConfig
	now       func() time.Time
}

// NewApplicationService constructs the application service.
func NewApplicationService(repo applicationRepository, students applicationStudentReader, drives applicationDriveReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg ApplicationConfig) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &ApplicationService{
		repo:      repo,
		students:  students,
		drives:    drives,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create submits an application. Students always apply for themselves; admins apply on behalf of a student.
func (s *ApplicationService) Create(ctx context.Context, req models.CreateApplicationRequest, actor *models.Actor) (*models.Application, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.IsAdmin() && !actor.IsStudent() {
		return nil, appErrors.ErrForbidden
	}

	req.DriveID = strings.TrimSpace(req.DriveID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid application payload")
	}

	studentID := actor.ID
	if actor.IsAdmin() {
		studentID = strings.TrimSpace(req.StudentID)
		if studentID == "" {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "student_id is required", map[string]string{"student_id": "required"})
		}
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	drive, err := s.drives.FindByID(ctx, req.DriveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	if result := EvaluateEligibility(*student, *drive); !result.Eligible {
		return nil, appErrors.WithDetails(appErrors.ErrPreconditionFailed, "student is not eligible for this drive", map[string]interface{}{"reasons": result.Reasons})
	}

	now := s.now()
	if s.cfg.EnforceDeadline && drive.DeadlinePassed(now) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "the application deadline for this drive has passed")
	}

	exists, err := s.repo.Exists(ctx, student.ID, drive.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already applied for this drive")
	}

	app := &models.Application{
		StudentID:      student.ID,
		DriveID:        drive.ID,
		StudentName:    student.Name,
		Roll:           student.Roll,
		Company:        drive.Company,
		Role:           drive.Role,
		Status:         models.ApplicationStatusPending,
		AppliedByAdmin: actor.IsAdmin(),
		AppliedAt:      now,
	}
	if actor.IsAdmin() && req.AppliedDate != nil && !req.AppliedDate.IsZero() {
		app.AppliedAt = req.AppliedDate.UTC()
	}

	if err := s.repo.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already applied for this drive")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.metrics.RecordApplicationCreated(actor.Role)
	s.logger.Info("application created",
		zap.String("application_id", app.ID),
		zap.String("student_id", app.StudentID),
		zap.String("drive_id", app.DriveID),
		zap.Bool("applied_by_admin", app.AppliedByAdmin),
	)
	return app, nil
}

// UpdateStatus overwrites the status of an application. Any status in the closed set may follow any other.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, status string, actor *models.Actor) (*models.Application, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}
	if err := s.validator.Struct(models.UpdateApplicationStatusRequest{Status: status}); err != nil {
		return nil, validationError(err, "invalid application status")
	}

	app, err := s.repo.UpdateStatus(ctx, id, models.ApplicationStatus(status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	s.metrics.RecordStatusChange(app.Status)
	s.logger.Info("application status changed", zap.String("application_id", id), zap.String("status", status))
	return app, nil
}

// Approve marks an application as Approved.
func (s *ApplicationService) Approve(ctx context.Context, id string, actor *models.Actor) (*models.Application, error) {
	return s.UpdateStatus(ctx, id, string(models.ApplicationStatusApproved), actor)
}

// Reject marks an application as Rejected.
func (s *ApplicationService) Reject(ctx context.Context, id string, actor *models.Actor) (*models.Application, error) {
	return s.UpdateStatus(ctx, id, string(models.ApplicationStatusRejected), actor)
}

// Delete removes an application.
func (s *ApplicationService) Delete(ctx context.Context, id string, actor *models.Actor) error {
	if !actor.IsAdmin() {
		return appErrors.ErrForbidden
	}
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete application")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	s.logger.Info("application deleted",
		zap.String("application_id", app.ID),
		zap.String("student_id", app.StudentID),
		zap.String("drive_id", app.DriveID),
		zap.String("status", string(app.Status)),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

// List returns applications visible to the actor. Students only see their own.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter, actor *models.Actor) ([]models.Application, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	switch {
	case actor.IsAdmin():
	case actor.IsStudent():
		if filter.StudentID != "" && filter.StudentID != actor.ID {
			return nil, nil, appErrors.ErrForbidden
		}
		filter.StudentID = actor.ID
	default:
		return nil, nil, appErrors.ErrForbidden
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.WithDetails(appErrors.ErrValidation, "invalid status filter", map[string]string{"status": "app_status"})
	}

	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// ApplicantsFor returns the applicant roster of a drive, newest first.
func (s *ApplicationService) ApplicantsFor(ctx context.Context, driveID string) ([]models.Applicant, error) {
	if _, err := s.drives.FindByID(ctx, driveID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}

	applicants, err := s.repo.ListApplicants(ctx, driveID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	if applicants == nil {
		applicants = []models.Applicant{}
	}
	return applicants, nil
}

// Summary returns placement counts for the admin dashboard.
func (s *ApplicationService) Summary(ctx context.Context, actor *models.Actor) (*dto.PlacementSummary, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	summary := &dto.PlacementSummary{ApplicationsByStatus: make(map[string]int, len(models.ApplicationStatuses))}
	for _, status := range models.ApplicationStatuses {
		summary.ApplicationsByStatus[string(status)] = 0
	}
	for _, c := range counts {
		summary.ApplicationsByStatus[string(c.Status)] += c.Count
		summary.TotalApplications += c.Count
	}

	if summary.TotalStudents, err = s.students.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	if summary.TotalDrives, summary.OpenDrives, err = s.drives.Counts(ctx, s.now()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count drives")
	}
	if summary.PlacedStudents, err = s.repo.CountPlacedStudents(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count placed students")
	}
	return summary, nil
}
