package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type driveRepository interface {
	List(ctx context.Context, filter models.DriveFilter) ([]models.Drive, int, error)
	FindByID(ctx context.Context, id string) (*models.Drive, error)
	Create(ctx context.Context, drive *models.Drive) error
	Update(ctx context.Context, drive *models.Drive) error
	Delete(ctx context.Context, id string) (bool, error)
}

type driveStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

const driveCachePattern = "drives:*"

// DriveRequest is the payload for creating or updating a drive.
type DriveRequest struct {
	Company          string     `json:"company" validate:"required"`
	Role             string     `json:"role" validate:"required"`
	CTC              string     `json:"ctc"`
	Location         string     `json:"location"`
	Deadline         *time.Time `json:"deadline"`
	DriveDate        *time.Time `json:"drive_date"`
	MinCGPA          string     `json:"min_cgpa" validate:"omitempty,cgpa"`
	EligibleBranches []string   `json:"eligible_branches"`
	EligibleYears    []string   `json:"eligible_years"`
	Description      string     `json:"description"`
	Link             string     `json:"link" validate:"omitempty,url"`
}

type cachedDrivePage struct {
	Items []models.Drive `json:"items"`
	Total int            `json:"total"`
}

// DriveService manages placement drives.
type DriveService struct {
	repo      driveRepository
	students  driveStudentReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewDriveService constructs the drive service.
func NewDriveService(repo driveRepository, students driveStudentReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *DriveService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &DriveService{repo: repo, students: students, cache: cache, validator: validate, logger: logger, cacheTTL: cacheTTL}
}

// List returns drives newest first. Student viewers get each drive annotated with their eligibility.
// The second return value reports whether the page came from cache.
func (s *DriveService) List(ctx context.Context, filter models.DriveFilter, viewer *models.Actor) ([]models.DriveListing, *models.Pagination, bool, error) {
	filter.Page, filter.PageSize = models.NormalizePage(filter.Page, filter.PageSize)
	filter.Search = strings.TrimSpace(filter.Search)

	var page cachedDrivePage
	key := fmt.Sprintf("drives:list:%d:%d:%s", filter.Page, filter.PageSize, strings.ToLower(filter.Search))
	hit := s.cache.Get(ctx, key, &page)
	if !hit {
		drives, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drives")
		}
		page = cachedDrivePage{Items: drives, Total: total}
		s.cache.Set(ctx, key, page, s.cacheTTL)
	}

	var student *models.Student
	if viewer.IsStudent() {
		loaded, err := s.students.FindByID(ctx, viewer.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil, false, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		student = loaded
	}

	listings := make([]models.DriveListing, 0, len(page.Items))
	for _, drive := range page.Items {
		listing := models.DriveListing{Drive: drive}
		if student != nil {
			result := EvaluateEligibility(*student, drive)
			listing.Eligibility = &result
		}
		listings = append(listings, listing)
	}

	return listings, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: page.Total}, hit, nil
}

// Get returns a single drive.
func (s *DriveService) Get(ctx context.Context, id string) (*models.Drive, error) {
	drive, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "drive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drive")
	}
	return drive, nil
}

// Create stores a new drive.
func (s *DriveService) Create(ctx context.Context, req DriveRequest) (*models.Drive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid drive payload")
	}
	drive := &models.Drive{}
	applyDriveRequest(drive, req)
	if err := s.repo.Create(ctx, drive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create drive")
	}
	s.cache.Invalidate(ctx, driveCachePattern)
	s.logger.Info("drive created", zap.String("drive_id", drive.ID), zap.String("company", drive.Company))
	return drive, nil
}

// Update overwrites a drive. Existing applications keep their company and role snapshots.
func (s *DriveService) Update(ctx context.Context, id string, req DriveRequest) (*models.Drive, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid drive payload")
	}
	drive, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyDriveRequest(drive, req)
	if err := s.repo.Update(ctx, drive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update drive")
	}
	s.cache.Invalidate(ctx, driveCachePattern)
	return drive, nil
}

// Delete removes a drive. Its applications are kept and fall back to their company and role snapshots.
func (s *DriveService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete drive")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "drive not found")
	}
	s.cache.Invalidate(ctx, driveCachePattern)
	return nil
}

// CheckEligibility evaluates a specific student against a drive.
func (s *DriveService) CheckEligibility(ctx context.Context, driveID, studentID string) (*models.EligibilityResult, error) {
	drive, err := s.Get(ctx, driveID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	result := EvaluateEligibility(*student, *drive)
	return &result, nil
}

func applyDriveRequest(drive *models.Drive, req DriveRequest) {
	drive.Company = strings.TrimSpace(req.Company)
	drive.Role = strings.TrimSpace(req.Role)
	drive.CTC = strings.TrimSpace(req.CTC)
	drive.Location = strings.TrimSpace(req.Location)
	drive.Deadline = utcPtr(req.Deadline)
	drive.DriveDate = utcPtr(req.DriveDate)
	drive.MinCGPA = strings.TrimSpace(req.MinCGPA)
	drive.EligibleBranches = cleanList(req.EligibleBranches)
	drive.EligibleYears = cleanList(req.EligibleYears)
	drive.Description = strings.TrimSpace(req.Description)
	drive.Link = strings.TrimSpace(req.Link)
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
