package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type feedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	List(ctx context.Context) ([]models.Feedback, error)
	FindByID(ctx context.Context, id string) (*models.Feedback, error)
	Update(ctx context.Context, fb *models.Feedback) error
}

type feedbackStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// FeedbackService collects student feedback for the placement cell.
type FeedbackService struct {
	repo      feedbackRepository
	students  feedbackStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeedbackService constructs the feedback service.
func NewFeedbackService(repo feedbackRepository, students feedbackStudentReader, validate *validator.Validate, logger *zap.Logger) *FeedbackService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &FeedbackService{repo: repo, students: students, validator: validate, logger: logger}
}

// Submit records feedback from the acting student.
func (s *FeedbackService) Submit(ctx context.Context, req models.CreateFeedbackRequest, actor *models.Actor) (*models.Feedback, error) {
	if !actor.IsStudent() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit feedback")
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "feedback text is required")
	}

	student, err := s.students.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fb := &models.Feedback{
		StudentID:   student.ID,
		StudentName: student.Name,
		Text:        req.Text,
		Status:      models.FeedbackStatusSent,
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save feedback")
	}
	return fb, nil
}

// List returns all feedback newest first. Admin only.
func (s *FeedbackService) List(ctx context.Context, actor *models.Actor) ([]models.Feedback, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can view feedback")
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list feedback")
	}
	if items == nil {
		items = []models.Feedback{}
	}
	return items, nil
}

// Update changes the status or reply of a feedback entry. Admin only.
func (s *FeedbackService) Update(ctx context.Context, id string, req models.UpdateFeedbackRequest, actor *models.Actor) (*models.Feedback, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can update feedback")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid feedback update")
	}

	fb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "feedback not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load feedback")
	}
	if req.Status != "" {
		fb.Status = models.FeedbackStatus(req.Status)
	}
	if req.Reply != nil {
		fb.Reply = strings.TrimSpace(*req.Reply)
	}
	if err := s.repo.Update(ctx, fb); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update feedback")
	}
	return fb, nil
}
