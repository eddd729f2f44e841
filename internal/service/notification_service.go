package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

type notificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, predicate squirrel.Sqlizer) ([]models.Notification, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type notificationStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

const defaultSender = "Admin"

// NotificationService broadcasts notifications and resolves each viewer's audience.
type NotificationService struct {
	repo      notificationRepository
	students  notificationStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(repo notificationRepository, students notificationStudentReader, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerPlacementValidations(validate)
	return &NotificationService{repo: repo, students: students, validator: validate, logger: logger}
}

// Create validates and stores a notification.
func (s *NotificationService) Create(ctx context.Context, req models.CreateNotificationRequest, actor *models.Actor) (*models.Notification, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	req.Message = strings.TrimSpace(req.Message)
	req.Target = strings.ToLower(strings.TrimSpace(req.Target))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid notification payload")
	}

	target := models.NotificationTarget(req.Target)
	if target == "" {
		target = models.NotificationTargetAll
	}

	specific, err := decodeSpecificStudents(req.SpecificStudents)
	if err != nil {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "specific_students must be an array of student ids", map[string]string{"specific_students": "array"})
	}

	n := &models.Notification{
		Message:          req.Message,
		Target:           target,
		SpecificStudents: specific,
		SentBy:           defaultSender,
	}
	if name := strings.TrimSpace(actor.Name); name != "" {
		n.SentBy = name
	}

	switch target {
	case models.NotificationTargetBranch:
		branch := trimmedPtr(req.Branch)
		if branch == nil {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "branch is required for branch notifications", map[string]string{"branch": "required"})
		}
		n.Branch = branch
	case models.NotificationTargetYear:
		year := trimmedPtr(req.Year)
		if year == nil {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "year is required for year notifications", map[string]string{"year": "required"})
		}
		n.Year = year
	case models.NotificationTargetSpecific:
		if len(specific) == 0 {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, "specific_students is required for specific notifications", map[string]string{"specific_students": "required"})
		}
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	s.logger.Info("notification sent", zap.String("notification_id", n.ID), zap.String("target", string(n.Target)))
	return n, nil
}

// List returns the notifications visible to the viewer, newest first.
// Admins see everything, students see what addresses them and anonymous viewers see broadcasts to all.
func (s *NotificationService) List(ctx context.Context, viewer *models.Actor) ([]models.Notification, error) {
	var predicate squirrel.Sqlizer
	switch {
	case viewer.IsAdmin():
	case viewer.IsStudent():
		student, err := s.students.FindByID(ctx, viewer.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		predicate = NotificationFilterFor(*student)
	default:
		predicate = publicNotificationFilter()
	}

	items, err := s.repo.List(ctx, predicate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// Delete removes a notification.
func (s *NotificationService) Delete(ctx context.Context, id string, actor *models.Actor) error {
	if !actor.IsAdmin() {
		return appErrors.ErrForbidden
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

func decodeSpecificStudents(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}, nil
	}
	var ids []string
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, err
	}
	result := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
