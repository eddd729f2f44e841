package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
)

func registerPlacementValidations(v *validator.Validate) {
	_ = v.RegisterValidation("app_status", func(fl validator.FieldLevel) bool {
		return models.ApplicationStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("notification_target", func(fl validator.FieldLevel) bool {
		return models.NotificationTarget(strings.ToLower(strings.TrimSpace(fl.Field().String()))).Valid()
	})
	_ = v.RegisterValidation("feedback_status", func(fl validator.FieldLevel) bool {
		switch models.FeedbackStatus(fl.Field().String()) {
		case models.FeedbackStatusSent, models.FeedbackStatusReviewed, models.FeedbackStatusResolved:
			return true
		default:
			return false
		}
	})
	_ = v.RegisterValidation("certificate_type", func(fl validator.FieldLevel) bool {
		return models.CertificateType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("cgpa", func(fl validator.FieldLevel) bool {
		_, ok := parseCGPA(fl.Field().String())
		return ok
	})
}

// validationError converts validator output into a VALIDATION_ERROR carrying per-field detail.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[strings.ToLower(fe.Field())] = fe.Tag()
	}
	wrapped := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	wrapped.Details = details
	return wrapped
}

// parseCGPA parses a numeric grade. Blank, malformed, negative or non-finite input reports ok=false.
func parseCGPA(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return value, true
}
