package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

const feedbackColumns = "id, student_id, student_name, text, status, reply, created_at, updated_at"

// FeedbackRepository persists student feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository constructs a FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback entry.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	fb.CreatedAt = now
	fb.UpdatedAt = now
	const query = `INSERT INTO feedbacks (id, student_id, student_name, text, status, reply, created_at, updated_at)
        VALUES (:id, :student_id, :student_name, :text, :status, :reply, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// List returns all feedback newest first.
func (r *FeedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	items := []models.Feedback{}
	if err := r.db.SelectContext(ctx, &items, "SELECT "+feedbackColumns+" FROM feedbacks ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// FindByID fetches a feedback entry by ID.
func (r *FeedbackRepository) FindByID(ctx context.Context, id string) (*models.Feedback, error) {
	var fb models.Feedback
	if err := r.db.GetContext(ctx, &fb, "SELECT "+feedbackColumns+" FROM feedbacks WHERE id = $1", id); err != nil {
		return nil, lookupError(err)
	}
	return &fb, nil
}

// Update persists the status and reply of a feedback entry.
func (r *FeedbackRepository) Update(ctx context.Context, fb *models.Feedback) error {
	fb.UpdatedAt = time.Now().UTC()
	const query = `UPDATE feedbacks SET status = :status, reply = :reply, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("update feedback: %w", err)
	}
	return nil
}
