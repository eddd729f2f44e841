package models

import "time"

// FeedbackStatus tracks the handling of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusSent     FeedbackStatus = "sent"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
)

// Feedback is a message from a student to the placement cell.
type Feedback struct {
	ID          string         `db:"id" json:"id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	StudentName string         `db:"student_name" json:"student_name"`
	Text        string         `db:"text" json:"text"`
	Status      FeedbackStatus `db:"status" json:"status"`
	Reply       string         `db:"reply" json:"reply"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// CreateFeedbackRequest submits feedback.
type CreateFeedbackRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateFeedbackRequest lets an admin move feedback along and reply.
type UpdateFeedbackRequest struct {
	Status string  `json:"status" validate:"omitempty,feedback_status"`
	Reply  *string `json:"reply"`
}
