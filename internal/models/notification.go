package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// NotificationTarget selects the audience of a notification.
type NotificationTarget string

const (
	NotificationTargetAll      NotificationTarget = "all"
	NotificationTargetBranch   NotificationTarget = "branch"
	NotificationTargetYear     NotificationTarget = "year"
	NotificationTargetSpecific NotificationTarget = "specific"
)

// Valid reports whether the target belongs to the closed set.
func (t NotificationTarget) Valid() bool {
	switch t {
	case NotificationTargetAll, NotificationTargetBranch, NotificationTargetYear, NotificationTargetSpecific:
		return true
	}
	return false
}

// Notification is an immutable broadcast from the placement cell.
type Notification struct {
	ID               string             `db:"id" json:"id"`
	Message          string             `db:"message" json:"message"`
	Target           NotificationTarget `db:"target" json:"target"`
	Branch           *string            `db:"branch" json:"branch,omitempty"`
	Year             *string            `db:"year" json:"year,omitempty"`
	SpecificStudents pq.StringArray     `db:"specific_students" json:"specific_students"`
	SentBy           string             `db:"sent_by" json:"sent_by"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
}

// CreateNotificationRequest is the payload for broadcasting a notification.
type CreateNotificationRequest struct {
	Message          string          `json:"message" validate:"required"`
	Target           string          `json:"target" validate:"omitempty,notification_target"`
	Branch           *string         `json:"branch"`
	Year             *string         `json:"year"`
	SpecificStudents json.RawMessage `json:"specific_students" swaggertype:"array,string"`
}
