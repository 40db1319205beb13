package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType enum
type NotificationType string

const (
	NotifyNewAssignment NotificationType = "new_assignment"
	NotifySLAAlert      NotificationType = "sla_alert"
	NotifyEscalation    NotificationType = "escalation"
	NotifyStatusUpdate  NotificationType = "status_update"
)

// Notification is an in-app message for one user. Read is the only field
// that may change after creation.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID  `bson:"userId" json:"userId"`
	Type        NotificationType    `bson:"type" json:"type"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	IssueID     *primitive.ObjectID `bson:"issueId,omitempty" json:"issueId,omitempty"`
	ImageURL    *string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Timestamp   time.Time           `bson:"timestamp" json:"timestamp"`
	Read        bool                `bson:"read" json:"read"`
}
