package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnnouncementPriority enum
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "Low"
	PriorityMedium AnnouncementPriority = "Medium"
	PriorityHigh   AnnouncementPriority = "High"
)

// ValidAnnouncementPriority reports whether p is a known priority.
func ValidAnnouncementPriority(p string) bool {
	switch AnnouncementPriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Announcement is a department broadcast shown to all citizens.
type Announcement struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title     string               `bson:"title" json:"title"`
	Message   string               `bson:"message" json:"message"`
	Priority  AnnouncementPriority `bson:"priority" json:"priority"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
}
