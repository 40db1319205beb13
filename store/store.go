package store

import (
	"context"
	"errors"

	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrVersionConflict means the issue changed between read and save.
	// The caller should re-read and retry the action.
	ErrVersionConflict = errors.New("issue was modified concurrently")
)

// IssueStore persists issues. Save compares the issue's Version against
// the stored one and bumps it, so two actors cannot clobber each other's
// transition on the same issue.
type IssueStore interface {
	Find(ctx context.Context, id primitive.ObjectID) (models.Issue, error)
	List(ctx context.Context) ([]models.Issue, error)
	Insert(ctx context.Context, issue models.Issue) error
	Save(ctx context.Context, issue models.Issue) error
}

// NotificationStore persists per-user notifications. Read is the only
// mutable field, via MarkRead.
type NotificationStore interface {
	Append(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID primitive.ObjectID) error
}

type UserStore interface {
	Find(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, u models.User) (primitive.ObjectID, error)
	// ListAssignable returns active users holding the given role, the
	// candidate list for assignment pickers.
	ListAssignable(ctx context.Context, role models.Role) ([]models.User, error)
}

// AnnouncementStore persists department broadcasts, listed newest-first.
type AnnouncementStore interface {
	Append(ctx context.Context, a models.Announcement) error
	List(ctx context.Context) ([]models.Announcement, error)
}

// Store bundles the four collections behind one handle, constructed once
// at startup and passed to every consumer. The workflow engine never sees
// it; controllers read, run the engine, then write.
type Store struct {
	Issues        IssueStore
	Notifications NotificationStore
	Users         UserStore
	Announcements AnnouncementStore
}
