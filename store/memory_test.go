package store

import (
	"context"
	"testing"
	"time"

	"civicflow-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testIssue() models.Issue {
	return models.Issue{
		ID:           primitive.NewObjectID(),
		Title:        "Broken streetlight",
		Type:         models.Streetlight,
		Location:     "Main St",
		Description:  "Light has been out for a week",
		Status:       models.Submitted,
		CurrentRoles: []models.Role{models.HeadOfDepartment},
		StatusHistory: []models.StatusEntry{{
			Status: models.Submitted,
			Date:   time.Now(),
			Notes:  "Issue reported",
		}},
		CreatedBy: primitive.NewObjectID(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestMemoryIssueInsertAndFind(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	issue := testIssue()

	require.NoError(t, s.Issues.Insert(ctx, issue))

	found, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, found.Title)
	assert.Equal(t, issue.Status, found.Status)

	_, err = s.Issues.Find(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFindReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	issue := testIssue()
	require.NoError(t, s.Issues.Insert(ctx, issue))

	found, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	found.Title = "hijacked"
	found.StatusHistory[0].Notes = "hijacked"

	again, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.Title, again.Title)
	assert.Equal(t, "Issue reported", again.StatusHistory[0].Notes)
}

func TestMemorySaveBumpsVersion(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	issue := testIssue()
	require.NoError(t, s.Issues.Insert(ctx, issue))

	issue.Status = models.PendingVerificationAndEstimation
	require.NoError(t, s.Issues.Save(ctx, issue))

	found, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.Version)
	assert.Equal(t, models.PendingVerificationAndEstimation, found.Status)
}

func TestMemorySaveDetectsConcurrentWrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	issue := testIssue()
	require.NoError(t, s.Issues.Insert(ctx, issue))

	// Two actors read the same version.
	a, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)
	b, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)

	a.Escalated = true
	require.NoError(t, s.Issues.Save(ctx, a))

	b.Status = models.Rejected
	err = s.Issues.Save(ctx, b)
	assert.ErrorIs(t, err, ErrVersionConflict)

	// The first write won; the conflicting one left no trace.
	found, err := s.Issues.Find(ctx, issue.ID)
	require.NoError(t, err)
	assert.True(t, found.Escalated)
	assert.Equal(t, models.Submitted, found.Status)
}

func TestMemorySaveUnknownIssue(t *testing.T) {
	s := NewMemory()
	err := s.Issues.Save(context.Background(), testIssue())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListInsertionOrder(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := testIssue()
	second := testIssue()
	require.NoError(t, s.Issues.Insert(ctx, first))
	require.NoError(t, s.Issues.Insert(ctx, second))

	issues, err := s.Issues.List(ctx)
	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, first.ID, issues[0].ID)
	assert.Equal(t, second.ID, issues[1].ID)
}

func TestMemoryNotifications(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	older := models.Notification{ID: primitive.NewObjectID(), UserID: userID,
		Type: models.NotifyNewAssignment, Title: "older", Timestamp: time.Now()}
	newer := models.Notification{ID: primitive.NewObjectID(), UserID: userID,
		Type: models.NotifySLAAlert, Title: "newer", Timestamp: time.Now()}
	foreign := models.Notification{ID: primitive.NewObjectID(), UserID: otherID,
		Type: models.NotifyEscalation, Title: "foreign", Timestamp: time.Now()}

	require.NoError(t, s.Notifications.Append(ctx, older))
	require.NoError(t, s.Notifications.Append(ctx, foreign))
	require.NoError(t, s.Notifications.Append(ctx, newer))

	list, err := s.Notifications.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Title)
	assert.Equal(t, "older", list[1].Title)
}

func TestMemoryMarkRead(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	userID := primitive.NewObjectID()

	n := models.Notification{ID: primitive.NewObjectID(), UserID: userID,
		Type: models.NotifyStatusUpdate, Title: "closed", Timestamp: time.Now()}
	require.NoError(t, s.Notifications.Append(ctx, n))

	// Another user cannot mark it.
	err := s.Notifications.MarkRead(ctx, n.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Notifications.MarkRead(ctx, n.ID, userID))

	list, err := s.Notifications.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

func TestMemoryUsers(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	active := models.User{Name: "Asha", Email: "asha@city.gov", Role: models.Engineer, Active: true}
	inactive := models.User{Name: "Ben", Email: "ben@city.gov", Role: models.Engineer, Active: false}
	contractor := models.User{Name: "Cory", Email: "cory@works.com", Role: models.Contractor, Active: true}

	id, err := s.Users.Insert(ctx, active)
	require.NoError(t, err)
	_, err = s.Users.Insert(ctx, inactive)
	require.NoError(t, err)
	_, err = s.Users.Insert(ctx, contractor)
	require.NoError(t, err)

	found, err := s.Users.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Asha", found.Name)

	byEmail, err := s.Users.FindByEmail(ctx, "ASHA@city.gov")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	engineers, err := s.Users.ListAssignable(ctx, models.Engineer)
	require.NoError(t, err)
	require.Len(t, engineers, 1, "inactive users are not assignment candidates")
	assert.Equal(t, "Asha", engineers[0].Name)
}

func TestMemoryAnnouncementsNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := models.Announcement{Title: "Road closure", Priority: models.PriorityHigh, CreatedAt: time.Now()}
	second := models.Announcement{Title: "Water maintenance", Priority: models.PriorityLow, CreatedAt: time.Now()}

	require.NoError(t, s.Announcements.Append(ctx, first))
	require.NoError(t, s.Announcements.Append(ctx, second))

	list, err := s.Announcements.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Water maintenance", list[0].Title)
	assert.Equal(t, "Road closure", list[1].Title)
}
