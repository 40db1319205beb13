package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryState holds everything in process memory behind one mutex. Values
// are deep-copied on the way in and out, so callers can never mutate
// stored state without going through Save.
type memoryState struct {
	mu            sync.RWMutex
	issues        map[primitive.ObjectID]models.Issue
	issueOrder    []primitive.ObjectID
	notifications []models.Notification
	users         map[primitive.ObjectID]models.User
	announcements []models.Announcement
}

type memoryIssues struct{ s *memoryState }
type memoryNotifications struct{ s *memoryState }
type memoryUsers struct{ s *memoryState }
type memoryAnnouncements struct{ s *memoryState }

// NewMemory returns a Store backed by process memory, the default driver.
func NewMemory() *Store {
	s := &memoryState{
		issues: make(map[primitive.ObjectID]models.Issue),
		users:  make(map[primitive.ObjectID]models.User),
	}
	return &Store{
		Issues:        memoryIssues{s},
		Notifications: memoryNotifications{s},
		Users:         memoryUsers{s},
		Announcements: memoryAnnouncements{s},
	}
}

func (m memoryIssues) Find(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	issue, ok := m.s.issues[id]
	if !ok {
		return models.Issue{}, ErrNotFound
	}
	return issue.Clone(), nil
}

func (m memoryIssues) List(ctx context.Context) ([]models.Issue, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]models.Issue, 0, len(m.s.issueOrder))
	for _, id := range m.s.issueOrder {
		out = append(out, m.s.issues[id].Clone())
	}
	return out, nil
}

func (m memoryIssues) Insert(ctx context.Context, issue models.Issue) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, exists := m.s.issues[issue.ID]; exists {
		return ErrVersionConflict
	}
	m.s.issues[issue.ID] = issue.Clone()
	m.s.issueOrder = append(m.s.issueOrder, issue.ID)
	return nil
}

func (m memoryIssues) Save(ctx context.Context, issue models.Issue) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	stored, ok := m.s.issues[issue.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != issue.Version {
		return ErrVersionConflict
	}
	next := issue.Clone()
	next.Version = issue.Version + 1
	m.s.issues[issue.ID] = next
	return nil
}

func (m memoryNotifications) Append(ctx context.Context, n models.Notification) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	m.s.notifications = append(m.s.notifications, n)
	return nil
}

func (m memoryNotifications) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []models.Notification
	// Newest first.
	for i := len(m.s.notifications) - 1; i >= 0; i-- {
		if m.s.notifications[i].UserID == userID {
			out = append(out, m.s.notifications[i])
		}
	}
	return out, nil
}

func (m memoryNotifications) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	for i := range m.s.notifications {
		if m.s.notifications[i].ID == id && m.s.notifications[i].UserID == userID {
			m.s.notifications[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (m memoryUsers) Find(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	u, ok := m.s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u, nil
}

func (m memoryUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, u := range m.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m memoryUsers) Insert(ctx context.Context, u models.User) (primitive.ObjectID, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.s.users[u.ID] = u
	return u.ID, nil
}

func (m memoryUsers) ListAssignable(ctx context.Context, role models.Role) ([]models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var out []models.User
	for _, u := range m.s.users {
		if u.Role == role && u.Active {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memoryAnnouncements) Append(ctx context.Context, a models.Announcement) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.s.announcements = append(m.s.announcements, a)
	return nil
}

func (m memoryAnnouncements) List(ctx context.Context) ([]models.Announcement, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	// Newest first.
	out := make([]models.Announcement, 0, len(m.s.announcements))
	for i := len(m.s.announcements) - 1; i >= 0; i-- {
		out = append(out, m.s.announcements[i])
	}
	return out, nil
}
