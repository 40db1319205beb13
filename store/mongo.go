package store

import (
	"context"
	"time"

	"civicflow-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 10 * time.Second

type mongoIssues struct{ coll *mongo.Collection }
type mongoNotifications struct{ coll *mongo.Collection }
type mongoUsers struct{ coll *mongo.Collection }
type mongoAnnouncements struct{ coll *mongo.Collection }

// NewMongo returns a Store backed by MongoDB, selected with
// STORE_DRIVER=mongo.
func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Issues:        mongoIssues{db.Collection("issues")},
		Notifications: mongoNotifications{db.Collection("notifications")},
		Users:         mongoUsers{db.Collection("users")},
		Announcements: mongoAnnouncements{db.Collection("announcements")},
	}
}

func (m mongoIssues) Find(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var issue models.Issue
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return models.Issue{}, ErrNotFound
	}
	if err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

func (m mongoIssues) List(ctx context.Context) ([]models.Issue, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (m mongoIssues) Insert(ctx context.Context, issue models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	_, err := m.coll.InsertOne(ctx, issue)
	return err
}

func (m mongoIssues) Save(ctx context.Context, issue models.Issue) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	// The version in the filter makes the write a compare-and-swap.
	readVersion := issue.Version
	issue.Version = readVersion + 1
	result, err := m.coll.ReplaceOne(ctx,
		bson.M{"_id": issue.ID, "version": readVersion}, issue)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := m.coll.CountDocuments(ctx, bson.M{"_id": issue.ID})
		if err == nil && count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (m mongoNotifications) Append(ctx context.Context, n models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, n)
	return err
}

func (m mongoNotifications) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := m.coll.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (m mongoNotifications) MarkRead(ctx context.Context, id, userID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	result, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m mongoUsers) Find(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var user models.User
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (m mongoUsers) FindByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	var user models.User
	err := m.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (m mongoUsers) Insert(ctx context.Context, u models.User) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, u)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return u.ID, nil
}

func (m mongoUsers) ListAssignable(ctx context.Context, role models.Role) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.coll.Find(ctx, bson.M{"role": role, "active": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (m mongoAnnouncements) Append(ctx context.Context, a models.Announcement) error {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, a)
	return err
}

func (m mongoAnnouncements) List(ctx context.Context) ([]models.Announcement, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.coll.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var announcements []models.Announcement
	if err := cursor.All(ctx, &announcements); err != nil {
		return nil, err
	}
	return announcements, nil
}
