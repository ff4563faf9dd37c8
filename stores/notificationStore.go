package stores

import (
	"context"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationStore struct {
	col *mongo.Collection
}

func NewNotificationStore(col *mongo.Collection) *NotificationStore {
	return &NotificationStore{col: col}
}

func (s *NotificationStore) Insert(ctx context.Context, n *models.Notification) error {
	_, err := s.col.InsertOne(ctx, n)
	return err
}

// ListByRecipient pages the recipient's notifications newest first.
func (s *NotificationStore) ListByRecipient(ctx context.Context, recipient primitive.ObjectID, page, limit int) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient": recipient}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (page - 1) * limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true}})
	return err
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) error {
	_, err := s.col.UpdateMany(ctx,
		bson.M{"recipient": recipient, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	return err
}

// Recent returns the newest notifications across all recipients, for the
// admin dashboard.
func (s *NotificationStore) Recent(ctx context.Context, limit int) ([]models.Notification, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
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
