package stores

import (
	"context"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AuditStore is append-only: records are inserted and read, never updated
// or deleted.
type AuditStore struct {
	col *mongo.Collection
}

func NewAuditStore(col *mongo.Collection) *AuditStore {
	return &AuditStore{col: col}
}

func (s *AuditStore) Insert(ctx context.Context, rec *models.AuditRecord) error {
	_, err := s.col.InsertOne(ctx, rec)
	return err
}

// FindByIssue returns the issue's records newest first.
func (s *AuditStore) FindByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditRecord, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.col.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.AuditRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}
