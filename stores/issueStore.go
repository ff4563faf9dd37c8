package stores

import (
	"context"
	"time"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IssueStore is the MongoDB-backed issue collection. Writes are plain
// single-document operations; there is no optimistic concurrency token,
// so concurrent updates are last-write-wins.
type IssueStore struct {
	col *mongo.Collection
}

func NewIssueStore(col *mongo.Collection) *IssueStore {
	return &IssueStore{col: col}
}

func (s *IssueStore) Insert(ctx context.Context, issue *models.Issue) error {
	_, err := s.col.InsertOne(ctx, issue)
	return err
}

// FindByID returns (nil, nil) when no issue matches.
func (s *IssueStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Issue, error) {
	var issue models.Issue
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (s *IssueStore) Replace(ctx context.Context, issue *models.Issue) error {
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": issue.ID}, issue)
	return err
}

func (s *IssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindOverdueCandidates selects open issues past their deadline that have
// not been flagged yet. The isOverdue filter is what makes the sweep
// idempotent.
func (s *IssueStore) FindOverdueCandidates(ctx context.Context, now time.Time) ([]models.Issue, error) {
	filter := bson.M{
		"status":      bson.M{"$nin": []string{string(models.StatusResolved), string(models.StatusClosed)}},
		"slaDeadline": bson.M{"$lt": now},
		"isOverdue":   false,
	}

	cursor, err := s.col.Find(ctx, filter)
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

func (s *IssueStore) MarkOverdue(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"isOverdue": true, "updatedAt": now},
	})
	return err
}

// ListFilter narrows the paginated issue listing.
type ListFilter struct {
	Status     string
	Department string
	Priority   string
	Search     string
	Citizen    *primitive.ObjectID
	Page       int
	Limit      int
}

// List returns one page of issues, newest first, with the total count for
// pagination.
func (s *IssueStore) List(ctx context.Context, f ListFilter) ([]models.Issue, int64, error) {
	filter := bson.M{}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Department != "" && f.Department != "all" {
		filter["department"] = f.Department
	}
	if f.Priority != "" && f.Priority != "all" {
		filter["priorityLevel"] = f.Priority
	}
	if f.Citizen != nil {
		filter["citizen"] = *f.Citizen
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := (f.Page - 1) * f.Limit
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(f.Limit))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var issues []models.Issue
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, err
	}
	return issues, total, nil
}

func (s *IssueStore) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.col.CountDocuments(ctx, filter)
}

// CountsByField groups issues by a single field, for the dashboard charts.
func (s *IssueStore) CountsByField(ctx context.Context, field string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}
