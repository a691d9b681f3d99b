package services

import (
	"context"
	"fmt"
	"time"

	"vitalis/internal/database"
	"vitalis/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActionLogService appends to and reads the append-only action log. The log
// is the sole authority for duplicate suppression and quota counting, so this
// service exposes no update or delete operations.
type ActionLogService struct {
	collection *mongo.Collection
}

// NewActionLogService creates a new action log service
func NewActionLogService(mongodb *database.MongoDB) *ActionLogService {
	return &ActionLogService{
		collection: mongodb.Collection(database.CollectionActionLog),
	}
}

// Append records one executed or failed agent action
func (s *ActionLogService) Append(ctx context.Context, entry *models.ActionLogEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append action log entry: %w", err)
	}
	return nil
}

// RecentTail returns the user's last n entries, newest first
func (s *ActionLogService) RecentTail(ctx context.Context, userID string, n int) ([]models.ActionLogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(n))

	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query action log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActionLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode action log entries: %w", err)
	}
	return entries, nil
}

// CountByTypeSince counts executed actions of one type since the given time.
// Failed actions do not consume quota.
func (s *ActionLogService) CountByTypeSince(ctx context.Context, userID, actionType string, since time.Time) (int, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{
		"userId":     userID,
		"actionType": actionType,
		"status":     models.ActionStatusExecuted,
		"createdAt":  bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count action log entries: %w", err)
	}
	return int(count), nil
}

// EntriesSince returns the user's entries in a time window, oldest first.
// The learning miners read 30-day windows through this.
func (s *ActionLogService) EntriesSince(ctx context.Context, userID string, since time.Time) ([]models.ActionLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{
		"userId":    userID,
		"createdAt": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query action log window: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.ActionLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode action log entries: %w", err)
	}
	return entries, nil
}
