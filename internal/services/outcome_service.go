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

// OutcomeService stores interaction outcomes recorded by the notification
// layer. The core only reads them (learning miners); the single write path
// is the service-key ingest endpoint.
type OutcomeService struct {
	collection *mongo.Collection
}

// NewOutcomeService creates a new outcome service
func NewOutcomeService(mongodb *database.MongoDB) *OutcomeService {
	return &OutcomeService{
		collection: mongodb.Collection(database.CollectionInteractionOutcomes),
	}
}

// Record stores one delivered-interaction outcome
func (s *OutcomeService) Record(ctx context.Context, outcome *models.InteractionOutcome) error {
	if outcome.UserID == "" {
		return fmt.Errorf("user ID is required")
	}
	if outcome.DeliveredAt.IsZero() {
		outcome.DeliveredAt = time.Now().UTC()
	}
	outcome.ID = primitive.NewObjectID()

	if _, err := s.collection.InsertOne(ctx, outcome); err != nil {
		return fmt.Errorf("failed to insert interaction outcome: %w", err)
	}
	return nil
}

// WindowForUser returns a user's outcomes delivered since the given time,
// oldest first.
func (s *OutcomeService) WindowForUser(ctx context.Context, userID string, since time.Time) ([]models.InteractionOutcome, error) {
	opts := options.Find().SetSort(bson.D{{Key: "deliveredAt", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{
		"userId":      userID,
		"deliveredAt": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction outcomes: %w", err)
	}
	defer cursor.Close(ctx)

	var outcomes []models.InteractionOutcome
	if err := cursor.All(ctx, &outcomes); err != nil {
		return nil, fmt.Errorf("failed to decode interaction outcomes: %w", err)
	}
	return outcomes, nil
}
