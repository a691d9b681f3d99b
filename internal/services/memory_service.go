package services

import (
	"context"
	"fmt"
	"time"

	"vitalis/internal/database"
	"vitalis/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryService stores and retrieves learned memory facts
type MemoryService struct {
	collection *mongo.Collection
}

// NewMemoryService creates a new memory service
func NewMemoryService(mongodb *database.MongoDB) *MemoryService {
	return &MemoryService{
		collection: mongodb.Collection(database.CollectionMemoryFacts),
	}
}

// Upsert writes a fact keyed on (userId, memoryType, key). An existing fact
// gets its value, source, and confidence replaced; createdAt and accessCount
// survive.
func (s *MemoryService) Upsert(ctx context.Context, fact *models.MemoryFact) error {
	if fact.Confidence < 0 || fact.Confidence > 1 {
		return fmt.Errorf("confidence %.2f out of range [0,1]", fact.Confidence)
	}

	now := time.Now().UTC()
	filter := bson.M{
		"userId":     fact.UserID,
		"memoryType": fact.MemoryType,
		"key":        fact.Key,
	}
	update := bson.M{
		"$set": bson.M{
			"value":      fact.Value,
			"source":     fact.Source,
			"confidence": fact.Confidence,
			"updatedAt":  now,
		},
		"$setOnInsert": bson.M{
			"userId":      fact.UserID,
			"memoryType":  fact.MemoryType,
			"key":         fact.Key,
			"accessCount": int64(0),
			"createdAt":   now,
		},
	}

	_, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert memory fact: %w", err)
	}
	return nil
}

// TopFacts returns the user's highest-confidence facts and increments their
// access counts, so usage feeds back into future relevance decisions.
func (s *MemoryService) TopFacts(ctx context.Context, userID string, limit int) ([]models.MemoryFact, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "confidence", Value: -1}, {Key: "updatedAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory facts: %w", err)
	}
	defer cursor.Close(ctx)

	var facts []models.MemoryFact
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode memory facts: %w", err)
	}

	if len(facts) > 0 {
		ids := make([]any, 0, len(facts))
		for _, f := range facts {
			ids = append(ids, f.ID)
		}
		// Best-effort: a failed access-count bump must not fail the read
		_, _ = s.collection.UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": ids}},
			bson.M{"$inc": bson.M{"accessCount": 1}})
	}

	return facts, nil
}

// AllFacts returns every fact for a user, highest confidence first, without
// touching access counts. Used by the diagnostics read API.
func (s *MemoryService) AllFacts(ctx context.Context, userID string) ([]models.MemoryFact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "confidence", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory facts: %w", err)
	}
	defer cursor.Close(ctx)

	var facts []models.MemoryFact
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("failed to decode memory facts: %w", err)
	}
	return facts, nil
}
