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

// UserModelService manages the singleton-per-user behavioral model
type UserModelService struct {
	collection *mongo.Collection
}

// NewUserModelService creates a new user model service
func NewUserModelService(mongodb *database.MongoDB) *UserModelService {
	return &UserModelService{
		collection: mongodb.Collection(database.CollectionUserModels),
	}
}

// Get returns the user's model, or nil when no learning run has created one yet
func (s *UserModelService) Get(ctx context.Context, userID string) (*models.UserModel, error) {
	var model models.UserModel
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&model)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user model: %w", err)
	}
	return &model, nil
}

// Apply merges one learning run's output into the stored model, creating the
// document lazily on first run. Nil update fields leave stored fields intact.
func (s *UserModelService) Apply(ctx context.Context, userID string, upd models.UserModelUpdate) (*models.UserModel, error) {
	model, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if model == nil {
		model = &models.UserModel{
			UserID:    userID,
			CreatedAt: now,
		}
	}

	model.Merge(upd)
	model.LastAnalyzedAt = now
	model.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"persona":                  model.Persona,
			"communicationPreferences": model.CommunicationPreferences,
			"engagementPatterns":       model.EngagementPatterns,
			"healthPriorities":         model.HealthPriorities,
			"painPoints":               model.PainPoints,
			"successPatterns":          model.SuccessPatterns,
			"lastAnalyzedAt":           model.LastAnalyzedAt,
			"updatedAt":                model.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"createdAt": model.CreatedAt,
		},
	}

	_, err = s.collection.UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save user model: %w", err)
	}

	return model, nil
}
