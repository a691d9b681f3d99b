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

// UserService manages user profile documents
type UserService struct {
	collection *mongo.Collection
}

// NewUserService creates a new user service
func NewUserService(mongodb *database.MongoDB) *UserService {
	return &UserService{
		collection: mongodb.Collection(database.CollectionUsers),
	}
}

// GetByUserID returns a user by external user ID, or nil when unknown
func (s *UserService) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// EnsureUser upserts a minimal profile for the external identity. Called on
// first authenticated request so downstream services always find a user.
func (s *UserService) EnsureUser(ctx context.Context, userID, email, name string) (*models.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"email":     email,
			"name":      name,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"userId":    userID,
			"onboarded": false,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var user models.User
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, opts).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return &user, nil
}

// OnboardedUserIDs returns the external IDs of all onboarded users. The
// learning batch and the analysis fan-out jobs iterate over this.
func (s *UserService) OnboardedUserIDs(ctx context.Context) ([]string, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"onboarded": true},
		options.Find().SetProjection(bson.M{"userId": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to query onboarded users: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			UserID string `bson:"userId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user ID: %w", err)
		}
		ids = append(ids, doc.UserID)
	}
	return ids, cursor.Err()
}
