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

// TaskService manages the follow-up queue written by the schedule_followup
// tool and drained by the follow-up dispatcher job.
type TaskService struct {
	collection *mongo.Collection
}

// NewTaskService creates a new task service
func NewTaskService(mongodb *database.MongoDB) *TaskService {
	return &TaskService{
		collection: mongodb.Collection(database.CollectionScheduledTasks),
	}
}

// Schedule enqueues a pending task
func (s *TaskService) Schedule(ctx context.Context, task *models.ScheduledTask) error {
	task.ID = primitive.NewObjectID()
	task.Status = models.TaskStatusPending
	task.CreatedAt = time.Now().UTC()

	if _, err := s.collection.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to insert scheduled task: %w", err)
	}
	return nil
}

// DuePending returns pending tasks whose scheduled time has passed, oldest first
func (s *TaskService) DuePending(ctx context.Context, now time.Time, limit int) ([]models.ScheduledTask, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduledFor", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{
		"status":       models.TaskStatusPending,
		"scheduledFor": bson.M{"$lte": now},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query due tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.ScheduledTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled tasks: %w", err)
	}
	return tasks, nil
}

// MarkDispatched transitions a task from pending to dispatched. Returns false
// when another dispatcher got there first.
func (s *TaskService) MarkDispatched(ctx context.Context, taskID primitive.ObjectID) (bool, error) {
	now := time.Now().UTC()
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": taskID, "status": models.TaskStatusPending},
		bson.M{"$set": bson.M{
			"status":       models.TaskStatusDispatched,
			"dispatchedAt": now,
		}})
	if err != nil {
		return false, fmt.Errorf("failed to mark task dispatched: %w", err)
	}
	return result.ModifiedCount == 1, nil
}
