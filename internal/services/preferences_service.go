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

// PreferencesService manages per-user agent policy documents
type PreferencesService struct {
	collection *mongo.Collection
	defaults   models.AgentPreferences
}

// NewPreferencesService creates a new preferences service. The defaults are
// applied to users who have not customized anything yet.
func NewPreferencesService(mongodb *database.MongoDB, defaults models.AgentPreferences) *PreferencesService {
	return &PreferencesService{
		collection: mongodb.Collection(database.CollectionAgentPreferences),
		defaults:   defaults,
	}
}

// Get returns the user's agent preferences, falling back to defaults when the
// user has no stored document. The fallback is not persisted: defaults can
// change without a migration.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*models.AgentPreferences, error) {
	var prefs models.AgentPreferences
	err := s.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&prefs)
	if err == mongo.ErrNoDocuments {
		defaults := s.defaults
		defaults.UserID = userID
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query agent preferences: %w", err)
	}
	return &prefs, nil
}

// Update applies a partial preferences update and returns the result.
// Nil request fields leave the stored values untouched.
func (s *PreferencesService) Update(ctx context.Context, userID string, req *models.UpdateAgentPreferencesRequest) (*models.AgentPreferences, error) {
	prefs, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.AutonomyLevel != nil {
		if !models.ValidAutonomyLevel(*req.AutonomyLevel) {
			return nil, fmt.Errorf("invalid autonomy level %q", *req.AutonomyLevel)
		}
		prefs.AutonomyLevel = *req.AutonomyLevel
	}
	if req.NudgesEnabled != nil {
		prefs.NudgesEnabled = *req.NudgesEnabled
	}
	if req.CelebrationsEnabled != nil {
		prefs.CelebrationsEnabled = *req.CelebrationsEnabled
	}
	if req.GoalAdjustEnabled != nil {
		prefs.GoalAdjustEnabled = *req.GoalAdjustEnabled
	}
	if req.EscalationsEnabled != nil {
		prefs.EscalationsEnabled = *req.EscalationsEnabled
	}
	if req.QuietHoursStart != nil {
		if err := validateHour(*req.QuietHoursStart); err != nil {
			return nil, fmt.Errorf("quiet_hours_start: %w", err)
		}
		prefs.QuietHoursStart = *req.QuietHoursStart
	}
	if req.QuietHoursEnd != nil {
		if err := validateHour(*req.QuietHoursEnd); err != nil {
			return nil, fmt.Errorf("quiet_hours_end: %w", err)
		}
		prefs.QuietHoursEnd = *req.QuietHoursEnd
	}
	if req.MaxNudgesPerDay != nil {
		if *req.MaxNudgesPerDay < 0 {
			return nil, fmt.Errorf("max_nudges_per_day must be >= 0")
		}
		prefs.MaxNudgesPerDay = *req.MaxNudgesPerDay
	}
	if req.MaxGoalAdjustmentsPerWeek != nil {
		if *req.MaxGoalAdjustmentsPerWeek < 0 {
			return nil, fmt.Errorf("max_goal_adjustments_per_week must be >= 0")
		}
		prefs.MaxGoalAdjustmentsPerWeek = *req.MaxGoalAdjustmentsPerWeek
	}

	prefs.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"userId":                    userID,
		"autonomyLevel":             prefs.AutonomyLevel,
		"nudgesEnabled":             prefs.NudgesEnabled,
		"celebrationsEnabled":       prefs.CelebrationsEnabled,
		"goalAdjustEnabled":         prefs.GoalAdjustEnabled,
		"escalationsEnabled":        prefs.EscalationsEnabled,
		"quietHoursStart":           prefs.QuietHoursStart,
		"quietHoursEnd":             prefs.QuietHoursEnd,
		"maxNudgesPerDay":           prefs.MaxNudgesPerDay,
		"maxGoalAdjustmentsPerWeek": prefs.MaxGoalAdjustmentsPerWeek,
		"updatedAt":                 prefs.UpdatedAt,
	}}

	_, err = s.collection.UpdateOne(ctx, bson.M{"userId": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to update agent preferences: %w", err)
	}

	return prefs, nil
}

func validateHour(h int) error {
	if h < 0 || h > 23 {
		return fmt.Errorf("hour %d out of range [0,23]", h)
	}
	return nil
}
