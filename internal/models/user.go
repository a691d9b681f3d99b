package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an onboarded Vitalis user
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"user_id"` // External auth identity
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	Conditions []string           `bson:"conditions,omitempty" json:"conditions,omitempty"` // Self-reported conditions (e.g., "hypertension")
	TimeZone   string             `bson:"timeZone,omitempty" json:"time_zone,omitempty"`
	Onboarded  bool               `bson:"onboarded" json:"onboarded"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// Autonomy levels control how much the care agent may do without confirmation
const (
	AutonomyMinimal  = "minimal"  // Read-only tools; the agent observes and reports
	AutonomyBalanced = "balanced" // May nudge, celebrate, and escalate — never adjusts goals
	AutonomyFull     = "full"     // All tools available
)

// ValidAutonomyLevel reports whether level is one of the known autonomy levels
func ValidAutonomyLevel(level string) bool {
	return level == AutonomyMinimal || level == AutonomyBalanced || level == AutonomyFull
}

// AgentPreferences is the per-user agent policy. User-editable; one document per user.
type AgentPreferences struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"userId" json:"user_id"`

	AutonomyLevel string `bson:"autonomyLevel" json:"autonomy_level"` // minimal | balanced | full

	// Per-action-type toggles
	NudgesEnabled       bool `bson:"nudgesEnabled" json:"nudges_enabled"`
	CelebrationsEnabled bool `bson:"celebrationsEnabled" json:"celebrations_enabled"`
	GoalAdjustEnabled   bool `bson:"goalAdjustEnabled" json:"goal_adjust_enabled"`
	EscalationsEnabled  bool `bson:"escalationsEnabled" json:"escalations_enabled"`

	// Quiet hours as local hours [0,23]. Start > End means the window wraps
	// around midnight (e.g., 22 → 7).
	QuietHoursStart int `bson:"quietHoursStart" json:"quiet_hours_start"`
	QuietHoursEnd   int `bson:"quietHoursEnd" json:"quiet_hours_end"`

	MaxNudgesPerDay           int `bson:"maxNudgesPerDay" json:"max_nudges_per_day"`
	MaxGoalAdjustmentsPerWeek int `bson:"maxGoalAdjustmentsPerWeek" json:"max_goal_adjustments_per_week"`

	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// DefaultAgentPreferences returns the policy applied before a user customizes anything
func DefaultAgentPreferences(userID string) *AgentPreferences {
	return &AgentPreferences{
		UserID:                    userID,
		AutonomyLevel:             AutonomyBalanced,
		NudgesEnabled:             true,
		CelebrationsEnabled:       true,
		GoalAdjustEnabled:         false,
		EscalationsEnabled:        true,
		QuietHoursStart:           22,
		QuietHoursEnd:             7,
		MaxNudgesPerDay:           3,
		MaxGoalAdjustmentsPerWeek: 1,
	}
}

// UpdateAgentPreferencesRequest carries a partial preferences update.
// Nil fields are left untouched.
type UpdateAgentPreferencesRequest struct {
	AutonomyLevel             *string `json:"autonomy_level,omitempty"`
	NudgesEnabled             *bool   `json:"nudges_enabled,omitempty"`
	CelebrationsEnabled       *bool   `json:"celebrations_enabled,omitempty"`
	GoalAdjustEnabled         *bool   `json:"goal_adjust_enabled,omitempty"`
	EscalationsEnabled        *bool   `json:"escalations_enabled,omitempty"`
	QuietHoursStart           *int    `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd             *int    `json:"quiet_hours_end,omitempty"`
	MaxNudgesPerDay           *int    `json:"max_nudges_per_day,omitempty"`
	MaxGoalAdjustmentsPerWeek *int    `json:"max_goal_adjustments_per_week,omitempty"`
}
