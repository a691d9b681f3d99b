package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory fact types
const (
	MemoryTypePreference = "preference"
	MemoryTypeFact       = "fact"
	MemoryTypePattern    = "pattern"
	MemoryTypeContext    = "context"
)

// Memory fact sources
const (
	MemorySourceLearned    = "learned"
	MemorySourceUserStated = "user-stated"
)

// MemoryFact is a small, confidence-scored, persisted datum about a user.
// Unique on (userId, memoryType, key); writes are upserts.
type MemoryFact struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     string             `bson:"userId" json:"user_id"`
	MemoryType string             `bson:"memoryType" json:"memory_type"`
	Key        string             `bson:"key" json:"key"`
	Value      any                `bson:"value" json:"value"`
	Source     string             `bson:"source" json:"source"`
	Confidence float64            `bson:"confidence" json:"confidence"` // [0,1]
	AccessCount int64             `bson:"accessCount" json:"access_count"`

	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updated_at"`
}

// Engagement types recorded by the notification layer
const (
	EngagementOpened    = "opened"
	EngagementClicked   = "clicked"
	EngagementActioned  = "actioned"
	EngagementDismissed = "dismissed"
	EngagementIgnored   = "ignored"
)

// Engaged reports whether the engagement type counts as positive engagement
func Engaged(engagementType string) bool {
	switch engagementType {
	case EngagementOpened, EngagementClicked, EngagementActioned:
		return true
	}
	return false
}

// OutcomeContext tags where and what kind of interaction was delivered
type OutcomeContext struct {
	Category string `bson:"category,omitempty" json:"category,omitempty"`
	Channel  string `bson:"channel,omitempty" json:"channel,omitempty"`
}

// InteractionOutcome records whether a user engaged with a delivered
// interaction. Written exclusively by the notification/UI layer; the core
// only reads these.
type InteractionOutcome struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"userId" json:"user_id"`
	InteractionType string             `bson:"interactionType" json:"interaction_type"`
	InteractionID   string             `bson:"interactionId,omitempty" json:"interaction_id,omitempty"`
	DeliveredAt     time.Time          `bson:"deliveredAt" json:"delivered_at"`
	EngagementType  string             `bson:"engagementType" json:"engagement_type"`
	TimeToEngageSeconds int64          `bson:"timeToEngageSeconds,omitempty" json:"time_to_engage_seconds,omitempty"`
	Context         OutcomeContext     `bson:"context,omitempty" json:"context,omitempty"`
}

// Schema version for the typed user-model fields below. Bump when a field's
// shape changes so old documents can be migrated on read.
const UserModelSchemaVersion = 1

// PersonaProfile is a coarse behavioral persona. Not produced by the current
// miners; survives merges untouched when absent from a learning run.
type PersonaProfile struct {
	SchemaVersion int               `bson:"schemaVersion" json:"schema_version"`
	Style         string            `bson:"style,omitempty" json:"style,omitempty"`
	Traits        map[string]string `bson:"traits,omitempty" json:"traits,omitempty"`
}

// CommunicationPrefs captures how the user likes to be addressed
type CommunicationPrefs struct {
	SchemaVersion int    `bson:"schemaVersion" json:"schema_version"`
	Tone          string `bson:"tone,omitempty" json:"tone,omitempty"`
	PreferredChannel string `bson:"preferredChannel,omitempty" json:"preferred_channel,omitempty"`
}

// EngagementPatterns is the Engagement Outcome Miner's output
type EngagementPatterns struct {
	SchemaVersion           int      `bson:"schemaVersion" json:"schema_version"`
	PreferredHours          []int    `bson:"preferredHours,omitempty" json:"preferred_hours,omitempty"`
	ResponsiveCategories    []string `bson:"responsiveCategories,omitempty" json:"responsive_categories,omitempty"`
	IgnoredCategories       []string `bson:"ignoredCategories,omitempty" json:"ignored_categories,omitempty"`
	OverallEngagementRate   float64  `bson:"overallEngagementRate" json:"overall_engagement_rate"`
	MeanTimeToEngageSeconds float64  `bson:"meanTimeToEngageSeconds" json:"mean_time_to_engage_seconds"`
	SampleCount             int      `bson:"sampleCount" json:"sample_count"`
}

// HealthPriorities is the Health Priority Miner's output
type HealthPriorities struct {
	SchemaVersion   int            `bson:"schemaVersion" json:"schema_version"`
	PrimaryFocus    string         `bson:"primaryFocus,omitempty" json:"primary_focus,omitempty"`
	SecondaryFocus  string         `bson:"secondaryFocus,omitempty" json:"secondary_focus,omitempty"`
	MetricFrequency map[string]int `bson:"metricFrequency,omitempty" json:"metric_frequency,omitempty"`
}

// SuccessPatterns is the Success Pattern Miner's output
type SuccessPatterns struct {
	SchemaVersion      int                `bson:"schemaVersion" json:"schema_version"`
	SuccessfulActions  []string           `bson:"successfulActions,omitempty" json:"successful_actions,omitempty"`
	ActionSuccessRates map[string]float64 `bson:"actionSuccessRates,omitempty" json:"action_success_rates,omitempty"`
	SampleCounts       map[string]int     `bson:"sampleCounts,omitempty" json:"sample_counts,omitempty"`
}

// PainPoints is the Pain Point Detector's output
type PainPoints struct {
	SchemaVersion   int  `bson:"schemaVersion" json:"schema_version"`
	NudgeFatigue    bool `bson:"nudgeFatigue" json:"nudge_fatigue"`
	StreakStruggles bool `bson:"streakStruggles" json:"streak_struggles"`
}

// UserModel is the aggregated, slowly-updated behavioral profile. At most
// one document per user, created lazily by the first learning run. Field
// merges are unions: a partial learning run can add data but never erases
// previously learned fields.
type UserModel struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID string             `bson:"userId" json:"user_id"`

	Persona                  *PersonaProfile     `bson:"persona,omitempty" json:"persona,omitempty"`
	CommunicationPreferences *CommunicationPrefs `bson:"communicationPreferences,omitempty" json:"communication_preferences,omitempty"`
	EngagementPatterns       *EngagementPatterns `bson:"engagementPatterns,omitempty" json:"engagement_patterns,omitempty"`
	HealthPriorities         *HealthPriorities   `bson:"healthPriorities,omitempty" json:"health_priorities,omitempty"`
	PainPoints               *PainPoints         `bson:"painPoints,omitempty" json:"pain_points,omitempty"`
	SuccessPatterns          *SuccessPatterns    `bson:"successPatterns,omitempty" json:"success_patterns,omitempty"`

	LastAnalyzedAt time.Time `bson:"lastAnalyzedAt" json:"last_analyzed_at"`
	CreatedAt      time.Time `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updated_at"`
}

// UserModelUpdate carries one learning run's miner outputs. Nil fields were
// not produced by the run and must leave the stored field untouched.
type UserModelUpdate struct {
	Persona                  *PersonaProfile
	CommunicationPreferences *CommunicationPrefs
	EngagementPatterns       *EngagementPatterns
	HealthPriorities         *HealthPriorities
	PainPoints               *PainPoints
	SuccessPatterns          *SuccessPatterns
}

// Merge applies upd field-by-field: non-nil fields overwrite, nil fields
// survive. Map-valued sub-fields are unioned key-wise with the incoming
// value winning ties.
func (m *UserModel) Merge(upd UserModelUpdate) {
	if upd.Persona != nil {
		if m.Persona != nil {
			upd.Persona.Traits = mergeStringMap(m.Persona.Traits, upd.Persona.Traits)
		}
		m.Persona = upd.Persona
	}
	if upd.CommunicationPreferences != nil {
		m.CommunicationPreferences = upd.CommunicationPreferences
	}
	if upd.EngagementPatterns != nil {
		m.EngagementPatterns = upd.EngagementPatterns
	}
	if upd.HealthPriorities != nil {
		if m.HealthPriorities != nil {
			upd.HealthPriorities.MetricFrequency = mergeIntMap(m.HealthPriorities.MetricFrequency, upd.HealthPriorities.MetricFrequency)
		}
		m.HealthPriorities = upd.HealthPriorities
	}
	if upd.PainPoints != nil {
		m.PainPoints = upd.PainPoints
	}
	if upd.SuccessPatterns != nil {
		if m.SuccessPatterns != nil {
			upd.SuccessPatterns.ActionSuccessRates = mergeFloatMap(m.SuccessPatterns.ActionSuccessRates, upd.SuccessPatterns.ActionSuccessRates)
			upd.SuccessPatterns.SampleCounts = mergeIntMap(m.SuccessPatterns.SampleCounts, upd.SuccessPatterns.SampleCounts)
		}
		m.SuccessPatterns = upd.SuccessPatterns
	}
}

func mergeStringMap(old, new map[string]string) map[string]string {
	if old == nil {
		return new
	}
	out := make(map[string]string, len(old)+len(new))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range new {
		out[k] = v
	}
	return out
}

func mergeIntMap(old, new map[string]int) map[string]int {
	if old == nil {
		return new
	}
	out := make(map[string]int, len(old)+len(new))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range new {
		out[k] = v
	}
	return out
}

func mergeFloatMap(old, new map[string]float64) map[string]float64 {
	if old == nil {
		return new
	}
	out := make(map[string]float64, len(old)+len(new))
	for k, v := range old {
		out[k] = v
	}
	for k, v := range new {
		out[k] = v
	}
	return out
}
