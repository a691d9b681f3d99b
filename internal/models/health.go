package models

import "time"

// Vital metric types stored in the MySQL vitals table
const (
	MetricBloodPressure = "blood_pressure"
	MetricBloodSugar    = "blood_sugar"
	MetricWeight        = "weight"
	MetricPulse         = "pulse"
	MetricWater         = "water"
	MetricSleep         = "sleep"
)

// VitalReading is one logged measurement.
// Blood pressure uses Value/Value2 as systolic/diastolic; single-valued
// metrics leave Value2 at zero.
type VitalReading struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Value2     float64   `json:"value2,omitempty"`
	Unit       string    `json:"unit,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// HealthLog records that the user logged *something* at a point in time.
// It is the activity signal behind streaks and the learning miners.
type HealthLog struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	MetricType string    `json:"metric_type"`
	LoggedAt   time.Time `json:"logged_at"`
}

// Goal is a user health goal (e.g., daily water intake target)
type Goal struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	GoalType  string    `json:"goal_type"`
	Target    float64   `json:"target"`
	Unit      string    `json:"unit,omitempty"`
	Active    bool      `json:"active"`
	AuditNote string    `json:"audit_note,omitempty"` // Records previous target on agent adjustments
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Nudge urgency levels
const (
	NudgeUrgencyLow    = "low"
	NudgeUrgencyNormal = "normal"
	NudgeUrgencyHigh   = "high"
)

// Nudge is a proactive message surfaced to the user by the notification layer
type Nudge struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
	Urgency   string    `json:"urgency"`
	IsAlert   bool      `json:"is_alert"` // Escalations are rendered as high-visibility alerts
	CreatedAt time.Time `json:"created_at"`
}

// Achievement marks a milestone the agent celebrated. At most one per
// (user, achievement type).
type Achievement struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	AchievementType string    `json:"achievement_type"`
	Message         string    `json:"message"`
	CreatedAt       time.Time `json:"created_at"`
}

// StreakState is the consecutive-day logging streak
type StreakState struct {
	Current      int        `json:"current"`
	LastLoggedAt *time.Time `json:"last_logged_at,omitempty"`
}

// AtRiskHours returns how many hours remain before the streak breaks
// (24h since last log), or 0 when there is no streak to lose.
func (s StreakState) AtRiskHours(now time.Time) float64 {
	if s.Current == 0 || s.LastLoggedAt == nil {
		return 0
	}
	remaining := 24 - now.Sub(*s.LastLoggedAt).Hours()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HealthScore is the latest computed weighted health score
type HealthScore struct {
	Score      float64   `json:"score"`
	ComputedAt time.Time `json:"computed_at"`
}
